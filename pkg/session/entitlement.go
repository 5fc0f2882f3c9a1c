package session

import "github.com/Ih205R/creator-project-tracker-sub001/pkg/apiclient"

// Role and status values the entitlement check cares about. They mirror what
// the backend writes into profile documents.
const (
	RoleProUser        = "pro_user"
	SubscriptionActive = "active"
)

// paidPlans is the closed set of plan names that grant paid access.
var paidPlans = map[string]bool{
	"Starter": true,
	"Pro":     true,
	"Premium": true,
}

// ComputeIsPro reports whether a profile is entitled to paid features. It is
// a pure function of the profile: role, status and plan must all agree, so a
// field left over from an earlier billing state never grants access alone.
// A nil profile is never pro.
func ComputeIsPro(p *apiclient.Profile) bool {
	if p == nil {
		return false
	}
	if p.Role != RoleProUser {
		return false
	}
	if p.SubscriptionStatus != SubscriptionActive {
		return false
	}
	return paidPlans[p.SubscriptionPlan]
}
