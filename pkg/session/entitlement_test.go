package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ih205R/creator-project-tracker-sub001/pkg/apiclient"
)

func TestComputeIsPro(t *testing.T) {
	tests := []struct {
		name    string
		profile *apiclient.Profile
		want    bool
	}{
		{
			name:    "nil profile",
			profile: nil,
			want:    false,
		},
		{
			name:    "active pro user on Pro plan",
			profile: &apiclient.Profile{Role: "pro_user", SubscriptionStatus: "active", SubscriptionPlan: "Pro"},
			want:    true,
		},
		{
			name:    "active pro user on Starter plan",
			profile: &apiclient.Profile{Role: "pro_user", SubscriptionStatus: "active", SubscriptionPlan: "Starter"},
			want:    true,
		},
		{
			name:    "active pro user on Premium plan",
			profile: &apiclient.Profile{Role: "pro_user", SubscriptionStatus: "active", SubscriptionPlan: "Premium"},
			want:    true,
		},
		{
			name:    "free role with active status and valid plan",
			profile: &apiclient.Profile{Role: "free_user", SubscriptionStatus: "active", SubscriptionPlan: "Pro"},
			want:    false,
		},
		{
			name:    "pro role with past_due status",
			profile: &apiclient.Profile{Role: "pro_user", SubscriptionStatus: "past_due", SubscriptionPlan: "Pro"},
			want:    false,
		},
		{
			name:    "pro role with canceled status",
			profile: &apiclient.Profile{Role: "pro_user", SubscriptionStatus: "canceled", SubscriptionPlan: "Pro"},
			want:    false,
		},
		{
			name:    "active pro role with unknown plan",
			profile: &apiclient.Profile{Role: "pro_user", SubscriptionStatus: "active", SubscriptionPlan: "Enterprise"},
			want:    false,
		},
		{
			name:    "active pro role with empty plan",
			profile: &apiclient.Profile{Role: "pro_user", SubscriptionStatus: "active"},
			want:    false,
		},
		{
			name:    "empty profile",
			profile: &apiclient.Profile{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeIsPro(tt.profile))
		})
	}
}
