package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/pkg/apiclient"
)

// SubscriptionUpdatedParam is appended to the dashboard URL after a
// post-purchase navigation so the destination knows to re-read entitlements.
const SubscriptionUpdatedParam = "subscriptionUpdated=true"

// CheckoutFetcher loads checkout-session details. *apiclient.Client
// satisfies it.
type CheckoutFetcher interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*apiclient.CheckoutSessionDetail, error)
}

// ProfileRefresher re-syncs the session profile. *Store satisfies it.
type ProfileRefresher interface {
	RefreshProfile(ctx context.Context) error
}

// Navigator performs a client-side navigation.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// ReconcilerConfig holds Reconciler settings.
type ReconcilerConfig struct {
	// Checkout loads the purchased session's details. Required.
	Checkout CheckoutFetcher
	// Session is the profile store to re-sync. Required.
	Session ProfileRefresher
	// Navigator performs the final redirect. Required.
	Navigator Navigator
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// DashboardURL is the navigation target. Defaults to "/dashboard".
	DashboardURL string
	// DetailTimeout bounds the checkout-detail fetch. Defaults to 5s.
	DetailTimeout time.Duration
	// Tick is the countdown interval. Defaults to 1s.
	Tick time.Duration
	// CountdownFrom is the number of ticks before auto-navigation.
	// Defaults to 10.
	CountdownFrom int
	// OnTick, when set, is called with the remaining tick count as the
	// countdown advances, starting at CountdownFrom.
	OnTick func(remaining int)
}

// Reconciler drives the post-purchase confirmation flow: after a checkout
// redirect it fetches what was bought, refreshes the profile so entitlements
// reflect the purchase, and navigates to the dashboard after a countdown the
// user can skip. At most one navigation ever happens, no matter how the
// countdown and GoNow interleave.
type Reconciler struct {
	checkout  CheckoutFetcher
	session   ProfileRefresher
	navigator Navigator
	logger    *zap.Logger

	dashboardURL  string
	detailTimeout time.Duration
	tick          time.Duration
	countdownFrom int
	onTick        func(int)

	navOnce  sync.Once
	stopOnce sync.Once
	stop     chan struct{}

	mu     sync.Mutex
	detail *apiclient.CheckoutSessionDetail
}

// NewReconciler creates a Reconciler. Panics if a required dependency is nil.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.Checkout == nil {
		panic("session.NewReconciler requires a CheckoutFetcher")
	}
	if cfg.Session == nil {
		panic("session.NewReconciler requires a ProfileRefresher")
	}
	if cfg.Navigator == nil {
		panic("session.NewReconciler requires a Navigator")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dashboardURL := cfg.DashboardURL
	if dashboardURL == "" {
		dashboardURL = "/dashboard"
	}
	detailTimeout := cfg.DetailTimeout
	if detailTimeout <= 0 {
		detailTimeout = 5 * time.Second
	}
	tick := cfg.Tick
	if tick <= 0 {
		tick = time.Second
	}
	countdownFrom := cfg.CountdownFrom
	if countdownFrom <= 0 {
		countdownFrom = 10
	}
	return &Reconciler{
		checkout:      cfg.Checkout,
		session:       cfg.Session,
		navigator:     cfg.Navigator,
		logger:        logger,
		dashboardURL:  dashboardURL,
		detailTimeout: detailTimeout,
		tick:          tick,
		countdownFrom: countdownFrom,
		onTick:        cfg.OnTick,
		stop:          make(chan struct{}),
	}
}

// Run executes the flow for the checkout session the user was redirected back
// with. An empty checkoutSessionID means the page was reached without a
// purchase: the user is sent straight to the dashboard, unmarked, with no
// network calls. Otherwise Run fetches the session detail (bounded, purely
// informational), refreshes the profile exactly once, and counts down to an
// automatic navigation. Run blocks until navigation happens or ctx is
// canceled; call it from its own goroutine.
func (r *Reconciler) Run(ctx context.Context, checkoutSessionID string) {
	if checkoutSessionID == "" {
		r.navigate(r.dashboardURL)
		return
	}

	detailCtx, cancel := context.WithTimeout(ctx, r.detailTimeout)
	detail, err := r.checkout.GetCheckoutSession(detailCtx, checkoutSessionID)
	cancel()
	if err != nil {
		// The confirmation page degrades to a generic message; the
		// entitlement refresh below still runs.
		r.logger.Warn("Checkout session detail unavailable",
			zap.String("sessionID", checkoutSessionID), zap.Error(err))
	} else {
		r.mu.Lock()
		r.detail = detail
		r.mu.Unlock()
	}

	if err := r.session.RefreshProfile(ctx); err != nil {
		r.logger.Warn("Post-purchase profile refresh failed", zap.Error(err))
	}

	r.countdown(ctx)
}

// countdown ticks from countdownFrom down to zero, then navigates with the
// subscription-updated marker. GoNow or ctx cancellation aborts it.
func (r *Reconciler) countdown(ctx context.Context) {
	remaining := r.countdownFrom
	if r.onTick != nil {
		r.onTick(remaining)
	}

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for remaining > 0 {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			remaining--
			if r.onTick != nil {
				r.onTick(remaining)
			}
		}
	}
	r.navigate(r.markedDashboardURL())
}

// GoNow skips the countdown: it stops the timer, gives the profile one more
// best-effort refresh, and navigates with the subscription-updated marker.
// Safe to call at any point; the at-most-once navigation guard still holds.
func (r *Reconciler) GoNow(ctx context.Context) {
	r.stopOnce.Do(func() { close(r.stop) })

	if err := r.session.RefreshProfile(ctx); err != nil {
		r.logger.Warn("Profile refresh on manual continue failed", zap.Error(err))
	}
	r.navigate(r.markedDashboardURL())
}

// Detail returns the fetched checkout-session detail, or nil if the fetch
// failed or has not completed.
func (r *Reconciler) Detail() *apiclient.CheckoutSessionDetail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detail
}

func (r *Reconciler) markedDashboardURL() string {
	sep := "?"
	if strings.Contains(r.dashboardURL, "?") {
		sep = "&"
	}
	return r.dashboardURL + sep + SubscriptionUpdatedParam
}

func (r *Reconciler) navigate(url string) {
	r.navOnce.Do(func() {
		r.navigator.Navigate(url)
	})
}
