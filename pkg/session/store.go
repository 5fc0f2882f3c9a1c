// Package session tracks the signed-in user's profile and subscription state
// on the client side. A Store reacts to identity changes by fetching the
// profile with retries, and a Reconciler drives the post-purchase flow that
// re-syncs entitlements after a Stripe checkout.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/pkg/apiclient"
)

// State describes where the store is in its lifecycle.
type State string

const (
	// StateUnauthenticated means no user is signed in.
	StateUnauthenticated State = "unauthenticated"
	// StateLoading means an identity is known and the profile fetch is in flight.
	StateLoading State = "loading"
	// StateReady means the profile was fetched successfully.
	StateReady State = "ready"
	// StateDegraded means the user is signed in but the latest profile fetch
	// failed. A previously loaded profile is kept, stale, until a refresh
	// succeeds; with no prior profile entitlements evaluate as free tier.
	StateDegraded State = "degraded"
)

// ErrProfileFetch wraps the last error from a failed profile load.
var ErrProfileFetch = errors.New("profile fetch failed")

// Identity is the authenticated user as reported by the auth provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Snapshot is a point-in-time view of the store, safe to use after the store
// has moved on.
type Snapshot struct {
	Identity *Identity
	Profile  *apiclient.Profile
	State    State
	Loading  bool
	IsPro    bool
	Err      error
}

// ProfileFetcher loads the current user's profile. *apiclient.Client
// satisfies it.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, fresh bool) (*apiclient.Profile, error)
}

// AuthSource delivers identity changes, e.g. an adapter over a Firebase auth
// state listener. The callback receives nil on sign-out.
type AuthSource interface {
	OnIdentityChanged(fn func(*Identity))
}

// StoreConfig holds Store settings.
type StoreConfig struct {
	// Fetcher loads profiles. Required.
	Fetcher ProfileFetcher
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// MaxAttempts is the total number of fetch attempts per identity change.
	// Defaults to 4.
	MaxAttempts int
	// RetryBase is the delay before the second attempt; each further retry
	// doubles it. Defaults to 1s, giving 1s, 2s, 4s gaps.
	RetryBase time.Duration
	// OnChange, when set, is called with a snapshot after every state
	// transition. Called with the store's lock released.
	OnChange func(Snapshot)
}

// Store holds the session state for one signed-in user. All methods are safe
// for concurrent use.
type Store struct {
	fetcher     ProfileFetcher
	logger      *zap.Logger
	maxAttempts int
	retryBase   time.Duration
	onChange    func(Snapshot)

	mu       sync.Mutex
	gen      uint64
	identity *Identity
	profile  *apiclient.Profile
	state    State
	loading  bool
	err      error
}

// NewStore creates a Store. Panics if cfg.Fetcher is nil.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Fetcher == nil {
		panic("session.NewStore requires a ProfileFetcher")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = time.Second
	}
	return &Store{
		fetcher:     cfg.Fetcher,
		logger:      logger,
		maxAttempts: maxAttempts,
		retryBase:   retryBase,
		onChange:    cfg.OnChange,
		state:       StateUnauthenticated,
	}
}

// Bind subscribes the store to an auth source. Each delivered identity is
// handled on its own goroutine so a slow profile load never blocks the auth
// listener; the generation guard keeps overlapping deliveries ordered.
func (s *Store) Bind(ctx context.Context, src AuthSource) {
	src.OnIdentityChanged(func(ident *Identity) {
		go s.HandleIdentityChange(ctx, ident)
	})
}

// HandleIdentityChange reacts to a sign-in, sign-out, or account switch. A nil
// identity clears all session state. A non-nil identity enters the loading
// state and fetches the profile, retrying with exponential backoff; the call
// returns once the fetch succeeds, exhausts its attempts, or ctx is canceled.
//
// The profile is only ever cleared on sign-out or when the UID changes. A
// re-delivery of the same identity (token refresh, listener re-fire) whose
// fetch then fails keeps the previously loaded profile, so entitlement does
// not silently drop to free tier while the user stays signed in.
//
// Each call supersedes any in-flight fetch: results from an earlier call are
// discarded, so a slow response can never overwrite a newer session.
func (s *Store) HandleIdentityChange(ctx context.Context, ident *Identity) {
	s.mu.Lock()
	s.gen++
	myGen := s.gen

	if ident == nil {
		s.identity = nil
		s.profile = nil
		s.loading = false
		s.err = nil
		s.state = StateUnauthenticated
		s.mu.Unlock()
		s.notify()
		return
	}

	if s.identity == nil || s.identity.UID != ident.UID {
		// Account switch: the old account's profile must not leak into
		// the new session.
		s.profile = nil
	}
	s.identity = ident
	s.loading = true
	s.err = nil
	s.state = StateLoading
	s.mu.Unlock()
	s.notify()

	profile, err := s.fetchWithRetry(ctx, myGen)

	s.mu.Lock()
	if s.gen != myGen {
		// A newer identity change owns the store now.
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err != nil {
		// s.profile is left as-is: stale-or-null, never cleared here.
		s.err = fmt.Errorf("%w: %v", ErrProfileFetch, err)
		s.state = StateDegraded
		s.mu.Unlock()
		s.logger.Warn("Profile load failed; session degraded",
			zap.String("uid", ident.UID), zap.Error(err))
		s.notify()
		return
	}
	s.profile = profile
	s.err = nil
	s.state = StateReady
	s.mu.Unlock()
	s.notify()
}

// fetchWithRetry attempts the profile fetch up to maxAttempts times, waiting
// retryBase, 2*retryBase, 4*retryBase... between attempts. It bails out early
// when ctx is canceled or the generation has moved on.
func (s *Store) fetchWithRetry(ctx context.Context, myGen uint64) (*apiclient.Profile, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			wait := s.retryBase << (attempt - 2)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			if s.currentGen() != myGen {
				return nil, context.Canceled
			}
		}

		profile, err := s.fetcher.GetProfile(ctx, false)
		if err == nil {
			return profile, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Debug("Profile fetch attempt failed",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, lastErr
}

// RefreshProfile re-fetches the profile once, bypassing the server-side
// cache. On failure the current profile and state are left untouched, so a
// refresh can only improve the session, never tear it down. No-op when
// signed out.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return nil
	}
	myGen := s.gen
	s.mu.Unlock()

	profile, err := s.fetcher.GetProfile(ctx, true)
	if err != nil {
		s.logger.Warn("Profile refresh failed; keeping current session state", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	s.mu.Lock()
	if s.gen != myGen {
		s.mu.Unlock()
		return nil
	}
	s.profile = profile
	s.err = nil
	s.state = StateReady
	s.mu.Unlock()
	s.notify()
	return nil
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Identity: s.identity,
		Profile:  s.profile,
		State:    s.state,
		Loading:  s.loading,
		IsPro:    ComputeIsPro(s.profile),
		Err:      s.err,
	}
}

func (s *Store) notify() {
	if s.onChange == nil {
		return
	}
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.onChange(snap)
}

func (s *Store) currentGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
