package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/db"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// fakeUserRepo is an in-memory db.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	gets  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	user, ok := r.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) Replace(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.StripeCustomerID == customerID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

// memCache is an in-memory cache.Cache without expiry.
type memCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]string{}}
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = fmt.Sprint(value)
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// fakeUserService implements UserService for billing tests, recording the
// subscription states applied to it.
type fakeUserService struct {
	mu      sync.Mutex
	users   map[string]*models.User // keyed by user ID
	applied []appliedState
}

type appliedState struct {
	userID string
	state  models.SubscriptionState
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{users: map[string]*models.User{}}
}

func (s *fakeUserService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		return user, false, nil
	}
	user := &models.User{ID: userID, Email: email, Role: models.RoleFreeUser}
	s.users[userID] = user
	return user, true, nil
}

func (s *fakeUserService) GetByID(ctx context.Context, userID string, bypassCache bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return user, nil
}

func (s *fakeUserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	return s.GetByID(ctx, userID, true)
}

func (s *fakeUserService) ApplySubscription(ctx context.Context, userID string, state models.SubscriptionState) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	s.applied = append(s.applied, appliedState{userID: userID, state: state})
	user.Role = state.Role
	user.SubscriptionStatus = state.Status
	user.SubscriptionPlan = state.Plan
	user.SubscriptionPeriodEnd = state.PeriodEnd
	if state.StripeCustomerID != "" {
		user.StripeCustomerID = state.StripeCustomerID
	}
	if state.StripeSubscriptionID != "" {
		user.StripeSubscriptionID = state.StripeSubscriptionID
	}
	return user, nil
}

func (s *fakeUserService) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.StripeCustomerID == customerID {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: customer %s", ErrUserNotFound, customerID)
}

func (s *fakeUserService) appliedStates() []appliedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appliedState(nil), s.applied...)
}

// fakeNotifier implements NotificationService, recording Notify calls.
type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *fakeNotifier) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	return nil, nil
}

func (n *fakeNotifier) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}

func (n *fakeNotifier) Delete(ctx context.Context, userID, notificationID string) error {
	return nil
}

func (n *fakeNotifier) Notify(ctx context.Context, userID, kind, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	return nil
}

func (n *fakeNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.titles...)
}
