package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/db"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
	"github.com/Ih205R/creator-project-tracker-sub001/pkg/cache"
	"github.com/Ih205R/creator-project-tracker-sub001/pkg/mailer"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

const profileCacheTTL = 5 * time.Minute

func profileCacheKey(userID string) string { return "profile:" + userID }

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	cache    cache.Cache
	mail     *mailer.Mailer
	appName  string
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, profileCache cache.Cache, mail *mailer.Mailer, appName string, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		cache:    profileCache,
		mail:     mail,
		appName:  appName,
		logger:   logger,
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a
// new free-tier profile and sends the welcome email in the background.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			newUser := &models.User{
				ID:                 userID, // Firebase Auth UID is the document ID
				Email:              email,
				DisplayName:        displayName,
				PhotoURL:           photoURL,
				Role:               models.RoleFreeUser,
				SubscriptionStatus: models.SubscriptionInactive,
				CreatedAt:          time.Now().UTC(),
				UpdatedAt:          time.Now().UTC(),
			}
			if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
				return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, createErr)
			}
			s.sendWelcomeAsync(newUser)
			return newUser, true, nil
		}
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	if user == nil {
		return nil, false, fmt.Errorf("repository returned (nil, nil) for user ID '%s'", userID)
	}
	return user, false, nil
}

// GetByID retrieves a user, consulting the profile cache first unless the
// caller asks for a fresh read (the post-purchase "subscriptionUpdated" path).
func (s *userService) GetByID(ctx context.Context, userID string, bypassCache bool) (*models.User, error) {
	if !bypassCache {
		if cached, err := s.cache.Get(ctx, profileCacheKey(userID)); err == nil && cached != "" {
			var user models.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
			// A corrupt cache entry is dropped and re-read from Firestore.
			_ = s.cache.Delete(ctx, profileCacheKey(userID))
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	s.cacheProfile(ctx, user)
	return user, nil
}

// UpdateProfile folds the request into the current profile and writes the
// document back wholesale. Billing fields are never touched here.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	updated := *user
	if req.DisplayName != nil {
		updated.DisplayName = *req.DisplayName
	}
	if req.PhotoURL != nil {
		updated.PhotoURL = *req.PhotoURL
	}
	if req.Integrations != nil {
		updated.Integrations = *req.Integrations
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update profile for user '%s': %w", userID, err)
	}

	s.invalidate(ctx, userID)
	return &updated, nil
}

// ApplySubscription replaces the billing fields of the profile in one
// document write and drops the cache entry so the next read sees the new
// state immediately.
func (s *userService) ApplySubscription(ctx context.Context, userID string, state models.SubscriptionState) (*models.User, error) {
	user, err := s.GetByID(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	updated := *user
	updated.Role = state.Role
	updated.SubscriptionStatus = state.Status
	updated.SubscriptionPlan = state.Plan
	updated.SubscriptionPeriodEnd = state.PeriodEnd
	if state.StripeCustomerID != "" {
		updated.StripeCustomerID = state.StripeCustomerID
	}
	if state.StripeSubscriptionID != "" {
		updated.StripeSubscriptionID = state.StripeSubscriptionID
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to apply subscription state for user '%s': %w", userID, err)
	}

	s.invalidate(ctx, userID)
	s.logger.Info("Applied subscription state",
		zap.String("userID", userID),
		zap.String("role", string(state.Role)),
		zap.String("status", state.Status),
		zap.String("plan", state.Plan))
	return &updated, nil
}

// GetByStripeCustomerID resolves the user owning a Stripe customer ID.
func (s *userService) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	user, err := s.userRepo.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: stripe customer '%s'", ErrUserNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to get user by Stripe customer '%s': %w", customerID, err)
	}
	return user, nil
}

func (s *userService) cacheProfile(ctx context.Context, user *models.User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, profileCacheKey(user.ID), string(data), profileCacheTTL); err != nil {
		s.logger.Warn("Failed to cache profile", zap.String("userID", user.ID), zap.Error(err))
	}
}

func (s *userService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, profileCacheKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate profile cache", zap.String("userID", userID), zap.Error(err))
	}
}

func (s *userService) sendWelcomeAsync(user *models.User) {
	if user.Email == "" {
		return
	}
	go func() {
		if err := s.mail.SendWelcome(user.Email, user.DisplayName, s.appName); err != nil {
			s.logger.Warn("Failed to send welcome email", zap.String("userID", user.ID), zap.Error(err))
		}
	}()
}
