package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/factory"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AccountService struct {
	userRepo userRepository
	logger   logrus.FieldLogger
}

func NewAccountService(userRepo userRepository) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		logger:   factory.NewModuleLogger("account-service"),
	}
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.findActiveUser(ctx, userID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID, name string, phone *string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	if _, err := s.findActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, name, phone); err != nil {
		return nil, err
	}
	return s.findActiveUser(ctx, userID)
}

func (s *AccountService) UpdatePrivacySettings(ctx context.Context, userID string, settings entity.PrivacySettings) (*entity.User, error) {
	if !entity.IsVisibilityAllowed(settings.ProfileVisibility) || !entity.IsVisibilityAllowed(settings.ContactVisibility) {
		return nil, fmt.Errorf("%w: visibility must be public, subscribers, or private", ErrInvalidRequest)
	}

	if _, err := s.findActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePrivacySettings(ctx, userID, settings); err != nil {
		return nil, err
	}
	return s.findActiveUser(ctx, userID)
}

func (s *AccountService) UpdateNotificationSettings(ctx context.Context, userID string, settings entity.NotificationSettings) (*entity.User, error) {
	if _, err := s.findActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateNotificationSettings(ctx, userID, settings); err != nil {
		return nil, err
	}
	return s.findActiveUser(ctx, userID)
}

// ChangePassword verifies the current password before accepting the new one.
// The confirmation check is repeated here even though clients validate it
// inline, so the endpoint cannot be driven past it directly.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, minPasswordLength)
	}

	user, err := s.findActiveUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePasswordHash(ctx, userID, string(hash))
}

func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.findActiveUser(ctx, userID); err != nil {
		return err
	}

	if err := s.userRepo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	s.logger.WithField("user_id", userID).Info("Account deleted")
	return nil
}

func (s *AccountService) findActiveUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != entity.UserStatusActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}
