package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"store-directory/internal/logger"
	"store-directory/internal/mailer"
	"store-directory/internal/user/model"
	"store-directory/internal/user/repository"
	appErrors "store-directory/pkg/errors"
	"store-directory/pkg/utils"
)

const resetTokenTTL = time.Hour

type UserService struct {
	repo   repository.Repository
	mailer mailer.Mailer
}

func NewService(repo repository.Repository, mailer mailer.Mailer) *UserService {
	return &UserService{
		repo:   repo,
		mailer: mailer,
	}
}

func (s *UserService) Register(ctx context.Context, request *model.RegisterRequest) (*model.User, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:           request.Name,
		Email:          request.Email,
		PasswordHashed: hashedPassword,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the submitted credentials and returns the user
// on success. Unknown email and wrong password are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, request *model.LoginRequest) (*model.User, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHashed, request.Password) {
		return nil, appErrors.ErrInvalidCredentials
	}
	return user, nil
}

// ForgotPassword starts the reset flow: generate a token, persist it
// with a one hour expiry and email a reset link. An unknown email is
// reported back to the caller as ErrUserNotFound; the resulting flash
// message reveals whether an account exists.
func (s *UserService) ForgotPassword(ctx context.Context, request *model.ForgotPasswordRequest, baseURL string) error {
	if err := utils.ValidateStruct(request); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.repo.GetByEmail(ctx, request.Email)
	if err != nil {
		return err
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)

	if err := s.repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/account/reset/%s", baseURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		return err
	}

	logger.Info("Password reset link sent",
		zap.String("user_id", user.ID.String()),
	)
	return nil
}

// ValidateResetToken checks a token before the reset form is shown.
func (s *UserService) ValidateResetToken(ctx context.Context, token string) (*model.User, error) {
	return s.repo.GetByValidResetToken(ctx, token, time.Now())
}

// ResetPassword finishes the flow. The token is looked up again rather
// than trusting an earlier validation; a token consumed or expired in
// the meantime must fail here too.
func (s *UserService) ResetPassword(ctx context.Context, token string, request *model.ResetPasswordRequest) (*model.User, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if request.Password != request.ConfirmPassword {
		return nil, appErrors.ErrPasswordsDiffer
	}

	user, err := s.repo.GetByValidResetToken(ctx, token, time.Now())
	if err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID resolves a session user id to a full user record.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, appErrors.ErrUserNotFound
	}
	return s.repo.GetByID(ctx, uid)
}
