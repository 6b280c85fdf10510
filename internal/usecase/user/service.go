package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/reimx/reimx-backend/internal/auth"
	"github.com/reimx/reimx-backend/internal/domain"
)

// RegisterInput represents the input for creating an account
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// UpdateProfileInput represents the editable profile fields.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	DisplayName   *string
	WalletAddress *string
}

// Service handles registration, login, and profile management.
type Service struct {
	Repo   domain.UserRepository
	Tokens *auth.TokenManager
}

// NewService creates a new user Service instance
func NewService(repo domain.UserRepository, tokens *auth.TokenManager) *Service {
	return &Service{
		Repo:   repo,
		Tokens: tokens,
	}
}

// Register creates a new account with a bcrypt-hashed password. The first
// account keeps the default USER role; admins are promoted out of band.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, domain.WrapValidation("email is required")
	}
	if len(input.Password) < 8 {
		return nil, domain.WrapValidation("password must be at least 8 characters")
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.WrapValidation("email is already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  input.DisplayName,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns the user with a signed session
// token. Wrong email and wrong password produce the same error, so the login
// form cannot be used to probe for accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.WrapValidation("invalid email or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.WrapValidation("invalid email or password")
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetProfile retrieves the calling user's account.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile edits the calling user's display name and payout wallet.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.WalletAddress != nil {
		user.WalletAddress = *input.WalletAddress
	}
	user.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, callerID uuid.UUID) ([]*domain.User, error) {
	caller, err := s.Repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.Repo.List(ctx)
}
