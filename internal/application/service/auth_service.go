package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/sangkips/receipts-api/pkg/oauth"
	"github.com/sangkips/receipts-api/pkg/utils"
)

const minPasswordLength = 6

// AuthService handles registration, login and the current user
type AuthService struct {
	userRepo      repository.UserRepository
	jwtManager    *utils.JWTManager
	notifications *NotificationService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	notifications *NotificationService,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtManager:    jwtManager,
		notifications: notifications,
	}
}

// LoginInput represents the login input. Username may also be an email.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User        *entity.User
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.ErrInactiveUser
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{
		User:        user,
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

// RegisterInput represents the registration input
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// Register creates a new local account and notifies the administrator
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	var errs []apperror.FieldError
	if n := len([]rune(username)); n < 3 || n > 100 {
		errs = append(errs, apperror.FieldError{Field: "username", Message: "username must be between 3 and 100 characters"})
	}
	if len(input.Password) < minPasswordLength {
		errs = append(errs, apperror.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewBadRequestError("email already registered")
	}
	existing, err = s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewBadRequestError("username already in use")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		Username:     username,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hashedPassword,
		IsActive:     true,
		Provider:     enum.AuthProviderLocal,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewBadRequestError("email or username already registered")
		}
		return nil, err
	}

	s.notifications.NotifyUserRegistered(user)
	return user, nil
}

// GetCurrentUser returns the user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ResolveUser validates a bearer token and loads its active user
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewUnauthorizedError("User not found")
	}
	if !user.IsActive {
		return nil, apperror.ErrInactiveUser
	}
	return user, nil
}

// UpdateMeInput represents a profile update of the current user
type UpdateMeInput struct {
	UserID   uuid.UUID
	Email    *string
	FullName *string
	Password *string
}

// UpdateMe updates email, full name and password of the current user
func (s *AuthService) UpdateMe(ctx context.Context, input *UpdateMeInput) (*entity.User, error) {
	user, err := s.GetCurrentUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Password != nil && len(*input.Password) < minPasswordLength {
		return nil, apperror.NewFieldError("password", "password must be at least 6 characters")
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, apperror.NewBadRequestError("email already registered")
			}
			user.Email = email
		}
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Password != nil {
		hashedPassword, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewBadRequestError("email already registered")
		}
		return nil, err
	}
	return user, nil
}

// GoogleSignIn finds or creates the account for a verified Google profile
// and issues a token for it.
func (s *AuthService) GoogleSignIn(ctx context.Context, info *oauth.GoogleUserInfo) (*LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		return nil, apperror.NewBadRequestError("Google account has no email")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.createGoogleUser(ctx, email, info.Name)
		if err != nil {
			return nil, err
		}
	}
	if !user.IsActive {
		return nil, apperror.ErrInactiveUser
	}
	return s.issueToken(user)
}

func (s *AuthService) createGoogleUser(ctx context.Context, email, name string) (*entity.User, error) {
	username, err := s.availableUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	// Google accounts never log in with a password, so store an unguessable one.
	random, err := utils.RandomToken(32)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(random)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		Username:     username,
		FullName:     strings.TrimSpace(name),
		PasswordHash: hash,
		IsActive:     true,
		Provider:     enum.AuthProviderGoogle,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.notifications.NotifyUserRegistered(user)
	return user, nil
}

// availableUsername derives a username from the email local part, adding a
// numeric suffix until it is free.
func (s *AuthService) availableUsername(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		base = email[:at]
	}
	for len(base) < 3 {
		base += "_"
	}
	if len(base) > 90 {
		base = base[:90]
	}

	candidate := base
	for i := 1; i < 100; i++ {
		existing, err := s.userRepo.GetByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", apperror.NewBadRequestError("could not derive a free username")
}
