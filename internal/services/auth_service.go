package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/validator"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenClaims are the JWT claims carried by access and refresh tokens.
type TokenClaims struct {
	UserID    uint     `json:"uid"`
	Roles     []string `json:"roles"`
	TokenType string   `json:"typ"`
	jwt.RegisteredClaims
}

// AuthConfig carries token signing material and lifetimes.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
}

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	notifier  *NotificationEventService
	config    AuthConfig
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, notifier *NotificationEventService, config AuthConfig) AuthService {
	return &authService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		notifier:  notifier,
		config:    config,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByUsernameOrEmail(ctx, nil, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.CheckPassword(req.Password) {
		s.logger.Warn("Login failed: wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)

	return &LoginResponse{
		Tokens:             *tokens,
		User:               user,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.User().GetByID(ctx, nil, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(user)
}

// Register creates an account against a pending invitation. The invitation is
// consumed with a conditional update inside the transaction, so two concurrent
// registrations on the same token cannot both succeed.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var user *models.User
	var verificationToken string

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		invitation, err := txRepo.Invitation().GetByToken(ctx, nil, req.Token)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrInvitationNotValid
			}
			return fmt.Errorf("failed to look up invitation: %w", err)
		}
		if !invitation.IsValid() {
			return ErrInvitationNotValid
		}

		taken, err := txRepo.User().ExistsByUsername(ctx, nil, req.Username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
		taken, err = txRepo.User().ExistsByEmail(ctx, nil, invitation.Email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}

		// First registration wins; a stale read above does not matter because
		// this update only succeeds while used_at is still NULL.
		consumed, err := txRepo.Invitation().ConsumeByToken(ctx, nil, req.Token, time.Now())
		if err != nil {
			return fmt.Errorf("failed to consume invitation: %w", err)
		}
		if !consumed {
			return ErrInvitationNotValid
		}

		user = &models.User{
			Username: req.Username,
			Email:    invitation.Email,
			Active:   true,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		verificationToken = user.GenerateVerificationToken()

		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		editorRole, err := txRepo.Role().GetByName(ctx, nil, models.RoleEditor)
		if err != nil {
			return fmt.Errorf("failed to load default role: %w", err)
		}
		if err := txRepo.User().AssignRole(ctx, nil, user, editorRole); err != nil {
			return fmt.Errorf("failed to assign default role: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	s.notifier.NotifyUserRegistered(ctx, user, verificationToken)

	return user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.User().GetByVerificationToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	user.VerifyEmail()
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("Email verified", "user_id", user.ID)
	return nil
}

// ForgotPassword never reveals whether the email exists: unknown and disabled
// accounts return success without issuing a token.
func (s *authService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.Active {
		return nil
	}

	resetToken := user.GenerateResetToken(s.config.ResetTokenTTL)
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.logger.Info("Password reset requested", "user_id", user.ID)
	s.notifier.NotifyPasswordResetRequested(ctx, user, resetToken)

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByResetToken(ctx, nil, req.Token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}
	if !user.VerifyResetToken(req.Token) {
		return ErrInvalidToken
	}

	if err := user.SetPassword(req.Password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.ClearResetToken()
	user.MustChangePassword = false

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset completed", "user_id", user.ID)
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return ErrInvalidCredentials
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.MustChangePassword = false

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", "user_id", user.ID)
	return nil
}

func (s *authService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (s *authService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil || claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ===== TOKEN HELPERS =====

func (s *authService) issueTokens(user *models.User) (*AuthTokens, error) {
	access, err := s.signToken(user, tokenTypeAccess, s.config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.signToken(user, tokenTypeRefresh, s.config.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) signToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.Name)
	}

	now := time.Now()
	claims := TokenClaims{
		UserID:    user.ID,
		Roles:     roles,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *authService) parseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
