package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
	"github.com/prperemyshlev/autoimport/internal/repository"
	"github.com/prperemyshlev/autoimport/internal/utils"
	"github.com/prperemyshlev/autoimport/pkg/observability"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *utils.JWTManager
	hasher     *utils.PasswordHasher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *utils.JWTManager,
	hasher *utils.PasswordHasher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		hasher:     hasher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Register registers a new user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error) {
	email := utils.SanitizeEmail(req.Email)

	if !utils.ValidateEmail(email) {
		return nil, domain.NewValidationError("Invalid email format", map[string]string{"email": "must be a valid email"})
	}

	if !utils.ValidatePassword(req.Password) {
		return nil, domain.NewValidationError(
			"Password must be at least 8 characters long and contain uppercase, lowercase, and number",
			map[string]string{"password": "too weak"},
		)
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrEmailExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := s.hasher.HashPassword(ctx, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration won the unique index
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return s.generateTokens(ctx, user)
}

// Login authenticates a user. Unknown email and wrong password produce the
// same error.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordLogin(ctx, "invalid_credentials")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.hasher.CheckPasswordHash(ctx, req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.RecordLogin(ctx, "invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.metrics.RecordLogin(ctx, "deactivated")
		return nil, domain.ErrAccountDeactivated
	}

	lastLogin, err := s.userRepo.UpdateLastLogin(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &lastLogin
	}

	result, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(ctx, "success")
	return result, nil
}

// RefreshToken rotates a refresh token. The old row is deleted before the new
// pair is issued, so each token succeeds at most once.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	result, err := s.rotate(ctx, refreshToken)
	if err != nil {
		if appErr, ok := domain.AsAppError(err); ok {
			s.metrics.RecordRefresh(ctx, appErr.Code)
		}
		return nil, err
	}

	s.metrics.RecordRefresh(ctx, "success")
	return result, nil
}

func (s *authService) rotate(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.NewValidationError("Refresh token is required", map[string]string{"refreshToken": "required"})
	}

	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, domain.ErrRefreshTokenExpired
		}
		return nil, domain.ErrInvalidRefreshToken
	}

	tokenHash := hashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if dbToken.UserID != userID {
		return nil, domain.ErrInvalidRefreshToken
	}

	if dbToken.IsExpired(s.now()) {
		if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to delete expired refresh token", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, domain.ErrRefreshTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	// Only one concurrent caller can delete the row.
	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return s.generateTokens(ctx, user)
}

// Logout revokes a single refresh token. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return domain.NewValidationError("Refresh token is required", map[string]string{"refreshToken": "required"})
	}

	err := s.tokenRepo.DeleteByTokenHash(ctx, hashToken(refreshToken))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

// LogoutAll revokes every refresh token of a user
func (s *authService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.tokenRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user tokens: %w", err)
	}

	s.logger.Info("user sessions revoked", zap.String("user_id", userID), zap.Int64("count", n))
	return n, nil
}

// GetUser gets user information
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return dto.NewUserResponse(user), nil
}

// SetUserActive toggles an account. Deactivation also revokes all sessions.
func (s *authService) SetUserActive(ctx context.Context, userID string, active bool) (*dto.UserResponse, error) {
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if !active {
		if _, err := s.LogoutAll(ctx, userID); err != nil {
			return nil, err
		}
	}

	return s.GetUser(ctx, userID)
}

// ValidateAccessToken verifies an access token without touching storage
func (s *authService) ValidateAccessToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, utils.ErrTokenInvalid):
			return nil, domain.ErrInvalidToken
		default:
			return nil, domain.ErrAuthFailed
		}
	}

	return claims, nil
}

// CleanupExpiredTokens removes refresh tokens past their expiry
func (s *authService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	s.metrics.RecordTokensCleaned(ctx, n)
	return n, nil
}
