package mocks

import (
	"context"

	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
	"github.com/prperemyshlev/autoimport/internal/service"
)

// AuthService is a hand-written mock. Unset funcs panic when called.
type AuthService struct {
	RegisterFunc             func(ctx context.Context, req *dto.RegisterRequest) (*service.AuthResult, error)
	LoginFunc                func(ctx context.Context, req *dto.LoginRequest) (*service.AuthResult, error)
	RefreshTokenFunc         func(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	LogoutFunc               func(ctx context.Context, refreshToken string) error
	LogoutAllFunc            func(ctx context.Context, userID string) (int64, error)
	GetUserFunc              func(ctx context.Context, userID string) (*dto.UserResponse, error)
	SetUserActiveFunc        func(ctx context.Context, userID string, active bool) (*dto.UserResponse, error)
	ValidateAccessTokenFunc  func(ctx context.Context, token string) (*domain.TokenClaims, error)
	CleanupExpiredTokensFunc func(ctx context.Context) (int64, error)
}

var _ service.AuthService = (*AuthService)(nil)

func (m *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*service.AuthResult, error) {
	return m.RegisterFunc(ctx, req)
}

func (m *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*service.AuthResult, error) {
	return m.LoginFunc(ctx, req)
}

func (m *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.AuthResult, error) {
	return m.RefreshTokenFunc(ctx, refreshToken)
}

func (m *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.LogoutFunc(ctx, refreshToken)
}

func (m *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	return m.LogoutAllFunc(ctx, userID)
}

func (m *AuthService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	return m.GetUserFunc(ctx, userID)
}

func (m *AuthService) SetUserActive(ctx context.Context, userID string, active bool) (*dto.UserResponse, error) {
	return m.SetUserActiveFunc(ctx, userID, active)
}

func (m *AuthService) ValidateAccessToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	return m.ValidateAccessTokenFunc(ctx, token)
}

func (m *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return m.CleanupExpiredTokensFunc(ctx)
}
