package service

import (
	"context"

	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) (int64, error)
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	SetUserActive(ctx context.Context, userID string, active bool) (*dto.UserResponse, error)
	ValidateAccessToken(ctx context.Context, token string) (*domain.TokenClaims, error)
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// OrderService defines order lifecycle and tracking operations
type OrderService interface {
	Create(ctx context.Context, actor *domain.TokenClaims, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	List(ctx context.Context, actor *domain.TokenClaims, query dto.ListOrdersQuery) (*dto.OrderList, error)
	Get(ctx context.Context, actor *domain.TokenClaims, orderID string) (*dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, actor *domain.TokenClaims, orderID string, req *dto.UpdateStatusRequest) (*dto.OrderResponse, error)
	Track(ctx context.Context, code string) (*dto.TrackingResponse, error)
}

// Cache is a best-effort key/value store. Implementations never fail
// callers; errors degrade to misses.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
	Delete(ctx context.Context, key string)
}

// EventPublisher emits order lifecycle events
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event StatusChangedEvent) error
}
