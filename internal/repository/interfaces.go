package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/autoimport/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, userID string) (time.Time, error)
	SetActive(ctx context.Context, userID string, active bool) error
}

// TokenRepository persists issued refresh tokens
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// DeleteByTokenHash returns ErrNotFound when no row was deleted.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// StatusGuard inspects the locked current status before a change is applied.
type StatusGuard func(current domain.OrderStatus) error

// OrderListFilter narrows ListOrders. An empty UserID lists every order.
type OrderListFilter struct {
	UserID string
	Limit  int
	Offset int
}

// OrderRepository persists orders and their status history
type OrderRepository interface {
	// Create inserts the order together with its first history row.
	Create(ctx context.Context, order *domain.Order, initial *domain.OrderStatusHistory) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]*domain.Order, int, error)
	// UpdateStatus locks the order, runs guard, updates status and stage and
	// appends entry, all in one transaction. entry.CreatedAt is set from the
	// database clock while the lock is held.
	UpdateStatus(ctx context.Context, entry *domain.OrderStatusHistory, guard StatusGuard) error
	// GetHistory returns rows in insertion order.
	GetHistory(ctx context.Context, orderID string) ([]*domain.OrderStatusHistory, error)
}
