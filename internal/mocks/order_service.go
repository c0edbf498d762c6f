package mocks

import (
	"context"

	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
	"github.com/prperemyshlev/autoimport/internal/service"
)

// OrderService is a hand-written mock. Unset funcs panic when called.
type OrderService struct {
	CreateFunc       func(ctx context.Context, actor *domain.TokenClaims, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	ListFunc         func(ctx context.Context, actor *domain.TokenClaims, query dto.ListOrdersQuery) (*dto.OrderList, error)
	GetFunc          func(ctx context.Context, actor *domain.TokenClaims, orderID string) (*dto.OrderResponse, error)
	UpdateStatusFunc func(ctx context.Context, actor *domain.TokenClaims, orderID string, req *dto.UpdateStatusRequest) (*dto.OrderResponse, error)
	TrackFunc        func(ctx context.Context, code string) (*dto.TrackingResponse, error)
}

var _ service.OrderService = (*OrderService)(nil)

func (m *OrderService) Create(ctx context.Context, actor *domain.TokenClaims, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	return m.CreateFunc(ctx, actor, req)
}

func (m *OrderService) List(ctx context.Context, actor *domain.TokenClaims, query dto.ListOrdersQuery) (*dto.OrderList, error) {
	return m.ListFunc(ctx, actor, query)
}

func (m *OrderService) Get(ctx context.Context, actor *domain.TokenClaims, orderID string) (*dto.OrderResponse, error) {
	return m.GetFunc(ctx, actor, orderID)
}

func (m *OrderService) UpdateStatus(ctx context.Context, actor *domain.TokenClaims, orderID string, req *dto.UpdateStatusRequest) (*dto.OrderResponse, error) {
	return m.UpdateStatusFunc(ctx, actor, orderID, req)
}

func (m *OrderService) Track(ctx context.Context, code string) (*dto.TrackingResponse, error) {
	return m.TrackFunc(ctx, code)
}
