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

const (
	createOrderAttempts = 3
	initialOrderNote    = "Order created"
	trackingKeyPrefix   = "tracking:"
)

// orderService implements OrderService interface
type orderService struct {
	orderRepo     repository.OrderRepository
	userRepo      repository.UserRepository
	cache         Cache
	events        EventPublisher
	metrics       *observability.Metrics
	logger        *zap.Logger
	allowBackward bool
	now           func() time.Time
}

// NewOrderService creates a new order service. When allowBackward is false,
// status changes to a lower stage are rejected.
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	cache Cache,
	events EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
	allowBackward bool,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		userRepo:      userRepo,
		cache:         cache,
		events:        events,
		metrics:       metrics,
		logger:        logger,
		allowBackward: allowBackward,
		now:           time.Now,
	}
}

// Create registers a won auction lot as a new order
func (s *orderService) Create(ctx context.Context, actor *domain.TokenClaims, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewValidationError("Customer does not exist", map[string]string{"userId": "unknown user"})
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	total := req.AuctionPrice + req.ShippingCost
	if req.TotalPrice != nil {
		total = *req.TotalPrice
	}

	now := s.now().UTC()
	order := &domain.Order{
		UserID:           req.UserID,
		Status:           domain.OrderStatusWon,
		CurrentStage:     domain.OrderStatusWon.Stage(),
		CarMake:          req.CarMake,
		CarModel:         req.CarModel,
		CarYear:          req.CarYear,
		CarVIN:           req.CarVIN,
		CarColor:         req.CarColor,
		CarImageURL:      req.CarImageURL,
		AuctionPrice:     req.AuctionPrice,
		ShippingCost:     req.ShippingCost,
		TotalPrice:       total,
		CustomerName:     req.CustomerName,
		CustomerEmail:    utils.SanitizeEmail(req.CustomerEmail),
		CustomerPhone:    req.CustomerPhone,
		AuctionSource:    req.AuctionSource,
		LotNumber:        req.LotNumber,
		OriginPort:       req.OriginPort,
		DestinationPort:  req.DestinationPort,
		VesselName:       req.VesselName,
		EstimatedArrival: req.EstimatedArrival,
		CreatedAt:        now,
	}

	note := initialOrderNote
	changedBy := actor.UserID

	var err error
	for attempt := 0; attempt < createOrderAttempts; attempt++ {
		if order.OrderNumber, err = utils.GenerateOrderNumber(now); err != nil {
			return nil, err
		}
		if order.TrackingCode, err = utils.GenerateTrackingCode(); err != nil {
			return nil, err
		}

		initial := &domain.OrderStatusHistory{
			Status:    order.Status,
			Stage:     order.CurrentStage,
			Note:      &note,
			ChangedBy: &changedBy,
			CreatedAt: now,
		}

		order.ID = ""
		err = s.orderRepo.Create(ctx, order, initial)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateOrder) {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		s.logger.Warn("order number collision, retrying", zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("created_by", actor.UserID),
	)

	return toOrderResponse(order), nil
}

// List returns the caller's orders, or every order for staff passing all=true
func (s *orderService) List(ctx context.Context, actor *domain.TokenClaims, query dto.ListOrdersQuery) (*dto.OrderList, error) {
	query.Normalize()

	filter := repository.OrderListFilter{
		UserID: actor.UserID,
		Limit:  query.Limit,
		Offset: (query.Page - 1) * query.Limit,
	}

	if query.All {
		if !actor.Role.AtLeast(domain.RoleCompany) {
			return nil, domain.NewForbiddenError(domain.CodeForbidden, "Listing all orders requires COMPANY or ADMIN role")
		}
		filter.UserID = ""
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	items := make([]*dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}

	return &dto.OrderList{
		Orders:     items,
		Pagination: dto.NewPagination(query.Page, query.Limit, total),
	}, nil
}

// Get returns a single order with history. Orders of other customers look
// missing to non-staff callers.
func (s *orderService) Get(ctx context.Context, actor *domain.TokenClaims, orderID string) (*dto.OrderResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != actor.UserID && !actor.Role.AtLeast(domain.RoleCompany) {
		return nil, domain.ErrOrderNotFound
	}

	return toOrderResponse(order), nil
}

// UpdateStatus moves an order to a new status and appends a history row
func (s *orderService) UpdateStatus(ctx context.Context, actor *domain.TokenClaims, orderID string, req *dto.UpdateStatusRequest) (*dto.OrderResponse, error) {
	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		return nil, domain.NewValidationError("Unknown order status", map[string]string{"status": req.Status})
	}

	changedBy := actor.UserID
	entry := &domain.OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Stage:     status.Stage(),
		Note:      req.Note,
		Location:  req.Location,
		ChangedBy: &changedBy,
	}

	err := s.orderRepo.UpdateStatus(ctx, entry, s.transitionGuard(status))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		if _, ok := domain.AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.metrics.RecordStatusChange(ctx, string(status))

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, trackingKeyPrefix+order.TrackingCode)

	event := StatusChangedEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		TrackingCode: order.TrackingCode,
		Status:       string(entry.Status),
		Stage:        entry.Stage,
		Note:         entry.Note,
		Location:     entry.Location,
		ChangedBy:    entry.ChangedBy,
		ChangedAt:    entry.CreatedAt,
	}
	if err := s.events.PublishStatusChanged(ctx, event); err != nil {
		s.logger.Warn("failed to publish status change", zap.String("order_id", order.ID), zap.Error(err))
	}

	// a Track that read the old row may have cached it after the first delete
	s.cache.Delete(ctx, trackingKeyPrefix+order.TrackingCode)

	s.logger.Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("status", string(status)),
		zap.String("changed_by", changedBy),
	)

	return toOrderResponse(order), nil
}

// Track returns the public view of an order by tracking code
func (s *orderService) Track(ctx context.Context, code string) (*dto.TrackingResponse, error) {
	code = utils.NormalizeTrackingCode(code)
	if code == "" {
		return nil, domain.ErrOrderNotFound
	}

	key := trackingKeyPrefix + code

	var cached dto.TrackingResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	order, err := s.orderRepo.GetByTrackingCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by tracking code: %w", err)
	}

	order.History, err = s.orderRepo.GetHistory(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}

	resp := toTrackingResponse(order)
	s.cache.Set(ctx, key, resp)

	return resp, nil
}

func (s *orderService) transitionGuard(next domain.OrderStatus) repository.StatusGuard {
	return func(current domain.OrderStatus) error {
		if s.allowBackward || next.Stage() >= current.Stage() {
			return nil
		}
		return domain.ErrInvalidStatusTransition.WithDetails(map[string]string{
			"from": string(current),
			"to":   string(next),
		})
	}
}

func (s *orderService) loadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order.History, err = s.orderRepo.GetHistory(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}

	return order, nil
}
