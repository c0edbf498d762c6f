package acceptance

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
)

func strPtr(s string) *string {
	return &s
}

func (s *Suite) createOrder(token, customerID string) *dto.OrderResponse {
	req := dto.CreateOrderRequest{
		UserID:          customerID,
		CarMake:         "Toyota",
		CarModel:        "Camry",
		CarYear:         2021,
		CarVIN:          strPtr("4T1B11HK5MU000001"),
		AuctionPrice:    12000,
		ShippingCost:    1500,
		CustomerName:    "Jane Buyer",
		CustomerEmail:   "jane@example.com",
		OriginPort:      strPtr("Newark"),
		DestinationPort: strPtr("Poti"),
	}

	var data dto.OrderData
	status, errResp := s.do(http.MethodPost, "/api/v1/orders", token, req, &data)
	s.Require().Equal(http.StatusCreated, status, errResp.Error.Message)
	return data.Order
}

func (s *Suite) TestOrderLifecycle() {
	admin := s.registerWithRole("admin@example.com", string(domain.RoleAdmin))
	customer := s.register("customer@example.com")

	order := s.createOrder(admin.Tokens.AccessToken, customer.User.ID)
	s.Equal(domain.OrderStatusWon, order.Status)
	s.Equal(1, order.CurrentStage)
	s.Equal(13500.0, order.TotalPrice)
	s.NotEmpty(order.TrackingCode)
	s.Require().Len(order.History, 1)

	var updated dto.OrderData
	status, _ := s.do(http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", admin.Tokens.AccessToken,
		dto.UpdateStatusRequest{Status: "PAID", Note: strPtr("Payment received")}, &updated)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(domain.OrderStatusPaid, updated.Order.Status)
	s.Equal(2, updated.Order.CurrentStage)
	s.Require().Len(updated.Order.History, 2)
	s.Equal(domain.OrderStatusWon, updated.Order.History[0].Status)
	s.Equal(domain.OrderStatusPaid, updated.Order.History[1].Status)

	status, errResp := s.do(http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", admin.Tokens.AccessToken,
		dto.UpdateStatusRequest{Status: "WON"}, nil)
	s.Equal(http.StatusConflict, status)
	s.Equal(domain.CodeInvalidStatusTransition, errResp.Error.Code)
}

func (s *Suite) TestTracking_IsPublicAndHidesCustomer() {
	admin := s.registerWithRole("admin@example.com", string(domain.RoleAdmin))
	customer := s.register("customer@example.com")
	order := s.createOrder(admin.Tokens.AccessToken, customer.User.ID)

	var data dto.TrackingData
	status, _ := s.do(http.MethodGet, "/api/v1/track/"+strings.ToLower(order.TrackingCode), "", nil, &data)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(order.TrackingCode, data.Tracking.TrackingCode)
	s.Equal(domain.OrderStatusWon, data.Tracking.Status)
	s.Len(data.Tracking.History, 1)

	raw := struct {
		Tracking map[string]any `json:"tracking"`
	}{}
	status, _ = s.do(http.MethodGet, "/api/v1/track/"+order.TrackingCode, "", nil, &raw)
	s.Require().Equal(http.StatusOK, status)
	for _, field := range []string{"customerName", "customerEmail", "customerPhone", "carVin", "totalPrice", "userId"} {
		s.NotContains(raw.Tracking, field)
	}
}

func (s *Suite) TestTracking_ReflectsStatusUpdate() {
	admin := s.registerWithRole("admin@example.com", string(domain.RoleAdmin))
	customer := s.register("customer@example.com")
	order := s.createOrder(admin.Tokens.AccessToken, customer.User.ID)

	var before dto.TrackingData
	status, _ := s.do(http.MethodGet, "/api/v1/track/"+order.TrackingCode, "", nil, &before)
	s.Require().Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", admin.Tokens.AccessToken,
		dto.UpdateStatusRequest{Status: "SHIPPING", Location: strPtr("Atlantic")}, nil)
	s.Require().Equal(http.StatusOK, status)

	var after dto.TrackingData
	status, _ = s.do(http.MethodGet, "/api/v1/track/"+order.TrackingCode, "", nil, &after)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(domain.OrderStatusShipping, after.Tracking.Status)
	s.Equal(3, after.Tracking.CurrentStage)
	s.Len(after.Tracking.History, 2)
}

func (s *Suite) TestTracking_UnknownCode() {
	status, errResp := s.do(http.MethodGet, "/api/v1/track/NOPE0000", "", nil, nil)

	s.Equal(http.StatusNotFound, status)
	s.Equal(domain.CodeNotFound, errResp.Error.Code)
}

func (s *Suite) TestOrders_CustomerSeesOnlyOwn() {
	admin := s.registerWithRole("admin@example.com", string(domain.RoleAdmin))
	owner := s.register("owner@example.com")
	other := s.register("other@example.com")
	order := s.createOrder(admin.Tokens.AccessToken, owner.User.ID)
	s.createOrder(admin.Tokens.AccessToken, other.User.ID)

	var list dto.OrderList
	status, _ := s.do(http.MethodGet, "/api/v1/orders", owner.Tokens.AccessToken, nil, &list)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(list.Orders, 1)
	s.Equal(order.ID, list.Orders[0].ID)
	s.Equal(1, list.Pagination.Total)

	status, _ = s.do(http.MethodGet, "/api/v1/orders/"+order.ID, other.Tokens.AccessToken, nil, nil)
	s.Equal(http.StatusNotFound, status)

	status, errResp := s.do(http.MethodGet, "/api/v1/orders?all=true", owner.Tokens.AccessToken, nil, nil)
	s.Equal(http.StatusForbidden, status)
	s.Equal(domain.CodeForbidden, errResp.Error.Code)

	status, _ = s.do(http.MethodGet, "/api/v1/orders?all=true", admin.Tokens.AccessToken, nil, &list)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(2, list.Pagination.Total)
}

func (s *Suite) TestOrders_CreateRequiresStaff() {
	customer := s.register("customer@example.com")

	status, errResp := s.do(http.MethodPost, "/api/v1/orders", customer.Tokens.AccessToken,
		dto.CreateOrderRequest{UserID: customer.User.ID}, nil)

	s.Equal(http.StatusUnauthorized, status)
	s.Equal(domain.CodeInsufficientRole, errResp.Error.Code)
}

func (s *Suite) TestOrderStatus_ConcurrentUpdatesKeepHistoryConsistent() {
	admin := s.registerWithRole("admin@example.com", string(domain.RoleAdmin))
	customer := s.register("customer@example.com")
	order := s.createOrder(admin.Tokens.AccessToken, customer.User.ID)

	statuses := []string{"PORT", "SHIPPING", "PAID", "DELIVERED", "SHIPPING", "PORT", "PAID", "SHIPPING"}

	var wg sync.WaitGroup
	for _, status := range statuses {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, errResp := s.do(http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", admin.Tokens.AccessToken,
				dto.UpdateStatusRequest{Status: status}, nil)
			if code != http.StatusOK {
				s.Equal(http.StatusConflict, code)
				s.Equal(domain.CodeInvalidStatusTransition, errResp.Error.Code)
			}
		}()
	}
	wg.Wait()

	var data dto.OrderData
	status, _ := s.do(http.MethodGet, "/api/v1/orders/"+order.ID, admin.Tokens.AccessToken, nil, &data)
	s.Require().Equal(http.StatusOK, status)

	history := data.Order.History
	s.Require().GreaterOrEqual(len(history), 2)
	last := history[len(history)-1]
	s.Equal(data.Order.Status, last.Status)
	s.Equal(data.Order.CurrentStage, last.Stage)
	s.False(data.Order.UpdatedAt.Before(last.CreatedAt))
	for i := 1; i < len(history); i++ {
		s.GreaterOrEqual(history[i].Stage, history[i-1].Stage)
		s.False(history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}
}
