package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
	"github.com/prperemyshlev/autoimport/internal/service"
)

// OrderHandler handles order and tracking requests
type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles order creation
func (h *OrderHandler) Create(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		_ = c.Error(domain.ErrNoToken)
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), claims, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "Order created", dto.OrderData{Order: order})
}

// List returns a page of orders
func (h *OrderHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		_ = c.Error(domain.ErrNoToken)
		return
	}

	var query dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(err)
		return
	}

	list, err := h.orderService.List(c.Request.Context(), claims, query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "", list)
}

// Get returns one order with its history
func (h *OrderHandler) Get(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		_ = c.Error(domain.ErrNoToken)
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "", dto.OrderData{Order: order})
}

// UpdateStatus applies a status change
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		_ = c.Error(domain.ErrNoToken)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), claims, c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Order status updated", dto.OrderData{Order: order})
}

// Track is the public tracking lookup
func (h *OrderHandler) Track(c *gin.Context) {
	tracking, err := h.orderService.Track(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "", dto.TrackingData{Tracking: tracking})
}
