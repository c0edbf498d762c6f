package dto

import (
	"time"

	"github.com/prperemyshlev/autoimport/internal/domain"
)

// Response is the envelope of every successful response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the envelope of every failed response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// UserResponse is a user without password material
type UserResponse struct {
	ID              string      `json:"id"`
	Email           string      `json:"email"`
	FirstName       *string     `json:"firstName"`
	LastName        *string     `json:"lastName"`
	Role            domain.Role `json:"role"`
	IsActive        bool        `json:"isActive"`
	IsEmailVerified bool        `json:"isEmailVerified"`
	LastLoginAt     *time.Time  `json:"lastLoginAt"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// NewUserResponse strips sensitive fields from u
func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// AuthData is returned by register and login
type AuthData struct {
	User   *UserResponse     `json:"user"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// TokensData is returned by refresh
type TokensData struct {
	Tokens *domain.TokenPair `json:"tokens"`
}

// UserData wraps a single user
type UserData struct {
	User *UserResponse `json:"user"`
}

// StatusHistoryResponse is one entry of an order's status log
type StatusHistoryResponse struct {
	ID        string             `json:"id"`
	Status    domain.OrderStatus `json:"status"`
	Stage     int                `json:"stage"`
	Note      *string            `json:"note"`
	Location  *string            `json:"location"`
	ChangedBy *string            `json:"changedBy,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// OrderResponse is the full order view for authenticated callers
type OrderResponse struct {
	ID           string             `json:"id"`
	OrderNumber  string             `json:"orderNumber"`
	TrackingCode string             `json:"trackingCode"`
	UserID       string             `json:"userId"`
	Status       domain.OrderStatus `json:"status"`
	CurrentStage int                `json:"currentStage"`

	CarMake     string  `json:"carMake"`
	CarModel    string  `json:"carModel"`
	CarYear     int     `json:"carYear"`
	CarVIN      *string `json:"carVin"`
	CarColor    *string `json:"carColor"`
	CarImageURL *string `json:"carImageUrl"`

	AuctionPrice float64 `json:"auctionPrice"`
	ShippingCost float64 `json:"shippingCost"`
	TotalPrice   float64 `json:"totalPrice"`

	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone *string `json:"customerPhone"`

	AuctionSource    *string    `json:"auctionSource"`
	LotNumber        *string    `json:"lotNumber"`
	OriginPort       *string    `json:"originPort"`
	DestinationPort  *string    `json:"destinationPort"`
	VesselName       *string    `json:"vesselName"`
	EstimatedArrival *time.Time `json:"estimatedArrival"`

	History   []StatusHistoryResponse `json:"history,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// TrackingResponse is the public view of an order. It never carries
// customer identity or pricing.
type TrackingResponse struct {
	TrackingCode string             `json:"trackingCode"`
	OrderNumber  string             `json:"orderNumber"`
	Status       domain.OrderStatus `json:"status"`
	CurrentStage int                `json:"currentStage"`

	CarMake     string  `json:"carMake"`
	CarModel    string  `json:"carModel"`
	CarYear     int     `json:"carYear"`
	CarColor    *string `json:"carColor"`
	CarImageURL *string `json:"carImageUrl"`

	OriginPort       *string    `json:"originPort"`
	DestinationPort  *string    `json:"destinationPort"`
	VesselName       *string    `json:"vesselName"`
	EstimatedArrival *time.Time `json:"estimatedArrival"`

	History   []StatusHistoryResponse `json:"history"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// Pagination describes a page of a list
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count for total items
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// OrderList is a page of orders
type OrderList struct {
	Orders     []*OrderResponse `json:"orders"`
	Pagination Pagination       `json:"pagination"`
}

// OrderData wraps a single order
type OrderData struct {
	Order *OrderResponse `json:"order"`
}

// TrackingData wraps a tracking view
type TrackingData struct {
	Tracking *TrackingResponse `json:"tracking"`
}
