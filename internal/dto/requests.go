package dto

import "time"

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email,max=255"`
	Password  string  `json:"password" binding:"required,min=8,max=128"`
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token. The refresh_token cookie is used
// when the body omits it.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest carries the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SetActiveRequest toggles account activation
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`

	CarMake     string  `json:"carMake" binding:"required,max=100"`
	CarModel    string  `json:"carModel" binding:"required,max=100"`
	CarYear     int     `json:"carYear" binding:"required,min=1900,max=2100"`
	CarVIN      *string `json:"carVin" binding:"omitempty,max=32"`
	CarColor    *string `json:"carColor" binding:"omitempty,max=50"`
	CarImageURL *string `json:"carImageUrl" binding:"omitempty,url"`

	AuctionPrice float64  `json:"auctionPrice" binding:"gte=0"`
	ShippingCost float64  `json:"shippingCost" binding:"gte=0"`
	TotalPrice   *float64 `json:"totalPrice" binding:"omitempty,gte=0"`

	CustomerName  string  `json:"customerName" binding:"required,max=200"`
	CustomerEmail string  `json:"customerEmail" binding:"required,email"`
	CustomerPhone *string `json:"customerPhone" binding:"omitempty,max=50"`

	AuctionSource    *string    `json:"auctionSource" binding:"omitempty,max=50"`
	LotNumber        *string    `json:"lotNumber" binding:"omitempty,max=50"`
	OriginPort       *string    `json:"originPort" binding:"omitempty,max=100"`
	DestinationPort  *string    `json:"destinationPort" binding:"omitempty,max=100"`
	VesselName       *string    `json:"vesselName" binding:"omitempty,max=100"`
	EstimatedArrival *time.Time `json:"estimatedArrival"`
}

// UpdateStatusRequest represents an order status change
type UpdateStatusRequest struct {
	Status   string  `json:"status" binding:"required,oneof=WON PAID SHIPPING PORT DELIVERED"`
	Note     *string `json:"note" binding:"omitempty,max=1000"`
	Location *string `json:"location" binding:"omitempty,max=200"`
}

// ListOrdersQuery holds list pagination parameters
type ListOrdersQuery struct {
	Page  int  `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit int  `form:"limit" binding:"omitempty,min=1,max=100"`
	All   bool `form:"all"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Normalize fills in defaults for missing values
func (q *ListOrdersQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
}
