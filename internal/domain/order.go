package domain

import "time"

type OrderStatus string

const (
	OrderStatusWon       OrderStatus = "WON"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipping  OrderStatus = "SHIPPING"
	OrderStatusPort      OrderStatus = "PORT"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// OrderStageMap fixes the stage shown for every status.
var OrderStageMap = map[OrderStatus]int{
	OrderStatusWon:       1,
	OrderStatusPaid:      2,
	OrderStatusShipping:  3,
	OrderStatusPort:      4,
	OrderStatusDelivered: 5,
}

// OrderStatuses lists statuses in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusWon,
	OrderStatusPaid,
	OrderStatusShipping,
	OrderStatusPort,
	OrderStatusDelivered,
}

// ParseOrderStatus returns the status named by s or false.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := OrderStageMap[st]
	return st, ok
}

// Stage returns the stage for s, zero when s is unknown.
func (s OrderStatus) Stage() int {
	return OrderStageMap[s]
}

func (s OrderStatus) Valid() bool {
	_, ok := OrderStageMap[s]
	return ok
}

// Order is a purchased car moving from auction to delivery.
type Order struct {
	ID           string      `db:"id"`
	OrderNumber  string      `db:"order_number"`
	TrackingCode string      `db:"tracking_code"`
	UserID       string      `db:"user_id"`
	Status       OrderStatus `db:"status"`
	CurrentStage int         `db:"current_stage"`

	CarMake     string  `db:"car_make"`
	CarModel    string  `db:"car_model"`
	CarYear     int     `db:"car_year"`
	CarVIN      *string `db:"car_vin"`
	CarColor    *string `db:"car_color"`
	CarImageURL *string `db:"car_image_url"`

	AuctionPrice float64 `db:"auction_price"`
	ShippingCost float64 `db:"shipping_cost"`
	TotalPrice   float64 `db:"total_price"`

	CustomerName  string  `db:"customer_name"`
	CustomerEmail string  `db:"customer_email"`
	CustomerPhone *string `db:"customer_phone"`

	AuctionSource    *string    `db:"auction_source"`
	LotNumber        *string    `db:"lot_number"`
	OriginPort       *string    `db:"origin_port"`
	DestinationPort  *string    `db:"destination_port"`
	VesselName       *string    `db:"vessel_name"`
	EstimatedArrival *time.Time `db:"estimated_arrival"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	History []*OrderStatusHistory `db:"-"`
}

// OrderStatusHistory is one append-only audit row.
type OrderStatusHistory struct {
	ID        string      `db:"id"`
	OrderID   string      `db:"order_id"`
	Status    OrderStatus `db:"status"`
	Stage     int         `db:"stage"`
	Note      *string     `db:"note"`
	Location  *string     `db:"location"`
	ChangedBy *string     `db:"changed_by"`
	CreatedAt time.Time   `db:"created_at"`
}
