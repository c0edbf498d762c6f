package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/pkg/database"
)

const orderColumns = `id, order_number, tracking_code, user_id, status, current_stage,
		car_make, car_model, car_year, car_vin, car_color, car_image_url,
		auction_price, shipping_cost, total_price,
		customer_name, customer_email, customer_phone,
		auction_source, lot_number, origin_port, destination_port, vessel_name, estimated_arrival,
		created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db *database.Postgres
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.Postgres) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order, initial *domain.OrderStatusHistory) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26)
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			order.ID, order.OrderNumber, order.TrackingCode, order.UserID, string(order.Status), order.CurrentStage,
			order.CarMake, order.CarModel, order.CarYear, order.CarVIN, order.CarColor, order.CarImageURL,
			order.AuctionPrice, order.ShippingCost, order.TotalPrice,
			order.CustomerName, order.CustomerEmail, order.CustomerPhone,
			order.AuctionSource, order.LotNumber, order.OriginPort, order.DestinationPort, order.VesselName,
			order.EstimatedArrival,
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
				return fmt.Errorf("order %s: %w", order.OrderNumber, ErrDuplicateOrder)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		initial.OrderID = order.ID
		if initial.CreatedAt.IsZero() {
			initial.CreatedAt = order.CreatedAt
		}
		if err := insertHistory(ctx, tx, initial); err != nil {
			return err
		}

		order.History = []*domain.OrderStatusHistory{initial}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("order with id %s not found: %w", id, ErrNotFound)
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetByTrackingCode(ctx context.Context, code string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tracking_code = $1`

	order, err := scanOrder(r.db.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order with tracking code not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by tracking code: %w", err)
	}

	return order, nil
}

// List returns a page of orders, newest first, and the total matching count
func (r *orderRepository) List(ctx context.Context, filter OrderListFilter) ([]*domain.Order, int, error) {
	var (
		where string
		args  []any
	)
	if filter.UserID != "" {
		where = "WHERE user_id = $1"
		args = append(args, filter.UserID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders ` + where
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, filter.Limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, entry *domain.OrderStatusHistory, guard StatusGuard) error {
	if _, err := uuid.Parse(entry.OrderID); err != nil {
		return fmt.Errorf("order with id %s not found: %w", entry.OrderID, ErrNotFound)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, entry.OrderID).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("order with id %s not found: %w", entry.OrderID, ErrNotFound)
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if guard != nil {
			if err := guard(domain.OrderStatus(current)); err != nil {
				return err
			}
		}

		// stamped under the row lock so timestamps follow commit order
		err = tx.QueryRowContext(ctx,
			`UPDATE orders SET status = $2, current_stage = $3, updated_at = clock_timestamp()
			WHERE id = $1
			RETURNING updated_at`,
			entry.OrderID, string(entry.Status), entry.Stage,
		).Scan(&entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		return insertHistory(ctx, tx, entry)
	})
}

// GetHistory returns history rows oldest first
func (r *orderRepository) GetHistory(ctx context.Context, orderID string) ([]*domain.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, status, stage, note, location, changed_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	defer rows.Close()

	var history []*domain.OrderStatusHistory
	for rows.Next() {
		entry := &domain.OrderStatusHistory{}
		var (
			status                    string
			note, location, changedBy sql.NullString
		)

		if err := rows.Scan(&entry.ID, &entry.OrderID, &status, &entry.Stage, &note, &location, &changedBy, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}

		entry.Status = domain.OrderStatus(status)
		entry.Note = nullString(note)
		entry.Location = nullString(location)
		entry.ChangedBy = nullString(changedBy)
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order history: %w", err)
	}

	return history, nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, entry *domain.OrderStatusHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (id, order_id, status, stage, note, location, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID, entry.OrderID, string(entry.Status), entry.Stage,
		entry.Note, entry.Location, entry.ChangedBy, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order history: %w", err)
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	var (
		status                                                       string
		vin, color, image, phone                                     sql.NullString
		auctionSource, lotNumber, originPort, destinationPort, vessel sql.NullString
		estimatedArrival                                             sql.NullTime
	)

	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.TrackingCode, &o.UserID, &status, &o.CurrentStage,
		&o.CarMake, &o.CarModel, &o.CarYear, &vin, &color, &image,
		&o.AuctionPrice, &o.ShippingCost, &o.TotalPrice,
		&o.CustomerName, &o.CustomerEmail, &phone,
		&auctionSource, &lotNumber, &originPort, &destinationPort, &vessel, &estimatedArrival,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	o.CarVIN = nullString(vin)
	o.CarColor = nullString(color)
	o.CarImageURL = nullString(image)
	o.CustomerPhone = nullString(phone)
	o.AuctionSource = nullString(auctionSource)
	o.LotNumber = nullString(lotNumber)
	o.OriginPort = nullString(originPort)
	o.DestinationPort = nullString(destinationPort)
	o.VesselName = nullString(vessel)
	if estimatedArrival.Valid {
		o.EstimatedArrival = &estimatedArrival.Time
	}

	return o, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
