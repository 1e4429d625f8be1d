package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bazaar/internal/database"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/pagination"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/bazaar/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrInsufficientStock is returned when a conditional stock decrement
// matches no row, meaning the remaining stock cannot cover the quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidTransition is returned for a status move outside the lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// Scope restricts order listings to what the caller may see.
type Scope struct {
	Role   entity.Role
	UserID string
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create places an order atomically: every line's stock is decremented under
// a stock >= quantity guard, the order and its items are inserted, the audit
// trail is opened, and the user's cart is cleared. Any failure rolls the
// whole checkout back.
func (r *Repository) Create(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.number", order.Number)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range items {
			if err := decrementStock(ctx, tx, item); err != nil {
				return err
			}
		}

		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}

		for _, item := range items {
			item.OrderID = order.ID
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return err
		}

		event := &entity.OrderStatusEvent{
			OrderID:   order.ID,
			From:      entity.OrderPending,
			To:        entity.OrderPending,
			ActorID:   order.UserID,
			Note:      "order placed",
			CreatedAt: time.Now().UTC(),
		}
		if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().Model((*entity.CartItem)(nil)).
			Where("user_id = ?", order.UserID).
			Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout tx failed")
	}
	return err
}

// GetByID fetches an order with its items.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Relation("Items").Where("o.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns orders visible to the caller: own orders for users, all for
// admins, and for suppliers only orders containing their products.
func (r *Repository) List(ctx context.Context, scope Scope, pr pagination.Request) ([]*entity.Order, int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []*entity.Order
	q := r.reader.NewSelect().Model(&orders).Relation("Items").Order("o.created_at DESC")

	switch scope.Role {
	case entity.RoleAdmin:
		// unrestricted
	case entity.RoleSupplier:
		q = q.Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.supplier_id = ?)", scope.UserID)
	default:
		q = q.Where("o.user_id = ?", scope.UserID)
	}

	if pr.Paged {
		q = q.Limit(pr.Limit()).Offset(pr.Offset())
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return orders, total, nil
}

// Transition moves an order to the next status inside one transaction,
// appending to the audit trail. Cancellation restores the stock the order
// had decremented.
func (r *Repository) Transition(ctx context.Context, id string, next entity.OrderStatus, actorID, note string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Transition", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.next_status", string(next)),
	))
	defer span.End()

	order := new(entity.Order)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(order).Relation("Items").Where("o.id = ?", id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if !order.Status.CanTransition(next) {
			return ErrInvalidTransition
		}

		prev := order.Status
		order.Status = next
		order.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().Model(order).Column("status", "updated_at").WherePK().Exec(ctx); err != nil {
			return err
		}

		event := &entity.OrderStatusEvent{
			OrderID:   order.ID,
			From:      prev,
			To:        next,
			ActorID:   actorID,
			Note:      note,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
			return err
		}

		if next == entity.OrderCancelled {
			for _, item := range order.Items {
				if err := restoreStock(ctx, tx, item); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition tx failed")
		return nil, err
	}
	return order, nil
}

// SetShipment records the carrier AWB on a shipped order.
func (r *Repository) SetShipment(ctx context.Context, id, awb string) error {
	res, err := r.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("ship_awb = ?", awb).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkPayment references the settled payment from the order row.
func (r *Repository) LinkPayment(ctx context.Context, id, paymentID string) error {
	_, err := r.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("payment_id = ?", paymentID).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Events returns the audit trail, oldest first.
func (r *Repository) Events(ctx context.Context, orderID string) ([]*entity.OrderStatusEvent, error) {
	var events []*entity.OrderStatusEvent
	err := r.reader.NewSelect().Model(&events).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func decrementStock(ctx context.Context, tx bun.Tx, item *entity.OrderItem) error {
	var res sql.Result
	var err error
	if item.VariantID > 0 {
		res, err = tx.NewUpdate().Model((*entity.ProductVariant)(nil)).
			Set("stock = stock - ?", item.Quantity).
			Where("id = ? AND stock >= ?", item.VariantID, item.Quantity).
			Exec(ctx)
	} else {
		res, err = tx.NewUpdate().Model((*entity.Product)(nil)).
			Set("stock = stock - ?", item.Quantity).
			Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
			Exec(ctx)
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func restoreStock(ctx context.Context, tx bun.Tx, item *entity.OrderItem) error {
	var err error
	if item.VariantID > 0 {
		_, err = tx.NewUpdate().Model((*entity.ProductVariant)(nil)).
			Set("stock = stock + ?", item.Quantity).
			Where("id = ?", item.VariantID).
			Exec(ctx)
	} else {
		_, err = tx.NewUpdate().Model((*entity.Product)(nil)).
			Set("stock = stock + ?", item.Quantity).
			Where("id = ?", item.ProductID).
			Exec(ctx)
	}
	return err
}
