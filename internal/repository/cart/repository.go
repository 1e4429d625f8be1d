package cart

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
)

var repoTracer = otel.Tracer("github.com/Additional-Code/bazaar/repository/cart")

// ErrNotFound is returned when a cart line is missing.
var ErrNotFound = errors.New("cart item not found")

// Repository encapsulates read/write access for cart items.
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

// List returns the user's cart lines with product rows attached.
func (r *Repository) List(ctx context.Context, userID string) ([]*entity.CartItem, error) {
	ctx, span := repoTracer.Start(ctx, "CartRepository.List", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	var items []*entity.CartItem
	err := r.reader.NewSelect().Model(&items).
		Relation("Product").
		Where("ci.user_id = ?", userID).
		Order("ci.created_at ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}

// Get returns the user's line for a product/variant pair, if any.
func (r *Repository) Get(ctx context.Context, userID string, productID, variantID int64) (*entity.CartItem, error) {
	item := new(entity.CartItem)
	q := r.reader.NewSelect().Model(item).
		Where("user_id = ? AND product_id = ?", userID, productID)
	if variantID > 0 {
		q = q.Where("variant_id = ?", variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}
	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Save inserts a new cart line.
func (r *Repository) Save(ctx context.Context, item *entity.CartItem) error {
	if item == nil {
		return errors.New("nil cart item")
	}
	_, err := r.writer.NewInsert().Model(item).Exec(ctx)
	return err
}

// UpdateQuantity rewrites the quantity of one line owned by the user.
func (r *Repository) UpdateQuantity(ctx context.Context, userID string, id int64, quantity int) error {
	res, err := r.writer.NewUpdate().Model((*entity.CartItem)(nil)).
		Set("quantity = ?", quantity).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one line owned by the user.
func (r *Repository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.writer.NewDelete().Model((*entity.CartItem)(nil)).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear drops all of the user's cart lines.
func (r *Repository) Clear(ctx context.Context, userID string) error {
	_, err := r.writer.NewDelete().Model((*entity.CartItem)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}
