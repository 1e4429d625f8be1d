package payment

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

var repoTracer = otel.Tracer("github.com/Additional-Code/bazaar/repository/payment")

// ErrNotFound is returned when a payment is missing.
var ErrNotFound = errors.New("payment not found")

// Repository encapsulates read/write access for payments.
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

// Create persists a new payment record.
func (r *Repository) Create(ctx context.Context, p *entity.Payment) error {
	if p == nil {
		return errors.New("nil payment")
	}
	ctx, span := repoTracer.Start(ctx, "PaymentRepository.Create", trace.WithAttributes(attribute.String("payment.method", string(p.Method))))
	defer span.End()

	_, err := r.writer.NewInsert().Model(p).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a payment by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	ctx, span := repoTracer.Start(ctx, "PaymentRepository.GetByID", trace.WithAttributes(attribute.String("payment.id", id)))
	defer span.End()

	p := new(entity.Payment)
	err := r.reader.NewSelect().Model(p).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return p, nil
}

// Update rewrites the settlement fields of a payment.
func (r *Repository) Update(ctx context.Context, p *entity.Payment) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.writer.NewUpdate().Model(p).
		Column("status", "order_id", "gateway_order_id", "gateway_payment_id", "gateway_signature", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's payments, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*entity.Payment, error) {
	var payments []*entity.Payment
	err := r.reader.NewSelect().Model(&payments).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return payments, nil
}
