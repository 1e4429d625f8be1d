package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/entity"
	cartrepo "github.com/Additional-Code/bazaar/internal/repository/cart"
	catalogrepo "github.com/Additional-Code/bazaar/internal/repository/catalog"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bazaar/service/cart")

// Summary is a cart with its computed subtotal.
type Summary struct {
	Items    []*entity.CartItem
	Subtotal decimal.Decimal
}

// Service manages a user's cart against live catalog stock.
type Service struct {
	repo    *cartrepo.Repository
	catalog *catalogrepo.Repository
	logger  *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *cartrepo.Repository
	Catalog    *catalogrepo.Repository
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:    p.Repository,
		catalog: p.Catalog,
		logger:  p.Logger,
	}
}

// Add puts a product (or one of its variants) in the user's cart, merging
// with an existing line for the same product/variant. The stock check here
// is advisory; checkout re-validates under the transaction.
func (s *Service) Add(ctx context.Context, userID string, productID, variantID int64, quantity int) (*entity.CartItem, error) {
	ctx, span := serviceTracer.Start(ctx, "CartService.Add", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	if quantity <= 0 {
		return nil, errorbank.BadRequest("quantity must be positive")
	}

	scope := catalogrepo.Scope{Role: entity.RoleUser, UserID: userID}
	product, err := s.catalog.GetProduct(ctx, scope, productID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	price := product.Price
	available := product.Stock
	if variantID > 0 {
		variant, err := s.catalog.GetVariant(ctx, variantID)
		if err != nil || variant.ProductID != productID {
			return nil, errorbank.NotFound("variant not found")
		}
		price = variant.Price
		available = variant.Stock
	}

	existing, err := s.repo.Get(ctx, userID, productID, variantID)
	switch {
	case err == nil:
		newQty := existing.Quantity + quantity
		if newQty > available {
			return nil, errorbank.Conflict("not enough stock", errorbank.WithDetail("available", available))
		}
		if err := s.repo.UpdateQuantity(ctx, userID, existing.ID, newQty); err != nil {
			return nil, errorbank.Internal("failed to update cart", errorbank.WithCause(err))
		}
		existing.Quantity = newQty
		return existing, nil
	case errors.Is(err, cartrepo.ErrNotFound):
		// fall through to insert
	default:
		return nil, errorbank.Internal("failed to read cart", errorbank.WithCause(err))
	}

	if quantity > available {
		return nil, errorbank.Conflict("not enough stock", errorbank.WithDetail("available", available))
	}

	now := time.Now().UTC()
	item := &entity.CartItem{
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, item); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to add to cart", errorbank.WithCause(err))
	}
	return item, nil
}

// UpdateQuantity sets the quantity of one of the user's cart lines.
func (s *Service) UpdateQuantity(ctx context.Context, userID string, itemID int64, quantity int) error {
	if quantity <= 0 {
		return errorbank.BadRequest("quantity must be positive; use remove to delete a line")
	}
	if err := s.repo.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		if errors.Is(err, cartrepo.ErrNotFound) {
			return errorbank.NotFound("cart item not found")
		}
		return errorbank.Internal("failed to update cart", errorbank.WithCause(err))
	}
	return nil
}

// Remove deletes one of the user's cart lines.
func (s *Service) Remove(ctx context.Context, userID string, itemID int64) error {
	if err := s.repo.Delete(ctx, userID, itemID); err != nil {
		if errors.Is(err, cartrepo.ErrNotFound) {
			return errorbank.NotFound("cart item not found")
		}
		return errorbank.Internal("failed to remove cart item", errorbank.WithCause(err))
	}
	return nil
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return errorbank.Internal("failed to clear cart", errorbank.WithCause(err))
	}
	return nil
}

// Get returns the user's cart lines with the running subtotal.
func (s *Service) Get(ctx context.Context, userID string) (*Summary, error) {
	ctx, span := serviceTracer.Start(ctx, "CartService.Get", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	items, err := s.repo.List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load cart", errorbank.WithCause(err))
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return &Summary{Items: items, Subtotal: subtotal}, nil
}
