package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/cache"
	"github.com/Additional-Code/bazaar/internal/config"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/gateway/shipping"
	"github.com/Additional-Code/bazaar/internal/messaging"
	"github.com/Additional-Code/bazaar/internal/pagination"
	cartrepo "github.com/Additional-Code/bazaar/internal/repository/cart"
	repo "github.com/Additional-Code/bazaar/internal/repository/order"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bazaar/service/order")

// Service encapsulates business logic around orders: checkout from the
// cart, the status lifecycle, and the carrier handoff on shipment.
type Service struct {
	repo      *repo.Repository
	cart      *cartrepo.Repository
	shipping  *shipping.Client
	cache     cache.Store
	cacheTTL  time.Duration
	pageSize  int
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	pickup    string
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cart       *cartrepo.Repository
	Shipping   *shipping.Client
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		cart:      p.Cart,
		shipping:  p.Shipping,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		pageSize:  p.Config.Catalog.PageSize,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		pickup: p.Config.Shipping.PickupCode,
	}
}

// PageSize exposes the configured listing page size to transports.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Place converts the user's cart into a pending order. Stock is decremented
// and the cart cleared inside one transaction; a sold-out line aborts the
// whole checkout. paymentID links the settled payment for prepaid methods
// and stays empty for cash on delivery.
func (s *Service) Place(ctx context.Context, userID, shipAddress, paymentID string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Place", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if strings.TrimSpace(shipAddress) == "" {
		return nil, errorbank.BadRequest("shipping address is required")
	}

	lines, err := s.cart.List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cart error")
		return nil, errorbank.Internal("failed to load cart", errorbank.WithCause(err))
	}
	if len(lines) == 0 {
		return nil, errorbank.Unprocessable("cart is empty")
	}

	now := time.Now().UTC()
	subtotal := decimal.Zero
	items := make([]*entity.OrderItem, 0, len(lines))
	for _, line := range lines {
		name, supplier := "", ""
		if line.Product != nil {
			name = line.Product.Name
			supplier = line.Product.CreatedBy
		}
		items = append(items, &entity.OrderItem{
			ProductID:  line.ProductID,
			VariantID:  line.VariantID,
			SupplierID: supplier,
			Name:       name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
		subtotal = subtotal.Add(line.LineTotal())
	}

	order := &entity.Order{
		ID:          uuid.NewString(),
		Number:      newOrderNumber(now),
		UserID:      userID,
		Status:      entity.OrderPending,
		Subtotal:    subtotal,
		Total:       subtotal,
		PaymentID:   paymentID,
		ShipAddress: shipAddress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, order, items); err != nil {
		if errors.Is(err, repo.ErrInsufficientStock) {
			return nil, errorbank.Conflict("insufficient stock for one or more items")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to place order", errorbank.WithCause(err))
	}

	s.publishEvent(ctx, order, EventOrderPlaced, "")
	return order, nil
}

// Get retrieves one order visible to the actor, consulting cache first.
func (s *Service) Get(ctx context.Context, actor repo.Scope, id string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		if visible(actor, order) {
			return order, nil
		}
		return nil, errorbank.NotFound("order not found")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("id", id), zap.Error(err))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if !visible(actor, order) {
		return nil, errorbank.NotFound("order not found")
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", id), zap.Error(err))
	}
	return order, nil
}

// List returns the orders visible to the actor. Meta is nil when the
// request is unpaged and the full set is returned.
func (s *Service) List(ctx context.Context, actor repo.Scope, pr pagination.Request, path string) ([]*entity.Order, *pagination.Meta, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, total, err := s.repo.List(ctx, actor, pr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	if !pr.Paged {
		return orders, nil, nil
	}
	meta := pagination.NewMeta(pr, path, total)
	return orders, &meta, nil
}

// Transition moves an order one step along the lifecycle. Customers may
// only cancel their own order while it is still pending or processing;
// suppliers may advance orders containing their products; admins may
// advance or cancel any order. Cancellation restores stock, and entering
// shipped books a carrier shipment.
func (s *Service) Transition(ctx context.Context, actor repo.Scope, id string, next entity.OrderStatus, note string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Transition", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.next_status", string(next)),
	))
	defer span.End()

	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(actor, current, next) {
		return nil, errorbank.Forbidden("not allowed to change order status")
	}

	order, err := s.repo.Transition(ctx, id, next, actor.UserID, note)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, errorbank.NotFound("order not found")
		case errors.Is(err, repo.ErrInvalidTransition):
			return nil, errorbank.Conflict(fmt.Sprintf("cannot move order from %s to %s", current.Status, next))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	s.evict(ctx, id)
	s.publishEvent(ctx, order, EventOrderStatusChanged, string(current.Status))

	if next == entity.OrderShipped {
		if err := s.bookShipment(ctx, order); err != nil {
			s.logger.Error("shipment booking failed", zap.String("order_id", id), zap.Error(err))
		}
	}
	return order, nil
}

// Track returns carrier tracking events for a shipped order.
func (s *Service) Track(ctx context.Context, actor repo.Scope, id string) ([]shipping.TrackingEvent, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.ShipAWB == "" {
		return nil, errorbank.Unprocessable("order has no shipment yet")
	}
	events, err := s.shipping.Track(ctx, order.ShipAWB)
	if err != nil {
		return nil, errorbank.Internal("failed to fetch tracking", errorbank.WithCause(err))
	}
	return events, nil
}

// History returns the order's status audit trail.
func (s *Service) History(ctx context.Context, actor repo.Scope, id string) ([]*entity.OrderStatusEvent, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	events, err := s.repo.Events(ctx, id)
	if err != nil {
		return nil, errorbank.Internal("failed to load order history", errorbank.WithCause(err))
	}
	return events, nil
}

func (s *Service) bookShipment(ctx context.Context, order *entity.Order) error {
	shipment, err := s.shipping.CreateShipment(ctx, shipping.CreateShipmentRequest{
		OrderNumber:    order.Number,
		PickupCode:     s.pickup,
		Address:        order.ShipAddress,
		DeclaredValue:  order.Total,
		CashOnDelivery: order.PaymentID == "",
	})
	if err != nil {
		return err
	}
	if err := s.repo.SetShipment(ctx, order.ID, shipment.AWB); err != nil {
		return err
	}
	order.ShipAWB = shipment.AWB
	s.evict(ctx, order.ID)
	return nil
}

// visible reports whether the actor may read the order: admins see all,
// suppliers see orders containing their products, everyone else only their
// own.
func visible(actor repo.Scope, order *entity.Order) bool {
	switch actor.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleSupplier:
		return order.UserID == actor.UserID || suppliesOrder(actor.UserID, order)
	}
	return order.UserID == actor.UserID
}

// transitionAllowed gates lifecycle moves by role. Admins may do anything,
// suppliers may advance orders they supply, customers may only cancel their
// own. State validity itself is enforced by the repository.
func transitionAllowed(actor repo.Scope, order *entity.Order, next entity.OrderStatus) bool {
	switch actor.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleSupplier:
		if next != entity.OrderCancelled && suppliesOrder(actor.UserID, order) {
			return true
		}
	}
	return next == entity.OrderCancelled && order.UserID == actor.UserID
}

func suppliesOrder(supplierID string, order *entity.Order) bool {
	for _, item := range order.Items {
		if item.SupplierID != "" && item.SupplierID == supplierID {
			return true
		}
	}
	return false
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("BZR-%s-%s", now.Format("20060102"), suffix)
}

func (s *Service) publishEvent(ctx context.Context, order *entity.Order, kind string, previous string) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Kind:       kind,
		ID:         order.ID,
		Number:     order.Number,
		UserID:     order.UserID,
		Status:     string(order.Status),
		PrevStatus: previous,
		Total:      order.Total.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte("order-"+order.ID), payload); err != nil {
		s.logger.Error("publish order event", zap.Error(err))
	}
}

func (s *Service) cacheKey(id string) string {
	return "orders:" + id
}

func (s *Service) getFromCache(ctx context.Context, id string) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache evict failed", zap.String("id", id), zap.Error(err))
	}
}

// Event kinds carried in OrderEvent.Kind.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is emitted on the messaging topic when an order is placed or
// changes status.
type OrderEvent struct {
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prev_status,omitempty"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}
