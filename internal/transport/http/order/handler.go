package order

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bazaar/internal/dto"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/gateway/shipping"
	"github.com/Additional-Code/bazaar/internal/pagination"
	"github.com/Additional-Code/bazaar/internal/presentation/http/response"
	repo "github.com/Additional-Code/bazaar/internal/repository/order"
	service "github.com/Additional-Code/bazaar/internal/service/order"
	"github.com/Additional-Code/bazaar/internal/transport/http/middleware"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bazaar/transport/http/order")

// Handler exposes order endpoints over HTTP. Orders are only created via
// payment checkout, so there is no create route here.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, mw *middleware.Auth) {
	g := e.Group("/orders", mw.Required)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id/status", h.transition)
	g.GET("/:id/history", h.history)
	g.GET("/:id/tracking", h.tracking)
}

func scopeFrom(c echo.Context) repo.Scope {
	claims := middleware.ClaimsFrom(c)
	return repo.Scope{Role: claims.Role, UserID: claims.Subject}
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	pr := pagination.Parse(c.QueryParams(), h.svc.PageSize())
	orders, meta, err := h.svc.List(ctx, scopeFrom(c), pr, c.Path())
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToDTO(o))
	}
	if meta != nil {
		b = b.WithMeta("pagination", meta)
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, scopeFrom(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(ToDTO(order)).Build()
}

func (h *Handler) transition(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	var payload dto.OrderStatusRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.transition", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.next_status", payload.Status),
	))
	defer span.End()

	order, err := h.svc.Transition(ctx, scopeFrom(c), id, entity.OrderStatus(payload.Status), payload.Note)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(ToDTO(order)).Build()
}

func (h *Handler) history(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.history", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	events, err := h.svc.History(ctx, scopeFrom(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.OrderEventResponse{
			From:      string(ev.From),
			To:        string(ev.To),
			ActorID:   ev.ActorID,
			Note:      ev.Note,
			CreatedAt: ev.CreatedAt,
		})
	}
	return b.WithData(out).Build()
}

func (h *Handler) tracking(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.tracking", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	events, err := h.svc.Track(ctx, scopeFrom(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toTrackingDTO(events)).Build()
}

func toTrackingDTO(events []shipping.TrackingEvent) []dto.TrackingEventResponse {
	out := make([]dto.TrackingEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.TrackingEventResponse{Status: ev.Status, Location: ev.Location, Time: ev.Time})
	}
	return out
}

// ToDTO maps an order for transport; the payment handler reuses it for
// checkout responses.
func ToDTO(order *entity.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          order.ID,
		Number:      order.Number,
		Status:      string(order.Status),
		Subtotal:    order.Subtotal.StringFixed(2),
		Total:       order.Total.StringFixed(2),
		PaymentID:   order.PaymentID,
		ShipAddress: order.ShipAddress,
		ShipAWB:     order.ShipAWB,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}
	return resp
}
