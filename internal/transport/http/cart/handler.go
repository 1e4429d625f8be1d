package cart

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bazaar/internal/dto"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/presentation/http/response"
	service "github.com/Additional-Code/bazaar/internal/service/cart"
	"github.com/Additional-Code/bazaar/internal/transport/http/middleware"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bazaar/transport/http/cart")

// Handler exposes cart endpoints over HTTP. All routes require auth since
// a cart belongs to an account.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a cart Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, mw *middleware.Auth) {
	g := e.Group("/cart", mw.Required)
	g.GET("", h.get)
	g.POST("/items", h.add)
	g.PUT("/items/:id", h.update)
	g.DELETE("/items/:id", h.remove)
	g.DELETE("", h.clear)
}

func userID(c echo.Context) string {
	return middleware.ClaimsFrom(c).Subject
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.get")
	defer span.End()

	summary, err := h.svc.Get(ctx, userID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toCartDTO(summary)).Build()
}

func (h *Handler) add(c echo.Context) error {
	b := response.New(c)

	var payload dto.CartAddRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.add", trace.WithAttributes(attribute.Int64("product.id", payload.ProductID)))
	defer span.End()

	item, err := h.svc.Add(ctx, userID(c), payload.ProductID, payload.VariantID, payload.Quantity)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toItemDTO(item)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}
	var payload dto.CartUpdateRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.update", trace.WithAttributes(attribute.Int64("cart_item.id", id)))
	defer span.End()

	if err := h.svc.UpdateQuantity(ctx, userID(c), id, payload.Quantity); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.remove", trace.WithAttributes(attribute.Int64("cart_item.id", id)))
	defer span.End()

	if err := h.svc.Remove(ctx, userID(c), id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) clear(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.clear")
	defer span.End()

	if err := h.svc.Clear(ctx, userID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func toCartDTO(summary *service.Summary) dto.CartResponse {
	resp := dto.CartResponse{
		Items:    make([]dto.CartItemResponse, 0, len(summary.Items)),
		Subtotal: summary.Subtotal.StringFixed(2),
	}
	for _, item := range summary.Items {
		resp.Items = append(resp.Items, toItemDTO(item))
	}
	return resp
}

func toItemDTO(item *entity.CartItem) dto.CartItemResponse {
	out := dto.CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice.StringFixed(2),
		LineTotal: item.LineTotal().StringFixed(2),
	}
	if item.Product != nil {
		out.Name = item.Product.Name
	}
	return out
}
