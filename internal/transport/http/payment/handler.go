package payment

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bazaar/internal/dto"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/presentation/http/response"
	service "github.com/Additional-Code/bazaar/internal/service/payment"
	"github.com/Additional-Code/bazaar/internal/transport/http/middleware"
	ordertransport "github.com/Additional-Code/bazaar/internal/transport/http/order"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bazaar/transport/http/payment")

// Handler exposes checkout and payment endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a payment Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, mw *middleware.Auth) {
	e.POST("/checkout", h.checkout, mw.Required)

	g := e.Group("/payments", mw.Required)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("/:id/confirm", h.confirm)
}

func userID(c echo.Context) string {
	return middleware.ClaimsFrom(c).Subject
}

func (h *Handler) checkout(c echo.Context) error {
	b := response.New(c)

	var payload dto.CheckoutRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "payments.checkout", trace.WithAttributes(
		attribute.String("payment.method", payload.Method),
	))
	defer span.End()

	intent, err := h.svc.Checkout(ctx, userID(c), entity.PaymentMethod(payload.Method), payload.ShipAddress)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toCheckoutDTO(intent)).Build()
}

func (h *Handler) confirm(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	var payload dto.PaymentConfirmRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "payments.confirm", trace.WithAttributes(attribute.String("payment.id", id)))
	defer span.End()

	intent, err := h.svc.Confirm(ctx, userID(c), id, payload.GatewayPaymentID, payload.Signature, payload.ShipAddress)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toCheckoutDTO(intent)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "payments.getByID", trace.WithAttributes(attribute.String("payment.id", id)))
	defer span.End()

	payment, err := h.svc.Get(ctx, userID(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toPaymentDTO(payment)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "payments.list")
	defer span.End()

	payments, err := h.svc.List(ctx, userID(c))
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentDTO(p))
	}
	return b.WithData(out).Build()
}

func toCheckoutDTO(intent *service.Intent) dto.CheckoutResponse {
	resp := dto.CheckoutResponse{
		Payment:        toPaymentDTO(intent.Payment),
		GatewayOrderID: intent.GatewayOrderID,
		GatewayKeyID:   intent.GatewayKeyID,
	}
	if intent.Order != nil {
		order := ordertransport.ToDTO(intent.Order)
		resp.Order = &order
	}
	return resp
}

func toPaymentDTO(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:             p.ID,
		OrderID:        p.OrderID,
		Method:         string(p.Method),
		Status:         string(p.Status),
		Amount:         p.Amount.StringFixed(2),
		GatewayOrderID: p.GatewayOrderID,
		CreatedAt:      p.CreatedAt,
	}
}
