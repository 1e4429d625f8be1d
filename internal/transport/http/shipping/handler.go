package shipping

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bazaar/internal/gateway/shipping"
	"github.com/Additional-Code/bazaar/internal/presentation/http/response"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bazaar/transport/http/shipping")

// Handler exposes delivery serviceability and rate quotes so storefronts
// can check a pincode before checkout.
type Handler struct {
	client *shipping.Client
}

// NewHandler constructs a shipping Handler.
func NewHandler(client *shipping.Client) *Handler {
	return &Handler{client: client}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/shipping")
	g.GET("/serviceability", h.serviceability)
	g.GET("/rates", h.rates)
}

func (h *Handler) serviceability(c echo.Context) error {
	b := response.New(c)

	pincode := c.QueryParam("pincode")
	if pincode == "" {
		return b.WithError(errorbank.BadRequest("pincode is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "shipping.serviceability", trace.WithAttributes(attribute.String("pincode", pincode)))
	defer span.End()

	ok, err := h.client.Serviceable(ctx, pincode)
	if err != nil {
		return b.WithError(errorbank.Internal("serviceability check failed", errorbank.WithCause(err))).Build()
	}
	return b.WithData(map[string]any{"pincode": pincode, "serviceable": ok}).Build()
}

func (h *Handler) rates(c echo.Context) error {
	b := response.New(c)

	pickup := c.QueryParam("pickup")
	drop := c.QueryParam("drop")
	if pickup == "" || drop == "" {
		return b.WithError(errorbank.BadRequest("pickup and drop pincodes are required")).Build()
	}
	weight, err := strconv.Atoi(c.QueryParam("weight"))
	if err != nil || weight <= 0 {
		return b.WithError(errorbank.BadRequest("weight must be a positive number of grams")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "shipping.rates")
	defer span.End()

	rates, err := h.client.Rates(ctx, pickup, drop, weight)
	if err != nil {
		return b.WithError(errorbank.Internal("rate lookup failed", errorbank.WithCause(err))).Build()
	}
	return b.WithData(rates).Build()
}
