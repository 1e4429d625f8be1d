package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bazaar/internal/dto"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/pagination"
	"github.com/Additional-Code/bazaar/internal/presentation/http/response"
	repo "github.com/Additional-Code/bazaar/internal/repository/catalog"
	service "github.com/Additional-Code/bazaar/internal/service/catalog"
	"github.com/Additional-Code/bazaar/internal/transport/http/middleware"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bazaar/transport/http/catalog")

// Handler exposes catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Reads take optional
// auth so suppliers and admins see beyond the public catalog; writes are
// role gated.
func Register(e *echo.Echo, h *Handler, mw *middleware.Auth) {
	supplier := mw.Roles(entity.RoleSupplier, entity.RoleAdmin)
	admin := mw.Roles(entity.RoleAdmin)

	p := e.Group("/products")
	p.GET("", h.listProducts, mw.Optional)
	p.GET("/:id", h.getProduct, mw.Optional)
	p.POST("", h.createProduct, mw.Required, supplier)
	p.PUT("/:id", h.updateProduct, mw.Required, supplier)
	p.POST("/:id/variants", h.createVariant, mw.Required, supplier)
	p.POST("/:id/image", h.uploadImage, mw.Required, supplier)
	p.PATCH("/:id/status", h.moderateProduct, mw.Required, admin)

	br := e.Group("/brands")
	br.GET("", h.listBrands, mw.Optional)
	br.POST("", h.createBrand, mw.Required, supplier)
	br.PATCH("/:id/status", h.moderateBrand, mw.Required, admin)

	ct := e.Group("/categories")
	ct.GET("", h.listCategories, mw.Optional)
	ct.POST("", h.createCategory, mw.Required, supplier)
	ct.PATCH("/:id/status", h.moderateCategory, mw.Required, admin)
}

func scopeFrom(c echo.Context) repo.Scope {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return repo.Public
	}
	return repo.Scope{Role: claims.Role, UserID: claims.Subject}
}

func (h *Handler) listProducts(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.listProducts")
	defer span.End()

	pr := pagination.Parse(c.QueryParams(), h.svc.PageSize())
	products, meta, err := h.svc.ListProducts(ctx, scopeFrom(c), pr, c.Path())
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	if meta != nil {
		b = b.WithMeta("pagination", meta)
	}
	return b.WithData(out).Build()
}

func (h *Handler) getProduct(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.getProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.GetProduct(ctx, scopeFrom(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toProductDTO(product)).Build()
}

func (h *Handler) createProduct(c echo.Context) error {
	b := response.New(c)

	in, err := bindProductInput(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.createProduct")
	defer span.End()

	product, err := h.svc.CreateProduct(ctx, scopeFrom(c), in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toProductDTO(product)).Build()
}

func (h *Handler) updateProduct(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}
	in, err := bindProductInput(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.updateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.UpdateProduct(ctx, scopeFrom(c), id, in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toProductDTO(product)).Build()
}

func (h *Handler) createVariant(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload dto.VariantRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid price")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.createVariant", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	variant, err := h.svc.CreateVariant(ctx, scopeFrom(c), id, payload.SKU, payload.Label, price, payload.Stock)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toVariantDTO(variant)).Build()
}

func (h *Handler) uploadImage(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}
	header, err := c.FormFile("image")
	if err != nil {
		return b.WithError(errorbank.BadRequest("an image file is required", errorbank.WithCause(err))).Build()
	}
	file, err := header.Open()
	if err != nil {
		return b.WithError(errorbank.BadRequest("unreadable image file", errorbank.WithCause(err))).Build()
	}
	defer file.Close()

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.uploadImage", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.AttachImage(ctx, scopeFrom(c), id, header.Filename, file)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toProductDTO(product)).Build()
}

func (h *Handler) moderateProduct(c echo.Context) error {
	return h.moderate(c, "catalog.moderateProduct", h.svc.ModerateProduct)
}

func (h *Handler) moderateBrand(c echo.Context) error {
	return h.moderate(c, "catalog.moderateBrand", h.svc.ModerateBrand)
}

func (h *Handler) moderateCategory(c echo.Context) error {
	return h.moderate(c, "catalog.moderateCategory", h.svc.ModerateCategory)
}

func (h *Handler) moderate(c echo.Context, span string, fn func(context.Context, repo.Scope, int64, entity.ListingStatus) error) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}
	var payload dto.ModerateRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, sp := httpTracer.Start(c.Request().Context(), span, trace.WithAttributes(attribute.Int64("listing.id", id)))
	defer sp.End()

	if err := fn(ctx, scopeFrom(c), id, entity.ListingStatus(payload.Status)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) listBrands(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.listBrands")
	defer span.End()

	pr := pagination.Parse(c.QueryParams(), h.svc.PageSize())
	brands, meta, err := h.svc.ListBrands(ctx, scopeFrom(c), pr, c.Path())
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.BrandResponse, 0, len(brands))
	for _, br := range brands {
		out = append(out, dto.BrandResponse{ID: br.ID, Name: br.Name, Slug: br.Slug, Status: string(br.Status)})
	}
	if meta != nil {
		b = b.WithMeta("pagination", meta)
	}
	return b.WithData(out).Build()
}

func (h *Handler) createBrand(c echo.Context) error {
	b := response.New(c)

	var payload dto.NameRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.createBrand")
	defer span.End()

	brand, err := h.svc.CreateBrand(ctx, scopeFrom(c), payload.Name)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.BrandResponse{
		ID: brand.ID, Name: brand.Name, Slug: brand.Slug, Status: string(brand.Status),
	}).Build()
}

func (h *Handler) listCategories(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.listCategories")
	defer span.End()

	pr := pagination.Parse(c.QueryParams(), h.svc.PageSize())
	categories, meta, err := h.svc.ListCategories(ctx, scopeFrom(c), pr, c.Path())
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, ct := range categories {
		out = append(out, dto.CategoryResponse{ID: ct.ID, Name: ct.Name, Slug: ct.Slug, Status: string(ct.Status)})
	}
	if meta != nil {
		b = b.WithMeta("pagination", meta)
	}
	return b.WithData(out).Build()
}

func (h *Handler) createCategory(c echo.Context) error {
	b := response.New(c)

	var payload dto.NameRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.createCategory")
	defer span.End()

	category, err := h.svc.CreateCategory(ctx, scopeFrom(c), payload.Name)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.CategoryResponse{
		ID: category.ID, Name: category.Name, Slug: category.Slug, Status: string(category.Status),
	}).Build()
}

func bindProductInput(c echo.Context) (service.ProductInput, error) {
	var payload dto.ProductRequest
	if err := c.Bind(&payload); err != nil {
		return service.ProductInput{}, errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return service.ProductInput{}, errorbank.BadRequest("invalid price")
	}
	return service.ProductInput{
		Name:        payload.Name,
		Description: payload.Description,
		BrandID:     payload.BrandID,
		CategoryID:  payload.CategoryID,
		Price:       price,
		Stock:       payload.Stock,
	}, nil
}

func toProductDTO(p *entity.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		BrandID:     p.BrandID,
		CategoryID:  p.CategoryID,
		Status:      string(p.Status),
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, v := range p.Variants {
		resp.Variants = append(resp.Variants, toVariantDTO(v))
	}
	return resp
}

func toVariantDTO(v *entity.ProductVariant) dto.VariantResponse {
	return dto.VariantResponse{
		ID:    v.ID,
		SKU:   v.SKU,
		Label: v.Label,
		Price: v.Price.StringFixed(2),
		Stock: v.Stock,
	}
}
