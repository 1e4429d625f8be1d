package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

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
	"github.com/Additional-Code/bazaar/internal/gateway/media"
	"github.com/Additional-Code/bazaar/internal/pagination"
	repo "github.com/Additional-Code/bazaar/internal/repository/catalog"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bazaar/service/catalog")

// moderationStatuses are the states an admin may set on a listing.
var moderationStatuses = map[entity.ListingStatus]bool{
	entity.ListingApproved:  true,
	entity.ListingPublished: true,
	entity.ListingRejected:  true,
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Description string
	BrandID     int64
	CategoryID  int64
	Price       decimal.Decimal
	Stock       int
}

// Service encapsulates catalog business logic: supplier-owned CRUD,
// moderation, scoped listing and cached public reads.
type Service struct {
	repo     *repo.Repository
	cache    cache.Store
	media    *media.Client
	cacheTTL time.Duration
	pageSize int
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Media      *media.Client
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		cache:    p.Cache,
		media:    p.Media,
		cacheTTL: p.Config.Catalog.CacheTTL,
		pageSize: p.Config.Catalog.PageSize,
		logger:   p.Logger,
	}
}

// PageSize exposes the configured listing page size to transports.
func (s *Service) PageSize() int {
	return s.pageSize
}

// CreateProduct registers a new listing owned by the actor. New listings
// start in pending until moderated.
func (s *Service) CreateProduct(ctx context.Context, actor repo.Scope, in ProductInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if actor.Role != entity.RoleSupplier && actor.Role != entity.RoleAdmin {
		return nil, errorbank.Forbidden("only suppliers can create products")
	}
	if in.Name == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	if in.Price.IsNegative() || in.Stock < 0 {
		return nil, errorbank.BadRequest("price and stock must not be negative")
	}

	now := time.Now().UTC()
	product := &entity.Product{
		Name:        in.Name,
		Slug:        slugify(in.Name),
		Description: in.Description,
		BrandID:     in.BrandID,
		CategoryID:  in.CategoryID,
		Status:      entity.ListingPending,
		CreatedBy:   actor.UserID,
		Price:       in.Price,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}
	return product, nil
}

// UpdateProduct rewrites a listing the actor owns (admins may edit any).
func (s *Service) UpdateProduct(ctx context.Context, actor repo.Scope, id int64, in ProductInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Price.IsNegative() || in.Stock < 0 {
		return nil, errorbank.BadRequest("price and stock must not be negative")
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	product.Description = in.Description
	if in.BrandID > 0 {
		product.BrandID = in.BrandID
	}
	if in.CategoryID > 0 {
		product.CategoryID = in.CategoryID
	}
	product.Price = in.Price
	product.Stock = in.Stock

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}
	s.evictProduct(ctx, id)
	return product, nil
}

// GetProduct returns one listing visible to the actor, consulting the
// cache first. Cache hits are re-checked against the actor's scope so a
// cached admin read never leaks a pending listing to the public.
func (s *Service) GetProduct(ctx context.Context, actor repo.Scope, id int64) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if cached, err := s.cachedProduct(ctx, id); err == nil {
		if actor.Allows(cached.Status, cached.CreatedBy) {
			return cached, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	product, err := s.repo.GetProduct(ctx, actor, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if err := s.storeProduct(ctx, product); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Int64("id", id), zap.Error(err))
	}
	return product, nil
}

// ListProducts returns the listings visible to the actor. Meta is nil when
// the request is unpaged and the full set is returned.
func (s *Service) ListProducts(ctx context.Context, actor repo.Scope, pr pagination.Request, path string) ([]*entity.Product, *pagination.Meta, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, total, err := s.repo.ListProducts(ctx, actor, pr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}
	if !pr.Paged {
		return products, nil, nil
	}
	meta := pagination.NewMeta(pr, path, total)
	return products, &meta, nil
}

// AttachImage uploads a product photo to the CDN and stores its URL on the
// listing. The caller must own the product (or be an admin).
func (s *Service) AttachImage(ctx context.Context, actor repo.Scope, id int64, filename string, file io.Reader) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.AttachImage", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	asset, err := s.media.Upload(ctx, filename, file)
	if err != nil {
		if errors.Is(err, media.ErrDisabled) {
			return nil, errorbank.Unprocessable("image uploads are not configured")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "cdn error")
		return nil, errorbank.Internal("image upload failed", errorbank.WithCause(err))
	}

	if err := s.repo.SetProductImage(ctx, id, asset.URL); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		return nil, errorbank.Internal("failed to store image url", errorbank.WithCause(err))
	}
	product.ImageURL = asset.URL
	s.evictProduct(ctx, id)
	return product, nil
}

// ModerateProduct sets the moderation status of a listing. Admin only.
func (s *Service) ModerateProduct(ctx context.Context, actor repo.Scope, id int64, status entity.ListingStatus) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ModerateProduct", trace.WithAttributes(
		attribute.Int64("product.id", id),
		attribute.String("product.status", string(status)),
	))
	defer span.End()

	if actor.Role != entity.RoleAdmin {
		return errorbank.Forbidden("moderation requires the admin role")
	}
	if !moderationStatuses[status] {
		return errorbank.BadRequest("status must be approved, published or rejected")
	}
	if err := s.repo.SetProductStatus(ctx, id, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("product not found")
		}
		return errorbank.Internal("failed to moderate product", errorbank.WithCause(err))
	}
	s.evictProduct(ctx, id)
	return nil
}

// CreateBrand registers a brand owned by the actor.
func (s *Service) CreateBrand(ctx context.Context, actor repo.Scope, name string) (*entity.Brand, error) {
	if actor.Role != entity.RoleSupplier && actor.Role != entity.RoleAdmin {
		return nil, errorbank.Forbidden("only suppliers can create brands")
	}
	if name == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	now := time.Now().UTC()
	brand := &entity.Brand{
		Name:      name,
		Slug:      slugify(name),
		Status:    entity.ListingPending,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, errorbank.Internal("failed to create brand", errorbank.WithCause(err))
	}
	return brand, nil
}

// ListBrands returns brands visible to the actor.
func (s *Service) ListBrands(ctx context.Context, actor repo.Scope, pr pagination.Request, path string) ([]*entity.Brand, *pagination.Meta, error) {
	brands, total, err := s.repo.ListBrands(ctx, actor, pr)
	if err != nil {
		return nil, nil, errorbank.Internal("failed to list brands", errorbank.WithCause(err))
	}
	if !pr.Paged {
		return brands, nil, nil
	}
	meta := pagination.NewMeta(pr, path, total)
	return brands, &meta, nil
}

// ModerateBrand sets the moderation status of a brand. Admin only.
func (s *Service) ModerateBrand(ctx context.Context, actor repo.Scope, id int64, status entity.ListingStatus) error {
	if actor.Role != entity.RoleAdmin {
		return errorbank.Forbidden("moderation requires the admin role")
	}
	if !moderationStatuses[status] {
		return errorbank.BadRequest("status must be approved, published or rejected")
	}
	if err := s.repo.SetBrandStatus(ctx, id, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("brand not found")
		}
		return errorbank.Internal("failed to moderate brand", errorbank.WithCause(err))
	}
	return nil
}

// CreateCategory registers a category owned by the actor.
func (s *Service) CreateCategory(ctx context.Context, actor repo.Scope, name string) (*entity.Category, error) {
	if actor.Role != entity.RoleSupplier && actor.Role != entity.RoleAdmin {
		return nil, errorbank.Forbidden("only suppliers can create categories")
	}
	if name == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	now := time.Now().UTC()
	category := &entity.Category{
		Name:      name,
		Slug:      slugify(name),
		Status:    entity.ListingPending,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, errorbank.Internal("failed to create category", errorbank.WithCause(err))
	}
	return category, nil
}

// ListCategories returns categories visible to the actor.
func (s *Service) ListCategories(ctx context.Context, actor repo.Scope, pr pagination.Request, path string) ([]*entity.Category, *pagination.Meta, error) {
	categories, total, err := s.repo.ListCategories(ctx, actor, pr)
	if err != nil {
		return nil, nil, errorbank.Internal("failed to list categories", errorbank.WithCause(err))
	}
	if !pr.Paged {
		return categories, nil, nil
	}
	meta := pagination.NewMeta(pr, path, total)
	return categories, &meta, nil
}

// ModerateCategory sets the moderation status of a category. Admin only.
func (s *Service) ModerateCategory(ctx context.Context, actor repo.Scope, id int64, status entity.ListingStatus) error {
	if actor.Role != entity.RoleAdmin {
		return errorbank.Forbidden("moderation requires the admin role")
	}
	if !moderationStatuses[status] {
		return errorbank.BadRequest("status must be approved, published or rejected")
	}
	if err := s.repo.SetCategoryStatus(ctx, id, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("category not found")
		}
		return errorbank.Internal("failed to moderate category", errorbank.WithCause(err))
	}
	return nil
}

// CreateVariant attaches a variant to a product the actor owns.
func (s *Service) CreateVariant(ctx context.Context, actor repo.Scope, productID int64, sku, label string, price decimal.Decimal, stock int) (*entity.ProductVariant, error) {
	if _, err := s.ownedProduct(ctx, actor, productID); err != nil {
		return nil, err
	}
	if sku == "" {
		return nil, errorbank.BadRequest("sku is required")
	}
	if price.IsNegative() || stock < 0 {
		return nil, errorbank.BadRequest("price and stock must not be negative")
	}
	variant := &entity.ProductVariant{
		ProductID: productID,
		SKU:       sku,
		Label:     label,
		Price:     price,
		Stock:     stock,
	}
	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		return nil, errorbank.Internal("failed to create variant", errorbank.WithCause(err))
	}
	s.evictProduct(ctx, productID)
	return variant, nil
}

// ownedProduct loads a product and checks the actor may write to it.
func (s *Service) ownedProduct(ctx context.Context, actor repo.Scope, id int64) (*entity.Product, error) {
	adminScope := repo.Scope{Role: entity.RoleAdmin}
	product, err := s.repo.GetProduct(ctx, adminScope, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}
	if actor.Role != entity.RoleAdmin && product.CreatedBy != actor.UserID {
		return nil, errorbank.Forbidden("not the owner of this product")
	}
	return product, nil
}

func (s *Service) productKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

func (s *Service) cachedProduct(ctx context.Context, id int64) (*entity.Product, error) {
	bytes, err := s.cache.Get(ctx, s.productKey(id))
	if err != nil {
		return nil, err
	}
	var product entity.Product
	if err := json.Unmarshal(bytes, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) storeProduct(ctx context.Context, product *entity.Product) error {
	bytes, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.productKey(product.ID), bytes, s.cacheTTL)
}

func (s *Service) evictProduct(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, s.productKey(id)); err != nil {
		s.logger.Warn("catalog cache evict failed", zap.Int64("id", id), zap.Error(err))
	}
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
