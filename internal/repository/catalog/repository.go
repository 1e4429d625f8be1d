package catalog

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
	"github.com/Additional-Code/bazaar/internal/pagination"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/bazaar/repository/catalog")

// ErrNotFound is returned when a catalog row is missing or out of scope.
var ErrNotFound = errors.New("catalog item not found")

// Repository encapsulates read/write access for products, brands,
// categories and variants.
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

// CreateProduct persists a new product.
func (r *Repository) CreateProduct(ctx context.Context, p *entity.Product) error {
	if p == nil {
		return errors.New("nil product")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateProduct", trace.WithAttributes(attribute.String("product.slug", p.Slug)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(p).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// UpdateProduct rewrites the mutable fields of a product.
func (r *Repository) UpdateProduct(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.writer.NewUpdate().Model(p).
		Column("name", "description", "brand_id", "category_id", "price", "stock", "updated_at").
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

// SetProductStatus moves a product through moderation.
func (r *Repository) SetProductStatus(ctx context.Context, id int64, status entity.ListingStatus) error {
	res, err := r.writer.NewUpdate().Model((*entity.Product)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProductImage stores the CDN URL of the product's image.
func (r *Repository) SetProductImage(ctx context.Context, id int64, url string) error {
	res, err := r.writer.NewUpdate().Model((*entity.Product)(nil)).
		Set("image_url = ?", url).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProduct fetches one product visible under the scope, variants included.
func (r *Repository) GetProduct(ctx context.Context, scope Scope, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	p := new(entity.Product)
	q := r.reader.NewSelect().Model(p).Relation("Variants").Where("p.id = ?", id)
	err := scope.apply(q).Scan(ctx)
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

// ListProducts returns products visible under the scope plus the total
// match count for pagination links.
func (r *Repository) ListProducts(ctx context.Context, scope Scope, pr pagination.Request) ([]*entity.Product, int, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListProducts")
	defer span.End()

	var products []*entity.Product
	q := scope.apply(r.reader.NewSelect().Model(&products)).Order("created_at DESC")
	if pr.Paged {
		q = q.Limit(pr.Limit()).Offset(pr.Offset())
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return products, total, nil
}

// CreateBrand persists a new brand.
func (r *Repository) CreateBrand(ctx context.Context, b *entity.Brand) error {
	_, err := r.writer.NewInsert().Model(b).Exec(ctx)
	return err
}

// SetBrandStatus moves a brand through moderation.
func (r *Repository) SetBrandStatus(ctx context.Context, id int64, status entity.ListingStatus) error {
	res, err := r.writer.NewUpdate().Model((*entity.Brand)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBrands returns brands visible under the scope.
func (r *Repository) ListBrands(ctx context.Context, scope Scope, pr pagination.Request) ([]*entity.Brand, int, error) {
	var brands []*entity.Brand
	q := scope.apply(r.reader.NewSelect().Model(&brands)).Order("name ASC")
	if pr.Paged {
		q = q.Limit(pr.Limit()).Offset(pr.Offset())
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return brands, total, nil
}

// CreateCategory persists a new category.
func (r *Repository) CreateCategory(ctx context.Context, c *entity.Category) error {
	_, err := r.writer.NewInsert().Model(c).Exec(ctx)
	return err
}

// SetCategoryStatus moves a category through moderation.
func (r *Repository) SetCategoryStatus(ctx context.Context, id int64, status entity.ListingStatus) error {
	res, err := r.writer.NewUpdate().Model((*entity.Category)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories returns categories visible under the scope.
func (r *Repository) ListCategories(ctx context.Context, scope Scope, pr pagination.Request) ([]*entity.Category, int, error) {
	var categories []*entity.Category
	q := scope.apply(r.reader.NewSelect().Model(&categories)).Order("name ASC")
	if pr.Paged {
		q = q.Limit(pr.Limit()).Offset(pr.Offset())
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// CreateVariant persists a new product variant.
func (r *Repository) CreateVariant(ctx context.Context, v *entity.ProductVariant) error {
	_, err := r.writer.NewInsert().Model(v).Exec(ctx)
	return err
}

// GetVariant fetches one variant by id.
func (r *Repository) GetVariant(ctx context.Context, id int64) (*entity.ProductVariant, error) {
	v := new(entity.ProductVariant)
	err := r.reader.NewSelect().Model(v).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
