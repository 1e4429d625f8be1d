package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/bazaar/internal/config"
	"github.com/Additional-Code/bazaar/internal/database"
	"github.com/Additional-Code/bazaar/internal/entity"
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	cfg    config.Config
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, cfg config.Config, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, cfg: cfg, logger: logger}
}

// Run applies all seed sets.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.Accounts(ctx); err != nil {
		return err
	}
	return s.Catalog(ctx)
}

// Accounts seeds an admin, a supplier and a demo customer if missing.
// All three share the password "changeme123".
func (s *Seeder) Accounts(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), s.cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	samples := []entity.User{
		{ID: uuid.NewString(), Email: "admin@bazaar.local", Role: entity.RoleAdmin, EmailVerified: true},
		{ID: uuid.NewString(), Email: "supplier@bazaar.local", Role: entity.RoleSupplier, EmailVerified: true},
		{ID: uuid.NewString(), Email: "demo@bazaar.local", Role: entity.RoleUser, EmailVerified: true, WalletBalance: decimal.NewFromInt(500)},
	}

	for _, sample := range samples {
		user := sample
		user.PasswordHash = string(hash)
		user.CreatedAt = now
		user.UpdatedAt = now
		_, err := s.db.NewInsert().Model(&user).
			On("CONFLICT (email) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded accounts", zap.Int("count", len(samples)))
	}
	return nil
}

// Catalog seeds a published brand, category and a couple of products owned
// by the seeded supplier.
func (s *Seeder) Catalog(ctx context.Context) error {
	var supplier entity.User
	err := s.db.NewSelect().Model(&supplier).
		Where("email = ?", "supplier@bazaar.local").
		Scan(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	brand := entity.Brand{Name: "Acme", Slug: "acme", Status: entity.ListingPublished, CreatedBy: supplier.ID, CreatedAt: now, UpdatedAt: now}
	if _, err := s.db.NewInsert().Model(&brand).On("CONFLICT (slug) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	category := entity.Category{Name: "Essentials", Slug: "essentials", Status: entity.ListingPublished, CreatedBy: supplier.ID, CreatedAt: now, UpdatedAt: now}
	if _, err := s.db.NewInsert().Model(&category).On("CONFLICT (slug) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	samples := []entity.Product{
		{
			Name: "Water Bottle", Slug: "water-bottle",
			Description: "Insulated 750ml bottle",
			Status:      entity.ListingPublished,
			Price:       decimal.NewFromInt(499), Stock: 120,
		},
		{
			Name: "Canvas Tote", Slug: "canvas-tote",
			Description: "Everyday carry tote",
			Status:      entity.ListingPublished,
			Price:       decimal.NewFromInt(299), Stock: 80,
		},
	}

	for _, sample := range samples {
		product := sample
		product.BrandID = brand.ID
		product.CategoryID = category.ID
		product.CreatedBy = supplier.ID
		product.CreatedAt = now
		product.UpdatedAt = now
		_, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (slug) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded catalog", zap.Int("products", len(samples)))
	}
	return nil
}
