package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bazaar/internal/database"
	"github.com/Additional-Code/bazaar/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/bazaar/repository/user")

// ErrNotFound is returned when a user is missing.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrNoOTP is returned when no usable OTP exists for the requested purpose.
var ErrNoOTP = errors.New("otp not found")

// ErrInsufficientFunds is returned when a conditional wallet debit matches
// no row, meaning the balance cannot cover the amount.
var ErrInsufficientFunds = errors.New("insufficient wallet balance")

// Repository encapsulates read/write access for users, addresses and OTPs.
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

// Create persists a new user using the write connection.
func (r *Repository) Create(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	ctx, span := repoTracer.Start(ctx, "UserRepository.Create", trace.WithAttributes(attribute.String("user.email", user.Email)))
	defer span.End()

	exists, err := r.writer.NewSelect().Model((*entity.User)(nil)).Where("email = ?", user.Email).Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists check failed")
		return err
	}
	if exists {
		return ErrDuplicateEmail
	}

	_, err = r.writer.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a user by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByID", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	user := new(entity.User)
	err := r.reader.NewSelect().Model(user).Relation("Address").Where("u.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	user := new(entity.User)
	err := r.reader.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return user, nil
}

// MarkEmailVerified flips the verification flag.
func (r *Repository) MarkEmailVerified(ctx context.Context, id string) error {
	_, err := r.writer.NewUpdate().Model((*entity.User)(nil)).
		Set("email_verified = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// UpdatePassword replaces the password hash and bumps the token epoch so
// outstanding refresh tokens stop validating.
func (r *Repository) UpdatePassword(ctx context.Context, id, hash string) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.UpdatePassword", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.User)(nil)).
		Set("password_hash = ?", hash).
		Set("token_epoch = token_epoch + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitWallet decrements the wallet under a balance >= amount guard, the
// same shape as the conditional stock decrement at checkout.
func (r *Repository) DebitWallet(ctx context.Context, id string, amount decimal.Decimal) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.DebitWallet", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.User)(nil)).
		Set("wallet_balance = wallet_balance - ?", amount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ? AND wallet_balance >= ?", id, amount).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// CreditWallet adds to the wallet, used to compensate a debit whose
// settlement failed.
func (r *Repository) CreditWallet(ctx context.Context, id string, amount decimal.Decimal) error {
	res, err := r.writer.NewUpdate().Model((*entity.User)(nil)).
		Set("wallet_balance = wallet_balance + ?", amount).
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

// SaveAddress upserts the user's single address.
func (r *Repository) SaveAddress(ctx context.Context, addr *entity.Address) error {
	if addr == nil {
		return errors.New("nil address")
	}
	_, err := r.writer.NewInsert().Model(addr).
		On("CONFLICT (user_id) DO UPDATE").
		Set("line1 = EXCLUDED.line1").
		Set("line2 = EXCLUDED.line2").
		Set("city = EXCLUDED.city").
		Set("state = EXCLUDED.state").
		Set("postal_code = EXCLUDED.postal_code").
		Set("country = EXCLUDED.country").
		Exec(ctx)
	return err
}

// CreateOTP stores a fresh code, superseding earlier unused ones for the
// same purpose.
func (r *Repository) CreateOTP(ctx context.Context, otp *entity.OTP) error {
	if otp == nil {
		return errors.New("nil otp")
	}
	return r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().Model((*entity.OTP)(nil)).
			Set("used = ?", true).
			Where("user_id = ? AND purpose = ? AND used = ?", otp.UserID, otp.Purpose, false).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(otp).Exec(ctx)
		return err
	})
}

// LatestOTP returns the newest unused code for the user and purpose.
func (r *Repository) LatestOTP(ctx context.Context, userID string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	otp := new(entity.OTP)
	err := r.reader.NewSelect().Model(otp).
		Where("user_id = ? AND purpose = ? AND used = ?", userID, purpose, false).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoOTP
	}
	if err != nil {
		return nil, err
	}
	return otp, nil
}

// UpdateOTP persists attempt counts and the used flag.
func (r *Repository) UpdateOTP(ctx context.Context, otp *entity.OTP) error {
	_, err := r.writer.NewUpdate().Model(otp).WherePK().Exec(ctx)
	return err
}
