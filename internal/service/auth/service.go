package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/bazaar/internal/config"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/gateway/oauth"
	"github.com/Additional-Code/bazaar/internal/notify"
	repo "github.com/Additional-Code/bazaar/internal/repository/user"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bazaar/service/auth")

// Service implements registration, verification, login, token rotation and
// password reset.
type Service struct {
	repo    *repo.Repository
	tokens  *Tokens
	sender  notify.Sender
	oauth   *oauth.Client
	logger  *zap.Logger
	otpCfg  config.OTP
	bcryptC int
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Tokens     *Tokens
	Sender     notify.Sender
	OAuth      *oauth.Client
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:    p.Repository,
		tokens:  p.Tokens,
		sender:  p.Sender,
		oauth:   p.OAuth,
		logger:  p.Logger,
		otpCfg:  p.Config.OTP,
		bcryptC: p.Config.Auth.BcryptCost,
	}
}

// Register creates an account in the user role and sends a registration OTP.
func (s *Service) Register(ctx context.Context, email, phone, password string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errorbank.BadRequest("a valid email is required")
	}
	if len(password) < 8 {
		return nil, errorbank.BadRequest("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptC)
	if err != nil {
		return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, errorbank.Conflict("email already registered")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}

	if err := s.issueOTP(ctx, user, entity.OTPPurposeRegistration); err != nil {
		s.logger.Warn("registration otp delivery failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// VerifyOTP consumes a code for the given purpose. Registration codes mark
// the email verified.
func (s *Service) VerifyOTP(ctx context.Context, email, code string, purpose entity.OTPPurpose) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.VerifyOTP", trace.WithAttributes(attribute.String("otp.purpose", string(purpose))))
	defer span.End()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	otp, err := s.repo.LatestOTP(ctx, user.ID, purpose)
	if err != nil {
		if errors.Is(err, repo.ErrNoOTP) {
			return nil, errorbank.BadRequest("no active code; request a new one")
		}
		return nil, errorbank.Internal("failed to load code", errorbank.WithCause(err))
	}

	if otp.Expired(time.Now().UTC()) {
		return nil, errorbank.BadRequest("code expired; request a new one")
	}
	if otp.Attempts >= s.otpCfg.MaxAttempts {
		return nil, errorbank.BadRequest("too many attempts; request a new one")
	}

	otp.Attempts++
	if otp.Code != code {
		_ = s.repo.UpdateOTP(ctx, otp)
		return nil, errorbank.BadRequest("incorrect code")
	}

	otp.Used = true
	if err := s.repo.UpdateOTP(ctx, otp); err != nil {
		return nil, errorbank.Internal("failed to consume code", errorbank.WithCause(err))
	}

	if purpose == entity.OTPPurposeRegistration && !user.EmailVerified {
		if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, errorbank.Internal("failed to mark verified", errorbank.WithCause(err))
		}
		user.EmailVerified = true
	}
	return user, nil
}

// Login checks credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, *TokenPair, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		// Uniform response; do not reveal whether the account exists.
		return nil, nil, errorbank.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, errorbank.Unauthorized("invalid credentials")
	}
	if !user.EmailVerified {
		return nil, nil, errorbank.Forbidden("email not verified")
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, nil, errorbank.Internal("failed to issue tokens", errorbank.WithCause(err))
	}
	return user, pair, nil
}

// RequestLoginOTP issues a login code as a password alternative. Unknown
// emails are treated as success to avoid account enumeration.
func (s *Service) RequestLoginOTP(ctx context.Context, email string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.RequestLoginOTP")
	defer span.End()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil
	}
	if err := s.issueOTP(ctx, user, entity.OTPPurposeLogin); err != nil {
		s.logger.Warn("login otp delivery failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// LoginWithOTP consumes a login code and issues a token pair.
func (s *Service) LoginWithOTP(ctx context.Context, email, code string) (*entity.User, *TokenPair, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.LoginWithOTP")
	defer span.End()

	user, err := s.VerifyOTP(ctx, email, code, entity.OTPPurposeLogin)
	if err != nil {
		return nil, nil, err
	}
	if !user.EmailVerified {
		return nil, nil, errorbank.Forbidden("email not verified")
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, nil, errorbank.Internal("failed to issue tokens", errorbank.WithCause(err))
	}
	return user, pair, nil
}

// LoginWithProvider delegates login to the configured identity provider.
// The provider token is resolved to a verified profile; a first sign-in
// provisions an account in the user role with no local password.
func (s *Service) LoginWithProvider(ctx context.Context, providerToken string) (*entity.User, *TokenPair, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.LoginWithProvider")
	defer span.End()

	if strings.TrimSpace(providerToken) == "" {
		return nil, nil, errorbank.BadRequest("provider token is required")
	}

	profile, err := s.oauth.Userinfo(ctx, providerToken)
	if err != nil {
		span.RecordError(err)
		return nil, nil, errorbank.Unauthorized("provider rejected the token")
	}
	if profile.Email == "" || !profile.EmailVerified {
		return nil, nil, errorbank.Unauthorized("provider did not assert a verified email")
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	user, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		now := time.Now().UTC()
		user = &entity.User{
			ID:            uuid.NewString(),
			Email:         email,
			Role:          entity.RoleUser,
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, nil, errorbank.Internal("failed to provision user", errorbank.WithCause(err))
		}
	case err != nil:
		return nil, nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, nil, errorbank.Internal("failed to issue tokens", errorbank.WithCause(err))
	}
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued, so each refresh token is single-use.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, errorbank.Unauthorized("invalid refresh token")
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, errorbank.Unauthorized("invalid refresh token")
	}
	if user.TokenEpoch != claims.Epoch {
		// Password reset since issuance; the whole session family is dead.
		return nil, errorbank.Unauthorized("invalid refresh token")
	}

	if err := s.tokens.Revoke(ctx, claims); err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to rotate token", errorbank.WithCause(err))
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errorbank.Internal("failed to issue tokens", errorbank.WithCause(err))
	}
	return pair, nil
}

// Logout revokes the presented access token and, when supplied, the
// session's refresh token.
func (s *Service) Logout(ctx context.Context, accessClaims *Claims, refreshToken string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.tokens.Revoke(ctx, accessClaims); err != nil {
		return errorbank.Internal("failed to revoke token", errorbank.WithCause(err))
	}
	if refreshToken != "" {
		if claims, err := s.tokens.VerifyRefresh(ctx, refreshToken); err == nil {
			if err := s.tokens.Revoke(ctx, claims); err != nil {
				return errorbank.Internal("failed to revoke token", errorbank.WithCause(err))
			}
		}
	}
	return nil
}

// Authenticate validates a bearer token for the HTTP middleware.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	claims, err := s.tokens.VerifyAccess(ctx, accessToken)
	if err != nil {
		return nil, errorbank.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// RequestPasswordReset issues a password_reset OTP. Unknown emails are
// treated as success to avoid account enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.RequestPasswordReset")
	defer span.End()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil
	}
	if err := s.issueOTP(ctx, user, entity.OTPPurposePasswordReset); err != nil {
		s.logger.Warn("password reset otp delivery failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ConfirmPasswordReset consumes the reset OTP and replaces the password.
// The epoch bump in the repository invalidates all outstanding refresh
// tokens for the account.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.ConfirmPasswordReset")
	defer span.End()

	if len(newPassword) < 8 {
		return errorbank.BadRequest("password must be at least 8 characters")
	}

	user, err := s.VerifyOTP(ctx, email, code, entity.OTPPurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptC)
	if err != nil {
		return errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to update password", errorbank.WithCause(err))
	}
	return nil
}

// SaveAddress upserts the caller's shipping address.
func (s *Service) SaveAddress(ctx context.Context, userID string, addr *entity.Address) error {
	if addr == nil || addr.Line1 == "" || addr.City == "" || addr.PostalCode == "" {
		return errorbank.BadRequest("line1, city and postal_code are required")
	}
	addr.UserID = userID
	if err := s.repo.SaveAddress(ctx, addr); err != nil {
		return errorbank.Internal("failed to save address", errorbank.WithCause(err))
	}
	return nil
}

// Profile returns the caller's account with address attached.
func (s *Service) Profile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("user not found")
		}
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return user, nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("user not found")
		}
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return user, nil
}

func (s *Service) issueOTP(ctx context.Context, user *entity.User, purpose entity.OTPPurpose) error {
	code, err := numericCode(s.otpCfg.Length)
	if err != nil {
		return err
	}
	otp := &entity.OTP{
		UserID:    user.ID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().UTC().Add(s.otpCfg.TTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateOTP(ctx, otp); err != nil {
		return err
	}

	subject, body := otpMessage(purpose, code, s.otpCfg.TTL)
	if err := s.sender.SendEmail(ctx, user.Email, subject, body); err != nil {
		return err
	}
	if user.Phone != "" {
		if err := s.sender.SendSMS(ctx, user.Phone, body); err != nil {
			s.logger.Warn("sms delivery failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// otpMessage composes the delivery subject and body for a code.
func otpMessage(purpose entity.OTPPurpose, code string, ttl time.Duration) (string, string) {
	subject := "Your verification code"
	switch purpose {
	case entity.OTPPurposePasswordReset:
		subject = "Your password reset code"
	case entity.OTPPurposeLogin:
		subject = "Your login code"
	}
	return subject, fmt.Sprintf("Your code is %s. It expires in %s.", code, ttl)
}

func numericCode(length int) (string, error) {
	const digits = "0123456789"
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf), nil
}
