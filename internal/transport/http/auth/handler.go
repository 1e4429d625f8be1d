package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/bazaar/internal/dto"
	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/presentation/http/response"
	service "github.com/Additional-Code/bazaar/internal/service/auth"
	"github.com/Additional-Code/bazaar/internal/transport/http/middleware"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bazaar/transport/http/auth")

// Handler exposes account and session endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, mw *middleware.Auth) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/verify-otp", h.verifyOTP)
	g.POST("/login", h.login)
	g.POST("/login-otp", h.requestLoginOTP)
	g.POST("/login-otp/verify", h.loginWithOTP)
	g.POST("/oauth", h.oauthLogin)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout, mw.Required)
	g.POST("/password-reset", h.requestReset)
	g.POST("/password-reset/confirm", h.confirmReset)

	me := e.Group("/me", mw.Required)
	me.GET("", h.profile)
	me.PUT("/address", h.saveAddress)
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload dto.RegisterRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.register")
	defer span.End()

	user, err := h.svc.Register(ctx, payload.Email, payload.Phone, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toUserDTO(user)).Build()
}

func (h *Handler) verifyOTP(c echo.Context) error {
	b := response.New(c)

	var payload dto.VerifyOTPRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.verifyOTP")
	defer span.End()

	user, err := h.svc.VerifyOTP(ctx, payload.Email, payload.Code, entity.OTPPurposeRegistration)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toUserDTO(user)).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload dto.LoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	user, pair, err := h.svc.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]any{
		"user":   toUserDTO(user),
		"tokens": toTokenDTO(pair),
	}).Build()
}

func (h *Handler) requestLoginOTP(c echo.Context) error {
	b := response.New(c)

	var payload dto.LoginOTPRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.requestLoginOTP")
	defer span.End()

	if err := h.svc.RequestLoginOTP(ctx, payload.Email); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusAccepted).Build()
}

func (h *Handler) loginWithOTP(c echo.Context) error {
	b := response.New(c)

	var payload dto.VerifyOTPRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.loginWithOTP")
	defer span.End()

	user, pair, err := h.svc.LoginWithOTP(ctx, payload.Email, payload.Code)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]any{
		"user":   toUserDTO(user),
		"tokens": toTokenDTO(pair),
	}).Build()
}

func (h *Handler) oauthLogin(c echo.Context) error {
	b := response.New(c)

	var payload dto.OAuthLoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.oauthLogin")
	defer span.End()

	user, pair, err := h.svc.LoginWithProvider(ctx, payload.ProviderToken)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]any{
		"user":   toUserDTO(user),
		"tokens": toTokenDTO(pair),
	}).Build()
}

func (h *Handler) refresh(c echo.Context) error {
	b := response.New(c)

	var payload dto.RefreshRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.refresh")
	defer span.End()

	pair, err := h.svc.Refresh(ctx, payload.RefreshToken)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toTokenDTO(pair)).Build()
}

func (h *Handler) logout(c echo.Context) error {
	b := response.New(c)

	var payload dto.LogoutRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.logout")
	defer span.End()

	if err := h.svc.Logout(ctx, middleware.ClaimsFrom(c), payload.RefreshToken); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) requestReset(c echo.Context) error {
	b := response.New(c)

	var payload dto.PasswordResetRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.requestReset")
	defer span.End()

	if err := h.svc.RequestPasswordReset(ctx, payload.Email); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusAccepted).Build()
}

func (h *Handler) confirmReset(c echo.Context) error {
	b := response.New(c)

	var payload dto.PasswordResetConfirmRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.confirmReset")
	defer span.End()

	if err := h.svc.ConfirmPasswordReset(ctx, payload.Email, payload.Code, payload.NewPassword); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) profile(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.profile")
	defer span.End()

	user, err := h.svc.Profile(ctx, middleware.ClaimsFrom(c).Subject)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toUserDTO(user)).Build()
}

func (h *Handler) saveAddress(c echo.Context) error {
	b := response.New(c)

	var payload dto.AddressRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.saveAddress")
	defer span.End()

	addr := &entity.Address{
		Line1:      payload.Line1,
		Line2:      payload.Line2,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
	}
	if err := h.svc.SaveAddress(ctx, middleware.ClaimsFrom(c).Subject, addr); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func toUserDTO(user *entity.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Phone:         user.Phone,
		Role:          string(user.Role),
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
	if user.Address != nil {
		resp.Address = &dto.AddressResponse{
			Line1:      user.Address.Line1,
			Line2:      user.Address.Line2,
			City:       user.Address.City,
			State:      user.Address.State,
			PostalCode: user.Address.PostalCode,
			Country:    user.Address.Country,
		}
	}
	return resp
}

func toTokenDTO(pair *service.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
