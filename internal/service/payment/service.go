package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/entity"
	gateway "github.com/Additional-Code/bazaar/internal/gateway/payment"
	cartrepo "github.com/Additional-Code/bazaar/internal/repository/cart"
	repo "github.com/Additional-Code/bazaar/internal/repository/payment"
	userrepo "github.com/Additional-Code/bazaar/internal/repository/user"
	ordersvc "github.com/Additional-Code/bazaar/internal/service/order"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bazaar/service/payment")

// Intent is what a checkout attempt returns to the client. Order is set
// once the payment settles (immediately for cod and wallet); for gateway
// payments the client completes checkout with GatewayOrderID and KeyID and
// then calls Confirm.
type Intent struct {
	Payment        *entity.Payment
	Order          *entity.Order
	GatewayOrderID string
	GatewayKeyID   string
}

// Service settles payments and hands successful ones off to order
// placement. The cart is only consumed by that handoff, so a failed or
// abandoned payment leaves the cart intact.
type Service struct {
	repo    *repo.Repository
	cart    *cartrepo.Repository
	users   *userrepo.Repository
	orders  *ordersvc.Service
	gateway *gateway.Client
	logger  *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cart       *cartrepo.Repository
	Users      *userrepo.Repository
	Orders     *ordersvc.Service
	Gateway    *gateway.Client
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:    p.Repository,
		cart:    p.Cart,
		users:   p.Users,
		orders:  p.Orders,
		gateway: p.Gateway,
		logger:  p.Logger,
	}
}

// Checkout starts settlement of the user's cart with the chosen method.
// Cash on delivery and wallet settle inline and place the order; gateway
// payments return a pending intent for the client to complete.
func (s *Service) Checkout(ctx context.Context, userID string, method entity.PaymentMethod, shipAddress string) (*Intent, error) {
	ctx, span := serviceTracer.Start(ctx, "PaymentService.Checkout", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("payment.method", string(method)),
	))
	defer span.End()

	if !method.Valid() {
		return nil, errorbank.BadRequest("unsupported payment method")
	}

	amount, err := s.cartSubtotal(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, errorbank.Unprocessable("cart is empty")
	}

	now := time.Now().UTC()
	payment := &entity.Payment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Method:    method,
		Status:    entity.PaymentPending,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch method {
	case entity.PaymentMethodRazorpay:
		gw, err := s.gateway.CreateOrder(ctx, amount, payment.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "gateway error")
			return nil, errorbank.Internal("payment gateway unavailable", errorbank.WithCause(err))
		}
		payment.GatewayOrderID = gw.ID
		if err := s.repo.Create(ctx, payment); err != nil {
			return nil, errorbank.Internal("failed to record payment", errorbank.WithCause(err))
		}
		return &Intent{
			Payment:        payment,
			GatewayOrderID: gw.ID,
			GatewayKeyID:   s.gateway.KeyID(),
		}, nil

	case entity.PaymentMethodWallet:
		if err := s.users.DebitWallet(ctx, userID, amount); err != nil {
			if errors.Is(err, userrepo.ErrInsufficientFunds) {
				return nil, errorbank.Unprocessable("insufficient wallet balance")
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "wallet debit failed")
			return nil, errorbank.Internal("failed to debit wallet", errorbank.WithCause(err))
		}
		if err := s.repo.Create(ctx, payment); err != nil {
			return nil, errorbank.Internal("failed to record payment", errorbank.WithCause(err))
		}
		order, err := s.settle(ctx, payment, shipAddress)
		if err != nil {
			s.refundWallet(ctx, payment)
			return nil, err
		}
		return &Intent{Payment: payment, Order: order}, nil

	default: // cod collects on delivery, the order is placed right away
		order, err := s.orders.Place(ctx, userID, shipAddress, "")
		if err != nil {
			return nil, err
		}
		payment.Status = entity.PaymentSuccess
		payment.OrderID = order.ID
		if err := s.repo.Create(ctx, payment); err != nil {
			return nil, errorbank.Internal("failed to record payment", errorbank.WithCause(err))
		}
		return &Intent{Payment: payment, Order: order}, nil
	}
}

// Confirm completes a gateway payment. The signature is checked against the
// gateway secret; a valid one marks the payment successful and places the
// order, an invalid one marks it failed and leaves the cart untouched.
func (s *Service) Confirm(ctx context.Context, userID, paymentID, gatewayPaymentID, signature, shipAddress string) (*Intent, error) {
	ctx, span := serviceTracer.Start(ctx, "PaymentService.Confirm", trace.WithAttributes(attribute.String("payment.id", paymentID)))
	defer span.End()

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("payment not found")
		}
		return nil, errorbank.Internal("failed to load payment", errorbank.WithCause(err))
	}
	if payment.UserID != userID {
		return nil, errorbank.NotFound("payment not found")
	}
	if payment.Method != entity.PaymentMethodRazorpay {
		return nil, errorbank.BadRequest("payment does not need confirmation")
	}
	if payment.Status != entity.PaymentPending {
		return nil, errorbank.Conflict("payment already settled")
	}

	if !s.gateway.Verify(payment.GatewayOrderID, gatewayPaymentID, signature) {
		payment.Status = entity.PaymentFailed
		payment.GatewayPaymentID = gatewayPaymentID
		payment.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, payment); err != nil {
			s.logger.Error("failed to record failed payment", zap.String("payment_id", paymentID), zap.Error(err))
		}
		span.SetStatus(codes.Error, "signature mismatch")
		return nil, errorbank.Unprocessable("invalid payment signature")
	}

	payment.GatewayPaymentID = gatewayPaymentID
	payment.GatewaySignature = signature
	payment.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, errorbank.Internal("failed to record payment", errorbank.WithCause(err))
	}

	// Settle before flipping to success: a drifted cart leaves the payment
	// pending with its gateway references recorded for reconciliation.
	order, err := s.settle(ctx, payment, shipAddress)
	if err != nil {
		return nil, err
	}
	return &Intent{Payment: payment, Order: order}, nil
}

// Get returns one of the user's payments.
func (s *Service) Get(ctx context.Context, userID, id string) (*entity.Payment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("payment not found")
		}
		return nil, errorbank.Internal("failed to load payment", errorbank.WithCause(err))
	}
	if payment.UserID != userID {
		return nil, errorbank.NotFound("payment not found")
	}
	return payment, nil
}

// List returns the user's payment history, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*entity.Payment, error) {
	payments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errorbank.Internal("failed to list payments", errorbank.WithCause(err))
	}
	return payments, nil
}

// settle checks the cart still matches the authorized amount, places the
// order, then flips the payment to success with the order linked. The cart
// stays open between a gateway checkout and its confirmation, so the
// re-check catches lines added, removed or repriced in between.
func (s *Service) settle(ctx context.Context, payment *entity.Payment, shipAddress string) (*entity.Order, error) {
	subtotal, err := s.cartSubtotal(ctx, payment.UserID)
	if err != nil {
		return nil, err
	}
	if err := checkSettlement(payment.Amount, subtotal); err != nil {
		return nil, err
	}

	order, err := s.orders.Place(ctx, payment.UserID, shipAddress, payment.ID)
	if err != nil {
		return nil, err
	}
	payment.Status = entity.PaymentSuccess
	payment.OrderID = order.ID
	payment.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Error("failed to link payment to order",
			zap.String("payment_id", payment.ID),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
	return order, nil
}

// checkSettlement rejects settlement when the cart drifted from the amount
// the payment was authorized for.
func checkSettlement(authorized, subtotal decimal.Decimal) error {
	if subtotal.IsZero() {
		return errorbank.Conflict("cart emptied since checkout; start a new checkout")
	}
	if !subtotal.Equal(authorized) {
		return errorbank.Conflict("cart changed since checkout; start a new checkout",
			errorbank.WithDetail("authorized", authorized.StringFixed(2)),
			errorbank.WithDetail("cart_subtotal", subtotal.StringFixed(2)),
		)
	}
	return nil
}

// refundWallet compensates a wallet debit whose settlement failed and marks
// the payment failed.
func (s *Service) refundWallet(ctx context.Context, payment *entity.Payment) {
	if err := s.users.CreditWallet(ctx, payment.UserID, payment.Amount); err != nil {
		s.logger.Error("wallet refund failed",
			zap.String("payment_id", payment.ID),
			zap.String("user_id", payment.UserID),
			zap.Error(err),
		)
	}
	payment.Status = entity.PaymentFailed
	payment.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Error("failed to record failed payment", zap.String("payment_id", payment.ID), zap.Error(err))
	}
}

func (s *Service) cartSubtotal(ctx context.Context, userID string) (decimal.Decimal, error) {
	lines, err := s.cart.List(ctx, userID)
	if err != nil {
		return decimal.Zero, errorbank.Internal("failed to load cart", errorbank.WithCause(err))
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	return subtotal, nil
}
