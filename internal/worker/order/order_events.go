package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
	"github.com/Additional-Code/bazaar/internal/messaging"
	"github.com/Additional-Code/bazaar/internal/notify"
	userrepo "github.com/Additional-Code/bazaar/internal/repository/user"
	ordersvc "github.com/Additional-Code/bazaar/internal/service/order"
	"github.com/Additional-Code/bazaar/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/bazaar/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler consumes order events and notifies the customer.
func NewOrderEventsHandler(logger *zap.Logger, cfg config.Config, users *userrepo.Repository, sender notify.Sender) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		user, err := users.GetByID(ctx, event.UserID)
		if err != nil {
			logger.Warn("order event for unknown user",
				zap.String("order_id", event.ID),
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			return nil
		}

		subject, body := composeNotification(event)
		if err := sender.SendEmail(ctx, user.Email, subject, body); err != nil {
			logger.Error("order notification failed",
				zap.String("order_id", event.ID),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "notify error")
			return err
		}

		logger.Info("order event processed",
			zap.String("kind", event.Kind),
			zap.String("number", event.Number),
			zap.String("status", event.Status),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}

func composeNotification(event ordersvc.OrderEvent) (subject, body string) {
	switch event.Kind {
	case ordersvc.EventOrderPlaced:
		subject = fmt.Sprintf("Order %s confirmed", event.Number)
		body = fmt.Sprintf("Thanks for your purchase. Order %s for %s has been placed.", event.Number, event.Total)
	default:
		subject = fmt.Sprintf("Order %s update", event.Number)
		body = fmt.Sprintf("Order %s is now %s.", event.Number, event.Status)
	}
	return subject, body
}
