package orderevents

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/config"
	"github.com/streetsupply/streetsupply/internal/messaging"
	ordersvc "github.com/streetsupply/streetsupply/internal/service/order"
	"github.com/streetsupply/streetsupply/internal/worker"
)

var (
	workerTracer = otel.Tracer("github.com/streetsupply/streetsupply/worker/orderevents")
	workerMeter  = otel.Meter("github.com/streetsupply/streetsupply/worker/orderevents")
)

// Module registers the order lifecycle event consumer.
var Module = fx.Module("worker_orderevents",
	fx.Provide(
		fx.Annotate(
			NewHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewHandler sets up a worker handler that consumes order lifecycle events
// from the marketplace bus. Unknown event types are logged and dropped so a
// schema addition never wedges the consumer.
func NewHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	processed, err := workerMeter.Int64Counter("order_events_processed_total",
		metric.WithDescription("Order lifecycle events consumed, by event type"))
	if err != nil {
		logger.Warn("failed to register order event counter", zap.Error(err))
	}

	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		if processed != nil {
			processed.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", event.Type)))
		}

		switch event.Type {
		case ordersvc.EventOrderCreated, ordersvc.EventOrderStatusChanged, ordersvc.EventOrderAccepted:
			logger.Info("order event processed",
				zap.String("type", event.Type),
				zap.String("id", event.OrderID.String()),
				zap.String("number", event.OrderNumber),
				zap.String("status", event.Status),
			)
		default:
			logger.Warn("unknown order event type", zap.String("type", event.Type))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
