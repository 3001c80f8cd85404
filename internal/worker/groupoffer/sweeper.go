package groupoffer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/config"
	repo "github.com/streetsupply/streetsupply/internal/repository/groupoffer"
	"github.com/streetsupply/streetsupply/internal/worker"
)

var workerTracer = otel.Tracer("github.com/streetsupply/streetsupply/worker/groupoffer")

// Module registers the offer deadline sweeper.
var Module = fx.Module("worker_groupoffer",
	fx.Provide(
		fx.Annotate(
			NewSweeper,
			fx.ResultTags(`group:"worker.jobs"`),
		),
	),
)

// Expirer flips active offers past their deadline to expired.
type Expirer interface {
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// NewSweeper sets up the periodic job that expires offers whose deadline has
// passed. Expiry happens here, never on read, so reads stay cheap and the
// expired status is visible to every caller at the same moment.
func NewSweeper(repository *repo.Repository, logger *zap.Logger, cfg config.Config) worker.JobRegistration {
	return worker.JobRegistration{
		Name:     "groupoffer.sweep",
		Interval: cfg.Messaging.Workers.SweepInterval,
		Run:      sweep(repository, logger),
	}
}

func sweep(expirer Expirer, logger *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, span := workerTracer.Start(ctx, "worker.group_offers.sweep")
		defer span.End()

		expired, err := expirer.MarkExpired(ctx, time.Now().UTC())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "sweep error")
			return err
		}
		span.SetAttributes(attribute.Int64("offers.expired", expired))

		if expired > 0 {
			logger.Info("expired offers swept", zap.Int64("count", expired))
		}
		return nil
	}
}
