package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/config"
	"github.com/streetsupply/streetsupply/internal/messaging"
)

// HandlerRegistration binds message topics to handlers.
type HandlerRegistration struct {
	Topic   string
	Handler messaging.Handler
}

// JobRegistration binds a named periodic job to the engine. Jobs tick on
// their own interval and run independently of message consumption.
type JobRegistration struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Params collects dependencies via Fx.
type Params struct {
	fx.In

	Client        messaging.Client
	Logger        *zap.Logger
	Config        config.Config
	Registrations []HandlerRegistration `group:"worker.handlers"`
	Jobs          []JobRegistration     `group:"worker.jobs"`
}

// Engine orchestrates background message consumption and periodic jobs.
type Engine struct {
	client        messaging.Client
	logger        *zap.Logger
	cfg           config.Config
	registrations map[string]messaging.Handler
	jobs          []JobRegistration
	cancel        context.CancelFunc
	wg            *sync.WaitGroup
}

// NewEngine constructs the worker Engine.
func NewEngine(p Params) *Engine {
	reg := make(map[string]messaging.Handler, len(p.Registrations))
	for _, r := range p.Registrations {
		if r.Topic == "" || r.Handler == nil {
			continue
		}
		reg[r.Topic] = r.Handler
	}

	jobs := make([]JobRegistration, 0, len(p.Jobs))
	for _, j := range p.Jobs {
		if j.Name == "" || j.Interval <= 0 || j.Run == nil {
			continue
		}
		jobs = append(jobs, j)
	}

	return &Engine{
		client:        p.Client,
		logger:        p.Logger,
		cfg:           p.Config,
		registrations: reg,
		jobs:          jobs,
	}
}

// Module wires the engine into Fx lifecycle.
var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Invoke(func(lc fx.Lifecycle, engine *Engine) {
		lc.Append(fx.Hook{
			OnStart: engine.start,
			OnStop:  engine.stop,
		})
	}),
)

func (e *Engine) start(ctx context.Context) error {
	consuming := e.cfg.Messaging.Enabled && e.cfg.Messaging.Workers.Enabled && len(e.registrations) > 0

	if !consuming && len(e.jobs) == 0 {
		e.logger.Info("worker engine has nothing to run; skipping")

		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg = &sync.WaitGroup{}

	concurrency := 0
	if consuming {
		concurrency = e.cfg.Messaging.Workers.Concurrency
		if concurrency <= 0 {
			concurrency = 1
		}

		for i := 0; i < concurrency; i++ {
			workerID := i
			e.wg.Add(1)
			go func() {
				defer e.wg.Done()
				e.consumeLoop(runCtx, workerID)
			}()
		}
	}

	for _, job := range e.jobs {
		job := job
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.jobLoop(runCtx, job)
		}()
	}

	e.logger.Info("worker engine started", zap.Int("workers", concurrency), zap.Int("jobs", len(e.jobs)))

	return nil
}

func (e *Engine) jobLoop(ctx context.Context, job JobRegistration) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				e.logger.Error("periodic job failed", zap.String("job", job.Name), zap.Error(err))
			}
		}
	}
}

func (e *Engine) stop(ctx context.Context) error {
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	done := make(chan struct{})
	go func() {
		if e.wg != nil {
			e.wg.Wait()
		}
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		e.logger.Info("worker engine stopped")

		return nil
	}
}

func (e *Engine) consumeLoop(ctx context.Context, workerID int) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		err := e.client.Consume(ctx, func(msgCtx context.Context, msg messaging.Message) error {
			handler, ok := e.registrations[msg.Topic]
			if !ok {
				e.logger.Warn("no handler for topic", zap.String("topic", msg.Topic))

				return nil
			}

			e.logger.Debug("processing message", zap.String("topic", msg.Topic), zap.Int("worker", workerID))

			return handler(msgCtx, msg)
		})

		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		e.logger.Error("consume loop error", zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
