package groupoffer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/authz"
	"github.com/streetsupply/streetsupply/internal/config"
	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	"github.com/streetsupply/streetsupply/internal/messaging"
	repo "github.com/streetsupply/streetsupply/internal/repository/groupoffer"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/streetsupply/streetsupply/service/groupoffer")

// OfferCreatedEvent is emitted when a supplier posts a new bulk offer.
type OfferCreatedEvent struct {
	Type           string    `json:"type"`
	OfferID        uuid.UUID `json:"offer_id"`
	SupplierID     uuid.UUID `json:"supplier_id"`
	Deadline       time.Time `json:"deadline"`
	DiscountedRate float64   `json:"discounted_rate"`
	At             time.Time `json:"at"`
}

// EventOfferCreated is the event type tag.
const EventOfferCreated = "offer.created"

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, g *entity.GroupOffer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.GroupOffer, error)
	List(ctx context.Context, f repo.Filter) ([]*entity.GroupOffer, error)
	Update(ctx context.Context, g *entity.GroupOffer) (int64, error)
	Delete(ctx context.Context, id, supplierID uuid.UUID) (int64, error)
}

// PrincipalResolver maps a caller onto its marketplace profiles.
type PrincipalResolver interface {
	Resolve(ctx context.Context, c identity.Caller) (authz.Principal, error)
}

// Service implements time-boxed bulk-discount offers. Offers are publicly
// readable; only the creating supplier may write. Deadline expiry is handled
// by the background sweep, not on read.
type Service struct {
	repo      Repository
	resolver  PrincipalResolver
	logger    *zap.Logger
	publisher messaging.Client
	enabled   bool
	now       func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Resolver   *authz.Resolver
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	svc := newService(p.Repository, p.Resolver, p.Logger)
	svc.publisher = p.Publisher
	svc.enabled = p.Config.Messaging.Enabled
	return svc
}

func newService(repository Repository, resolver PrincipalResolver, logger *zap.Logger) *Service {
	return &Service{
		repo:     repository,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateInput carries a new offer.
type CreateInput struct {
	ProductDescription string
	Quantity           float64
	Unit               string
	ActualRate         float64
	DiscountedRate     float64
	Location           string
	Latitude           *float64
	Longitude          *float64
	Deadline           time.Time
	EstimatedValue     float64
}

// Create posts a bulk offer under the caller's supplier profile. The
// discount percentage is derived from the two rates rather than trusted from
// the caller.
func (s *Service) Create(ctx context.Context, caller identity.Caller, in CreateInput) (*entity.GroupOffer, error) {
	ctx, span := serviceTracer.Start(ctx, "GroupOfferService.Create")
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}
	if !p.IsSupplier() {
		return nil, errorbank.NotFound("supplier profile not found")
	}

	now := s.now().UTC()
	if !in.Deadline.After(now) {
		return nil, errorbank.Violation("deadline", "must be in the future")
	}

	g := &entity.GroupOffer{
		ID:                 uuid.New(),
		SupplierID:         *p.SupplierID,
		ProductDescription: in.ProductDescription,
		Quantity:           in.Quantity,
		Unit:               in.Unit,
		ActualRate:         in.ActualRate,
		DiscountedRate:     in.DiscountedRate,
		DiscountPercent:    discountPercent(in.ActualRate, in.DiscountedRate),
		Location:           in.Location,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		Deadline:           in.Deadline.UTC(),
		Status:             entity.GroupOfferStatusActive,
		EstimatedValue:     in.EstimatedValue,
	}
	if !authz.CanWriteGroupOffer(p, g) {
		return nil, errorbank.NotFound("supplier profile not found")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.Init(now)

	if err := s.repo.Create(ctx, g); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, errorbank.NotFound("supplier profile not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create offer", errorbank.WithCause(err))
	}

	s.publishCreated(ctx, g, now)
	s.logger.Info("group offer created", zap.String("id", g.ID.String()), zap.Time("deadline", g.Deadline))
	return g, nil
}

// Get returns an offer. Public: no policy check beyond existence.
func (s *Service) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*entity.GroupOffer, error) {
	ctx, span := serviceTracer.Start(ctx, "GroupOfferService.Get", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("offer not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load offer", errorbank.WithCause(err))
	}
	return g, nil
}

// List returns offers matching the filter, soonest deadline first.
func (s *Service) List(ctx context.Context, caller identity.Caller, f repo.Filter) ([]*entity.GroupOffer, error) {
	ctx, span := serviceTracer.Start(ctx, "GroupOfferService.List")
	defer span.End()

	offers, err := s.repo.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list offers", errorbank.WithCause(err))
	}
	return offers, nil
}

// UpdateInput carries the mutable offer fields.
type UpdateInput struct {
	ProductDescription *string
	Quantity           *float64
	Unit               *string
	ActualRate         *float64
	DiscountedRate     *float64
	Location           *string
	Latitude           *float64
	Longitude          *float64
	Deadline           *time.Time
	Status             *string
	Participants       *int
	EstimatedValue     *float64
}

// Update mutates an offer owned by the caller's supplier profile.
func (s *Service) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, in UpdateInput) (*entity.GroupOffer, error) {
	ctx, span := serviceTracer.Start(ctx, "GroupOfferService.Update", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("offer not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load offer", errorbank.WithCause(err))
	}
	if !authz.CanWriteGroupOffer(p, g) {
		return nil, errorbank.NotFound("offer not found")
	}

	if in.ProductDescription != nil {
		g.ProductDescription = *in.ProductDescription
	}
	if in.Quantity != nil {
		g.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		g.Unit = *in.Unit
	}
	if in.ActualRate != nil {
		g.ActualRate = *in.ActualRate
	}
	if in.DiscountedRate != nil {
		g.DiscountedRate = *in.DiscountedRate
	}
	if in.ActualRate != nil || in.DiscountedRate != nil {
		g.DiscountPercent = discountPercent(g.ActualRate, g.DiscountedRate)
	}
	if in.Location != nil {
		g.Location = *in.Location
	}
	if in.Latitude != nil {
		g.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		g.Longitude = in.Longitude
	}
	if in.Deadline != nil {
		deadline := in.Deadline.UTC()
		g.Deadline = deadline
	}
	if in.Status != nil {
		g.Status = *in.Status
	}
	if in.Participants != nil {
		g.Participants = *in.Participants
	}
	if in.EstimatedValue != nil {
		g.EstimatedValue = *in.EstimatedValue
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.Touch(s.now())

	rows, err := s.repo.Update(ctx, g)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update offer", errorbank.WithCause(err))
	}
	if rows == 0 {
		return nil, errorbank.NotFound("offer not found")
	}
	return g, nil
}

// Delete removes an offer owned by the caller's supplier profile.
func (s *Service) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	ctx, span := serviceTracer.Start(ctx, "GroupOfferService.Delete", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}
	if !p.IsSupplier() {
		return errorbank.NotFound("offer not found")
	}

	rows, err := s.repo.Delete(ctx, id, *p.SupplierID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete offer", errorbank.WithCause(err))
	}
	if rows == 0 {
		return errorbank.NotFound("offer not found")
	}
	return nil
}

func (s *Service) publishCreated(ctx context.Context, g *entity.GroupOffer, now time.Time) {
	if !s.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(OfferCreatedEvent{
		Type:           EventOfferCreated,
		OfferID:        g.ID,
		SupplierID:     g.SupplierID,
		Deadline:       g.Deadline,
		DiscountedRate: g.DiscountedRate,
		At:             now,
	})
	if err != nil {
		s.logger.Error("marshal offer created", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte("offer-"+g.ID.String()), payload); err != nil {
		s.logger.Error("publish offer created", zap.Error(err))
	}
}

func discountPercent(actual, discounted float64) float64 {
	if actual <= 0 || discounted >= actual {
		return 0
	}
	return (actual - discounted) / actual * 100
}
