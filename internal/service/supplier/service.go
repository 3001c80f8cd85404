package supplier

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
	"github.com/streetsupply/streetsupply/internal/cache"
	"github.com/streetsupply/streetsupply/internal/config"
	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	repo "github.com/streetsupply/streetsupply/internal/repository/supplier"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/streetsupply/streetsupply/service/supplier")

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Supplier, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) (int64, error)
}

// PrincipalResolver maps a caller onto its marketplace profiles.
type PrincipalResolver interface {
	Resolve(ctx context.Context, c identity.Caller) (authz.Principal, error)
	Invalidate(ctx context.Context, accountID string)
}

// Service implements supplier onboarding and the public supplier directory.
// Reads are open to every caller, anonymous included; writes are scoped to
// the owning account. Point reads are cached since the directory is the
// hottest public surface.
type Service struct {
	repo     Repository
	resolver PrincipalResolver
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Resolver   *authz.Resolver
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	svc := newService(p.Repository, p.Resolver, p.Cache, p.Logger)
	svc.cacheTTL = p.Config.Cache.DefaultTTL
	return svc
}

func newService(repository Repository, resolver PrincipalResolver, store cache.Store, logger *zap.Logger) *Service {
	return &Service{
		repo:     repository,
		resolver: resolver,
		cache:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterInput carries the onboarding payload.
type RegisterInput struct {
	BusinessName        string
	OwnerName           string
	Email               string
	Phone               string
	Street              string
	City                string
	State               string
	PostalCode          string
	BusinessType        string
	TaxRegistrationNo   string
	FoodSafetyLicenseNo string
}

// Register creates the caller's supplier profile.
func (s *Service) Register(ctx context.Context, caller identity.Caller, in RegisterInput) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.Register")
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	sup := &entity.Supplier{
		ID:                  uuid.New(),
		AccountID:           p.AccountID,
		BusinessName:        in.BusinessName,
		OwnerName:           in.OwnerName,
		Email:               in.Email,
		Phone:               in.Phone,
		Street:              in.Street,
		City:                in.City,
		State:               in.State,
		PostalCode:          in.PostalCode,
		BusinessType:        in.BusinessType,
		TaxRegistrationNo:   in.TaxRegistrationNo,
		FoodSafetyLicenseNo: in.FoodSafetyLicenseNo,
	}
	if !authz.CanInsertSupplier(p, sup) {
		if p.Anonymous {
			return nil, errorbank.NotFound("supplier profile not found")
		}
		return nil, errorbank.Conflict("supplier profile already exists")
	}
	if err := sup.Validate(); err != nil {
		return nil, err
	}
	sup.Init(s.now())

	if err := s.repo.Create(ctx, sup); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errorbank.Conflict("supplier profile already exists")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create supplier", errorbank.WithCause(err))
	}

	s.resolver.Invalidate(ctx, p.AccountID)
	s.logger.Info("supplier registered", zap.String("id", sup.ID.String()))
	return sup, nil
}

// Get returns a supplier profile. Public: no policy check beyond existence.
func (s *Service) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.Get", trace.WithAttributes(attribute.String("supplier.id", id.String())))
	defer span.End()

	if sup, err := s.fromCache(ctx, id); err == nil {
		return sup, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("suppliers cache read failed", zap.String("id", id.String()), zap.Error(err))
	}

	sup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("supplier not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load supplier", errorbank.WithCause(err))
	}

	if err := s.toCache(ctx, sup); err != nil {
		s.logger.Warn("suppliers cache write failed", zap.String("id", id.String()), zap.Error(err))
	}
	return sup, nil
}

// List returns the public supplier directory, best rated first.
func (s *Service) List(ctx context.Context, caller identity.Caller, limit, offset int) ([]*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.List")
	defer span.End()

	suppliers, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list suppliers", errorbank.WithCause(err))
	}
	return suppliers, nil
}

// UpdateInput carries the mutable profile fields. Rating and review counts
// are included because the review pipeline writes them through the same
// owner-scoped path.
type UpdateInput struct {
	BusinessName        *string
	OwnerName           *string
	Email               *string
	Phone               *string
	Street              *string
	City                *string
	State               *string
	PostalCode          *string
	BusinessType        *string
	TaxRegistrationNo   *string
	FoodSafetyLicenseNo *string
	Rating              *float64
	TotalReviews        *int
}

// Update mutates the caller's own profile and stamps the modification time.
func (s *Service) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, in UpdateInput) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.Update", trace.WithAttributes(attribute.String("supplier.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	sup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("supplier not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load supplier", errorbank.WithCause(err))
	}
	if !authz.CanUpdateSupplier(p, sup) {
		return nil, errorbank.NotFound("supplier not found")
	}

	applyString(&sup.BusinessName, in.BusinessName)
	applyString(&sup.OwnerName, in.OwnerName)
	applyString(&sup.Email, in.Email)
	applyString(&sup.Phone, in.Phone)
	applyString(&sup.Street, in.Street)
	applyString(&sup.City, in.City)
	applyString(&sup.State, in.State)
	applyString(&sup.PostalCode, in.PostalCode)
	applyString(&sup.BusinessType, in.BusinessType)
	applyString(&sup.TaxRegistrationNo, in.TaxRegistrationNo)
	applyString(&sup.FoodSafetyLicenseNo, in.FoodSafetyLicenseNo)
	if in.Rating != nil {
		sup.Rating = *in.Rating
	}
	if in.TotalReviews != nil {
		sup.TotalReviews = *in.TotalReviews
	}

	if err := sup.Validate(); err != nil {
		return nil, err
	}
	sup.Touch(s.now())

	rows, err := s.repo.Update(ctx, sup)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update supplier", errorbank.WithCause(err))
	}
	if rows == 0 {
		return nil, errorbank.NotFound("supplier not found")
	}

	s.dropFromCache(ctx, sup.ID)
	s.resolver.Invalidate(ctx, sup.AccountID)
	return sup, nil
}

func cacheKey(id uuid.UUID) string {
	return "suppliers:" + id.String()
}

func (s *Service) fromCache(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	raw, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		return nil, err
	}
	var sup entity.Supplier
	if err := json.Unmarshal(raw, &sup); err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *Service) toCache(ctx context.Context, sup *entity.Supplier) error {
	if s.cache == nil || sup == nil {
		return nil
	}
	raw, err := json.Marshal(sup)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cacheKey(sup.ID), raw, s.cacheTTL)
}

func (s *Service) dropFromCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("suppliers cache delete failed", zap.String("id", id.String()), zap.Error(err))
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
