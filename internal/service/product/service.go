package product

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
	repo "github.com/streetsupply/streetsupply/internal/repository/product"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/streetsupply/streetsupply/service/product")

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context, f repo.Filter) ([]*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) (int64, error)
	Delete(ctx context.Context, id, supplierID uuid.UUID) (int64, error)
}

// PrincipalResolver maps a caller onto its marketplace profiles.
type PrincipalResolver interface {
	Resolve(ctx context.Context, c identity.Caller) (authz.Principal, error)
}

// Service implements the public catalog. Anyone can browse; only the owning
// supplier can list, reprice, or retire a product.
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

// CreateInput carries a new catalog listing.
type CreateInput struct {
	Name             string
	Category         string
	Unit             string
	PricePerUnit     float64
	MinOrderQuantity int
	StockAvailable   *bool
	Description      string
	ImageURL         string
}

// Create lists a product under the caller's supplier profile.
func (s *Service) Create(ctx context.Context, caller identity.Caller, in CreateInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Create")
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}
	if !p.IsSupplier() {
		return nil, errorbank.NotFound("supplier profile not found")
	}

	minQty := in.MinOrderQuantity
	if minQty == 0 {
		minQty = 1
	}
	stock := true
	if in.StockAvailable != nil {
		stock = *in.StockAvailable
	}
	pr := &entity.Product{
		ID:               uuid.New(),
		SupplierID:       *p.SupplierID,
		Name:             in.Name,
		Category:         in.Category,
		Unit:             in.Unit,
		PricePerUnit:     in.PricePerUnit,
		MinOrderQuantity: minQty,
		StockAvailable:   stock,
		Description:      in.Description,
		ImageURL:         in.ImageURL,
	}
	if !authz.CanWriteProduct(p, pr) {
		return nil, errorbank.NotFound("supplier profile not found")
	}
	if err := pr.Validate(); err != nil {
		return nil, err
	}
	pr.Init(s.now())

	if err := s.repo.Create(ctx, pr); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, errorbank.NotFound("supplier profile not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}
	return pr, nil
}

// Get returns a catalog product. Public: no policy check beyond existence.
func (s *Service) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Get", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	if pr, err := s.fromCache(ctx, id); err == nil {
		return pr, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("products cache read failed", zap.String("id", id.String()), zap.Error(err))
	}

	pr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if err := s.toCache(ctx, pr); err != nil {
		s.logger.Warn("products cache write failed", zap.String("id", id.String()), zap.Error(err))
	}
	return pr, nil
}

// List returns catalog products matching the filter.
func (s *Service) List(ctx context.Context, caller identity.Caller, f repo.Filter) ([]*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.List")
	defer span.End()

	products, err := s.repo.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}
	return products, nil
}

// UpdateInput carries the mutable listing fields.
type UpdateInput struct {
	Name             *string
	Category         *string
	Unit             *string
	PricePerUnit     *float64
	MinOrderQuantity *int
	StockAvailable   *bool
	Description      *string
	ImageURL         *string
}

// Update mutates a listing owned by the caller's supplier profile.
func (s *Service) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, in UpdateInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	pr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}
	if !authz.CanWriteProduct(p, pr) {
		return nil, errorbank.NotFound("product not found")
	}

	if in.Name != nil {
		pr.Name = *in.Name
	}
	if in.Category != nil {
		pr.Category = *in.Category
	}
	if in.Unit != nil {
		pr.Unit = *in.Unit
	}
	if in.PricePerUnit != nil {
		pr.PricePerUnit = *in.PricePerUnit
	}
	if in.MinOrderQuantity != nil {
		pr.MinOrderQuantity = *in.MinOrderQuantity
	}
	if in.StockAvailable != nil {
		pr.StockAvailable = *in.StockAvailable
	}
	if in.Description != nil {
		pr.Description = *in.Description
	}
	if in.ImageURL != nil {
		pr.ImageURL = *in.ImageURL
	}

	if err := pr.Validate(); err != nil {
		return nil, err
	}
	pr.Touch(s.now())

	rows, err := s.repo.Update(ctx, pr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}
	if rows == 0 {
		return nil, errorbank.NotFound("product not found")
	}

	s.dropFromCache(ctx, pr.ID)
	return pr, nil
}

// Delete retires a listing. Products referenced by order items cannot be
// deleted; the storage layer rejects the write to preserve order history.
func (s *Service) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Delete", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}
	if !p.IsSupplier() {
		return errorbank.NotFound("product not found")
	}

	rows, err := s.repo.Delete(ctx, id, *p.SupplierID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errorbank.Conflict("product is referenced by existing order items")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete product", errorbank.WithCause(err))
	}
	if rows == 0 {
		return errorbank.NotFound("product not found")
	}

	s.dropFromCache(ctx, id)
	return nil
}

func cacheKey(id uuid.UUID) string {
	return "products:" + id.String()
}

func (s *Service) fromCache(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	raw, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		return nil, err
	}
	var pr entity.Product
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

func (s *Service) toCache(ctx context.Context, pr *entity.Product) error {
	if s.cache == nil || pr == nil {
		return nil
	}
	raw, err := json.Marshal(pr)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cacheKey(pr.ID), raw, s.cacheTTL)
}

func (s *Service) dropFromCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("products cache delete failed", zap.String("id", id.String()), zap.Error(err))
	}
}
