package order

import (
	"context"
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

	"github.com/streetsupply/streetsupply/internal/authz"
	"github.com/streetsupply/streetsupply/internal/config"
	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	"github.com/streetsupply/streetsupply/internal/messaging"
	orderrepo "github.com/streetsupply/streetsupply/internal/repository/order"
	productrepo "github.com/streetsupply/streetsupply/internal/repository/product"
	vendorrepo "github.com/streetsupply/streetsupply/internal/repository/vendor"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/streetsupply/streetsupply/service/order")

// Repository is the persistence surface the service needs.
type Repository interface {
	CreateWithItems(ctx context.Context, o *entity.Order, items []*entity.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, p authz.Principal, f orderrepo.Filter) ([]*entity.Order, error)
	UpdateAsVendor(ctx context.Context, o *entity.Order) (int64, error)
	UpdateAsSupplier(ctx context.Context, o *entity.Order, supplierID uuid.UUID) (int64, error)
	Accept(ctx context.Context, orderID, supplierID uuid.UUID, now time.Time) (int64, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderItem, error)
}

// ProductSource loads catalog rows for line-item snapshots.
type ProductSource interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)
}

// VendorSource loads the ordering vendor for the customer snapshot.
type VendorSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error)
}

// PrincipalResolver maps a caller onto its marketplace profiles.
type PrincipalResolver interface {
	Resolve(ctx context.Context, c identity.Caller) (authz.Principal, error)
}

// Service implements order placement and fulfillment tracking. Vendors create
// orders; suppliers claim unassigned ones from the open pool and progress
// them. Every operation receives the caller explicitly and runs the row
// policy before touching storage.
type Service struct {
	repo      Repository
	products  ProductSource
	vendors   VendorSource
	resolver  PrincipalResolver
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	now       func() time.Time
	newID     func() uuid.UUID
}

// messagingConfig contains the messaging knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *orderrepo.Repository
	Products   *productrepo.Repository
	Vendors    *vendorrepo.Repository
	Resolver   *authz.Resolver
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	svc := newService(p.Repository, p.Products, p.Vendors, p.Resolver, p.Logger)
	svc.publisher = p.Publisher
	svc.messaging = messagingConfig{
		enabled: p.Config.Messaging.Enabled,
		topic:   p.Config.Messaging.Kafka.Topic,
	}
	return svc
}

func newService(repository Repository, products ProductSource, vendors VendorSource, resolver PrincipalResolver, logger *zap.Logger) *Service {
	return &Service{
		repo:     repository,
		products: products,
		vendors:  vendors,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// ItemInput is one requested line item.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput carries a new order. Monetary line totals and the subtotal are
// derived from the catalog at creation; tax, delivery and discount come from
// the caller and are validated against the total identity.
type CreateInput struct {
	OrderType       string
	SupplierID      *uuid.UUID
	Items           []ItemInput
	Tax             float64
	DeliveryCharge  float64
	GroupDiscount   float64
	PaymentMethod   string
	DeliveryAddress string
	DeliveryDate    *time.Time
	Notes           string
}

// Create places an order for the caller's vendor profile. Line items are
// snapshotted at current catalog prices inside one transaction; a constraint
// violation on any row aborts the whole write.
func (s *Service) Create(ctx context.Context, caller identity.Caller, in CreateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}
	if !p.IsVendor() {
		return nil, errorbank.NotFound("vendor profile not found")
	}
	if len(in.Items) == 0 {
		return nil, errorbank.Violation("items", "at least one item is required")
	}

	vendor, err := s.vendors.GetByID(ctx, *p.VendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load vendor", errorbank.WithCause(err))
	}

	now := s.now().UTC()
	orderType := in.OrderType
	if orderType == "" {
		orderType = entity.OrderTypeIndividual
	}

	o := &entity.Order{
		ID:              s.newID(),
		OrderNumber:     s.generateNumber(now),
		VendorID:        *p.VendorID,
		SupplierID:      in.SupplierID,
		OrderType:       orderType,
		Status:          entity.OrderStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		PaymentMethod:   in.PaymentMethod,
		Tax:             in.Tax,
		DeliveryCharge:  in.DeliveryCharge,
		GroupDiscount:   in.GroupDiscount,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryDate:    in.DeliveryDate,
		Notes:           in.Notes,
		Customer: entity.CustomerSnapshot{
			BusinessName: vendor.BusinessName,
			OwnerName:    vendor.OwnerName,
			Phone:        vendor.Phone,
			Address:      joinAddress(vendor.Street, vendor.City, vendor.State, vendor.PostalCode),
		},
	}
	if !authz.CanInsertOrder(p, o) {
		return nil, errorbank.NotFound("vendor profile not found")
	}

	items, snapshots, subtotal, err := s.buildItems(ctx, o, in.Items, now)
	if err != nil {
		return nil, err
	}
	o.Items = items
	o.ItemsSnapshot = snapshots
	o.Subtotal = subtotal
	o.TotalAmount = subtotal + o.Tax + o.DeliveryCharge - o.GroupDiscount

	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.Init(now)

	if err := s.repo.CreateWithItems(ctx, o, items); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errorbank.Conflict("order number already exists")
		}
		if database.IsForeignKeyViolation(err) {
			return nil, errorbank.Unprocessable("order references a missing row")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	s.publish(ctx, Event{
		Type:        EventOrderCreated,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		VendorID:    o.VendorID,
		SupplierID:  o.SupplierID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		At:          now,
	})
	s.logger.Info("order created", zap.String("number", o.OrderNumber), zap.Int("items", len(items)))
	return o, nil
}

// Get returns an order if the caller may read it: the owning vendor, the
// assigned supplier, or any supplier while the order is in the open pool.
func (s *Service) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if !authz.CanReadOrder(p, o) {
		return nil, errorbank.NotFound("order not found")
	}
	return o, nil
}

// List returns the orders visible to the caller.
func (s *Service) List(ctx context.Context, caller identity.Caller, f orderrepo.Filter) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	orders, err := s.repo.List(ctx, p, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Items returns an order's immutable line items. Open-pool visibility does
// not extend here: only the owning vendor and the assigned supplier qualify.
func (s *Service) Items(ctx context.Context, caller identity.Caller, orderID uuid.UUID) ([]*entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Items", trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if !authz.CanReadOrderItems(p, o) {
		return nil, errorbank.NotFound("order not found")
	}

	items, err := s.repo.ListItems(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list order items", errorbank.WithCause(err))
	}
	return items, nil
}

// UpdateInput carries the mutable order fields. Nil pointers leave values
// untouched. Line items are immutable and have no update surface.
type UpdateInput struct {
	Status           *string
	PaymentStatus    *string
	PaymentMethod    *string
	PaymentReference *string
	DeliveryAddress  *string
	DeliveryDate     *time.Time
	Notes            *string
}

// Update mutates an order under the row policy: the vendor only while the
// order is still pending, the assigned supplier at any status. The pending
// gate is re-checked at the storage layer, so a concurrent supplier
// confirmation makes a vendor edit affect zero rows and surface as
// not-found.
func (s *Service) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, in UpdateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if !authz.CanUpdateOrder(p, o) {
		return nil, errorbank.NotFound("order not found")
	}

	prevStatus := o.Status
	if in.Status != nil {
		o.Status = *in.Status
	}
	if in.PaymentStatus != nil {
		o.PaymentStatus = *in.PaymentStatus
	}
	if in.PaymentMethod != nil {
		o.PaymentMethod = *in.PaymentMethod
	}
	if in.PaymentReference != nil {
		o.PaymentReference = *in.PaymentReference
	}
	if in.DeliveryAddress != nil {
		o.DeliveryAddress = *in.DeliveryAddress
	}
	if in.DeliveryDate != nil {
		o.DeliveryDate = in.DeliveryDate
	}
	if in.Notes != nil {
		o.Notes = *in.Notes
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	o.Touch(now)

	var rows int64
	if o.SupplierID != nil && p.IsSupplier() && *p.SupplierID == *o.SupplierID {
		rows, err = s.repo.UpdateAsSupplier(ctx, o, *p.SupplierID)
	} else {
		rows, err = s.repo.UpdateAsVendor(ctx, o)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}
	if rows == 0 {
		return nil, errorbank.NotFound("order not found")
	}

	if prevStatus != o.Status {
		s.publish(ctx, Event{
			Type:        EventOrderStatusChanged,
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			VendorID:    o.VendorID,
			SupplierID:  o.SupplierID,
			Status:      o.Status,
			TotalAmount: o.TotalAmount,
			At:          now.UTC(),
		})
	}
	return o, nil
}

// Accept claims an unassigned order out of the open pool for the caller's
// supplier profile. Concurrent claims race on the supplier_id IS NULL fence:
// exactly one wins.
func (s *Service) Accept(ctx context.Context, caller identity.Caller, id uuid.UUID) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Accept", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	p, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve caller", errorbank.WithCause(err))
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if !authz.CanAcceptOrder(p, o) {
		return nil, errorbank.NotFound("order not found")
	}

	now := s.now()
	rows, err := s.repo.Accept(ctx, id, *p.SupplierID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to accept order", errorbank.WithCause(err))
	}
	if rows == 0 {
		// Another supplier claimed it first.
		return nil, errorbank.NotFound("order not found")
	}

	o.SupplierID = p.SupplierID
	o.Status = entity.OrderStatusAccepted
	o.Touch(now)

	s.publish(ctx, Event{
		Type:        EventOrderAccepted,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		VendorID:    o.VendorID,
		SupplierID:  o.SupplierID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		At:          now.UTC(),
	})
	return o, nil
}

func (s *Service) buildItems(ctx context.Context, o *entity.Order, inputs []ItemInput, now time.Time) ([]*entity.OrderItem, []entity.ItemSnapshot, float64, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, 0, errorbank.Internal("failed to load products", errorbank.WithCause(err))
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, pr := range products {
		byID[pr.ID] = pr
	}

	items := make([]*entity.OrderItem, 0, len(inputs))
	snapshots := make([]entity.ItemSnapshot, 0, len(inputs))
	var subtotal float64
	for _, in := range inputs {
		pr, ok := byID[in.ProductID]
		if !ok {
			return nil, nil, 0, errorbank.Violation("product_id", "references a missing product")
		}
		if !pr.StockAvailable {
			return nil, nil, 0, errorbank.Violation("product_id", "is out of stock")
		}
		if in.Quantity < pr.MinOrderQuantity {
			return nil, nil, 0, errorbank.Violation("quantity", "is below the product minimum order quantity")
		}
		item := &entity.OrderItem{
			ID:         s.newID(),
			OrderID:    o.ID,
			ProductID:  pr.ID,
			Quantity:   in.Quantity,
			UnitPrice:  pr.PricePerUnit,
			TotalPrice: pr.PricePerUnit * float64(in.Quantity),
			CreatedAt:  now,
		}
		if err := item.Validate(); err != nil {
			return nil, nil, 0, err
		}
		items = append(items, item)
		snapshots = append(snapshots, entity.ItemSnapshot{
			ProductID:   pr.ID,
			ProductName: pr.Name,
			Unit:        pr.Unit,
			Quantity:    in.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
		subtotal += item.TotalPrice
	}
	return items, snapshots, subtotal, nil
}

// generateNumber builds a human-readable unique order number. Uniqueness is
// ultimately enforced by the storage constraint, not this format.
func (s *Service) generateNumber(now time.Time) string {
	frag := strings.ToUpper(strings.ReplaceAll(s.newID().String(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), frag)
}

func joinAddress(parts ...string) string {
	filled := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			filled = append(filled, p)
		}
	}
	return strings.Join(filled, ", ")
}
