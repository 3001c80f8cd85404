package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/streetsupply/streetsupply/internal/authz"
	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/entity"
)

var repoTracer = otel.Tracer("github.com/streetsupply/streetsupply/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Filter narrows order listings. Row visibility itself comes from the
// authorization filter, not from here.
type Filter struct {
	Status        string
	PaymentStatus string
	Limit         int
	Offset        int
}

// Repository encapsulates read/write access for orders and their items.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// CreateWithItems persists an order and its line items in one transaction,
// so a constraint violation on any item aborts the whole write.
func (r *Repository) CreateWithItems(ctx context.Context, o *entity.Order, items []*entity.OrderItem) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CreateWithItems", trace.WithAttributes(
		attribute.String("order.number", o.OrderNumber),
		attribute.Int("order.items", len(items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(o).Exec(ctx); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&items).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order by primary key. Callers apply the read policy.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	o := new(entity.Order)
	err := r.reader.NewSelect().Model(o).Where("o.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return o, nil
}

// List returns the orders visible to the principal: its own, those assigned
// to it, and - for suppliers - the open pool of unassigned orders.
func (r *Repository) List(ctx context.Context, p authz.Principal, f Filter) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []*entity.Order
	q := r.reader.NewSelect().Model(&orders).Order("o.created_at DESC")
	q = authz.FilterOrders(q, p)
	if f.Status != "" {
		q = q.Where("o.status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("o.payment_status = ?", f.PaymentStatus)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// UpdateAsVendor rewrites an order on behalf of its vendor. The write is
// fenced on status = pending at the storage layer, so a concurrent supplier
// confirmation makes the vendor's edit affect zero rows.
func (r *Repository) UpdateAsVendor(ctx context.Context, o *entity.Order) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateAsVendor", trace.WithAttributes(attribute.String("order.id", o.ID.String())))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(o).
		WherePK().
		Where("vendor_id = ?", o.VendorID).
		Where("status = ?", entity.OrderStatusPending).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateAsSupplier rewrites an order on behalf of its assigned supplier,
// which may progress fulfillment at any status.
func (r *Repository) UpdateAsSupplier(ctx context.Context, o *entity.Order, supplierID uuid.UUID) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateAsSupplier", trace.WithAttributes(attribute.String("order.id", o.ID.String())))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(o).
		WherePK().
		Where("supplier_id = ?", supplierID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	return res.RowsAffected()
}

// Accept claims an unassigned order out of the open pool for a supplier. The
// supplier_id IS NULL fence makes concurrent claims race safely: exactly one
// wins, the rest affect zero rows.
func (r *Repository) Accept(ctx context.Context, orderID, supplierID uuid.UUID, now time.Time) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Accept", trace.WithAttributes(
		attribute.String("order.id", orderID.String()),
		attribute.String("supplier.id", supplierID.String()),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("supplier_id = ?", supplierID).
		Set("status = ?", entity.OrderStatusAccepted).
		Set("updated_at = ?", now.UTC()).
		Where("id = ?", orderID).
		Where("supplier_id IS NULL").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	return res.RowsAffected()
}

// ListItems returns the immutable line items of an order.
func (r *Repository) ListItems(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListItems", trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	var items []*entity.OrderItem
	err := r.reader.NewSelect().
		Model(&items).
		Where("oi.order_id = ?", orderID).
		Order("oi.created_at ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}
