package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/entity"
)

var repoTracer = otel.Tracer("github.com/streetsupply/streetsupply/repository/product")

// ErrNotFound is returned when a product is missing.
var ErrNotFound = errors.New("product not found")

// Filter narrows catalog listings.
type Filter struct {
	SupplierID *uuid.UUID
	Category   string
	InStock    bool
	Limit      int
	Offset     int
}

// Repository encapsulates read/write access for catalog products.
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

// Create persists a new product listing.
func (r *Repository) Create(ctx context.Context, p *entity.Product) error {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Create", trace.WithAttributes(attribute.String("product.name", p.Name)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(p).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a product by primary key. The catalog is public, so no row
// filter applies to reads.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetByID", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	p := new(entity.Product)
	err := r.reader.NewSelect().Model(p).Where("p.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return p, nil
}

// GetByIDs fetches several products at once, used when snapshotting order
// line items.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetByIDs", trace.WithAttributes(attribute.Int("product.count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}
	var products []*entity.Product
	err := r.reader.NewSelect().Model(&products).Where("p.id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// List returns catalog products matching the filter.
func (r *Repository) List(ctx context.Context, f Filter) ([]*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	var products []*entity.Product
	q := r.reader.NewSelect().Model(&products).Order("p.name ASC")
	if f.SupplierID != nil {
		q = q.Where("p.supplier_id = ?", *f.SupplierID)
	}
	if f.Category != "" {
		q = q.Where("p.category = ?", f.Category)
	}
	if f.InStock {
		q = q.Where("p.stock_available")
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
	return products, nil
}

// Update rewrites a product row, guarded by the owning supplier. Returns the
// rows affected so denied writes surface as zero rows.
func (r *Repository) Update(ctx context.Context, p *entity.Product) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Update", trace.WithAttributes(attribute.String("product.id", p.ID.String())))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(p).
		WherePK().
		Where("supplier_id = ?", p.SupplierID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a product, guarded by the owning supplier. Deletion fails
// with a referential-integrity error while order items reference the row.
func (r *Repository) Delete(ctx context.Context, id, supplierID uuid.UUID) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Delete", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.Product)(nil)).
		Where("id = ?", id).
		Where("supplier_id = ?", supplierID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return 0, err
	}
	return res.RowsAffected()
}
