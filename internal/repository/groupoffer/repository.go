package groupoffer

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

	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/entity"
)

var repoTracer = otel.Tracer("github.com/streetsupply/streetsupply/repository/groupoffer")

// ErrNotFound is returned when a group offer is missing.
var ErrNotFound = errors.New("group offer not found")

// Filter narrows offer listings. Offers are public, so visibility needs no
// row filter.
type Filter struct {
	SupplierID *uuid.UUID
	Status     string
	Limit      int
	Offset     int
}

// Repository encapsulates read/write access for group offers.
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

// Create persists a new group offer.
func (r *Repository) Create(ctx context.Context, g *entity.GroupOffer) error {
	ctx, span := repoTracer.Start(ctx, "GroupOfferRepository.Create", trace.WithAttributes(attribute.String("offer.supplier_id", g.SupplierID.String())))
	defer span.End()

	_, err := r.writer.NewInsert().Model(g).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a group offer by primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*entity.GroupOffer, error) {
	ctx, span := repoTracer.Start(ctx, "GroupOfferRepository.GetByID", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	g := new(entity.GroupOffer)
	err := r.reader.NewSelect().Model(g).Where("g.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return g, nil
}

// List returns offers matching the filter, soonest deadline first.
func (r *Repository) List(ctx context.Context, f Filter) ([]*entity.GroupOffer, error) {
	ctx, span := repoTracer.Start(ctx, "GroupOfferRepository.List")
	defer span.End()

	var offers []*entity.GroupOffer
	q := r.reader.NewSelect().Model(&offers).Order("g.deadline ASC")
	if f.SupplierID != nil {
		q = q.Where("g.supplier_id = ?", *f.SupplierID)
	}
	if f.Status != "" {
		q = q.Where("g.status = ?", f.Status)
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
	return offers, nil
}

// Update rewrites an offer, guarded by the creating supplier. Returns the
// rows affected.
func (r *Repository) Update(ctx context.Context, g *entity.GroupOffer) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "GroupOfferRepository.Update", trace.WithAttributes(attribute.String("offer.id", g.ID.String())))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(g).
		WherePK().
		Where("supplier_id = ?", g.SupplierID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes an offer, guarded by the creating supplier.
func (r *Repository) Delete(ctx context.Context, id, supplierID uuid.UUID) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "GroupOfferRepository.Delete", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.GroupOffer)(nil)).
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

// MarkExpired transitions every active offer whose deadline has passed to
// expired. Invoked by the background sweep job.
func (r *Repository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "GroupOfferRepository.MarkExpired")
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.GroupOffer)(nil)).
		Set("status = ?", entity.GroupOfferStatusExpired).
		Set("updated_at = ?", now.UTC()).
		Where("status = ?", entity.GroupOfferStatusActive).
		Where("deadline < ?", now.UTC()).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("offers.expired", count))
	return count, nil
}
