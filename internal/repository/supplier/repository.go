package supplier

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

var repoTracer = otel.Tracer("github.com/streetsupply/streetsupply/repository/supplier")

// ErrNotFound is returned when a supplier profile is missing.
var ErrNotFound = errors.New("supplier not found")

// Repository encapsulates read/write access for supplier profiles.
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

// Create persists a new supplier profile.
func (r *Repository) Create(ctx context.Context, s *entity.Supplier) error {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.Create", trace.WithAttributes(attribute.String("supplier.account_id", s.AccountID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(s).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a supplier by primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.GetByID", trace.WithAttributes(attribute.String("supplier.id", id.String())))
	defer span.End()

	s := new(entity.Supplier)
	err := r.reader.NewSelect().Model(s).Where("s.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return s, nil
}

// SupplierByAccount resolves the profile linked to an identity-provider
// account. Returns (nil, nil) when the account has no supplier profile.
func (r *Repository) SupplierByAccount(ctx context.Context, accountID string) (*entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.SupplierByAccount")
	defer span.End()

	s := new(entity.Supplier)
	err := r.reader.NewSelect().Model(s).Where("s.account_id = ?", accountID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return s, nil
}

// List returns suppliers ordered by rating descending. Supplier profiles are
// public, so no row filter applies.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.List")
	defer span.End()

	var suppliers []*entity.Supplier
	q := r.reader.NewSelect().
		Model(&suppliers).
		OrderExpr("s.rating DESC, s.total_reviews DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return suppliers, nil
}

// Update rewrites a supplier row, guarded by the owning account. Returns the
// rows affected.
func (r *Repository) Update(ctx context.Context, s *entity.Supplier) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.Update", trace.WithAttributes(attribute.String("supplier.id", s.ID.String())))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(s).
		WherePK().
		Where("account_id = ?", s.AccountID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	return res.RowsAffected()
}
