package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/entity"
)

// Module exposes the seeder to Fx.
var Module = fx.Provide(New)

// Fixed identifiers keep reseeding idempotent across runs.
var (
	seedSupplierID = uuid.MustParse("6f1f5f5a-0000-4000-8000-000000000001")
	seedVendorID   = uuid.MustParse("6f1f5f5a-0000-4000-8000-000000000002")
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Profiles seeds one supplier and one vendor profile if they are missing.
func (s *Seeder) Profiles(ctx context.Context) error {
	now := time.Now().UTC()

	supplier := entity.Supplier{
		ID:           seedSupplierID,
		AccountID:    "seed-supplier-account",
		BusinessName: "Raju Wholesale Traders",
		OwnerName:    "Raju Prasad",
		Email:        "raju@example.com",
		Phone:        "+91-9000000001",
		Street:       "14 Mandi Road",
		City:         "Pune",
		State:        "Maharashtra",
		PostalCode:   "411001",
		BusinessType: "wholesale",
		Rating:       4.5,
		TotalReviews: 12,
	}
	supplier.Init(now)
	if _, err := s.db.NewInsert().Model(&supplier).
		On("CONFLICT (account_id) DO NOTHING").
		Exec(ctx); err != nil {
		return err
	}

	vendor := entity.Vendor{
		ID:           seedVendorID,
		AccountID:    "seed-vendor-account",
		BusinessName: "Shree Chaat Corner",
		OwnerName:    "Meena Shah",
		Phone:        "+91-9000000002",
		Street:       "FC Road",
		City:         "Pune",
		State:        "Maharashtra",
		PostalCode:   "411004",
		BusinessType: entity.DefaultBusinessType,
	}
	vendor.Init(now)
	if _, err := s.db.NewInsert().Model(&vendor).
		On("CONFLICT (account_id) DO NOTHING").
		Exec(ctx); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("seeded profiles")
	}
	return nil
}

// Catalog seeds example products under the seed supplier if they are missing.
func (s *Seeder) Catalog(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Product{
		{
			ID:               uuid.MustParse("6f1f5f5a-0000-4000-8000-000000000101"),
			SupplierID:       seedSupplierID,
			Name:             "Potatoes",
			Category:         "vegetables",
			Unit:             "kg",
			PricePerUnit:     22,
			MinOrderQuantity: 10,
			StockAvailable:   true,
		},
		{
			ID:               uuid.MustParse("6f1f5f5a-0000-4000-8000-000000000102"),
			SupplierID:       seedSupplierID,
			Name:             "Onions",
			Category:         "vegetables",
			Unit:             "kg",
			PricePerUnit:     30,
			MinOrderQuantity: 10,
			StockAvailable:   true,
		},
		{
			ID:               uuid.MustParse("6f1f5f5a-0000-4000-8000-000000000103"),
			SupplierID:       seedSupplierID,
			Name:             "Sunflower Oil",
			Category:         "oils",
			Unit:             "litre",
			PricePerUnit:     140,
			MinOrderQuantity: 5,
			StockAvailable:   true,
		},
	}

	for _, sample := range samples {
		product := sample
		product.Init(now)
		if _, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded catalog", zap.Int("count", len(samples)))
	}
	return nil
}
