package product

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/authz"
	"github.com/streetsupply/streetsupply/internal/cache"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	repo "github.com/streetsupply/streetsupply/internal/repository/product"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

type stubRepo struct {
	created   *entity.Product
	product   *entity.Product
	rows      int64
	deleteErr error
}

func (r *stubRepo) Create(_ context.Context, p *entity.Product) error {
	r.created = p
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	if r.product == nil || r.product.ID != id {
		return nil, repo.ErrNotFound
	}
	clone := *r.product
	return &clone, nil
}

func (r *stubRepo) List(context.Context, repo.Filter) ([]*entity.Product, error) {
	return nil, nil
}

func (r *stubRepo) Update(context.Context, *entity.Product) (int64, error) {
	return r.rows, nil
}

func (r *stubRepo) Delete(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	return r.rows, nil
}

type stubResolver struct {
	principals map[string]authz.Principal
}

func (s *stubResolver) Resolve(_ context.Context, c identity.Caller) (authz.Principal, error) {
	if p, ok := s.principals[c.AccountID]; ok {
		return p, nil
	}
	return authz.FromCaller(c), nil
}

type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type fixture struct {
	svc        *Service
	repo       *stubRepo
	store      *memoryStore
	supplierID uuid.UUID

	supplierCaller identity.Caller
	otherCaller    identity.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:           &stubRepo{},
		store:          newMemoryStore(),
		supplierID:     uuid.New(),
		supplierCaller: identity.Caller{AccountID: "acct-supplier"},
		otherCaller:    identity.Caller{AccountID: "acct-other"},
	}
	otherID := uuid.New()

	resolver := &stubResolver{principals: map[string]authz.Principal{
		"acct-supplier": {AccountID: "acct-supplier", SupplierID: &f.supplierID},
		"acct-other":    {AccountID: "acct-other", SupplierID: &otherID},
	}}

	f.svc = newService(f.repo, resolver, f.store, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func assertKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errorbank.From(err).Kind())
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.supplierCaller, CreateInput{
		Name:         "Potatoes",
		Category:     "vegetables",
		Unit:         "kg",
		PricePerUnit: 22,
	})
	require.NoError(t, err)

	assert.Equal(t, f.supplierID, p.SupplierID)
	assert.Equal(t, 1, p.MinOrderQuantity)
	assert.True(t, p.StockAvailable)
	require.NotNil(t, f.repo.created)
}

func TestCreateRequiresSupplierProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), identity.Caller{AccountID: "acct-vendor-only"}, CreateInput{
		Name:         "Potatoes",
		Category:     "vegetables",
		Unit:         "kg",
		PricePerUnit: 22,
	})
	assertKind(t, err, errorbank.KindNotFound)
}

func TestGetIsPublicAndCached(t *testing.T) {
	f := newFixture(t)

	f.repo.product = &entity.Product{
		ID:               uuid.New(),
		SupplierID:       f.supplierID,
		Name:             "Potatoes",
		Category:         "vegetables",
		Unit:             "kg",
		PricePerUnit:     22,
		MinOrderQuantity: 10,
		StockAvailable:   true,
	}

	p, err := f.svc.Get(context.Background(), identity.Anonymous, f.repo.product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Potatoes", p.Name)
	assert.NotEmpty(t, f.store.data, "reads populate the cache")

	// Second read is served from cache even if the row vanishes.
	f.repo.product = nil
	p, err = f.svc.Get(context.Background(), identity.Anonymous, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Potatoes", p.Name)
}

func TestUpdateDeniedForOtherSupplier(t *testing.T) {
	f := newFixture(t)

	f.repo.product = &entity.Product{
		ID:               uuid.New(),
		SupplierID:       f.supplierID,
		Name:             "Potatoes",
		Category:         "vegetables",
		Unit:             "kg",
		PricePerUnit:     22,
		MinOrderQuantity: 10,
	}

	price := 25.0
	_, err := f.svc.Update(context.Background(), f.otherCaller, f.repo.product.ID, UpdateInput{PricePerUnit: &price})
	assertKind(t, err, errorbank.KindNotFound)
}

func TestDeleteBlockedByOrderReferences(t *testing.T) {
	f := newFixture(t)
	f.repo.deleteErr = &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}

	err := f.svc.Delete(context.Background(), f.supplierCaller, uuid.New())
	assertKind(t, err, errorbank.KindConflict)
}

func TestDeleteScopedToOwner(t *testing.T) {
	f := newFixture(t)
	f.repo.rows = 0

	err := f.svc.Delete(context.Background(), f.supplierCaller, uuid.New())
	assertKind(t, err, errorbank.KindNotFound)
}
