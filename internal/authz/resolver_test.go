package authz

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/cache"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
)

type stubVendors struct {
	vendor *entity.Vendor
	calls  int
}

func (s *stubVendors) VendorByAccount(context.Context, string) (*entity.Vendor, error) {
	s.calls++
	return s.vendor, nil
}

type stubSuppliers struct {
	supplier *entity.Supplier
	calls    int
}

func (s *stubSuppliers) SupplierByAccount(context.Context, string) (*entity.Supplier, error) {
	s.calls++
	return s.supplier, nil
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

func TestResolveAnonymousSkipsLookups(t *testing.T) {
	vendors := &stubVendors{}
	suppliers := &stubSuppliers{}
	r := NewResolver(vendors, suppliers, newMemoryStore(), time.Minute, zap.NewNop())

	p, err := r.Resolve(context.Background(), identity.Anonymous)
	require.NoError(t, err)
	assert.True(t, p.Anonymous)
	assert.Zero(t, vendors.calls)
	assert.Zero(t, suppliers.calls)
}

func TestResolveJoinsProfilesAndCaches(t *testing.T) {
	vendor := &entity.Vendor{AccountID: "acct-1"}
	vendor.ID = uuid.New()
	vendors := &stubVendors{vendor: vendor}
	suppliers := &stubSuppliers{}
	r := NewResolver(vendors, suppliers, newMemoryStore(), time.Minute, zap.NewNop())

	caller := identity.Caller{AccountID: "acct-1"}

	p, err := r.Resolve(context.Background(), caller)
	require.NoError(t, err)
	assert.True(t, p.IsVendor())
	assert.False(t, p.IsSupplier())
	assert.Equal(t, vendor.ID, *p.VendorID)

	// Second resolution is served from the cache.
	p, err = r.Resolve(context.Background(), caller)
	require.NoError(t, err)
	assert.True(t, p.IsVendor())
	assert.Equal(t, 1, vendors.calls)
	assert.Equal(t, 1, suppliers.calls)
}

func TestInvalidateForcesRelookup(t *testing.T) {
	vendors := &stubVendors{}
	suppliers := &stubSuppliers{}
	r := NewResolver(vendors, suppliers, newMemoryStore(), time.Minute, zap.NewNop())

	caller := identity.Caller{AccountID: "acct-1"}

	_, err := r.Resolve(context.Background(), caller)
	require.NoError(t, err)

	// The vendor registers a profile; the stale "no profiles" entry must go.
	vendor := &entity.Vendor{AccountID: "acct-1"}
	vendor.ID = uuid.New()
	vendors.vendor = vendor
	r.Invalidate(context.Background(), "acct-1")

	p, err := r.Resolve(context.Background(), caller)
	require.NoError(t, err)
	assert.True(t, p.IsVendor())
	assert.Equal(t, 2, vendors.calls)
}
