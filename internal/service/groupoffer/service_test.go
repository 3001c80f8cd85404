package groupoffer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/authz"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	repo "github.com/streetsupply/streetsupply/internal/repository/groupoffer"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

type stubRepo struct {
	created    *entity.GroupOffer
	offer      *entity.GroupOffer
	updateRows int64
	deleteRows int64
}

func (r *stubRepo) Create(_ context.Context, g *entity.GroupOffer) error {
	r.created = g
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.GroupOffer, error) {
	if r.offer == nil || r.offer.ID != id {
		return nil, repo.ErrNotFound
	}
	clone := *r.offer
	return &clone, nil
}

func (r *stubRepo) List(context.Context, repo.Filter) ([]*entity.GroupOffer, error) {
	return nil, nil
}

func (r *stubRepo) Update(context.Context, *entity.GroupOffer) (int64, error) {
	return r.updateRows, nil
}

func (r *stubRepo) Delete(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return r.deleteRows, nil
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

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *Service
	repo       *stubRepo
	supplierID uuid.UUID

	supplierCaller identity.Caller
	otherCaller    identity.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:           &stubRepo{},
		supplierID:     uuid.New(),
		supplierCaller: identity.Caller{AccountID: "acct-supplier"},
		otherCaller:    identity.Caller{AccountID: "acct-other"},
	}
	otherID := uuid.New()

	resolver := &stubResolver{principals: map[string]authz.Principal{
		"acct-supplier": {AccountID: "acct-supplier", SupplierID: &f.supplierID},
		"acct-other":    {AccountID: "acct-other", SupplierID: &otherID},
	}}

	f.svc = newService(f.repo, resolver, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func assertKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errorbank.From(err).Kind())
}

func TestCreateDerivesDiscountPercent(t *testing.T) {
	f := newFixture(t)

	g, err := f.svc.Create(context.Background(), f.supplierCaller, CreateInput{
		ProductDescription: "Bulk onions",
		Quantity:           500,
		Unit:               "kg",
		ActualRate:         30,
		DiscountedRate:     24,
		Location:           "Pune",
		Deadline:           fixedNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, f.supplierID, g.SupplierID)
	assert.Equal(t, entity.GroupOfferStatusActive, g.Status)
	assert.InDelta(t, 20.0, g.DiscountPercent, 0.0001)
	assert.Equal(t, fixedNow, g.CreatedAt)
	require.NotNil(t, f.repo.created)
}

func TestCreateRejectsPastDeadline(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.supplierCaller, CreateInput{
		ProductDescription: "Bulk onions",
		Quantity:           500,
		Unit:               "kg",
		ActualRate:         30,
		DiscountedRate:     24,
		Location:           "Pune",
		Deadline:           fixedNow.Add(-time.Hour),
	})
	assertKind(t, err, errorbank.KindUnprocessableEntity)
}

func TestCreateRequiresSupplierProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), identity.Caller{AccountID: "acct-unregistered"}, CreateInput{
		ProductDescription: "Bulk onions",
		Quantity:           500,
		Unit:               "kg",
		Location:           "Pune",
		Deadline:           fixedNow.Add(time.Hour),
	})
	assertKind(t, err, errorbank.KindNotFound)
}

func TestUpdateDeniedForNonOwner(t *testing.T) {
	f := newFixture(t)

	f.repo.offer = &entity.GroupOffer{
		ID:                 uuid.New(),
		SupplierID:         f.supplierID,
		ProductDescription: "Bulk onions",
		Quantity:           500,
		Unit:               "kg",
		ActualRate:         30,
		DiscountedRate:     24,
		DiscountPercent:    20,
		Location:           "Pune",
		Deadline:           fixedNow.Add(48 * time.Hour),
		Status:             entity.GroupOfferStatusActive,
	}

	qty := 600.0
	_, err := f.svc.Update(context.Background(), f.otherCaller, f.repo.offer.ID, UpdateInput{Quantity: &qty})
	assertKind(t, err, errorbank.KindNotFound)
}

func TestUpdateRecomputesDiscountOnRateChange(t *testing.T) {
	f := newFixture(t)

	f.repo.offer = &entity.GroupOffer{
		ID:                 uuid.New(),
		SupplierID:         f.supplierID,
		ProductDescription: "Bulk onions",
		Quantity:           500,
		Unit:               "kg",
		ActualRate:         30,
		DiscountedRate:     24,
		DiscountPercent:    20,
		Location:           "Pune",
		Deadline:           fixedNow.Add(48 * time.Hour),
		Status:             entity.GroupOfferStatusActive,
	}
	f.repo.updateRows = 1

	rate := 15.0
	g, err := f.svc.Update(context.Background(), f.supplierCaller, f.repo.offer.ID, UpdateInput{DiscountedRate: &rate})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, g.DiscountPercent, 0.0001)
	assert.Equal(t, fixedNow, g.UpdatedAt)
}

func TestDeleteOnlyOwnRows(t *testing.T) {
	f := newFixture(t)
	f.repo.deleteRows = 0 // scoped delete matched nothing

	err := f.svc.Delete(context.Background(), f.supplierCaller, uuid.New())
	assertKind(t, err, errorbank.KindNotFound)
}

func TestDiscountPercent(t *testing.T) {
	assert.InDelta(t, 20.0, discountPercent(30, 24), 0.0001)
	assert.Zero(t, discountPercent(0, 10))
	assert.Zero(t, discountPercent(30, 30))
	assert.Zero(t, discountPercent(30, 35))
}
