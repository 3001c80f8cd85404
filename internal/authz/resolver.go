package authz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/cache"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
)

// VendorDirectory looks up a vendor profile by account link. Implementations
// return (nil, nil) when the account has no vendor profile.
type VendorDirectory interface {
	VendorByAccount(ctx context.Context, accountID string) (*entity.Vendor, error)
}

// SupplierDirectory looks up a supplier profile by account link.
// Implementations return (nil, nil) when the account has no supplier profile.
type SupplierDirectory interface {
	SupplierByAccount(ctx context.Context, accountID string) (*entity.Supplier, error)
}

// Resolver turns a caller identity into a Principal by joining against the
// profile tables. Every policy decision on orders and items needs this
// lookup, so resolved principals are cached.
type Resolver struct {
	vendors   VendorDirectory
	suppliers SupplierDirectory
	store     cache.Store
	ttl       time.Duration
	logger    *zap.Logger
}

// NewResolver constructs a Resolver. The cache store may be the noop store.
func NewResolver(vendors VendorDirectory, suppliers SupplierDirectory, store cache.Store, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		vendors:   vendors,
		suppliers: suppliers,
		store:     store,
		ttl:       ttl,
		logger:    logger,
	}
}

type cachedPrincipal struct {
	VendorID   *uuid.UUID `json:"vendor_id,omitempty"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
}

// CacheKey is the cache key for a resolved account. Exposed so profile
// services can invalidate on create/update.
func CacheKey(accountID string) string {
	return "authz:principal:" + accountID
}

// Resolve maps the caller onto its marketplace profiles. Anonymous callers
// resolve without any lookup.
func (r *Resolver) Resolve(ctx context.Context, c identity.Caller) (Principal, error) {
	if !c.Authenticated() {
		return AnonymousPrincipal, nil
	}

	p := FromCaller(c)
	if cached, ok := r.fromCache(ctx, c.AccountID); ok {
		p.VendorID = cached.VendorID
		p.SupplierID = cached.SupplierID
		return p, nil
	}

	vendor, err := r.vendors.VendorByAccount(ctx, c.AccountID)
	if err != nil {
		return Principal{}, err
	}
	if vendor != nil {
		id := vendor.ID
		p.VendorID = &id
	}

	supplier, err := r.suppliers.SupplierByAccount(ctx, c.AccountID)
	if err != nil {
		return Principal{}, err
	}
	if supplier != nil {
		id := supplier.ID
		p.SupplierID = &id
	}

	r.toCache(ctx, c.AccountID, cachedPrincipal{VendorID: p.VendorID, SupplierID: p.SupplierID})
	return p, nil
}

// Invalidate drops the cached resolution for an account.
func (r *Resolver) Invalidate(ctx context.Context, accountID string) {
	if r.store == nil || accountID == "" {
		return
	}
	if err := r.store.Delete(ctx, CacheKey(accountID)); err != nil && r.logger != nil {
		r.logger.Warn("principal cache invalidate failed", zap.String("account", accountID), zap.Error(err))
	}
}

func (r *Resolver) fromCache(ctx context.Context, accountID string) (cachedPrincipal, bool) {
	if r.store == nil {
		return cachedPrincipal{}, false
	}
	raw, err := r.store.Get(ctx, CacheKey(accountID))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && r.logger != nil {
			r.logger.Warn("principal cache read failed", zap.String("account", accountID), zap.Error(err))
		}
		return cachedPrincipal{}, false
	}
	var cached cachedPrincipal
	if err := json.Unmarshal(raw, &cached); err != nil {
		return cachedPrincipal{}, false
	}
	return cached, true
}

func (r *Resolver) toCache(ctx context.Context, accountID string, cached cachedPrincipal) {
	if r.store == nil {
		return
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := r.store.Set(ctx, CacheKey(accountID), raw, r.ttl); err != nil && r.logger != nil {
		r.logger.Warn("principal cache write failed", zap.String("account", accountID), zap.Error(err))
	}
}
