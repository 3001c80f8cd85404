package authz

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/cache"
	"github.com/streetsupply/streetsupply/internal/config"
	supplierrepo "github.com/streetsupply/streetsupply/internal/repository/supplier"
	vendorrepo "github.com/streetsupply/streetsupply/internal/repository/vendor"
)

// Module provides the principal resolver to Fx.
var Module = fx.Provide(
	func(vendors *vendorrepo.Repository, suppliers *supplierrepo.Repository, store cache.Store, cfg config.Config, logger *zap.Logger) *Resolver {
		return NewResolver(vendors, suppliers, store, cfg.Cache.DefaultTTL, logger)
	},
)
