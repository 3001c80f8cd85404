package app

import (
	"go.uber.org/fx"

	"github.com/streetsupply/streetsupply/internal/authz"
	"github.com/streetsupply/streetsupply/internal/cache"
	"github.com/streetsupply/streetsupply/internal/config"
	"github.com/streetsupply/streetsupply/internal/database"
	"github.com/streetsupply/streetsupply/internal/logger"
	"github.com/streetsupply/streetsupply/internal/messaging"
	"github.com/streetsupply/streetsupply/internal/observability"
	repositorygroupoffer "github.com/streetsupply/streetsupply/internal/repository/groupoffer"
	repositoryorder "github.com/streetsupply/streetsupply/internal/repository/order"
	repositoryproduct "github.com/streetsupply/streetsupply/internal/repository/product"
	repositorysupplier "github.com/streetsupply/streetsupply/internal/repository/supplier"
	repositoryvendor "github.com/streetsupply/streetsupply/internal/repository/vendor"
	grpcserver "github.com/streetsupply/streetsupply/internal/server/grpc"
	httpserver "github.com/streetsupply/streetsupply/internal/server/http"
	servicegroupoffer "github.com/streetsupply/streetsupply/internal/service/groupoffer"
	serviceorder "github.com/streetsupply/streetsupply/internal/service/order"
	serviceproduct "github.com/streetsupply/streetsupply/internal/service/product"
	servicesupplier "github.com/streetsupply/streetsupply/internal/service/supplier"
	servicevendor "github.com/streetsupply/streetsupply/internal/service/vendor"
	transporthttp "github.com/streetsupply/streetsupply/internal/transport/http"
	"github.com/streetsupply/streetsupply/internal/worker"
	workergroupoffer "github.com/streetsupply/streetsupply/internal/worker/groupoffer"
	workerorderevents "github.com/streetsupply/streetsupply/internal/worker/orderevents"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryvendor.Module,
	repositorysupplier.Module,
	repositoryproduct.Module,
	repositoryorder.Module,
	repositorygroupoffer.Module,
	authz.Module,
	servicevendor.Module,
	servicesupplier.Module,
	serviceproduct.Module,
	serviceorder.Module,
	servicegroupoffer.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorderevents.Module,
	workergroupoffer.Module,
)

// Module is the default application wiring: HTTP transport plus the gRPC
// health endpoint.
var Module = fx.Options(
	HTTP,
	grpcserver.Module,
)
