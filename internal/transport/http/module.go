package http

import (
	"go.uber.org/fx"

	groupoffertransport "github.com/streetsupply/streetsupply/internal/transport/http/groupoffer"
	ordertransport "github.com/streetsupply/streetsupply/internal/transport/http/order"
	producttransport "github.com/streetsupply/streetsupply/internal/transport/http/product"
	suppliertransport "github.com/streetsupply/streetsupply/internal/transport/http/supplier"
	vendortransport "github.com/streetsupply/streetsupply/internal/transport/http/vendor"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	vendortransport.Module,
	suppliertransport.Module,
	producttransport.Module,
	ordertransport.Module,
	groupoffertransport.Module,
)
