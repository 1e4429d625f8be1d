package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/bazaar/internal/cache"
	"github.com/Additional-Code/bazaar/internal/config"
	"github.com/Additional-Code/bazaar/internal/database"
	gatewaymedia "github.com/Additional-Code/bazaar/internal/gateway/media"
	gatewayoauth "github.com/Additional-Code/bazaar/internal/gateway/oauth"
	gatewaypayment "github.com/Additional-Code/bazaar/internal/gateway/payment"
	gatewayshipping "github.com/Additional-Code/bazaar/internal/gateway/shipping"
	"github.com/Additional-Code/bazaar/internal/logger"
	"github.com/Additional-Code/bazaar/internal/messaging"
	"github.com/Additional-Code/bazaar/internal/notify"
	"github.com/Additional-Code/bazaar/internal/observability"
	repositorycart "github.com/Additional-Code/bazaar/internal/repository/cart"
	repositorycatalog "github.com/Additional-Code/bazaar/internal/repository/catalog"
	repositoryorder "github.com/Additional-Code/bazaar/internal/repository/order"
	repositorypayment "github.com/Additional-Code/bazaar/internal/repository/payment"
	repositoryuser "github.com/Additional-Code/bazaar/internal/repository/user"
	grpcserver "github.com/Additional-Code/bazaar/internal/server/grpc"
	httpserver "github.com/Additional-Code/bazaar/internal/server/http"
	serviceauth "github.com/Additional-Code/bazaar/internal/service/auth"
	servicecart "github.com/Additional-Code/bazaar/internal/service/cart"
	servicecatalog "github.com/Additional-Code/bazaar/internal/service/catalog"
	serviceorder "github.com/Additional-Code/bazaar/internal/service/order"
	servicepayment "github.com/Additional-Code/bazaar/internal/service/payment"
	transporthttp "github.com/Additional-Code/bazaar/internal/transport/http"
	"github.com/Additional-Code/bazaar/internal/worker"
	workerorder "github.com/Additional-Code/bazaar/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	notify.Module,
	observability.Module,
	gatewaymedia.Module,
	gatewayoauth.Module,
	gatewaypayment.Module,
	gatewayshipping.Module,
	repositoryuser.Module,
	repositorycatalog.Module,
	repositorycart.Module,
	repositoryorder.Module,
	repositorypayment.Module,
	serviceauth.Module,
	servicecatalog.Module,
	servicecart.Module,
	serviceorder.Module,
	servicepayment.Module,
)

// HTTP wires the HTTP transport on top of the core modules. The gRPC
// server rides along for health probing.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
