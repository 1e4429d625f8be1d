package http

import (
	"go.uber.org/fx"

	authtransport "github.com/Additional-Code/bazaar/internal/transport/http/auth"
	carttransport "github.com/Additional-Code/bazaar/internal/transport/http/cart"
	catalogtransport "github.com/Additional-Code/bazaar/internal/transport/http/catalog"
	"github.com/Additional-Code/bazaar/internal/transport/http/middleware"
	ordertransport "github.com/Additional-Code/bazaar/internal/transport/http/order"
	paymenttransport "github.com/Additional-Code/bazaar/internal/transport/http/payment"
	shippingtransport "github.com/Additional-Code/bazaar/internal/transport/http/shipping"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	middleware.Module,
	authtransport.Module,
	catalogtransport.Module,
	carttransport.Module,
	ordertransport.Module,
	paymenttransport.Module,
	shippingtransport.Module,
)
