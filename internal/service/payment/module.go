package payment

import "go.uber.org/fx"

// Module provides the payment service to Fx.
var Module = fx.Provide(NewService)
