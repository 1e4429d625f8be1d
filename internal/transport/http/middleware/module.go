package middleware

import "go.uber.org/fx"

// Module provides shared HTTP middleware.
var Module = fx.Provide(NewAuth)
