package oauth

import "go.uber.org/fx"

// Module provides the identity-provider client to Fx.
var Module = fx.Provide(NewClient)
