package shipping

import "go.uber.org/fx"

// Module provides the carrier client to Fx.
var Module = fx.Provide(NewClient)
