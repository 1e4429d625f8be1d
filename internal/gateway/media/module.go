package media

import "go.uber.org/fx"

// Module provides the CDN client to Fx.
var Module = fx.Provide(NewClient)
