package supplier

import "go.uber.org/fx"

// Module provides the supplier service to Fx.
var Module = fx.Provide(NewService)
