package groupoffer

import "go.uber.org/fx"

// Module provides the group offer service to Fx.
var Module = fx.Provide(NewService)
