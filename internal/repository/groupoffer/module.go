package groupoffer

import "go.uber.org/fx"

// Module provides the group offer repository to Fx.
var Module = fx.Provide(NewRepository)
