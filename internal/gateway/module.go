package gateway

import "go.uber.org/fx"

// Module provides the gateway and the environment source
// for in-process scripts.
func Module() fx.Option {
	return fx.Module(
		"gateway",
		fx.Provide(NewLifecycleGateway),
		fx.Provide(NewEnviron),
	)
}
