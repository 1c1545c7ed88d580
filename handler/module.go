package handler

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("handler",
		fx.Provide(NewIndexHandler),
		fx.Provide(NewIndexRoute),
		fx.Provide(NewHelloRoute),
		fx.Provide(NewEnvRoute),
		fx.Provide(NewHealthRoute),
	)
}
