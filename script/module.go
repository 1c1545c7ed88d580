package script

import "go.uber.org/fx"

// Module provides the script handlers. An Environ may be supplied by
// the host; the process environment is used otherwise.
func Module() fx.Option {
	return fx.Module(
		"script",
		fx.Provide(NewFormEchoHandler),
		fx.Provide(NewEnvDumpHandler),
	)
}
