package cmd

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lambda-feedback/cgibin/internal/invoke"
	"github.com/lambda-feedback/cgibin/script"
	"github.com/lambda-feedback/cgibin/util/logging"
)

var (
	cgiCmdDescription = `Runs the script as a CGI program: the request is read from
the CGI environment variables and the body from stdin, the
response is written to stdout.

Point the web server at the binary with the script name as
its only argument, or install the binary under the script
name and use the run command.`
	helloCmd = &cli.Command{
		Name:        script.NameHello,
		Usage:       "Echo the submitted name field as a CGI script.",
		Description: cgiCmdDescription,
		Action:      scriptAction(script.NameHello),
		Flags:       scriptFlags(),
	}
	envCmd = &cli.Command{
		Name:        script.NameEnv,
		Usage:       "Dump the environment as a CGI script.",
		Description: cgiCmdDescription,
		Action:      scriptAction(script.NameEnv),
		Flags:       scriptFlags(),
	}
)

func scriptAction(name string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		return runScript(ctx, name)
	}
}

// runScript serves one CGI request with the named script.
func runScript(ctx *cli.Context, name string) error {
	log := logging.LoggerFromContextOrNop(ctx.Context).
		Named("cgi").
		With(zap.String("script", name))

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	handler, err := script.New(name, cfg.Script, script.ProcessEnviron, log)
	if err != nil {
		return err
	}

	return invoke.Serve(ctx.Context, invoke.Params{
		Handler: handler,
		Log:     log,
	})
}

func init() {
	rootApp.Commands = append(rootApp.Commands, helloCmd, envCmd)
}
