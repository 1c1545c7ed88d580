package cmd

import (
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lambda-feedback/cgibin/script"
	"github.com/lambda-feedback/cgibin/util/logging"
)

var (
	runCmdDescription = `The run command detects the execution environment from the
environment variables and picks the matching mode.

If GATEWAY_INTERFACE is set, the binary was invoked by a web
server as a CGI program. The script is chosen by SCRIPT_NAME,
or by the name of the executable, so the binary can be
installed as cgi-bin/hello.cgi and cgi-bin/env.cgi.

If the AWS_LAMBDA_RUNTIME_API environment variable is set,
the AWS Lambda runtime handler is started, matching the
behaviour of the lambda command.

Otherwise, the standalone http server is started.`
	runCmd = &cli.Command{
		Name:        "run",
		Usage:       "Detect execution environment and run.",
		Description: runCmdDescription,
		Action:      runAction,
	}
)

func runAction(ctx *cli.Context) error {
	log := logging.LoggerFromContextOrNop(ctx.Context)

	if isCGI() {
		name, ok := detectScript(os.Getenv("SCRIPT_NAME"), os.Args[0])
		if !ok {
			return cli.Exit("cannot determine script from SCRIPT_NAME or executable name", 1)
		}

		log.Debug("detected CGI environment", zap.String("script", name))
		return runScript(ctx, name)
	}

	if isAWSLambda() {
		log.Info("detected AWS Lambda environment")
		return lambdaAction(ctx)
	}

	log.Info("detected standalone environment")
	return serveAction(ctx)
}

func isCGI() bool {
	env, ok := os.LookupEnv("GATEWAY_INTERFACE")
	return ok && env != ""
}

func isAWSLambda() bool {
	env, ok := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	return ok && env != ""
}

// detectScript resolves the script from the CGI SCRIPT_NAME, falling
// back to the name the executable was invoked as.
func detectScript(scriptName, executable string) (string, bool) {
	if name, ok := script.Lookup(scriptName); ok {
		return name, true
	}

	return script.Lookup(executable)
}

// defaultAction lets the binary be installed as a CGI script and
// invoked without arguments.
func defaultAction(ctx *cli.Context) error {
	if isCGI() {
		return runAction(ctx)
	}

	return cli.ShowAppHelp(ctx)
}

func init() {
	rootApp.Action = defaultAction

	runCmd.Flags = append(runCmd.Flags, serveCmd.Flags...)
	runCmd.Flags = append(runCmd.Flags, lambdaCmd.Flags...)

	rootApp.Commands = append(rootApp.Commands, runCmd)
}
