package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lambda-feedback/cgibin/internal/gateway"
	"github.com/lambda-feedback/cgibin/script"
	"github.com/lambda-feedback/cgibin/util"
	"github.com/lambda-feedback/cgibin/util/conf"
)

// EnvPrefix is the prefix of all environment variables read as config.
const EnvPrefix = gateway.EnvPrefix

// ErrInvalid is returned for config files violating the schema.
var ErrInvalid = errors.New("config does not match schema")

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// Script is the configuration shared by all scripts
	Script script.Config `conf:"script"`

	// Gateway configures how the server executes scripts
	Gateway gateway.Config `conf:"gateway"`
}

var DefaultConfig = conf.MergeDefaults(
	"",
	conf.DefaultConfig{
		"log_level":  "",
		"log_format": "",
	},
	conf.MergeDefaults("script", script.DefaultConfig),
	conf.MergeDefaults("gateway", gateway.DefaultConfig),
)

//go:embed schema.json
var schemaSource []byte

var schema = util.Must(gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaSource)))

// Validate checks the raw contents of a config file against the schema.
func Validate(raw map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
