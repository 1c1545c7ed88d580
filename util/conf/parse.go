package conf

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/lambda-feedback/cgibin/util/cliflags"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type ParseOptions struct {
	// Cli is the cli.Context from urfave/cli
	Cli *cli.Context

	// CliMap is a map of cli flag names to config keys
	CliMap map[string]string

	// Defaults is a map of default values
	Defaults DefaultConfig

	// EnvPrefix is the prefix for env vars
	EnvPrefix string

	// FileName is the name of the configuration file to load.
	// The format is derived from the file extension.
	FileName string

	// ValidateFile is called with the raw contents of the
	// configuration file before they are merged.
	ValidateFile func(map[string]any) error

	// Log is the logger to use
	Log *zap.Logger
}

// Parse loads C from defaults, the config file, the environment
// and the cli flags, in ascending order of precedence.
func Parse[C any](opt ParseOptions) (C, error) {
	var config C

	var log *zap.Logger
	if opt.Log != nil {
		log = opt.Log
	} else {
		log = zap.NewNop()
	}

	k := koanf.New(".")

	if opt.Defaults != nil {
		if err := k.Load(confmap.Provider(opt.Defaults, "."), nil); err != nil {
			log.Error("error loading defaults", zap.Error(err))
			return config, err
		}
	}

	if opt.FileName != "" {
		if err := loadFile(k, opt); err != nil {
			log.Error("error parsing file",
				zap.Error(err),
				zap.String("file", opt.FileName),
			)
			return config, err
		}
	}

	transformPrefixedEnv := func(s string) string {
		return transformEnv(s, opt.EnvPrefix)
	}

	if err := k.Load(env.Provider(opt.EnvPrefix, ".", transformPrefixedEnv), nil); err != nil {
		log.Error("error parsing env vars", zap.Error(err))
		return config, err
	}

	if opt.Cli != nil {
		transformFlag := func(s string) string {
			if opt.CliMap != nil {
				if name, ok := opt.CliMap[s]; ok {
					return name
				}
			}

			// replace - with _
			return strings.ReplaceAll(strings.ToLower(s), "-", "_")
		}

		if err := k.Load(cliflags.Provider(opt.Cli, ".", transformFlag), nil); err != nil {
			log.Error("error parsing cli flags", zap.Error(err))
			return config, err
		}
	}

	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "conf"}); err != nil {
		log.Error("error unmarshalling config", zap.Error(err))
		return config, err
	}

	return config, nil
}

func loadFile(k *koanf.Koanf, opt ParseOptions) error {
	parser, err := parserFor(opt.FileName, opt.EnvPrefix)
	if err != nil {
		return err
	}

	fk := koanf.New(".")
	if err := fk.Load(file.Provider(opt.FileName), parser); err != nil {
		return err
	}

	if opt.ValidateFile != nil {
		if err := opt.ValidateFile(fk.Raw()); err != nil {
			return fmt.Errorf("invalid config file %s: %w", opt.FileName, err)
		}
	}

	return k.Merge(fk)
}

// transformEnv maps an env var name to a config key: the prefix is
// dropped, the name is lowercased and "__" separates nesting levels,
// so CGIBIN_SCRIPT__HOME_URL becomes script.home_url.
func transformEnv(s, prefix string) string {
	trimmed := strings.TrimPrefix(s, prefix)
	return strings.ReplaceAll(strings.ToLower(trimmed), "__", ".")
}
