package conf

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported config file format")

// parserFor selects the koanf parser for a config file by its extension.
// Dotenv files use the same key layout as the process environment.
func parserFor(fileName, envPrefix string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".json":
		return json.Parser(), nil
	case ".env":
		return dotenv.ParserEnv(envPrefix, ".", func(s string) string {
			return transformEnv(s, envPrefix)
		}), nil
	case ".toml":
		return tomlParser{}, nil
	case ".yaml", ".yml":
		return yamlParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (tomlParser) Marshal(o map[string]any) ([]byte, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(o); err != nil {
		return nil, err
	}

	return []byte(sb.String()), nil
}

type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}

	if out == nil {
		out = map[string]any{}
	}

	return out, nil
}

func (yamlParser) Marshal(o map[string]any) ([]byte, error) {
	return yaml.Marshal(o)
}
