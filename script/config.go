package script

import "github.com/lambda-feedback/cgibin/util/conf"

// DefaultMaxBodyBytes is the request body limit used when
// none is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

type Config struct {
	// HomeURL is the target of the "Go back" link on every page.
	HomeURL string `conf:"home_url"`

	// MaxBodyBytes caps the number of request body bytes a script reads.
	MaxBodyBytes int64 `conf:"max_body_bytes"`
}

var DefaultConfig = conf.DefaultConfig{
	"home_url":       "/",
	"max_body_bytes": DefaultMaxBodyBytes,
}

func (c Config) homeURL() string {
	if c.HomeURL == "" {
		return "/"
	}

	return c.HomeURL
}

func (c Config) maxBodyBytes() int64 {
	if c.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}

	return c.MaxBodyBytes
}
