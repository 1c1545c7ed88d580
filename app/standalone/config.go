package standalone

import (
	"github.com/lambda-feedback/cgibin/internal/server"
	"github.com/lambda-feedback/cgibin/util/conf"
)

type Config struct {
	// HttpConfig represents the configuration for the HTTP server.
	HttpConfig server.HttpConfig `conf:"http"`
}

var DefaultConfig = conf.MergeDefaults("http", conf.DefaultConfig{
	"host": "localhost",
	"port": 8080,
	"h2c":  false,
})
