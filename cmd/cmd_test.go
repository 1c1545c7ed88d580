package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		scriptName string
		executable string
		want       string
		ok         bool
	}{
		{"/cgi-bin/hello.cgi", "/usr/lib/cgi-bin/cgibin", "hello", true},
		{"/cgi-bin/env", "cgibin", "env", true},
		{"", "/var/www/cgi-bin/env.cgi", "env", true},
		{"/cgi-bin/other.cgi", "/var/www/cgi-bin/hello", "hello", true},
		{"/cgi-bin/other.cgi", "cgibin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.scriptName+"|"+tt.executable, func(t *testing.T) {
			got, ok := detectScript(tt.scriptName, tt.executable)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCGI(t *testing.T) {
	t.Setenv("GATEWAY_INTERFACE", "")
	assert.False(t, isCGI())

	t.Setenv("GATEWAY_INTERFACE", "CGI/1.1")
	assert.True(t, isCGI())
}

func TestIsAWSLambda(t *testing.T) {
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
	assert.False(t, isAWSLambda())

	t.Setenv("AWS_LAMBDA_RUNTIME_API", "127.0.0.1:9001")
	assert.True(t, isAWSLambda())
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestRun_InvalidConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	code := run(context.Background(), []string{appName, "--config", missing, "env"})

	assert.Equal(t, 1, code)
}

func TestRun_UnsupportedConfigFormat(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cgibin.ini")

	code := run(context.Background(), []string{appName, "--config", file, "hello"})

	assert.Equal(t, 1, code)
}

func TestFlagConfigKeys(t *testing.T) {
	for _, flag := range serveCmd.Flags {
		name := flag.Names()[0]
		if _, ok := flagConfigKeys[name]; !ok {
			t.Errorf("serve flag %q has no config key", name)
		}
	}
}
