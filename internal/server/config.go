package server

type HttpConfig struct {
	// Host is the host to listen on.
	Host string `conf:"host"`

	// Port is the port to listen on.
	Port int `conf:"port"`

	// H2c enables HTTP/2 cleartext upgrades.
	H2c bool `conf:"h2c"`
}
