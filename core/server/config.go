package server

import (
	"net"
	"strconv"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port int `mapstructure:"port" default:"8080"`
	// BindAddress is the interface to listen on; empty listens on all interfaces.
	BindAddress string `mapstructure:"bind_address" default:""`
	// Name is reported in the Server header.
	Name string `mapstructure:"name" default:"webboot"`
	// ShutdownTimeoutSeconds bounds the graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"10"`
	// BodyLimitMB is the maximum request body size.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"4"`
}

// IsValidPort checks if the configured port can be listened on. Port 0 asks the
// system for a free port.
func (c Config) IsValidPort() bool {
	return c.Port >= 0 && c.Port <= 65535
}

// Address returns host:port, preferring bindAddress over the configured one.
func (c Config) Address(bindAddress string) string {
	host := c.BindAddress
	if bindAddress != "" {
		host = bindAddress
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}
