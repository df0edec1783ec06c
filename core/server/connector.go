package server

import (
	"fmt"
	"net"
	"strconv"

	"webboot/core/props"

	"github.com/gofiber/fiber/v2"
)

// LocalsKey holds the Connector of the serving listener.
const LocalsKey = "connector"

// Connector describes how the listener is reached, as opposed to how it is bound:
// a server behind a TLS terminating proxy is reached over https on the proxy port.
type Connector struct {
	Scheme    string `json:"scheme"`
	Secure    bool   `json:"secure"`
	ProxyPort int    `json:"proxy_port,omitempty"`
}

// NewConnector applies server settings; scheme defaults to http.
func NewConnector(s props.ServerSettings) Connector {
	scheme := s.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return Connector{Scheme: scheme, Secure: s.Secure, ProxyPort: s.ProxyPort}
}

// Handler stores the connector on every request.
func (c Connector) Handler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.Locals(LocalsKey, c)
		return ctx.Next()
	}
}

// URL returns the external URL of the server for host and the listening port.
func (c Connector) URL(host string, port int) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	if c.ProxyPort > 0 {
		port = c.ProxyPort
	}
	return fmt.Sprintf("%s://%s/", c.Scheme, net.JoinHostPort(host, strconv.Itoa(port)))
}

// FromCtx returns the request's connector, or the defaults when none was stored.
func FromCtx(ctx *fiber.Ctx) Connector {
	if c, ok := ctx.Locals(LocalsKey).(Connector); ok {
		return c
	}
	return NewConnector(props.ServerSettings{})
}
