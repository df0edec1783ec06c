package charset

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// LocalsKey holds the name of the charset the request path was decoded with.
const LocalsKey = "uri_charset"

// Config controls request path decoding.
type Config struct {
	// URIEncoding is the charset of percent-encoded path bytes. Empty means UTF-8.
	URIEncoding string
	// UseBodyEncoding prefers the charset of the request Content-Type when present.
	UseBodyEncoding bool
}

// Lookup returns the encoding registered under name (WHATWG labels, e.g. "Shift_JIS").
func Lookup(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// New returns a middleware that unescapes the request path and decodes it from
// the configured charset to UTF-8, so routes can be declared in UTF-8.
// An unknown URIEncoding is an error.
func New(cfg Config) (fiber.Handler, error) {
	name := cfg.URIEncoding
	if name == "" {
		name = "utf-8"
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	return func(c *fiber.Ctx) error {
		use, used := enc, name
		if cfg.UseBodyEncoding {
			if body := bodyCharset(c.Get(fiber.HeaderContentType)); body != "" {
				if benc, err := htmlindex.Get(body); err == nil {
					use, used = benc, body
				}
			}
		}

		decoded, err := decodePath(c.Path(), use)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("malformed request path: %v", err))
		}
		c.Path(decoded)
		c.Locals(LocalsKey, used)
		return c.Next()
	}, nil
}

func bodyCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func decodePath(raw string, enc encoding.Encoding) (string, error) {
	if strings.IndexByte(raw, '%') < 0 {
		return raw, nil
	}
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return unescaped, nil
	}
	return enc.NewDecoder().String(unescaped)
}
