package accesslog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"webboot/core/middleware/charset"
	"webboot/core/props"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	// CommonFormat is the NCSA common log format.
	CommonFormat = "${ip} - - [${time}] \"${method} ${url} ${protocol}\" ${status} ${bytesSent}\n"
	// CombinedFormat adds referer and user agent to CommonFormat.
	CombinedFormat = "${ip} - - [${time}] \"${method} ${url} ${protocol}\" ${status} ${bytesSent} \"${referer}\" \"${ua}\"\n"

	timeFormat = "02/Jan/2006:15:04:05 -0700"

	defaultDir        = "logs"
	defaultPrefix     = "access_log."
	defaultSuffix     = ".log"
	defaultDateFormat = "2006-01-02"
)

// Format maps a pattern to a fiber logger format. "common" and "combined" are
// aliases; any other pattern is used as is.
func Format(pattern string) string {
	switch strings.ToLower(strings.TrimSpace(pattern)) {
	case "", "common":
		return CommonFormat
	case "combined":
		return CombinedFormat
	}
	if !strings.HasSuffix(pattern, "\n") {
		pattern += "\n"
	}
	return pattern
}

// Skip reports whether a request is excluded by the option's conditions.
// ConditionIf requires the named request local; ConditionUnless excludes it.
// It is evaluated once the request has been handled, so locals set by later
// middleware and handlers count.
func Skip(opt props.AccessLogOption, c *fiber.Ctx) bool {
	if opt.ConditionIf != "" && c.Locals(opt.ConditionIf) == nil {
		return true
	}
	if opt.ConditionUnless != "" && c.Locals(opt.ConditionUnless) != nil {
		return true
	}
	return false
}

// New returns the access log middleware and the file writer it appends to.
// The caller closes the writer on shutdown.
func New(opt props.AccessLogOption) (fiber.Handler, *DailyWriter, error) {
	var enc encoding.Encoding
	if opt.FileEncoding != "" {
		e, err := charset.Lookup(opt.FileEncoding)
		if err != nil {
			return nil, nil, fmt.Errorf("access log file encoding: %w", err)
		}
		if name, _ := htmlindex.Name(e); name != "utf-8" {
			enc = e
		}
	}

	w := newDailyWriter(
		orDefault(opt.LogDir, defaultDir),
		orDefault(opt.FilePrefix, defaultPrefix),
		orDefault(opt.FileSuffix, defaultSuffix),
		orDefault(opt.FileDateFormat, defaultDateFormat),
		enc,
	)

	// The logger's Next runs before the chain, so the conditions are applied in
	// Done and the line only reaches the file from there.
	h := logger.New(logger.Config{
		Format:        Format(opt.FormatPattern),
		TimeFormat:    timeFormat,
		Output:        io.Discard,
		DisableColors: true,
		Done: func(c *fiber.Ctx, line []byte) {
			if Skip(opt, c) {
				return
			}
			if _, err := w.Write(line); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Failed to write access log, %v\n", err)
			}
		},
	})
	return h, w, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
