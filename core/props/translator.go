package props

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	serverPrefix    = "server."
	accessLogPrefix = "accesslog."
)

// ServerSettings are the connector settings read from the server.* keys.
// Zero values mean "keep the server default".
type ServerSettings struct {
	URIEncoding           string
	UseBodyEncodingForURI bool
	Secure                bool
	Scheme                string
	BindAddress           string
	ProxyPort             int
}

// AccessLogOption configures the request access log, read from the accesslog.* keys.
type AccessLogOption struct {
	LogDir         string
	FilePrefix     string
	FileSuffix     string
	FileDateFormat string
	FileEncoding   string
	FormatPattern  string
	// ConditionIf logs a request only when the named request local is set.
	ConditionIf string
	// ConditionUnless skips a request when the named request local is set.
	ConditionUnless string
}

// Translator turns resolved properties into server settings.
type Translator struct {
	Logger *zap.Logger
}

func (t Translator) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}

// ServerSettings reads the server.* keys. Empty values are ignored; a malformed
// proxyPort is an error naming the property.
func (t Translator) ServerSettings(p *Props) (ServerSettings, error) {
	var s ServerSettings
	if p == nil {
		return s, nil
	}
	t.logger().Info("Reflecting configuration to server", zap.Strings("config", p.Files()))

	var err error
	t.server(p, "uriEncoding", func(v string) { s.URIEncoding = v })
	t.server(p, "useBodyEncodingForURI", func(v string) { s.UseBodyEncodingForURI = IsTrue(v) })
	t.server(p, "secure", func(v string) { s.Secure = IsTrue(v) })
	t.server(p, "scheme", func(v string) { s.Scheme = v })
	t.server(p, "bindAddress", func(v string) { s.BindAddress = v })
	t.server(p, "proxyPort", func(v string) {
		port, perr := strconv.Atoi(strings.TrimSpace(v))
		if perr != nil {
			err = fmt.Errorf("failed to parse the value as int: property=%sproxyPort value=%s", serverPrefix, v)
			return
		}
		s.ProxyPort = port
	})
	return s, err
}

func (t Translator) server(p *Props, keyword string, apply func(string)) {
	v, ok := p.Get(serverPrefix + keyword)
	if !ok || v == "" {
		return
	}
	t.logger().Info(" "+serverPrefix+keyword, zap.String("value", v))
	apply(v)
}

// AccessLogOption returns nil unless accesslog.enabled is true.
func (t Translator) AccessLogOption(p *Props) *AccessLogOption {
	if p == nil {
		return nil
	}
	enabled, ok := p.Get(accessLogPrefix + "enabled")
	if !ok || !IsTrue(enabled) {
		return nil
	}
	t.logger().Info("Preparing access log", zap.String("enabled", enabled), zap.Strings("config", p.Files()))

	opt := &AccessLogOption{}
	for keyword, dst := range map[string]*string{
		"logDir":          &opt.LogDir,
		"filePrefix":      &opt.FilePrefix,
		"fileSuffix":      &opt.FileSuffix,
		"fileDateFormat":  &opt.FileDateFormat,
		"fileEncoding":    &opt.FileEncoding,
		"formatPattern":   &opt.FormatPattern,
		"conditionIf":     &opt.ConditionIf,
		"conditionUnless": &opt.ConditionUnless,
	} {
		if v, ok := p.Get(accessLogPrefix + keyword); ok {
			t.logger().Info(" "+accessLogPrefix+keyword, zap.String("value", v))
			*dst = v
		}
	}
	return opt
}

// IsTrue reports whether v is "true", ignoring case.
func IsTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
