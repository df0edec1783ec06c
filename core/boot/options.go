package boot

import (
	"io/fs"
	"time"

	"webboot/core/container"
	"webboot/core/gate"
	"webboot/core/loader"
	"webboot/core/logger"
	"webboot/core/restart"
	"webboot/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupHook customizes the fiber app and the started container before features load.
type SetupHook func(app *fiber.App, c *container.Context) error

// FeatureFactory builds a feature once the container has started.
type FeatureFactory func(b *Boot) loader.Feature

type options struct {
	server      server.Config
	contextPath string

	development  bool
	suppressHook bool
	browse       bool

	registry gate.Registry

	configFiles         []string
	configFS            fs.FS
	loggingFile         string
	loggingReplacements map[string]string
	logConfig           logger.Config
	logger              *zap.Logger

	markDir      string
	pollInterval time.Duration
	claimDelay   time.Duration

	sources    []container.ArchiveSource
	scanSkip   []string
	candidates []container.Initializer

	middlewares []fiber.Handler
	setupHooks  []SetupHook
	features    []FeatureFactory

	browser func(url string) error
}

func defaultOptions() options {
	return options{
		server:       server.Config{Port: 8080, Name: "webboot", ShutdownTimeoutSeconds: 10, BodyLimitMB: 4},
		contextPath:  "/",
		logConfig:    logger.Config{Level: "info", Format: "console"},
		markDir:      restart.DefaultMarkDir,
		pollInterval: restart.DefaultPollInterval,
		claimDelay:   restart.DefaultClaimDelay,
		browser:      openBrowser,
	}
}

// Option configures a Boot.
type Option func(*options)

// WithPort sets the listening port. Port 0 picks a free port.
func WithPort(port int) Option {
	return func(o *options) { o.server.Port = port }
}

// WithServer replaces the server configuration.
func WithServer(cfg server.Config) Option {
	return func(o *options) { o.server = cfg }
}

// WithContextPath mounts the web application under path.
func WithContextPath(path string) Option {
	return func(o *options) { o.contextPath = path }
}

// AsDevelopment enables the restart coordinator.
func AsDevelopment() Option {
	return func(o *options) { o.development = true }
}

// SuppressShutdownHook disables the restart coordinator. Development only.
func SuppressShutdownHook() Option {
	return func(o *options) { o.suppressHook = true }
}

// BrowseOnDesktop opens the boot URL in the desktop browser. Development only.
func BrowseOnDesktop() Option {
	return func(o *options) { o.browse = true }
}

// UseAnnotationDetect enables handler index processing.
func UseAnnotationDetect() Option {
	return func(o *options) { o.registry.Annotation = gate.ModeDetect }
}

// UseMetaInfoResourceDetect enables META-INF/resources processing. It only has an
// effect together with UseWebFragmentsDetect.
func UseMetaInfoResourceDetect() Option {
	return func(o *options) { o.registry.MetaInfoResource = gate.ModeDetect }
}

// UseTldDetect enables tag library scanning, restricted to the archives accepted by
// selector when it is not nil.
func UseTldDetect(selector gate.Selector) Option {
	return func(o *options) {
		o.registry.Tld = gate.ModeDetect
		o.registry.TldSelector = selector
	}
}

// UseWebFragmentsDetect enables fragment discovery, restricted to the archives
// accepted by selector when it is not nil.
func UseWebFragmentsDetect(selector gate.Selector) Option {
	return func(o *options) {
		o.registry.WebFragments = gate.ModeDetect
		o.registry.WebFragmentsSelector = selector
	}
}

// Configure sets the overlay chain, highest priority first.
func Configure(files ...string) Option {
	return func(o *options) { o.configFiles = append([]string(nil), files...) }
}

// WithConfigFS reads the overlay chain from fsys instead of the OS filesystem.
func WithConfigFS(fsys fs.FS) Option {
	return func(o *options) { o.configFS = fsys }
}

// Logging reads a logging properties file; ${key} placeholders are replaced from
// replacements, then from the overlay configuration.
func Logging(file string, replacements map[string]string) Option {
	return func(o *options) {
		o.loggingFile = file
		o.loggingReplacements = replacements
	}
}

// WithLogConfig sets the logger configuration the logging file overrides.
func WithLogConfig(cfg logger.Config) Option {
	return func(o *options) { o.logConfig = cfg }
}

// WithLogger uses l instead of building a logger. A logging file still replaces it.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMarkDir sets the restart mark directory.
func WithMarkDir(dir string) Option {
	return func(o *options) { o.markDir = dir }
}

// WithRestartTiming sets the mark file poll interval and claim delay.
func WithRestartTiming(poll, claim time.Duration) Option {
	return func(o *options) {
		o.pollInterval = poll
		o.claimDelay = claim
	}
}

// WithArchiveSources adds sources of scanned archives.
func WithArchiveSources(sources ...container.ArchiveSource) Option {
	return func(o *options) { o.sources = append(o.sources, sources...) }
}

// WithScanSkip adds archive globs skipped for every scan kind.
func WithScanSkip(patterns ...string) Option {
	return func(o *options) { o.scanSkip = append(o.scanSkip, patterns...) }
}

// WithInitializers adds initializer candidates.
func WithInitializers(inits ...container.Initializer) Option {
	return func(o *options) { o.candidates = append(o.candidates, inits...) }
}

// WithMiddleware appends middleware after the built-in ones.
func WithMiddleware(handlers ...fiber.Handler) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, handlers...) }
}

// WithSetupHook adds a hook run before features load.
func WithSetupHook(hooks ...SetupHook) Option {
	return func(o *options) { o.setupHooks = append(o.setupHooks, hooks...) }
}

// WithFeatures adds features built after the container started.
func WithFeatures(factories ...FeatureFactory) Option {
	return func(o *options) { o.features = append(o.features, factories...) }
}

// WithBrowser replaces the desktop browser opener.
func WithBrowser(open func(url string) error) Option {
	return func(o *options) { o.browser = open }
}
