package boot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"webboot/core/container"
	"webboot/core/gate"
	"webboot/core/logger"
	"webboot/core/middleware/accesslog"
	"webboot/core/middleware/charset"
	"webboot/core/middleware/rayid"
	"webboot/core/props"
	"webboot/core/restart"
	"webboot/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned by Await before Go succeeded.
	ErrNotStarted = errors.New("server has not been started")
	// ErrDevelopmentOnly is returned for options that need AsDevelopment.
	ErrDevelopmentOnly = errors.New("option is only available in development")
)

// Boot runs one embedded server instance.
type Boot struct {
	opts   options
	id     string
	logger *zap.Logger

	readied bool
	props   *props.Props

	container   *container.Context
	gate        *gate.Gate
	coordinator *restart.Coordinator
	app         *fiber.App
	accessLog   *accesslog.DailyWriter
	connector   server.Connector
	url         string
	started     time.Time

	// mu guards app and ln against the restart poll goroutine.
	mu sync.Mutex
	ln net.Listener

	served   chan struct{}
	serveErr error

	shutdownOnce sync.Once
	shutdownErr  error
	closeOnce    sync.Once
	closeErr     error
}

// New validates opts and creates a boot.
func New(opts ...Option) (*Boot, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if !o.development {
		if o.browse {
			return nil, fmt.Errorf("browse on desktop: %w", ErrDevelopmentOnly)
		}
		if o.suppressHook {
			return nil, fmt.Errorf("suppress shutdown hook: %w", ErrDevelopmentOnly)
		}
	}
	if !o.server.IsValidPort() {
		return nil, fmt.Errorf("invalid port %d", o.server.Port)
	}
	if !strings.HasPrefix(o.contextPath, "/") {
		return nil, fmt.Errorf("context path must start with '/': %q", o.contextPath)
	}

	b := &Boot{opts: o, id: uuid.NewString()}
	b.logger = o.logger
	return b, nil
}

// ID returns the instance id written to the mark file and logs.
func (b *Boot) ID() string { return b.id }

// Logger returns the boot logger.
func (b *Boot) Logger() *zap.Logger { return b.log() }

// Props returns the overlay configuration, nil without config files.
func (b *Boot) Props() *props.Props { return b.props }

// Context returns the started container context, nil before Go.
func (b *Boot) Context() *container.Context { return b.container }

// Registry returns the feature registry of this boot.
func (b *Boot) Registry() gate.Registry { return b.opts.registry }

// Coordinator returns the restart coordinator, nil outside development.
func (b *Boot) Coordinator() *restart.Coordinator { return b.coordinator }

// App returns the fiber app, nil before Go.
func (b *Boot) App() *fiber.App { return b.app }

// URL returns the boot URL, empty before Go.
func (b *Boot) URL() string { return b.url }

// Development reports whether this is a development boot.
func (b *Boot) Development() bool { return b.opts.development }

func (b *Boot) log() *zap.Logger {
	if b.logger == nil {
		l, err := logger.New(&b.opts.logConfig)
		if err != nil {
			l = zap.NewNop()
		}
		b.logger = l.With(zap.String("boot_id", b.id))
	}
	return b.logger
}

// Ready loads the overlay configuration and the logging file.
func (b *Boot) Ready() error {
	if b.readied {
		return nil
	}
	if len(b.opts.configFiles) > 0 {
		r := props.NewResolver(b.opts.configFS, b.log())
		p, err := r.Load(b.opts.configFiles...)
		if err != nil {
			return fmt.Errorf("failed to load server config: %w", err)
		}
		b.props = p
	}
	if b.opts.loggingFile != "" {
		cfg, err := logger.LoadFile(b.opts.loggingFile, b.opts.logConfig,
			logger.MapLookup(b.opts.loggingReplacements), b.props.Get)
		if err != nil {
			return fmt.Errorf("failed to load logging configuration: %w", err)
		}
		l, err := logger.New(&cfg)
		if err != nil {
			return fmt.Errorf("failed to build logger from %s: %w", b.opts.loggingFile, err)
		}
		b.log().Info("Setting logging configuration", zap.String("file", b.opts.loggingFile))
		b.logger = l.With(zap.String("boot_id", b.id))
	}
	b.readied = true
	return nil
}

// Go starts the server without waiting and returns the boot URL.
func (b *Boot) Go(ctx context.Context) (string, error) {
	if b.app != nil {
		return "", errors.New("boot already started")
	}
	if err := b.Ready(); err != nil {
		return "", err
	}
	log := b.log()
	log.Info("Booting the server", zap.Int("port", b.opts.server.Port), zap.String("context_path", b.opts.contextPath))

	if b.opts.development && !b.opts.suppressHook {
		if b.opts.server.Port == 0 {
			// boot0.mark would be shared by every ephemeral instance
			log.Info("Skipping restart coordinator, it needs a fixed port")
		} else if err := b.claimMark(ctx); err != nil {
			return "", err
		}
	}

	ln, err := b.prepareServer(ctx)
	if err != nil {
		b.abort(ctx)
		return "", err
	}
	b.mu.Lock()
	b.ln = ln
	b.mu.Unlock()

	app := b.app
	b.served = make(chan struct{})
	go func() {
		defer close(b.served)
		b.serveErr = app.Listener(ln)
	}()
	b.started = time.Now()

	// Polling starts once there is a server to stop. A mark file that changed
	// while preparing is caught by the first check.
	if b.coordinator != nil {
		if err := b.coordinator.Start(ctx); err != nil {
			_ = b.Close()
			return "", fmt.Errorf("failed to register restart coordinator: %w", err)
		}
	}

	if b.opts.development {
		log.Info("Boot successful as development", zap.String("url", b.url))
		if b.opts.browse {
			if err := b.opts.browser(b.url); err != nil {
				return b.url, fmt.Errorf("failed to browse the URL %s: %w", b.url, err)
			}
		}
	} else {
		log.Info("Boot successful", zap.String("url", b.url))
	}
	return b.url, nil
}

// claimMark takes over the mark file before the port is bound, so the previous
// instance gets the claim delay to release it.
func (b *Boot) claimMark(ctx context.Context) error {
	c := restart.New(restart.Config{
		Port:         b.opts.server.Port,
		Dir:          b.opts.markDir,
		PollInterval: b.opts.pollInterval,
		ClaimDelay:   b.opts.claimDelay,
		InstanceID:   b.id,
	}, b.forceStop, b.log())
	if err := c.Claim(ctx); err != nil {
		return fmt.Errorf("failed to claim mark file: %w", err)
	}
	b.coordinator = c
	return nil
}

func (b *Boot) prepareServer(ctx context.Context) (net.Listener, error) {
	log := b.log()

	filter := container.NewStandardFilter()
	filter.Skip = append(filter.Skip, b.opts.scanSkip...)
	scanner := container.NewScanner(filter, b.opts.sources...)
	b.container = container.NewContext(b.opts.contextPath, scanner,
		container.WithLogger(log),
		container.WithCandidates(b.opts.candidates...),
	)
	b.gate = gate.New(b.opts.registry, container.NewNativeSteps(log), log)
	b.gate.Attach(b.container)
	if err := b.container.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start web context: %w", err)
	}

	translator := props.Translator{Logger: log}
	settings, err := translator.ServerSettings(b.props)
	if err != nil {
		return nil, err
	}
	b.connector = server.NewConnector(settings)

	bodyLimit := b.opts.server.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 4
	}
	app := fiber.New(fiber.Config{
		AppName:               b.opts.server.Name,
		ServerHeader:          b.opts.server.Name,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit << 20,
	})
	b.mu.Lock()
	b.app = app
	b.mu.Unlock()

	// RayID must be first to trace everything
	b.app.Use(rayid.New())
	decode, err := charset.New(charset.Config{
		URIEncoding:     settings.URIEncoding,
		UseBodyEncoding: settings.UseBodyEncodingForURI,
	})
	if err != nil {
		return nil, fmt.Errorf("server.uriEncoding: %w", err)
	}
	b.app.Use(decode)
	b.app.Use(b.connector.Handler())

	if opt := translator.AccessLogOption(b.props); opt != nil {
		h, w, err := accesslog.New(*opt)
		if err != nil {
			return nil, err
		}
		b.accessLog = w
		b.app.Use(h)
	}

	b.app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(log, c)
		l.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	for _, h := range b.opts.middlewares {
		b.app.Use(h)
	}

	for _, hook := range b.opts.setupHooks {
		if err := hook(b.app, b.container); err != nil {
			return nil, fmt.Errorf("setup hook failed: %w", err)
		}
	}

	mgr := newManager(b)
	if err := mgr.LoadAll(b.app); err != nil {
		return nil, err
	}

	addr := b.opts.server.Address(settings.BindAddress)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	host, _, _ := net.SplitHostPort(addr)
	port := ln.Addr().(*net.TCPAddr).Port
	b.url = strings.TrimSuffix(b.connector.URL(host, port), "/") + b.opts.contextPath
	return ln, nil
}

// forceStop is called by the restart coordinator when a newer instance took over.
func (b *Boot) forceStop() {
	b.log().Info("Stopping server for the newer instance")
	if err := b.shutdown(); err != nil {
		b.log().Warn("Forced shutdown failed", zap.Error(err))
	}
}

// shutdown stops the server once. Without an app there is nothing to stop and a
// later call still runs.
func (b *Boot) shutdown() error {
	b.mu.Lock()
	app, ln := b.app, b.ln
	b.mu.Unlock()
	if app == nil {
		return nil
	}
	b.shutdownOnce.Do(func() {
		timeout := time.Duration(b.opts.server.ShutdownTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		b.shutdownErr = app.ShutdownWithTimeout(timeout)
		// The serve goroutine may not have handed ln to the server yet; a closed
		// listener makes that late Serve return at once.
		if ln != nil {
			_ = ln.Close()
		}
	})
	return b.shutdownErr
}

func (b *Boot) abort(ctx context.Context) {
	if b.coordinator != nil {
		b.coordinator.Stop()
	}
	if b.container != nil {
		_ = b.container.Stop(ctx)
	}
	if b.accessLog != nil {
		_ = b.accessLog.Close()
	}
	b.mu.Lock()
	b.app = nil
	b.mu.Unlock()
}

// Await blocks until the server stops, then releases the boot. It returns the
// serve error, restart.ErrSuperseded after an eviction, or a restart polling fault.
func (b *Boot) Await() error {
	if b.served == nil {
		return ErrNotStarted
	}
	<-b.served
	err := b.Close()

	// An eviction closes the listener under the server, so it wins over the serve error.
	if b.coordinator != nil {
		if cerr := b.coordinator.Err(); cerr != nil {
			return cerr
		}
	}
	if b.serveErr != nil {
		return fmt.Errorf("server join failed: %w", b.serveErr)
	}
	return err
}

// Close stops the restart coordinator, the server and the container. It is safe to
// call more than once.
func (b *Boot) Close() error {
	b.closeOnce.Do(func() {
		var errs []error
		if b.coordinator != nil {
			b.coordinator.Stop()
		}
		if err := b.shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop the server: %w", err))
		}
		if b.served != nil {
			<-b.served
		}
		if b.container != nil {
			if err := b.container.Stop(context.Background()); err != nil {
				errs = append(errs, err)
			}
		}
		if b.accessLog != nil {
			if err := b.accessLog.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		_ = b.log().Sync()
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}

// BootAwait runs Ready, Go and Await. Cancelling ctx closes the boot.
func (b *Boot) BootAwait(ctx context.Context) error {
	if err := b.Ready(); err != nil {
		return err
	}
	if _, err := b.Go(ctx); err != nil {
		// Go may fail after the server is up (browse)
		_ = b.Close()
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			b.log().Info("Shutting down server...")
			_ = b.Close()
		case <-stop:
		}
	}()
	return b.Await()
}
