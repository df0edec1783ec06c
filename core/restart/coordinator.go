package restart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	// DefaultMarkDir is where mark files live unless configured otherwise.
	DefaultMarkDir = "/tmp/webboot/boot"
	// DefaultPollInterval is the pause between two mark file checks.
	DefaultPollInterval = 300 * time.Millisecond
	// DefaultClaimDelay is the pause after claiming an existing mark file, giving the
	// previous instance time to release the port.
	DefaultClaimDelay = 300 * time.Millisecond
)

// ErrSuperseded is reported when a newer instance claimed (or someone removed) the mark file.
var ErrSuperseded = errors.New("mark file claimed by another instance")

// MarkPath returns the mark file path for port under dir.
func MarkPath(dir string, port int) string {
	return filepath.Join(dir, fmt.Sprintf("boot%d.mark", port))
}

// Evict removes the mark file of port, making the instance that owns it shut down.
// A missing mark file is not an error.
func Evict(dir string, port int) error {
	path := MarkPath(dir, port)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove mark file %s: %w", path, err)
	}
	return nil
}

// Config holds the coordinator settings.
type Config struct {
	Port         int
	Dir          string
	PollInterval time.Duration
	ClaimDelay   time.Duration
	// InstanceID is written into a newly created mark file for diagnostics.
	InstanceID string
}

// Coordinator claims the mark file of a port for this instance and stops the
// instance once the mark file changes under it.
type Coordinator struct {
	cfg    Config
	path   string
	stopFn func()
	logger *zap.Logger

	snapshot time.Time
	claimed  bool

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// New creates a coordinator. stop is called once, from the poll goroutine, when the
// mark file diverges or polling fails.
func New(cfg Config, stop func(), logger *zap.Logger) *Coordinator {
	if cfg.Dir == "" {
		cfg.Dir = DefaultMarkDir
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ClaimDelay < 0 {
		cfg.ClaimDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		cfg:    cfg,
		path:   MarkPath(cfg.Dir, cfg.Port),
		stopFn: stop,
		logger: logger.With(zap.Int("port", cfg.Port), zap.String("mark_file", MarkPath(cfg.Dir, cfg.Port))),
	}
}

// Path returns the mark file path.
func (c *Coordinator) Path() string { return c.path }

// Snapshot returns the mark file timestamp captured by Claim.
func (c *Coordinator) Snapshot() time.Time { return c.snapshot }

// Claim creates the mark file, or touches it when it exists and then waits
// ClaimDelay so the previous owner can release the port. The resulting timestamp
// becomes the snapshot polled against.
func (c *Coordinator) Claim(ctx context.Context) error {
	_, err := os.Stat(c.path)
	switch {
	case err == nil:
		now := time.Now()
		if err := os.Chtimes(c.path, now, now); err != nil {
			return fmt.Errorf("failed to touch mark file %s: %w", c.path, err)
		}
		c.logger.Info("Claimed existing mark file, waiting for previous instance")
		if err := sleep(ctx, c.cfg.ClaimDelay); err != nil {
			return fmt.Errorf("interrupted while waiting for previous instance on port %d: %w", c.cfg.Port, err)
		}
	case os.IsNotExist(err):
		if err := c.create(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to stat mark file %s: %w", c.path, err)
	}

	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("failed to stat mark file %s: %w", c.path, err)
	}
	c.snapshot = info.ModTime()
	c.claimed = true
	return nil
}

func (c *Coordinator) create() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create mark dir %s: %w", filepath.Dir(c.path), err)
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create mark file %s: %w", c.path, err)
	}
	if c.cfg.InstanceID != "" {
		_, err = f.WriteString(c.cfg.InstanceID + "\n")
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write mark file %s: %w", c.path, err)
	}
	return nil
}

// Start claims the mark file (unless already claimed) and starts the poll goroutine.
// Polling ends on divergence, on a polling fault, or when ctx is cancelled or Stop is called.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.done != nil {
		return fmt.Errorf("coordinator for port %d already started", c.cfg.Port)
	}
	if !c.claimed {
		if err := c.Claim(ctx); err != nil {
			return err
		}
	}

	c.logger.Info("Registering restart coordinator",
		zap.String("last_modified", c.snapshot.Format("2006/01/02 15:04:05.000")),
		zap.Duration("poll_interval", c.cfg.PollInterval),
	)

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.poll(loopCtx)
	return nil
}

// Stop ends polling and waits for the poll goroutine. It does not call the stop function.
func (c *Coordinator) Stop() {
	if c.done == nil {
		return
	}
	c.cancel()
	<-c.done
}

// Done is closed when the poll goroutine has exited. It is nil before Start.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

// Err returns ErrSuperseded after an eviction, a wrapped fault after a polling
// failure, and nil otherwise.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Coordinator) poll(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	// The watcher only wakes the loop early; the timestamp comparison decides.
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if w, err := fsnotify.NewWatcher(); err != nil {
		c.logger.Debug("Mark file watcher unavailable, polling only", zap.Error(err))
	} else {
		defer w.Close()
		if err := w.Add(filepath.Dir(c.path)); err != nil {
			c.logger.Debug("Failed to watch mark dir, polling only", zap.Error(err))
		} else {
			events, watchErrs = w.Events, w.Errors
		}
	}

	for {
		diverged, err := c.diverged()
		if err != nil {
			c.fail(fmt.Errorf("failed to poll mark file %s: %w", c.path, err))
			return
		}
		if diverged {
			c.logger.Info("Shutting down forcedly, mark file changed")
			c.fail(ErrSuperseded)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !c.relevant(ev) {
				continue
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			c.logger.Debug("Mark file watcher error", zap.Error(err))
		}
	}
}

func (c *Coordinator) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(c.path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Chmod) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func (c *Coordinator) diverged() (bool, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return !info.ModTime().Equal(c.snapshot), nil
}

func (c *Coordinator) fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	if c.stopFn != nil {
		c.stopFn()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
