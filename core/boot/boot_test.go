package boot_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"webboot/core/boot"
	"webboot/core/container"
	"webboot/core/container/containertest"
	"webboot/core/gate"
	"webboot/core/loader"
	"webboot/core/restart"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type helloFeature struct{}

func (helloFeature) Name() string    { return "hello" }
func (helloFeature) IsEnabled() bool { return true }
func (helloFeature) Load(app fiber.Router) error {
	app.Get("/hello", func(c *fiber.Ctx) error { return c.SendString("hello") })
	return nil
}

func hello(*boot.Boot) loader.Feature { return helloFeature{} }

func newBoot(t *testing.T, opts ...boot.Option) *boot.Boot {
	t.Helper()
	base := []boot.Option{boot.WithPort(0), boot.WithLogger(zap.NewNop()), boot.WithFeatures(hello)}
	b, err := boot.New(append(base, opts...)...)
	require.NoError(t, err)
	return b
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts []boot.Option
		dev  bool
	}{
		{"BrowseNeedsDevelopment", []boot.Option{boot.BrowseOnDesktop()}, true},
		{"SuppressNeedsDevelopment", []boot.Option{boot.SuppressShutdownHook()}, true},
		{"RelativeContextPath", []boot.Option{boot.WithContextPath("app")}, false},
		{"BadPort", []boot.Option{boot.WithPort(70000)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := boot.New(tt.opts...)
			require.Error(t, err)
			assert.Equal(t, tt.dev, errors.Is(err, boot.ErrDevelopmentOnly))
		})
	}

	_, err := boot.New(boot.AsDevelopment(), boot.BrowseOnDesktop(), boot.SuppressShutdownHook())
	assert.NoError(t, err)
}

func TestBoot_GoServesAndCloses(t *testing.T) {
	b := newBoot(t)

	url, err := b.Go(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:"))
	assert.True(t, strings.HasSuffix(url, "/"))
	assert.Nil(t, b.Coordinator(), "no coordinator outside development")

	status, body := get(t, url+"hello")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", body)

	require.NoError(t, b.Close())
	assert.NoError(t, b.Await())
	assert.Equal(t, container.StateStopped, b.Context().State())
}

func TestBoot_AwaitBeforeGo(t *testing.T) {
	assert.ErrorIs(t, newBoot(t).Await(), boot.ErrNotStarted)
}

func TestBoot_OverlayConfig(t *testing.T) {
	fsys := fstest.MapFS{
		"boot_env.properties": {Data: []byte("server.scheme = https\nserver.proxyPort = 8443\n")},
	}

	t.Run("Applied", func(t *testing.T) {
		b := newBoot(t, boot.WithConfigFS(fsys), boot.Configure("boot_env.properties"))
		url, err := b.Go(context.Background())
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, "https://localhost:8443/", url)
		assert.Equal(t, []string{"boot_env.properties"}, b.Report().ConfigFiles)
	})

	t.Run("EnvSuffix", func(t *testing.T) {
		t.Setenv("WEBBOOT_ENV", "production")
		b := newBoot(t, boot.WithConfigFS(fsys), boot.Configure("boot_env.properties"))
		err := b.Ready()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boot_env_production.properties")
	})

	t.Run("MalformedProxyPort", func(t *testing.T) {
		bad := fstest.MapFS{"boot.properties": {Data: []byte("server.proxyPort = x\n")}}
		b := newBoot(t, boot.WithConfigFS(bad), boot.Configure("boot.properties"))
		_, err := b.Go(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "proxyPort")
	})
}

func TestBoot_GateWiring(t *testing.T) {
	lib := containertest.Source{
		containertest.Archive(t, "mylib-1.0.jar", map[string]string{
			"META-INF/mylib.tld": containertest.TaglibXML("my", "urn:mylib"),
		}),
		containertest.Archive(t, "other.jar", map[string]string{
			"META-INF/other.tld": containertest.TaglibXML("other", "urn:other"),
		}),
	}
	b := newBoot(t,
		boot.WithArchiveSources(lib),
		boot.WithInitializers(container.NewTldInitializer()),
		boot.UseTldDetect(gate.ContainsSelector("mylib")),
	)

	_, err := b.Go(context.Background())
	require.NoError(t, err)
	defer b.Close()

	r := b.Report()
	assert.Equal(t, "detect", r.Modes["tld"])
	assert.Equal(t, "none", r.Modes["web_fragments"])
	assert.True(t, r.Selectors["tld"])
	assert.Equal(t, []string{"urn:mylib"}, r.TagLibraries)
	assert.Empty(t, r.Fragments)
}

func TestBoot_MiddlewareAndSetupHook(t *testing.T) {
	var hooked *container.Context
	b := newBoot(t,
		boot.WithMiddleware(func(c *fiber.Ctx) error {
			c.Set("X-Valve", "on")
			return c.Next()
		}),
		boot.WithSetupHook(func(app *fiber.App, c *container.Context) error {
			hooked = c
			app.Get("/hooked", func(c *fiber.Ctx) error { return c.SendString("hooked") })
			return nil
		}),
	)
	url, err := b.Go(context.Background())
	require.NoError(t, err)
	defer b.Close()

	assert.Same(t, b.Context(), hooked)
	resp, err := http.Get(url + "hooked")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "on", resp.Header.Get("X-Valve"))
}

func TestBoot_SetupHookFailure(t *testing.T) {
	b := newBoot(t, boot.WithSetupHook(func(*fiber.App, *container.Context) error { return assert.AnError }))
	_, err := b.Go(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBoot_BrowseOnDesktop(t *testing.T) {
	var opened string
	b := newBoot(t,
		boot.AsDevelopment(),
		boot.SuppressShutdownHook(),
		boot.BrowseOnDesktop(),
		boot.WithBrowser(func(url string) error {
			opened = url
			return nil
		}),
	)
	url, err := b.Go(context.Background())
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, url, opened)
	assert.Nil(t, b.Coordinator(), "suppressed")
}

// A second development boot using the same mark file evicts the first one.
func TestBoot_DevelopmentRestart(t *testing.T) {
	dir := t.TempDir()
	port := freePort(t)
	opts := []boot.Option{
		boot.WithPort(port),
		boot.AsDevelopment(),
		boot.WithMarkDir(dir),
		boot.WithRestartTiming(20*time.Millisecond, 300*time.Millisecond),
	}

	first := newBoot(t, opts...)
	_, err := first.Go(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first.Coordinator())
	assert.Equal(t, restart.MarkPath(dir, port), first.Report().MarkFile)

	awaited := make(chan error, 1)
	go func() { awaited <- first.Await() }()

	second := newBoot(t, opts...)
	_, err = second.Go(context.Background())
	require.NoError(t, err)
	defer second.Close()

	select {
	case err := <-awaited:
		assert.ErrorIs(t, err, restart.ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("first boot was not evicted")
	}

	status, _ := get(t, second.URL()+"hello")
	assert.Equal(t, http.StatusOK, status)
}

// The mark file disappears while the container starts, before anything serves.
func TestBoot_EvictedWhilePreparing(t *testing.T) {
	dir := t.TempDir()
	port := freePort(t)
	evict := container.NewInitializer("app.Evict", func(ctx context.Context, c *container.Context) error {
		if err := restart.Evict(dir, port); err != nil {
			return err
		}
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	b := newBoot(t,
		boot.WithPort(port),
		boot.AsDevelopment(),
		boot.WithMarkDir(dir),
		boot.WithRestartTiming(20*time.Millisecond, 0),
		boot.UseAnnotationDetect(),
		boot.WithInitializers(evict),
	)

	url, err := b.Go(context.Background())
	require.NoError(t, err)

	awaited := make(chan error, 1)
	go func() { awaited <- b.Await() }()
	select {
	case err := <-awaited:
		assert.ErrorIs(t, err, restart.ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("evicted boot kept serving")
	}

	_, err = http.Get(url + "hello")
	assert.Error(t, err)

	closed := make(chan error, 1)
	go func() { closed <- b.Close() }()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close hung after eviction")
	}
}

// boot0.mark would be shared by unrelated ephemeral instances.
func TestBoot_EphemeralPortSkipsCoordinator(t *testing.T) {
	b := newBoot(t, boot.AsDevelopment(), boot.WithMarkDir(t.TempDir()))
	_, err := b.Go(context.Background())
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Coordinator())
	assert.Empty(t, b.Report().MarkFile)
}

func TestBoot_BootAwaitClosesOnBrowseFailure(t *testing.T) {
	b := newBoot(t,
		boot.AsDevelopment(),
		boot.SuppressShutdownHook(),
		boot.BrowseOnDesktop(),
		boot.WithBrowser(func(string) error { return assert.AnError }),
	)

	err := b.BootAwait(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	require.NotEmpty(t, b.URL())

	_, err = http.Get(b.URL() + "hello")
	assert.Error(t, err, "server must be closed")
}

func TestBoot_BootAwaitCancel(t *testing.T) {
	booted := make(chan struct{})
	b := newBoot(t,
		boot.AsDevelopment(),
		boot.SuppressShutdownHook(),
		boot.BrowseOnDesktop(),
		boot.WithBrowser(func(string) error {
			close(booted)
			return nil
		}),
	)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.BootAwait(ctx) }()

	select {
	case <-booted:
	case <-time.After(5 * time.Second):
		t.Fatal("boot did not start")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("BootAwait did not return")
	}
}

func TestBoot_LoggingFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logging.properties")
	require.NoError(t, os.WriteFile(logFile, []byte("level = ${level}\noutput = ${log.dir}/boot.log\nformat = json\n"), 0o644))
	fsys := fstest.MapFS{"boot.properties": {Data: []byte("log.dir = " + dir + "\n")}}

	b, err := boot.New(
		boot.WithPort(0),
		boot.WithConfigFS(fsys),
		boot.Configure("boot.properties"),
		boot.Logging(logFile, map[string]string{"level": "info"}),
	)
	require.NoError(t, err)
	require.NoError(t, b.Ready())
	b.Logger().Info("written to file")
	_ = b.Logger().Sync()

	data, err := os.ReadFile(filepath.Join(dir, "boot.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
