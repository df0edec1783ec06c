package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"webboot/core/boot"
	"webboot/core/config"
	"webboot/core/container"
	"webboot/core/container/containertest"
	"webboot/core/restart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvictCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOT_MARK_DIR", dir)
	path := restart.MarkPath(dir, 9000)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"evict", "--config-dir", t.TempDir(), "--port", "9000"})
	require.NoError(t, RootCmd.Execute())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, out.String(), filepath.Base(path))
}

func TestBootOptions(t *testing.T) {
	t.Setenv("BOOT_DEVELOPMENT", "true")
	t.Setenv("BOOT_BROWSE", "true")
	t.Setenv("BOOT_TLD_DETECT", "true")
	t.Setenv("BOOT_TLD_SELECTOR", "mylib-*.jar")
	t.Setenv("BOOT_POLL_INTERVAL", "1s")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	opts, err := bootOptions(cfg, zap.NewNop())
	require.NoError(t, err)

	b, err := boot.New(opts...)
	require.NoError(t, err)
	assert.True(t, b.Development())
	reg := b.Registry()
	assert.True(t, reg.TldSelectorEnabled())
	assert.True(t, reg.TldSelector("mylib-1.0.jar"))
	assert.False(t, reg.WebFragmentsSelectorEnabled())
	assert.Equal(t, time.Second, cfg.Boot.PollInterval)
}

func TestSelector(t *testing.T) {
	assert.Nil(t, selector(nil))
	assert.True(t, selector([]string{"a*.jar"})("abc.jar"))
}

// A "/" mapping mounts a catch-all route; the status endpoint must still answer.
func TestBootOptions_StatusBeforeDefaultRoute(t *testing.T) {
	lib := t.TempDir()
	containertest.WriteJar(t, lib, "app.jar", map[string]string{
		container.HandlerIndex: "/ webboot.Health\n",
	})
	t.Setenv("SERVER_PORT", "0")
	t.Setenv("BOOT_LIB_DIR", lib)
	t.Setenv("BOOT_ANNOTATION_DETECT", "true")
	t.Setenv("BOOT_WEB_FRAGMENTS_DETECT", "true")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	opts, err := bootOptions(cfg, zap.NewNop())
	require.NoError(t, err)
	b, err := boot.New(opts...)
	require.NoError(t, err)

	url, err := b.Go(context.Background())
	require.NoError(t, err)
	defer b.Close()

	fetch := func(path string) (int, string) {
		resp, err := http.Get(url + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := fetch("_boot/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"modes"`)

	code, body = fetch("anything")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}
