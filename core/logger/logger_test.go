package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"DebugConsole", Config{Level: "debug", Format: "console"}, false},
		{"InfoJSON", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"Warn", Config{Level: "warn"}, false},
		{"BadLevel", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestExpand(t *testing.T) {
	replacements := MapLookup(map[string]string{"app": "shop"})
	config := MapLookup(map[string]string{"app": "ignored", "log.dir": "/var/log"})

	got := Expand("output=${log.dir}/${app}.log,${missing}", replacements, nil, config)
	assert.Equal(t, "output=/var/log/shop.log,${missing}", got)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logging.properties")
	require.NoError(t, os.WriteFile(path, []byte("level = ${boot.level}\noutput = ${log.dir}/server.log\n"), 0o644))

	base := Config{Level: "info", Format: "json", Output: "stderr"}
	cfg, err := LoadFile(path, base,
		MapLookup(map[string]string{"log.dir": dir}),
		MapLookup(map[string]string{"boot.level": "warn"}),
	)
	require.NoError(t, err)
	assert.Equal(t, Config{Level: "warn", Format: "json", Output: dir + "/server.log"}, cfg)

	_, err = LoadFile(filepath.Join(dir, "missing.properties"), base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.properties")
}
