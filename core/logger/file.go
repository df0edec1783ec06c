package logger

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"
)

// Lookup resolves a placeholder key. Props.Get satisfies it.
type Lookup func(key string) (string, bool)

// MapLookup returns a Lookup over m.
func MapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Expand replaces every ${key} in text with the first lookup that knows key.
// Unknown placeholders are kept.
func Expand(text string, lookups ...Lookup) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		key := m[2 : len(m)-1]
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if v, ok := lookup(key); ok {
				return v
			}
		}
		return m
	})
}

// LoadFile reads a logging properties file (level, format, output), expands its
// placeholders and returns base overridden by the keys the file sets.
func LoadFile(path string, base Config, lookups ...Lookup) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read logging file %s: %w", path, err)
	}
	text := Expand(string(data), lookups...)

	v := viper.New()
	v.SetConfigType("properties")
	if err := v.ReadConfig(bytes.NewBufferString(text)); err != nil {
		return base, fmt.Errorf("failed to parse logging file %s: %w", path, err)
	}

	cfg := base
	if v.IsSet("level") {
		cfg.Level = v.GetString("level")
	}
	if v.IsSet("format") {
		cfg.Format = v.GetString("format")
	}
	if v.IsSet("output") {
		cfg.Output = v.GetString("output")
	}
	return cfg, nil
}
