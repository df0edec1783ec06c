package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"webboot/core/boot"
	"webboot/core/logger"
	"webboot/core/props"
	"webboot/core/server"
	"webboot/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Boot holds the boot sequence, restart and scanning settings.
	Boot boot.Config `mapstructure:"boot"`
	// Storage holds configuration for the bucket archives may be staged in.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and the .env files of dir.
//
// dir/.env is read first. When it (or the process) sets WEBBOOT_ENV, dir/.env.<env>
// is read on top of it, the same way overlay properties resolve "_env." names.
func LoadConfig(dir string) (*Config, error) {
	// Missing files are fine (e.g. production)
	_ = godotenv.Overload(filepath.Join(dir, ".env"))
	if env := props.Env(); env != "" {
		_ = godotenv.Overload(filepath.Join(dir, ".env."+env))
	}

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. BOOT_MARK_DIR -> boot.mark_dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate reports every setting the boot would reject, joined.
func (c *Config) Validate() error {
	var errs []error
	if !c.Server.IsValidPort() {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if !strings.HasPrefix(c.Boot.ContextPath, "/") {
		errs = append(errs, fmt.Errorf("boot.context_path %q must start with '/'", c.Boot.ContextPath))
	}
	if c.Boot.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("boot.poll_interval must be positive, got %s", c.Boot.PollInterval))
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required when storage is enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}

