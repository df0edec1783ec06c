package props

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvVar names the process environment variable holding the config environment
// (e.g. "production"), used to resolve "_env." file names.
const EnvVar = "WEBBOOT_ENV"

const envMark = "_env."

// ErrNotFound is returned when a config file of the chain does not exist.
var ErrNotFound = errors.New("config file not found")

// Env returns the process-wide config environment, empty when unset.
func Env() string {
	return os.Getenv(EnvVar)
}

// ResolveEnvPath rewrites the first "_env." in name to "_env_<env>." when env is set,
// e.g. app_env.properties becomes app_env_production.properties.
func ResolveEnvPath(name, env string) string {
	if env == "" {
		return name
	}
	idx := strings.Index(name, envMark)
	if idx < 0 {
		return name
	}
	return name[:idx] + "_env_" + env + "." + name[idx+len(envMark):]
}

// Props is the effective configuration merged from a chain of property files.
type Props struct {
	v     *viper.Viper
	files []string
}

// Get returns the value of key. Keys are case-insensitive.
func (p *Props) Get(key string) (string, bool) {
	if p == nil || !p.v.IsSet(key) {
		return "", false
	}
	return p.v.GetString(key), true
}

// Files returns the resolved file names in the order they were given.
func (p *Props) Files() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.files...)
}

// Map returns every property flattened to dotted lower-case keys.
func (p *Props) Map() map[string]string {
	out := make(map[string]string)
	if p == nil {
		return out
	}
	for _, k := range p.v.AllKeys() {
		out[k] = p.v.GetString(k)
	}
	return out
}

// Keys returns the sorted property keys.
func (p *Props) Keys() []string {
	if p == nil {
		return nil
	}
	keys := p.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Resolver loads property file chains.
type Resolver struct {
	// FS is read instead of the OS filesystem when set.
	FS fs.FS
	// Env is the config environment applied to "_env." names.
	Env    string
	Logger *zap.Logger
}

// NewResolver creates a resolver using the process environment from EnvVar.
func NewResolver(fsys fs.FS, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{FS: fsys, Env: Env(), Logger: logger}
}

// Load reads files into one configuration. The first file has the highest priority:
// files are merged in reverse order so earlier files override later ones.
func (r *Resolver) Load(files ...string) (*Props, error) {
	if len(files) == 0 {
		return nil, errors.New("no config file given")
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	v := viper.New()
	v.SetConfigType("properties")

	resolved := make([]string, len(files))
	for i, f := range files {
		if strings.TrimSpace(f) == "" {
			return nil, fmt.Errorf("config file at position %d is empty", i)
		}
		resolved[i] = ResolveEnvPath(f, r.Env)
	}

	for i := len(resolved) - 1; i >= 0; i-- {
		name := resolved[i]
		data, err := r.read(name)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", name, err)
		}
		logger.Debug("Merged config file", zap.String("file", name))
	}

	logger.Info("Loaded config", zap.Strings("files", resolved), zap.Int("keys", len(v.AllKeys())))
	return &Props{v: v, files: resolved}, nil
}

func (r *Resolver) read(name string) ([]byte, error) {
	var data []byte
	var err error
	if r.FS != nil {
		data, err = fs.ReadFile(r.FS, strings.TrimPrefix(name, "/"))
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", name, err)
	}
	return data, nil
}
