package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type loadOptions struct {
	prefix      string
	files       []string
	environment map[string]string
	dotEnv      bool
}

// Option configures Load.
type Option func(*loadOptions)

// WithPrefix prepends prefix to every env tag, e.g. "MAGPIE_".
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.prefix = prefix
	}
}

// WithEnvFiles reads variables from the given dotenv files.
// Files must exist. Process variables win over file values.
func WithEnvFiles(paths ...string) Option {
	return func(o *loadOptions) {
		o.files = append(o.files, paths...)
	}
}

// WithEnvironment parses from env instead of the process environment.
func WithEnvironment(environment map[string]string) Option {
	return func(o *loadOptions) {
		o.environment = environment
	}
}

// WithoutDotEnv disables the implicit lookup of ./.env.
func WithoutDotEnv() Option {
	return func(o *loadOptions) {
		o.dotEnv = false
	}
}

// Load parses environment variables into v using its `env` struct tags.
//
// Unless WithoutDotEnv is given, an optional .env file in the working
// directory is read first; its absence is not an error.
//
// Example:
//
//	type Config struct {
//		SecretKey string        `env:"SECRET_KEY,required"`
//		Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg Config
//	err := config.Load(&cfg, config.WithPrefix("MAGPIE_"))
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &loadOptions{dotEnv: true}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	environment, err := o.resolveEnvironment()
	if err != nil {
		return err
	}

	if err := env.ParseWithOptions(v, env.Options{
		Prefix:      o.prefix,
		Environment: environment,
	}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// resolveEnvironment merges dotenv files under the base environment.
func (o *loadOptions) resolveEnvironment() (map[string]string, error) {
	base := o.environment
	if base == nil {
		base = env.ToMap(os.Environ())
	}

	files := o.files
	if len(files) == 0 && o.dotEnv {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrEnvFile, err)
		}
	}
	if len(files) == 0 {
		return base, nil
	}

	fromFiles, err := godotenv.Read(files...)
	if err != nil {
		return nil, errors.Join(ErrEnvFile, err)
	}

	merged := make(map[string]string, len(base)+len(fromFiles))
	for k, val := range fromFiles {
		merged[k] = val
	}
	for k, val := range base {
		merged[k] = val
	}
	return merged, nil
}
