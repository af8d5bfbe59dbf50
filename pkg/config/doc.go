// Package config loads configuration structs from environment variables.
//
// It wraps github.com/caarlos0/env/v11 for struct-tag parsing and
// github.com/joho/godotenv for optional dotenv files. Unlike a process-wide
// loader it keeps no cache: a client library may be configured several times
// with different prefixes or environments in one process.
//
// # Usage
//
//	type Config struct {
//	    SecretKey  string        `env:"SECRET_KEY,required"`
//	    MaxRetries int           `env:"MAX_RETRIES" envDefault:"3"`
//	    Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithPrefix("MAGPIE_")); err != nil {
//	    return err
//	}
//
// Values set in the process environment take precedence over dotenv files.
// Tests can bypass the process environment entirely:
//
//	err := config.Load(&cfg, config.WithEnvironment(map[string]string{
//	    "MAGPIE_SECRET_KEY": "sk_test_123",
//	}), config.WithoutDotEnv())
//
// # Error Handling
//
// Parsing failures wrap ErrParsingConfig; unreadable dotenv files wrap ErrEnvFile.
package config
