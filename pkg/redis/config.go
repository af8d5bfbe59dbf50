package redis

import "time"

// Config describes the Redis connection used for webhook replay protection.
// Field tags are relative; the root package loads them under MAGPIE_REDIS_.
type Config struct {
	URL            string        `env:"URL"`                                     // redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" envDefault:"3"`           // Connection attempts before giving up.
	RetryInterval  time.Duration `env:"RETRY_INTERVAL" envDefault:"1s"`          // Pause between attempts.
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`        // Upper bound for the whole connect phase.
	KeyPrefix      string        `env:"KEY_PREFIX" envDefault:"magpie:webhook:"` // Prefix for replay guard keys.
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}
