package pg

import "errors"

var (
	ErrEmptyConnectionString    = errors.New("empty postgres connection URL")
	ErrFailedToParseDBConfig    = errors.New("failed to parse postgres connection URL")
	ErrFailedToOpenDBConnection = errors.New("failed to open postgres connection")
	ErrHealthcheckFailed        = errors.New("postgres healthcheck failed")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
)
