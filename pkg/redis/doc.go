// Package redis connects to the Redis server that backs webhook replay
// protection.
//
// Connect parses a redis:// URL, pings the server and retries a few times
// before giving up, so a process started alongside its Redis container does
// not fail on the first refused connection:
//
//	client, err := redis.Connect(ctx, redis.Config{
//	    URL:            "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  time.Second,
//	    ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	guard := webhook.NewRedisReplayGuard(client, cfg.KeyPrefix)
//
// Config fields carry caarlos0/env tags without a prefix; the root magpie
// package nests the struct under MAGPIE_REDIS_.
package redis
