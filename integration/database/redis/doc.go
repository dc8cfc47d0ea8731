// Package redis bootstraps the shared-cache client holding rate-limit window
// state.
//
// It wraps go-redis with URL validation, linear-backoff retry and a ping
// verification, so a service instance either starts with a working cache or
// fails fast. Both redis:// and rediss:// (TLS) URLs are accepted.
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// # Usage
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := ratelimit.NewRedisStore(client)
//
// Healthcheck returns a ping function for readiness probes. Errors are stable
// sentinels checkable with errors.Is.
package redis
