// Package pg bootstraps the PostgreSQL connection pool backing the file
// catalog.
//
// It wraps pgx with connection verification, linear-backoff retry and pool
// sizing driven by environment configuration, plus small helpers the catalog
// layer needs: error classification and transaction propagation through
// context.
//
// # Configuration
//
//	type Config struct {
//		ConnectionString  string        `env:"DATABASE_URL,required"`
//		MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
//	}
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	catalog := filestore.NewPostgresCatalog(pool)
//
// Healthcheck returns a ping function suitable for readiness probes.
//
// # Transactions
//
// WithTx attaches a pgx.Tx to a context and TxFromContext retrieves it. The
// Postgres catalog checks the context on every call, so callers can group
// catalog writes with their own statements in one transaction:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx) // Safe even after commit.
//
//	ctx = pg.WithTx(ctx, tx)
//	// ... catalog calls join tx ...
//	return tx.Commit(ctx)
//
// IsNotFoundError and IsDuplicateKeyError classify the two pgx failures the
// catalog cares about without string matching.
package pg
