// Package pg stores accepted webhook event IDs in PostgreSQL.
//
// Connect opens a pgx pool with retries, Migrate creates the
// magpie_webhook_events table from embedded goose migrations, and
// ReplayGuard plugs the table into webhook.WithReplayGuard.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//
//	h := webhook.NewHandler(secret, handle,
//		webhook.WithReplayGuard(pg.NewReplayGuard(pool)),
//	)
//
// Expired rows are not deleted automatically; call ReplayGuard.Purge from
// a periodic job.
package pg
