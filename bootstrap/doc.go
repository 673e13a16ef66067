// Package bootstrap provides application initialization and lifecycle management.
// It owns the API server and its optional dependencies and drives them through
// a not-started → running → stopped lifecycle.
//
// Usage:
//
//	app, err := bootstrap.NewApp(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := bootstrap.SignalContext(context.Background(), app.Sugar)
//	defer cancel()
//
//	// Blocks until ctx is cancelled
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
