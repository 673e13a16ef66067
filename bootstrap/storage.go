package bootstrap

import (
	"context"
	"errors"
	"time"

	"talentapi/config"
	"talentapi/metrics"
	"talentapi/storage"

	"go.uber.org/zap"
)

const startupPingTimeout = 3 * time.Second

// InitDependencies builds clients for the enabled backing services.
// Clients are lazy: nothing dials until the first Ping.
func InitDependencies(cfg *config.Config, sugar *zap.SugaredLogger) ([]storage.Dependency, error) {
	var deps []storage.Dependency

	if cfg.DB.Enabled {
		pg, err := storage.NewPostgres(cfg, sugar)
		if err != nil {
			return nil, err
		}
		deps = append(deps, pg)
		sugar.Infow("Postgres client configured", "addr", pg.Addr())
	}

	if cfg.Redis.Enabled {
		rdb := storage.NewRedis(cfg, sugar)
		deps = append(deps, rdb)
		sugar.Infow("Redis client configured", "addr", rdb.Addr())
	}

	return deps, nil
}

// checkDependencies pings every dependency once at startup. Failures are
// logged with a remediation hint but do not block serving.
func (a *App) checkDependencies(ctx context.Context) {
	for _, dep := range a.Dependencies {
		pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
		err := dep.Ping(pingCtx)
		cancel()

		if err != nil {
			metrics.DependencyUp.WithLabelValues(dep.Name()).Set(0)
			a.Sugar.Warnw("Dependency unavailable at startup",
				"dependency", dep.Name(),
				"error", err,
				"hint", ClassifyConnectionError(dep.Name(), err, dep.Addr()))
			continue
		}
		metrics.DependencyUp.WithLabelValues(dep.Name()).Set(1)
		a.Sugar.Infow("Dependency reachable", "dependency", dep.Name(), "addr", dep.Addr())
	}
}

func (a *App) closeDependencies() {
	var errs []error
	for _, dep := range a.Dependencies {
		if err := dep.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.Sugar.Warnw("Error closing dependencies", "error", err)
	}
}
