package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"talentapi/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres wraps the datastore connection pool
type Postgres struct {
	DB     *sql.DB
	addr   string
	logger *zap.SugaredLogger
}

// NewPostgres opens a connection pool for the configured datastore.
// No connection is made until the first Ping or query.
func NewPostgres(cfg *config.Config, logger *zap.SugaredLogger) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Postgres{
		DB:     db,
		addr:   net.JoinHostPort(cfg.DB.Host, strconv.Itoa(cfg.DB.Port)),
		logger: logger,
	}, nil
}

// Name implements Dependency
func (p *Postgres) Name() string { return "postgres" }

// Addr implements Dependency
func (p *Postgres) Addr() string { return p.addr }

// Ping verifies the datastore is reachable
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.DB.PingContext(ctx); err != nil {
		p.logger.Debugw("Postgres ping failed", "addr", p.addr, "error", err)
		return err
	}
	return nil
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	return p.DB.Close()
}
