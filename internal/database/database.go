// Package database connects the service to PostgreSQL.
//
// It builds a pgx connection pool with query tracing (per-query logging,
// slow query warnings and optional New Relic segments) and opens the
// gorm ORM session on top of that pool, so every statement the ORM
// issues goes through the same traced connections.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/deppfellow/event-api/internal/config"
	loggerConfig "github.com/deppfellow/event-api/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the pgx pool and the ORM session running on it.
type Database struct {
	Pool *pgxpool.Pool
	ORM  *gorm.DB
	log  *zerolog.Logger
}

// DatabasePingTimeout is how long startup waits for the first ping.
const DatabasePingTimeout = 10 * time.Second

// New creates the traced pgx pool, verifies connectivity and opens the
// ORM on top of it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	if tracer := newTracer(cfg, logger, loggerService); tracer != nil {
		pgxPoolConfig.ConnConfig.Tracer = tracer
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	orm, err := OpenORM(stdlib.OpenDBFromPool(pool))
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().Msg("connected to the database")

	return &Database{
		Pool: pool,
		ORM:  orm,
		log:  logger,
	}, nil
}

// OpenORM opens a gorm session over an existing connection.
//
// The ORM's own logger is silenced: statements are logged by the pgx
// tracer installed on the pool.
func OpenORM(conn gorm.ConnPool) (*gorm.DB, error) {
	orm, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open orm: %w", err)
	}
	return orm, nil
}

// DSN builds a postgres:// connection URL from cfg.
func DSN(cfg config.DatabaseConfig) string {
	// JoinHostPort brackets IPv6 hosts.
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

// newTracer assembles the pgx query tracers enabled by cfg.
//
// Up to three tracers are installed:
//   - nrpgx5: datastore segments in New Relic (only with an application)
//   - tracelog + pgx-zerolog: one log line per executed query, when
//     database.log_queries is on
//   - slowQueryTracer: a warning for queries slower than
//     observability.logging.slow_query_threshold
//
// pgx accepts a single QueryTracer, so more than one is fanned out through
// multiTracer. nil means no tracing at all.
//
// Every ORM statement runs on this pool, so these tracers see all of them.
func newTracer(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) pgx.QueryTracer {
	var tracers []any

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	if cfg.Database.LogQueries {
		// Queries are reported at info; keep at least that verbosity so the
		// query log survives a quieter global level.
		level := min(logger.GetLevel(), zerolog.InfoLevel)
		pgxLogger := loggerConfig.NewPgxLogger(os.Stdout, level, !cfg.Observability.IsProduction())

		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(level),
		})
	}

	if threshold := cfg.Observability.Logging.SlowQueryThreshold; threshold > 0 {
		tracers = append(tracers, &slowQueryTracer{threshold: threshold, log: logger})
	}

	switch len(tracers) {
	case 0:
		return nil
	case 1:
		if t, ok := tracers[0].(pgx.QueryTracer); ok {
			return t
		}
	}
	return &multiTracer{tracers: tracers}
}

// Ping checks that the database answers through the ORM connection.
func (db *Database) Ping(ctx context.Context) error {
	sqlDB, err := db.ORM.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the ORM connection and the pool underneath it.
func (db *Database) Close() error {
	if db.log != nil {
		db.log.Info().Msg("closing database connection pool")
	}

	var closeErr error
	if db.ORM != nil {
		var sqlDB *sql.DB
		if sqlDB, closeErr = db.ORM.DB(); closeErr == nil {
			closeErr = sqlDB.Close()
		}
	}

	if db.Pool != nil {
		db.Pool.Close()
	}

	return closeErr
}
