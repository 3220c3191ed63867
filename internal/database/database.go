// Package database opens per-request PostgreSQL sessions on behalf of API
// callers.
//
// The gateway holds no shared pool: every request authenticates against the
// database with the caller's own Basic credentials, so each request gets a
// dedicated connection and transaction that live exactly as long as the
// request does.
//
// It handles:
//   - parsing the DSN once and cloning it per request
//   - opening a connection and transaction with the caller's credentials
//   - wiring query tracing/logging (pgx tracelog)
//   - optional New Relic instrumentation (nrpgx5)
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/erp-gateway/internal/config"
	loggerConfig "github.com/deppfellow/erp-gateway/internal/logger"
	"github.com/deppfellow/erp-gateway/internal/sqlerr"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Querier runs a query and returns its rows.
//
// Repositories depend on Querier only, so they accept a live Session as
// well as a test fake.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Session is one caller's connection plus its open transaction.
//
// Work done through Query is only persisted by Commit. Close must always be
// called; closing an uncommitted session rolls it back.
type Session interface {
	Querier
	User() string
	Commit(ctx context.Context) error
	Close(ctx context.Context) error
}

// Opener opens sessions for a set of credentials.
type Opener interface {
	Open(ctx context.Context, user, password string) (Session, error)
}

// multiTracer allows chaining multiple tracers.
//
// pgx supports a single Tracer in ConnConfig. This adapter runs several:
//   - New Relic tracer (for distributed tracing/APM)
//   - tracelog.TraceLog (for local SQL logging in "local" env)
type multiTracer struct {
	tracers []any
}

// TraceQueryStart calls every tracer that supports it, threading the
// context through each call.
func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(pgx.QueryTracer); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

// TraceQueryEnd calls every tracer that supports it.
func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(pgx.QueryTracer); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DefaultConnectTimeout applies when database.connect_timeout is not set.
const DefaultConnectTimeout = 10 * time.Second

// Database is the Opener backed by a real PostgreSQL server.
//
// It keeps a parsed template configuration; each Open clones it, swaps in
// the caller's credentials and dials a fresh connection.
type Database struct {
	connConfig *pgx.ConnConfig
	role       string
	log        *zerolog.Logger
}

// New prepares a Database from configuration without connecting.
//
// Inputs:
//   - cfg: application config (DSN, role, connect timeout)
//   - logger: main app logger
//   - loggerService: optional New Relic service (nil if not configured)
//
// Credentials in the DSN, if any, are ignored at request time: every
// session uses the caller's user and password.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	connConfig, err := pgx.ParseConfig(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}

	connConfig.ConnectTimeout = DefaultConnectTimeout
	if cfg.Database.ConnectTimeout > 0 {
		connConfig.ConnectTimeout = time.Duration(cfg.Database.ConnectTimeout) * time.Second
	}

	// Add New Relic PostgreSQL instrumentation when the agent is running.
	if loggerService != nil && loggerService.GetApplication() != nil {
		connConfig.Tracer = nrpgx5.NewTracer()
	}

	// In local env, log every statement through zerolog. Very noisy.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)

		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		}

		if connConfig.Tracer != nil {
			connConfig.Tracer = &multiTracer{
				tracers: []any{connConfig.Tracer, localTracer},
			}
		} else {
			connConfig.Tracer = localTracer
		}
	}

	logger.Info().
		Str("host", connConfig.Host).
		Str("database", connConfig.Database).
		Str("role", cfg.Database.Role).
		Msg("database connector ready")

	return &Database{
		connConfig: connConfig,
		role:       cfg.Database.Role,
		log:        logger,
	}, nil
}

// Open connects as user and begins a transaction.
//
// Any failure, from a refused login to an unreachable server, is returned
// as-is; the caller decides how to present it.
func (db *Database) Open(ctx context.Context, user, password string) (Session, error) {
	connConfig := db.connConfig.Copy()
	connConfig.User = user
	connConfig.Password = password
	if db.role != "" {
		connConfig.RuntimeParams["role"] = db.role
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	return &session{conn: conn, tx: tx, user: user}, nil
}

// session is the pgx implementation of Session.
type session struct {
	conn *pgx.Conn
	tx   pgx.Tx
	user string
}

func (s *session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.tx.Query(ctx, sql, args...)
}

func (s *session) User() string {
	return s.user
}

func (s *session) Commit(ctx context.Context) error {
	return sqlerr.Wrap(s.tx.Commit(ctx))
}

// Close terminates the connection. An open transaction dies with it.
func (s *session) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
