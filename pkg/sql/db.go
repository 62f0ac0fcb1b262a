package lsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"
)

const netPeerAddressKey = attribute.Key("net.peer.address")

func NewInstance(cfg *Config) (*Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	driver := cfg.DriverName()

	var db *sqlx.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = sqlx.Connect(driver, cfg.FullAddress())
			return err
		},
		retry.Attempts(max(cfg.ConnectRetries, 1)),
		retry.Delay(cfg.ConnectBackoff),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("failed to connect to %s database (attempt %d): %s", cfg.Engine, n+1, err)
		}),
	)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(cfg.MaxLifetime)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	tracer := otel.Tracer("lsql")

	return &Instance{
		cfg:    cfg,
		db:     db,
		tracer: tracer,
	}, nil
}

type Instance struct {
	cfg    *Config
	db     *sqlx.DB
	tracer trace.Tracer
}

func (db *Instance) GetDatabaseEngine() string {
	return strings.ToLower(db.cfg.Engine)
}

func (db *Instance) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *Instance) Close() error {
	return db.db.Close()
}

func startSpan(ctx context.Context, db *Instance, spanName string, query string) (context.Context, trace.Span) {
	return db.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBStatementKey.String(query),
			semconv.DBSystemKey.String(db.GetDatabaseEngine()),
			netPeerAddressKey.String(db.cfg.Address),
			semconv.PeerServiceKey.String(fmt.Sprintf("%s[%s(%s)]", db.cfg.DatabaseName, db.GetDatabaseEngine(), db.cfg.Address)),
		))
}

func expand(db *sqlx.DB, query string, args []interface{}) (string, []interface{}, error) {
	if len(args) > 0 {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return "", nil, err
		}
	}
	return db.Rebind(query), args, nil
}

func (db *Instance) QueryRowContext(ctx context.Context, query string, args ...interface{}) *Row {
	ctx, span := startSpan(ctx, db, "QueryRowContext", query)
	defer span.End()

	if isTransaction(ctx) {
		return &Row{err: ErrTransactionContext}
	}
	finalQuery, args, err := expand(db.db, query, args)
	if err != nil {
		return &Row{err: err}
	}
	return &Row{row: db.db.QueryRowxContext(ctx, finalQuery, args...)}
}

func (db *Instance) QueryContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	ctx, span := startSpan(ctx, db, "QueryContext", query)
	defer span.End()

	if isTransaction(ctx) {
		return nil, ErrTransactionContext
	}
	finalQuery, args, err := expand(db.db, query, args)
	if err != nil {
		return nil, err
	}
	return db.db.QueryxContext(ctx, finalQuery, args...)
}

func (db *Instance) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := startSpan(ctx, db, "ExecContext", query)
	defer span.End()

	if isTransaction(ctx) {
		return nil, ErrTransactionContext
	}
	finalQuery, args, err := expand(db.db, query, args)
	if err != nil {
		return nil, err
	}
	return db.db.ExecContext(ctx, finalQuery, args...)
}

func (db *Instance) ExecAndReturnId(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return ExecAndReturnId(db, ctx, query, args...)
}

// ctxExecQuerier is a sealed interface that propagates either a Tx or DB into ExecAndReturnId helper function
type ctxExecQuerier interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *Row
	GetDatabaseEngine() string
}

// ExecAndReturnId runs an INSERT into a table with an integer "id" primary key and returns the new id.
func ExecAndReturnId(ceq ctxExecQuerier, ctx context.Context, query string, args ...interface{}) (int64, error) {
	switch ceq.GetDatabaseEngine() {
	case EngineSqlite, EngineSqlite3:
		res, err := ceq.ExecContext(ctx, query, args...)
		if err != nil {
			log.Debugf("failed to save to database - %s", err)
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			log.Debugf("failed to get last inserted id - %s", err)
			return 0, err
		}
		return id, nil
	case EnginePostgres:
		var id int64
		err := ceq.QueryRowContext(ctx, strings.TrimRight(query, " ;\n")+" RETURNING id", args...).Scan(&id)
		if err != nil {
			log.Debugf("failed to save to database - %s", err)
			return 0, err
		}
		return id, nil
	default:
		return 0, ErrDatabaseEngineNotSupported
	}
}
