package sqlstore

import (
	"context"
	"database/sql"

	"github.com/avdrh/abtest/internal/db"
	lsql "github.com/avdrh/abtest/pkg/sql"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Database implements db.Database on any engine supported by lsql. Queries are written with "?" placeholders
// and rebound by lsql for the engine in use.
type Database struct {
	conn        lsql.DBInterface
	experiments *Experiments
	variants    *Variants
	assignments *Assignments
	events      *Events
	results     *Results
}

var _ db.Database = &Database{}

type pinger interface {
	Ping(ctx context.Context) error
}

func NewDatabase(conn lsql.DBInterface) *Database {
	log.Debugf("using %s database store", conn.GetDatabaseEngine())
	return &Database{
		conn:        conn,
		experiments: &Experiments{db: conn},
		variants:    &Variants{db: conn},
		assignments: &Assignments{db: conn},
		events:      &Events{db: conn},
		results:     &Results{db: conn},
	}
}

func (d *Database) Experiments() db.ExperimentService {
	return d.experiments
}

func (d *Database) Variants() db.VariantService {
	return d.variants
}

func (d *Database) Assignments() db.AssignmentService {
	return d.assignments
}

func (d *Database) Events() db.EventService {
	return d.events
}

func (d *Database) Results() db.ResultService {
	return d.results
}

func (d *Database) Transaction(ctx context.Context, callback func(ctx context.Context, tx db.Database) error) error {
	return d.conn.Transaction(ctx, func(ctx context.Context, tx *lsql.Tx) error {
		return callback(ctx, NewDatabase(tx))
	})
}

func (d *Database) Ping(ctx context.Context) error {
	if p, ok := d.conn.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// translate maps driver errors onto the db package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return db.ErrNotFound
	}
	if lsql.IsUniqueViolation(err) {
		return errors.Wrap(db.ErrConflict, err.Error())
	}
	return errors.WithStack(err)
}
