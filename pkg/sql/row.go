package lsql

import (
	"github.com/jmoiron/sqlx"
)

type Row struct {
	err error
	row *sqlx.Row
}

func (r *Row) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	return r.row.Scan(dest...)
}

// StructScan scans the row into a struct using its `db` tags.
func (r *Row) StructScan(dest interface{}) error {
	if r.err != nil {
		return r.err
	}
	return r.row.StructScan(dest)
}

var _ RowScanner = &Row{}
