package db

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a write refused by a uniqueness rule, such as a second active experiment in a module.
	ErrConflict = errors.New("conflict")
)

// Database groups the persisted collections of the experiment engine. Transaction runs callback against a
// Database bound to one storage transaction; calling Transaction on that value joins the running transaction.
type Database interface {
	Experiments() ExperimentService
	Variants() VariantService
	Assignments() AssignmentService
	Events() EventService
	Results() ResultService

	Transaction(ctx context.Context, callback func(ctx context.Context, tx Database) error) error
	Ping(ctx context.Context) error
}
