package db

import (
	"context"
	"time"
)

type Assignment struct {
	Id                  int64
	ExperimentId        int64
	VariantId           int64
	SubjectId           int64
	Completed           bool
	ResponseTimeSeconds *int64
	AssignedAt          time.Time
	CompletedAt         *time.Time
}

// VariantStats aggregates the assignments bound to one variant.
type VariantStats struct {
	VariantId   int64
	SampleSize  int64
	Completions int64
	// AvgResponseTimeSeconds is the mean over completed assignments with a recorded time, nil when none.
	AvgResponseTimeSeconds *float64
}

type AssignmentService interface {
	GetAssignment(ctx context.Context, experimentId int64, subjectId int64) (*Assignment, error)
	// InsertAssignmentIfAbsent stores a unless the (experiment, subject) pair is already assigned. It reports
	// whether a row was written; the stored row is the one to honour either way.
	InsertAssignmentIfAbsent(ctx context.Context, a *Assignment) (bool, error)
	CompleteAssignment(ctx context.Context, experimentId int64, subjectId int64, responseTimeSeconds int64, completedAt time.Time) (bool, error)
	// ListVariantStats returns one entry per variant of the experiment, including variants with no assignments.
	ListVariantStats(ctx context.Context, experimentId int64) ([]*VariantStats, error)
}
