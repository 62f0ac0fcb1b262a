package db

import (
	"context"
	"time"
)

// Result is the persisted snapshot of an experiment's comparative metrics; A is the control variant.
type Result struct {
	Id                  int64
	ExperimentId        int64
	VariantASampleSize  int64
	VariantBSampleSize  int64
	VariantAConversion  float64
	VariantBConversion  float64
	VariantAAvgTime     float64
	VariantBAvgTime     float64
	VariantADropoffRate float64
	VariantBDropoffRate float64
	Winner              string
	Confidence          int64
	IsSignificant       bool
	UpdatedAt           time.Time
}

type ResultService interface {
	UpsertResult(ctx context.Context, r *Result) error
	GetResult(ctx context.Context, experimentId int64) (*Result, error)
}
