package db

import (
	"context"
	"time"
)

type TargetModule string

const (
	ModulePir          TargetModule = "pir"
	ModuleCompetencias TargetModule = "competencias"
	ModuleDesempenho   TargetModule = "desempenho"
	ModulePdi          TargetModule = "pdi"
)

var TargetModules = []TargetModule{ModulePir, ModuleCompetencias, ModuleDesempenho, ModulePdi}

func (m TargetModule) Valid() bool {
	for _, module := range TargetModules {
		if m == module {
			return true
		}
	}
	return false
}

type ExperimentStatus string

const (
	StatusDraft     ExperimentStatus = "draft"
	StatusActive    ExperimentStatus = "active"
	StatusPaused    ExperimentStatus = "paused"
	StatusCompleted ExperimentStatus = "completed"
)

type Experiment struct {
	Id                int64
	Name              string
	Description       string
	TargetModule      TargetModule
	TrafficPercentage int
	StartDate         time.Time
	EndDate           *time.Time
	CreatedBy         int64
	Status            ExperimentStatus
	WinnerVariantId   *int64
	CreatedAt         time.Time
}

type ExperimentSummary struct {
	Experiment
	VariantCount int64
	Participants int64
	Completions  int64
}

type ExperimentService interface {
	CreateExperiment(ctx context.Context, e *Experiment) (int64, error)
	GetExperiment(ctx context.Context, id int64) (*Experiment, error)
	// GetActiveExperimentForModule returns the most recently created active experiment, or ErrNotFound.
	GetActiveExperimentForModule(ctx context.Context, module TargetModule) (*Experiment, error)
	ListExperimentSummaries(ctx context.Context) ([]*ExperimentSummary, error)
	ListExperimentIdsByStatus(ctx context.Context, status ExperimentStatus, maxItems int64) ([]int64, error)
	// PauseActiveExperiments pauses every active experiment of module except exceptId and returns how many changed.
	PauseActiveExperiments(ctx context.Context, module TargetModule, exceptId int64) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status ExperimentStatus) error
	CompleteExperiment(ctx context.Context, id int64, endDate time.Time, winnerVariantId *int64) error
}
