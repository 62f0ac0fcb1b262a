package db

import (
	"context"
	"time"
)

type EventType string

const (
	EventPageView           EventType = "page_view"
	EventTimeOnPage         EventType = "time_on_page"
	EventStepCompletion     EventType = "step_completion"
	EventFormSubmission     EventType = "form_submission"
	EventErrorCount         EventType = "error_count"
	EventSatisfactionRating EventType = "satisfaction_rating"
	EventTaskCompletionTime EventType = "task_completion_time"
)

var EventTypes = []EventType{
	EventPageView,
	EventTimeOnPage,
	EventStepCompletion,
	EventFormSubmission,
	EventErrorCount,
	EventSatisfactionRating,
	EventTaskCompletionTime,
}

func (t EventType) Valid() bool {
	for _, eventType := range EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

type Event struct {
	Id           int64
	ExperimentId int64
	VariantId    int64
	SubjectId    int64
	Type         EventType
	Value        *float64
	Label        *string
	PageUrl      *string
	StepNumber   *int64
	SessionId    *string
	CreatedAt    time.Time
}

// EventStats aggregates the events recorded against one variant. Averages skip missing and zero values.
type EventStats struct {
	VariantId             int64
	AvgTimeOnPage         float64
	AvgTaskCompletionTime float64
	AvgSatisfaction       float64
	TotalErrors           float64
	// StepCompletions counts step_completion events by step number.
	StepCompletions map[int64]int64
}

type EventService interface {
	CreateEvent(ctx context.Context, e *Event) (int64, error)
	// ListEventStats returns stats for every variant that has at least one event.
	ListEventStats(ctx context.Context, experimentId int64) ([]*EventStats, error)
}
