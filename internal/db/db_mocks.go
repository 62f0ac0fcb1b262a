package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"pgregory.net/rapid"
)

// MemoryDatabase is an in-memory Database for tests. Transaction runs the callback directly and does not
// roll back. Setting Err makes every call fail with it.
type MemoryDatabase struct {
	mu          sync.Mutex
	Err         error
	experiments map[int64]*Experiment
	variants    map[int64]*Variant
	assignments []*Assignment
	events      []*Event
	results     map[int64]*Result
	nextId      int64
}

var _ Database = &MemoryDatabase{}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		experiments: make(map[int64]*Experiment),
		variants:    make(map[int64]*Variant),
		results:     make(map[int64]*Result),
	}
}

func (m *MemoryDatabase) id() int64 {
	m.nextId++
	return m.nextId
}

func (m *MemoryDatabase) Experiments() ExperimentService { return &ExperimentsMock{m} }
func (m *MemoryDatabase) Variants() VariantService       { return &VariantsMock{m} }
func (m *MemoryDatabase) Assignments() AssignmentService { return &AssignmentsMock{m} }
func (m *MemoryDatabase) Events() EventService           { return &EventsMock{m} }
func (m *MemoryDatabase) Results() ResultService         { return &ResultsMock{m} }
func (m *MemoryDatabase) Ping(_ context.Context) error   { return m.Err }

func (m *MemoryDatabase) Transaction(ctx context.Context, callback func(ctx context.Context, tx Database) error) error {
	if m.Err != nil {
		return m.Err
	}
	return callback(ctx, m)
}

// AssignmentCount returns the number of assignments of experimentId.
func (m *MemoryDatabase) AssignmentCount(experimentId int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.assignments {
		if a.ExperimentId == experimentId {
			count++
		}
	}
	return count
}

type ExperimentsMock struct {
	m *MemoryDatabase
}

func (e *ExperimentsMock) CreateExperiment(_ context.Context, experiment *Experiment) (int64, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return 0, e.m.Err
	}
	stored := *experiment
	stored.Id = e.m.id()
	e.m.experiments[stored.Id] = &stored
	return stored.Id, nil
}

func (e *ExperimentsMock) GetExperiment(_ context.Context, id int64) (*Experiment, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return nil, e.m.Err
	}
	experiment, ok := e.m.experiments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *experiment
	return &copied, nil
}

func (e *ExperimentsMock) GetActiveExperimentForModule(_ context.Context, module TargetModule) (*Experiment, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return nil, e.m.Err
	}
	var found *Experiment
	for _, experiment := range e.m.experiments {
		if experiment.TargetModule != module || experiment.Status != StatusActive {
			continue
		}
		if found == nil || experiment.CreatedAt.After(found.CreatedAt) ||
			(experiment.CreatedAt.Equal(found.CreatedAt) && experiment.Id > found.Id) {
			found = experiment
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	copied := *found
	return &copied, nil
}

func (e *ExperimentsMock) ListExperimentSummaries(_ context.Context) ([]*ExperimentSummary, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return nil, e.m.Err
	}
	response := make([]*ExperimentSummary, 0, len(e.m.experiments))
	for _, experiment := range e.m.experiments {
		summary := &ExperimentSummary{Experiment: *experiment}
		for _, v := range e.m.variants {
			if v.ExperimentId == experiment.Id {
				summary.VariantCount++
			}
		}
		for _, a := range e.m.assignments {
			if a.ExperimentId == experiment.Id {
				summary.Participants++
				if a.Completed {
					summary.Completions++
				}
			}
		}
		response = append(response, summary)
	}
	sort.Slice(response, func(i, j int) bool { return response[i].Id > response[j].Id })
	return response, nil
}

func (e *ExperimentsMock) ListExperimentIdsByStatus(_ context.Context, status ExperimentStatus, maxItems int64) ([]int64, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return nil, e.m.Err
	}
	ids := make([]int64, 0)
	for id, experiment := range e.m.experiments {
		if experiment.Status == status {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if int64(len(ids)) > maxItems {
		ids = ids[:maxItems]
	}
	return ids, nil
}

func (e *ExperimentsMock) PauseActiveExperiments(_ context.Context, module TargetModule, exceptId int64) (int64, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return 0, e.m.Err
	}
	var paused int64
	for id, experiment := range e.m.experiments {
		if id != exceptId && experiment.TargetModule == module && experiment.Status == StatusActive {
			experiment.Status = StatusPaused
			paused++
		}
	}
	return paused, nil
}

func (e *ExperimentsMock) UpdateStatus(_ context.Context, id int64, status ExperimentStatus) error {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return e.m.Err
	}
	experiment, ok := e.m.experiments[id]
	if !ok {
		return ErrNotFound
	}
	if status == StatusActive {
		for otherId, other := range e.m.experiments {
			if otherId != id && other.TargetModule == experiment.TargetModule && other.Status == StatusActive {
				return ErrConflict
			}
		}
	}
	experiment.Status = status
	return nil
}

func (e *ExperimentsMock) CompleteExperiment(_ context.Context, id int64, endDate time.Time, winnerVariantId *int64) error {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return e.m.Err
	}
	experiment, ok := e.m.experiments[id]
	if !ok {
		return ErrNotFound
	}
	experiment.Status = StatusCompleted
	experiment.EndDate = &endDate
	experiment.WinnerVariantId = winnerVariantId
	return nil
}

var _ ExperimentService = &ExperimentsMock{}

type VariantsMock struct {
	m *MemoryDatabase
}

func (v *VariantsMock) CreateVariant(_ context.Context, variant *Variant) (int64, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if v.m.Err != nil {
		return 0, v.m.Err
	}
	stored := *variant
	stored.Id = v.m.id()
	v.m.variants[stored.Id] = &stored
	return stored.Id, nil
}

func (v *VariantsMock) GetVariant(_ context.Context, id int64) (*Variant, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if v.m.Err != nil {
		return nil, v.m.Err
	}
	variant, ok := v.m.variants[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *variant
	return &copied, nil
}

func (v *VariantsMock) ListVariants(_ context.Context, experimentId int64) ([]*Variant, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if v.m.Err != nil {
		return nil, v.m.Err
	}
	response := make([]*Variant, 0)
	for _, variant := range v.m.variants {
		if variant.ExperimentId == experimentId {
			copied := *variant
			response = append(response, &copied)
		}
	}
	sort.Slice(response, func(i, j int) bool { return response[i].Id < response[j].Id })
	return response, nil
}

var _ VariantService = &VariantsMock{}

type AssignmentsMock struct {
	m *MemoryDatabase
}

func (a *AssignmentsMock) find(experimentId int64, subjectId int64) *Assignment {
	for _, assignment := range a.m.assignments {
		if assignment.ExperimentId == experimentId && assignment.SubjectId == subjectId {
			return assignment
		}
	}
	return nil
}

func (a *AssignmentsMock) GetAssignment(_ context.Context, experimentId int64, subjectId int64) (*Assignment, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	if a.m.Err != nil {
		return nil, a.m.Err
	}
	assignment := a.find(experimentId, subjectId)
	if assignment == nil {
		return nil, ErrNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (a *AssignmentsMock) InsertAssignmentIfAbsent(_ context.Context, assignment *Assignment) (bool, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	if a.m.Err != nil {
		return false, a.m.Err
	}
	if a.find(assignment.ExperimentId, assignment.SubjectId) != nil {
		return false, nil
	}
	stored := *assignment
	stored.Id = a.m.id()
	a.m.assignments = append(a.m.assignments, &stored)
	return true, nil
}

func (a *AssignmentsMock) CompleteAssignment(_ context.Context, experimentId int64, subjectId int64, responseTimeSeconds int64, completedAt time.Time) (bool, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	if a.m.Err != nil {
		return false, a.m.Err
	}
	assignment := a.find(experimentId, subjectId)
	if assignment == nil {
		return false, nil
	}
	assignment.Completed = true
	assignment.ResponseTimeSeconds = &responseTimeSeconds
	assignment.CompletedAt = &completedAt
	return true, nil
}

func (a *AssignmentsMock) ListVariantStats(_ context.Context, experimentId int64) ([]*VariantStats, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	if a.m.Err != nil {
		return nil, a.m.Err
	}
	response := make([]*VariantStats, 0)
	for _, variant := range a.m.variants {
		if variant.ExperimentId != experimentId {
			continue
		}
		stats := &VariantStats{VariantId: variant.Id}
		var timed int64
		var total float64
		for _, assignment := range a.m.assignments {
			if assignment.VariantId != variant.Id {
				continue
			}
			stats.SampleSize++
			if assignment.Completed {
				stats.Completions++
				if assignment.ResponseTimeSeconds != nil {
					timed++
					total += float64(*assignment.ResponseTimeSeconds)
				}
			}
		}
		if timed > 0 {
			avg := total / float64(timed)
			stats.AvgResponseTimeSeconds = &avg
		}
		response = append(response, stats)
	}
	sort.Slice(response, func(i, j int) bool { return response[i].VariantId < response[j].VariantId })
	return response, nil
}

var _ AssignmentService = &AssignmentsMock{}

type EventsMock struct {
	m *MemoryDatabase
}

func (e *EventsMock) CreateEvent(_ context.Context, event *Event) (int64, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return 0, e.m.Err
	}
	stored := *event
	stored.Id = e.m.id()
	e.m.events = append(e.m.events, &stored)
	return stored.Id, nil
}

func (e *EventsMock) ListEventStats(_ context.Context, experimentId int64) ([]*EventStats, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.Err != nil {
		return nil, e.m.Err
	}
	type avg struct {
		sum   float64
		count float64
	}
	type acc struct {
		stats                          *EventStats
		timeOnPage, task, satisfaction avg
	}
	byVariant := make(map[int64]*acc)
	for _, event := range e.m.events {
		if event.ExperimentId != experimentId {
			continue
		}
		a, ok := byVariant[event.VariantId]
		if !ok {
			a = &acc{stats: &EventStats{VariantId: event.VariantId, StepCompletions: make(map[int64]int64)}}
			byVariant[event.VariantId] = a
		}
		value := 0.0
		if event.Value != nil {
			value = *event.Value
		}
		switch event.Type {
		case EventTimeOnPage:
			if value != 0 {
				a.timeOnPage.sum += value
				a.timeOnPage.count++
			}
		case EventTaskCompletionTime:
			if value != 0 {
				a.task.sum += value
				a.task.count++
			}
		case EventSatisfactionRating:
			if value != 0 {
				a.satisfaction.sum += value
				a.satisfaction.count++
			}
		case EventErrorCount:
			a.stats.TotalErrors += value
		case EventStepCompletion:
			if event.StepNumber != nil {
				a.stats.StepCompletions[*event.StepNumber]++
			}
		}
	}
	mean := func(v avg) float64 {
		if v.count == 0 {
			return 0
		}
		return v.sum / v.count
	}
	response := make([]*EventStats, 0, len(byVariant))
	for _, a := range byVariant {
		a.stats.AvgTimeOnPage = mean(a.timeOnPage)
		a.stats.AvgTaskCompletionTime = mean(a.task)
		a.stats.AvgSatisfaction = mean(a.satisfaction)
		response = append(response, a.stats)
	}
	sort.Slice(response, func(i, j int) bool { return response[i].VariantId < response[j].VariantId })
	return response, nil
}

var _ EventService = &EventsMock{}

type ResultsMock struct {
	m *MemoryDatabase
}

func (r *ResultsMock) UpsertResult(_ context.Context, result *Result) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	stored := *result
	if existing, ok := r.m.results[result.ExperimentId]; ok {
		stored.Id = existing.Id
	} else {
		stored.Id = r.m.id()
	}
	r.m.results[result.ExperimentId] = &stored
	return nil
}

func (r *ResultsMock) GetResult(_ context.Context, experimentId int64) (*Result, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	result, ok := r.m.results[experimentId]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *result
	return &copied, nil
}

var _ ResultService = &ResultsMock{}

func TargetModuleGenerator() *rapid.Generator[TargetModule] {
	return rapid.SampledFrom(TargetModules)
}

func ExperimentStatusGenerator() *rapid.Generator[ExperimentStatus] {
	return rapid.SampledFrom([]ExperimentStatus{StatusDraft, StatusActive, StatusPaused, StatusCompleted})
}

func EventTypeGenerator() *rapid.Generator[EventType] {
	return rapid.SampledFrom(EventTypes)
}

func LayoutConfigGenerator() *rapid.Generator[LayoutConfig] {
	return rapid.Custom(func(t *rapid.T) LayoutConfig {
		return LayoutConfig{
			LayoutType:        rapid.SampledFrom([]LayoutType{LayoutControl, LayoutCards, LayoutGrid, LayoutWizard, LayoutMinimal}).Draw(t, "layoutType"),
			CardStyle:         rapid.StringMatching("[a-z]{3,10}").Draw(t, "cardStyle"),
			ShowProgressBar:   rapid.Bool().Draw(t, "showProgressBar"),
			ShowStepNumbers:   rapid.Bool().Draw(t, "showStepNumbers"),
			QuestionsPerPage:  rapid.IntRange(0, 10).Draw(t, "questionsPerPage"),
			ColorScheme:       rapid.StringMatching("[a-z]{3,10}").Draw(t, "colorScheme"),
			Spacing:           rapid.SampledFrom([]Spacing{SpacingCompact, SpacingNormal, SpacingRelaxed}).Draw(t, "spacing"),
			AnimationsEnabled: rapid.Bool().Draw(t, "animationsEnabled"),
			ShowHelpTooltips:  rapid.Bool().Draw(t, "showHelpTooltips"),
		}
	})
}
