package sqlstore

import (
	"context"

	"github.com/avdrh/abtest/internal/db"
	lsql "github.com/avdrh/abtest/pkg/sql"
)

type Events struct {
	db lsql.DBInterface
}

var _ db.EventService = &Events{}

func (e *Events) CreateEvent(ctx context.Context, event *db.Event) (int64, error) {
	query := `
	INSERT INTO events (experiment_id, variant_id, subject_id, metric_type, metric_value, metric_label, page_url, step_number, session_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := e.db.ExecAndReturnId(ctx, query,
		event.ExperimentId,
		event.VariantId,
		event.SubjectId,
		string(event.Type),
		event.Value,
		event.Label,
		event.PageUrl,
		event.StepNumber,
		event.SessionId,
		event.CreatedAt,
	)
	return id, translate(err)
}

func (e *Events) ListEventStats(ctx context.Context, experimentId int64) ([]*db.EventStats, error) {
	query := `
	SELECT variant_id,
		COALESCE(AVG(CASE WHEN metric_type = ? AND metric_value <> 0 THEN metric_value END), 0),
		COALESCE(AVG(CASE WHEN metric_type = ? AND metric_value <> 0 THEN metric_value END), 0),
		COALESCE(AVG(CASE WHEN metric_type = ? AND metric_value <> 0 THEN metric_value END), 0),
		COALESCE(SUM(CASE WHEN metric_type = ? THEN COALESCE(metric_value, 0) ELSE 0 END), 0)
	FROM events
	WHERE experiment_id = ?
	GROUP BY variant_id
	ORDER BY variant_id
	`
	rows, err := e.db.QueryContext(ctx, query,
		string(db.EventTimeOnPage),
		string(db.EventTaskCompletionTime),
		string(db.EventSatisfactionRating),
		string(db.EventErrorCount),
		experimentId,
	)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	byVariant := make(map[int64]*db.EventStats)
	response := make([]*db.EventStats, 0)
	for rows.Next() {
		stats := &db.EventStats{StepCompletions: make(map[int64]int64)}
		if err := rows.Scan(&stats.VariantId, &stats.AvgTimeOnPage, &stats.AvgTaskCompletionTime, &stats.AvgSatisfaction,
			&stats.TotalErrors); err != nil {
			return nil, translate(err)
		}
		byVariant[stats.VariantId] = stats
		response = append(response, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	rows.Close()

	stepQuery := `
	SELECT variant_id, step_number, COUNT(*)
	FROM events
	WHERE experiment_id = ? AND metric_type = ? AND step_number IS NOT NULL
	GROUP BY variant_id, step_number
	`
	stepRows, err := e.db.QueryContext(ctx, stepQuery, experimentId, string(db.EventStepCompletion))
	if err != nil {
		return nil, translate(err)
	}
	defer stepRows.Close()

	for stepRows.Next() {
		var variantId, step, count int64
		if err := stepRows.Scan(&variantId, &step, &count); err != nil {
			return nil, translate(err)
		}
		if stats, ok := byVariant[variantId]; ok {
			stats.StepCompletions[step] = count
		}
	}
	return response, translate(stepRows.Err())
}
