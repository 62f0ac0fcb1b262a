package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/avdrh/abtest/internal/db"
	lsql "github.com/avdrh/abtest/pkg/sql"
)

type Assignments struct {
	db lsql.DBInterface
}

var _ db.AssignmentService = &Assignments{}

func (a *Assignments) GetAssignment(ctx context.Context, experimentId int64, subjectId int64) (*db.Assignment, error) {
	query := `
	SELECT id, experiment_id, variant_id, subject_id, completed, response_time_seconds, assigned_at, completed_at
	FROM assignments
	WHERE experiment_id = ? AND subject_id = ?
	`
	row := a.db.QueryRowContext(ctx, query, experimentId, subjectId)

	assignment := &db.Assignment{}
	var (
		responseTime sql.NullInt64
		completedAt  sql.NullTime
	)
	if err := row.Scan(&assignment.Id, &assignment.ExperimentId, &assignment.VariantId, &assignment.SubjectId,
		&assignment.Completed, &responseTime, &assignment.AssignedAt, &completedAt); err != nil {
		return nil, translate(err)
	}
	if responseTime.Valid {
		assignment.ResponseTimeSeconds = &responseTime.Int64
	}
	if completedAt.Valid {
		assignment.CompletedAt = &completedAt.Time
	}
	return assignment, nil
}

func (a *Assignments) InsertAssignmentIfAbsent(ctx context.Context, assignment *db.Assignment) (bool, error) {
	query := `
	INSERT INTO assignments (experiment_id, variant_id, subject_id, completed, response_time_seconds, assigned_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (experiment_id, subject_id) DO NOTHING
	`
	res, err := a.db.ExecContext(ctx, query,
		assignment.ExperimentId,
		assignment.VariantId,
		assignment.SubjectId,
		assignment.Completed,
		assignment.ResponseTimeSeconds,
		assignment.AssignedAt,
		assignment.CompletedAt,
	)
	if err != nil {
		return false, translate(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, translate(err)
	}
	return rows > 0, nil
}

func (a *Assignments) CompleteAssignment(ctx context.Context, experimentId int64, subjectId int64, responseTimeSeconds int64, completedAt time.Time) (bool, error) {
	query := `
	UPDATE assignments SET completed = ?, response_time_seconds = ?, completed_at = ?
	WHERE experiment_id = ? AND subject_id = ?
	`
	res, err := a.db.ExecContext(ctx, query, true, responseTimeSeconds, completedAt, experimentId, subjectId)
	if err != nil {
		return false, translate(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, translate(err)
	}
	return rows > 0, nil
}

func (a *Assignments) ListVariantStats(ctx context.Context, experimentId int64) ([]*db.VariantStats, error) {
	query := `
	SELECT v.id,
		COUNT(a.id),
		COALESCE(SUM(CASE WHEN a.completed THEN 1 ELSE 0 END), 0),
		AVG(CASE WHEN a.completed AND a.response_time_seconds IS NOT NULL
			THEN CAST(a.response_time_seconds AS DOUBLE PRECISION) END)
	FROM variants v
	LEFT JOIN assignments a ON a.variant_id = v.id
	WHERE v.experiment_id = ?
	GROUP BY v.id
	ORDER BY v.id
	`
	rows, err := a.db.QueryContext(ctx, query, experimentId)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	response := make([]*db.VariantStats, 0)
	for rows.Next() {
		stats := &db.VariantStats{}
		var avg sql.NullFloat64
		if err := rows.Scan(&stats.VariantId, &stats.SampleSize, &stats.Completions, &avg); err != nil {
			return nil, translate(err)
		}
		if avg.Valid {
			stats.AvgResponseTimeSeconds = &avg.Float64
		}
		response = append(response, stats)
	}
	return response, translate(rows.Err())
}
