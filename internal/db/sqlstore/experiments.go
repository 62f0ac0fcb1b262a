package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/avdrh/abtest/internal/db"
	lsql "github.com/avdrh/abtest/pkg/sql"
	log "github.com/sirupsen/logrus"
)

type Experiments struct {
	db lsql.DBInterface
}

var _ db.ExperimentService = &Experiments{}

const experimentColumns = `id, name, description, target_module, traffic_percentage, start_date, end_date, created_by, status,
	winner_variant_id, created_at`

func (e *Experiments) CreateExperiment(ctx context.Context, experiment *db.Experiment) (int64, error) {
	query := `
	INSERT INTO experiments (name, description, target_module, traffic_percentage, start_date, end_date, created_by, status, winner_variant_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := e.db.ExecAndReturnId(ctx, query,
		experiment.Name,
		experiment.Description,
		string(experiment.TargetModule),
		experiment.TrafficPercentage,
		experiment.StartDate,
		experiment.EndDate,
		experiment.CreatedBy,
		string(experiment.Status),
		experiment.WinnerVariantId,
		experiment.CreatedAt,
	)
	return id, translate(err)
}

func (e *Experiments) GetExperiment(ctx context.Context, id int64) (*db.Experiment, error) {
	query := `
	SELECT ` + experimentColumns + `
	FROM experiments
	WHERE id = ?
	`
	return experimentFromRow(e.db.QueryRowContext(ctx, query, id))
}

func (e *Experiments) GetActiveExperimentForModule(ctx context.Context, module db.TargetModule) (*db.Experiment, error) {
	query := `
	SELECT ` + experimentColumns + `
	FROM experiments
	WHERE target_module = ? AND status = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`
	return experimentFromRow(e.db.QueryRowContext(ctx, query, string(module), string(db.StatusActive)))
}

func (e *Experiments) ListExperimentSummaries(ctx context.Context) ([]*db.ExperimentSummary, error) {
	query := `
	SELECT ` + experimentColumns + `,
		(SELECT COUNT(*) FROM variants v WHERE v.experiment_id = experiments.id),
		(SELECT COUNT(*) FROM assignments a WHERE a.experiment_id = experiments.id),
		(SELECT COALESCE(SUM(CASE WHEN a.completed THEN 1 ELSE 0 END), 0) FROM assignments a WHERE a.experiment_id = experiments.id)
	FROM experiments
	ORDER BY created_at DESC, id DESC
	`
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	response := make([]*db.ExperimentSummary, 0)
	for rows.Next() {
		summary := &db.ExperimentSummary{}
		if err := scanExperiment(rows, &summary.Experiment, &summary.VariantCount, &summary.Participants, &summary.Completions); err != nil {
			return nil, translate(err)
		}
		response = append(response, summary)
	}
	return response, translate(rows.Err())
}

func (e *Experiments) ListExperimentIdsByStatus(ctx context.Context, status db.ExperimentStatus, maxItems int64) ([]int64, error) {
	query := `
	SELECT id
	FROM experiments
	WHERE status = ?
	ORDER BY id
	LIMIT ?
	`
	rows, err := e.db.QueryContext(ctx, query, string(status), maxItems)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err)
		}
		ids = append(ids, id)
	}
	return ids, translate(rows.Err())
}

func (e *Experiments) PauseActiveExperiments(ctx context.Context, module db.TargetModule, exceptId int64) (int64, error) {
	query := `
	UPDATE experiments SET status = ?
	WHERE target_module = ? AND status = ? AND id <> ?
	`
	res, err := e.db.ExecContext(ctx, query, string(db.StatusPaused), string(module), string(db.StatusActive), exceptId)
	if err != nil {
		return 0, translate(err)
	}
	rows, err := res.RowsAffected()
	return rows, translate(err)
}

func (e *Experiments) UpdateStatus(ctx context.Context, id int64, status db.ExperimentStatus) error {
	query := `
	UPDATE experiments SET status = ?
	WHERE id = ?
	`
	res, err := e.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return translate(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		log.Debugf("no rows affected for experiment %d", id)
		return db.ErrNotFound
	}
	return nil
}

func (e *Experiments) CompleteExperiment(ctx context.Context, id int64, endDate time.Time, winnerVariantId *int64) error {
	query := `
	UPDATE experiments SET status = ?, end_date = ?, winner_variant_id = ?
	WHERE id = ?
	`
	res, err := e.db.ExecContext(ctx, query, string(db.StatusCompleted), endDate, winnerVariantId, id)
	if err != nil {
		return translate(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		log.Debugf("no rows affected for experiment %d", id)
		return db.ErrNotFound
	}
	return nil
}

func experimentFromRow(row lsql.RowScanner) (*db.Experiment, error) {
	experiment := &db.Experiment{}
	if err := scanExperiment(row, experiment); err != nil {
		return nil, translate(err)
	}
	return experiment, nil
}

func scanExperiment(row lsql.RowScanner, experiment *db.Experiment, extra ...interface{}) error {
	var (
		module  string
		status  string
		endDate sql.NullTime
		winner  sql.NullInt64
	)
	dest := []interface{}{
		&experiment.Id,
		&experiment.Name,
		&experiment.Description,
		&module,
		&experiment.TrafficPercentage,
		&experiment.StartDate,
		&endDate,
		&experiment.CreatedBy,
		&status,
		&winner,
		&experiment.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	experiment.TargetModule = db.TargetModule(module)
	experiment.Status = db.ExperimentStatus(status)
	if endDate.Valid {
		experiment.EndDate = &endDate.Time
	}
	if winner.Valid {
		experiment.WinnerVariantId = &winner.Int64
	}
	return nil
}
