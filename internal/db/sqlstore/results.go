package sqlstore

import (
	"context"

	"github.com/avdrh/abtest/internal/db"
	lsql "github.com/avdrh/abtest/pkg/sql"
)

type Results struct {
	db lsql.DBInterface
}

var _ db.ResultService = &Results{}

func (r *Results) UpsertResult(ctx context.Context, result *db.Result) error {
	query := `
	INSERT INTO results (experiment_id, variant_a_sample_size, variant_b_sample_size, variant_a_conversion, variant_b_conversion,
		variant_a_avg_time, variant_b_avg_time, variant_a_dropoff_rate, variant_b_dropoff_rate, winner, confidence,
		is_significant, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (experiment_id) DO UPDATE SET
		variant_a_sample_size = excluded.variant_a_sample_size,
		variant_b_sample_size = excluded.variant_b_sample_size,
		variant_a_conversion = excluded.variant_a_conversion,
		variant_b_conversion = excluded.variant_b_conversion,
		variant_a_avg_time = excluded.variant_a_avg_time,
		variant_b_avg_time = excluded.variant_b_avg_time,
		variant_a_dropoff_rate = excluded.variant_a_dropoff_rate,
		variant_b_dropoff_rate = excluded.variant_b_dropoff_rate,
		winner = excluded.winner,
		confidence = excluded.confidence,
		is_significant = excluded.is_significant,
		updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		result.ExperimentId,
		result.VariantASampleSize,
		result.VariantBSampleSize,
		result.VariantAConversion,
		result.VariantBConversion,
		result.VariantAAvgTime,
		result.VariantBAvgTime,
		result.VariantADropoffRate,
		result.VariantBDropoffRate,
		result.Winner,
		result.Confidence,
		result.IsSignificant,
		result.UpdatedAt,
	)
	return translate(err)
}

func (r *Results) GetResult(ctx context.Context, experimentId int64) (*db.Result, error) {
	query := `
	SELECT id, experiment_id, variant_a_sample_size, variant_b_sample_size, variant_a_conversion, variant_b_conversion,
		variant_a_avg_time, variant_b_avg_time, variant_a_dropoff_rate, variant_b_dropoff_rate, winner, confidence,
		is_significant, updated_at
	FROM results
	WHERE experiment_id = ?
	`
	result := &db.Result{}
	err := r.db.QueryRowContext(ctx, query, experimentId).Scan(
		&result.Id,
		&result.ExperimentId,
		&result.VariantASampleSize,
		&result.VariantBSampleSize,
		&result.VariantAConversion,
		&result.VariantBConversion,
		&result.VariantAAvgTime,
		&result.VariantBAvgTime,
		&result.VariantADropoffRate,
		&result.VariantBDropoffRate,
		&result.Winner,
		&result.Confidence,
		&result.IsSignificant,
		&result.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return result, nil
}
