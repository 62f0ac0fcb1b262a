package sqlstore

import (
	"context"

	"github.com/avdrh/abtest/internal/db"
	lsql "github.com/avdrh/abtest/pkg/sql"
)

type Variants struct {
	db lsql.DBInterface
}

var _ db.VariantService = &Variants{}

func (v *Variants) CreateVariant(ctx context.Context, variant *db.Variant) (int64, error) {
	query := `
	INSERT INTO variants (experiment_id, name, description, is_control, traffic_weight, config)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := v.db.ExecAndReturnId(ctx, query,
		variant.ExperimentId,
		variant.Name,
		variant.Description,
		variant.IsControl,
		variant.TrafficWeight,
		variant.Config,
	)
	return id, translate(err)
}

func (v *Variants) GetVariant(ctx context.Context, id int64) (*db.Variant, error) {
	query := `
	SELECT id, experiment_id, name, description, is_control, traffic_weight, config
	FROM variants
	WHERE id = ?
	`
	variant, err := variantFromRow(v.db.QueryRowContext(ctx, query, id))
	return variant, translate(err)
}

func (v *Variants) ListVariants(ctx context.Context, experimentId int64) ([]*db.Variant, error) {
	query := `
	SELECT id, experiment_id, name, description, is_control, traffic_weight, config
	FROM variants
	WHERE experiment_id = ?
	ORDER BY id
	`
	rows, err := v.db.QueryContext(ctx, query, experimentId)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	response := make([]*db.Variant, 0)
	for rows.Next() {
		variant, err := variantFromRow(rows)
		if err != nil {
			return nil, translate(err)
		}
		response = append(response, variant)
	}
	return response, translate(rows.Err())
}

func variantFromRow(row lsql.RowScanner) (*db.Variant, error) {
	variant := &db.Variant{}
	if err := row.Scan(&variant.Id, &variant.ExperimentId, &variant.Name, &variant.Description, &variant.IsControl,
		&variant.TrafficWeight, &variant.Config); err != nil {
		return nil, err
	}
	return variant, nil
}
