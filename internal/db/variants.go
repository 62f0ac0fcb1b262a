package db

import (
	"context"
)

type Variant struct {
	Id            int64
	ExperimentId  int64
	Name          string
	Description   string
	IsControl     bool
	TrafficWeight int
	Config        LayoutConfig
}

type VariantService interface {
	CreateVariant(ctx context.Context, v *Variant) (int64, error)
	GetVariant(ctx context.Context, id int64) (*Variant, error)
	// ListVariants returns the variants of an experiment in creation order.
	ListVariants(ctx context.Context, experimentId int64) ([]*Variant, error)
}
