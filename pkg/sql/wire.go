//go:build wireinject
// +build wireinject

package lsql

import (
	ltest "github.com/avdrh/abtest/pkg/test"
	"github.com/google/wire"
)

func initializeTest(t ltest.T) (*Instance, error) {
	wire.Build(
		TestingWireSet,
	)
	return &Instance{}, nil
}
