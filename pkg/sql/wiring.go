package lsql

import "github.com/google/wire"

var WireSet = wire.NewSet(NewConfigFromEnv, NewInstance, wire.Bind(new(DBInterface), new(*Instance)))
var TestingWireSet = wire.NewSet(NewTestingConfig, NewInstance)
