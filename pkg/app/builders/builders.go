package builders

import (
	"github.com/google/wire"

	"github.com/avdrh/abtest/pkg/app"
	interceptors_inflight "github.com/avdrh/abtest/pkg/interceptors/in-flight"
	sbhttpserver "github.com/avdrh/abtest/pkg/serverbase/http/server"
	lsql "github.com/avdrh/abtest/pkg/sql"
	ltime "github.com/avdrh/abtest/pkg/time"
)

// Builders provides the process-wide infrastructure every command shares.
var Builders = wire.NewSet(
	app.NewInstance,
	interceptors_inflight.NewConfigFromEnv,
	interceptors_inflight.NewInterceptor,
	lsql.WireSet,
	ltime.NewWallWatch,
	wire.Bind(new(ltime.Watch), new(ltime.WallWatch)),
	sbhttpserver.NewConfigFromEnv,
	sbhttpserver.NewInstance,
)
