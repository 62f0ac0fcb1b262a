package postgresmigrations

import (
	"embed"

	lmigration "github.com/avdrh/abtest/pkg/sql/migration"
)

//go:embed *.sql
var files embed.FS

var Set = lmigration.FromFS(files)
