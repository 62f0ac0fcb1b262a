package sbhttpserver

import (
	"context"

	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

// HandleDescription is the set of requirements to describe a handle
type HandleDescription struct {
	// NotFound marks the fallback for unmatched routes; Path and Method are ignored.
	NotFound   bool
	Path       string
	Method     string
	Handler    sbhttpbase.HandleFunc
	Middleware []sbhttpbase.RegistrableMiddleware
}

type ReadinessProvider interface {
	Ready(ctx context.Context) error
}

type LivenessProvider interface {
	Live(ctx context.Context) error
}

type ShutdownProvider interface {
	Shutdown() error
}

// Server is an interface that every implementation of the server has to provide
type Server interface {
	ReadinessProvider
	LivenessProvider
	ShutdownProvider
	// Mapping of handling paths
	GetHandlers() []HandleDescription
}
