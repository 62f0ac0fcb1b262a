package app

import (
	"context"
	"time"
)

// BackgroundTimeoutContextDuration bounds work that must outlive the app context, such as draining a server.
func BackgroundTimeoutContextDuration(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
