package user

import (
	"context"
	"time"
)

// detachedContext returns a context for fire-and-forget writes that must
// not inherit request cancellation but still need a bound.
func detachedContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
