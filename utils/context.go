package utils

import (
	"context"
	"time"
)

// ContextSleep pauses for the given duration. It returns nil if the context
// was cancelled before the duration elapsed, so pollable loops can use the
// result to decide whether to exit.
func ContextSleep(ctx context.Context, d time.Duration) *time.Time {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return nil
	case t := <-timer.C:
		return &t
	}
}
