package server

import (
	"context"
	"time"
)

// ShutdownCoordinator lets long requests such as a Strava sync observe a
// shutdown before the listener stops.
type ShutdownCoordinator struct {
	baseCtx     context.Context
	cancel      context.CancelFunc
	gracePeriod time.Duration
}

func NewShutdownCoordinator(gracePeriod time.Duration) *ShutdownCoordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownCoordinator{
		baseCtx:     ctx,
		cancel:      cancel,
		gracePeriod: gracePeriod,
	}
}

// BaseContext is the parent of every request context.
func (sc *ShutdownCoordinator) BaseContext() context.Context {
	return sc.baseCtx
}

// InitiateShutdown cancels in-flight request contexts and blocks for the
// grace period so they can return partial results.
func (sc *ShutdownCoordinator) InitiateShutdown() {
	sc.cancel()
	time.Sleep(sc.gracePeriod)
}

func (sc *ShutdownCoordinator) GracePeriod() time.Duration {
	return sc.gracePeriod
}
