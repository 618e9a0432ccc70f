package server

import (
	"testing"
	"time"
)

func TestShutdownCoordinatorCancelsBaseContext(t *testing.T) {
	t.Parallel()

	sc := NewShutdownCoordinator(10 * time.Millisecond)
	ctx := sc.BaseContext()
	if ctx.Err() != nil {
		t.Fatal("BaseContext() cancelled before shutdown")
	}

	start := time.Now()
	sc.InitiateShutdown()

	if ctx.Err() == nil {
		t.Error("BaseContext() not cancelled after InitiateShutdown()")
	}
	if elapsed := time.Since(start); elapsed < sc.GracePeriod() {
		t.Errorf("InitiateShutdown() returned after %v, want at least %v", elapsed, sc.GracePeriod())
	}
}
