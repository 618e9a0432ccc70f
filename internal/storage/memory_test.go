package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryBackendAllow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryBackend(1, 2)
	t.Cleanup(func() { _ = m.Close() })

	for i := range 2 {
		res, err := m.Allow(ctx, "203.0.113.1")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d denied within burst", i)
		}
	}

	res, err := m.Allow(ctx, "203.0.113.1")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if res.Allowed {
		t.Error("request beyond burst allowed")
	}
	if res.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", res.RetryAfter)
	}

	other, _ := m.Allow(ctx, "203.0.113.2")
	if !other.Allowed {
		t.Error("limiters are not per key")
	}
}

func TestMemoryBackendState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryBackend(10, 10)
	t.Cleanup(func() { _ = m.Close() })

	entry := StateEntry{ReturnTo: "/dashboard", CreatedAt: time.Now()}
	if err := m.Set(ctx, "abc", entry, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := m.GetAndDelete(ctx, "abc")
	if err != nil {
		t.Fatalf("GetAndDelete() error = %v", err)
	}
	if got.ReturnTo != entry.ReturnTo {
		t.Errorf("ReturnTo = %q, want %q", got.ReturnTo, entry.ReturnTo)
	}

	if _, err := m.GetAndDelete(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second GetAndDelete() error = %v, want ErrNotFound", err)
	}

	expired := StateEntry{CreatedAt: time.Now().Add(-time.Hour)}
	_ = m.Set(ctx, "old", expired, time.Minute)
	if _, err := m.GetAndDelete(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired GetAndDelete() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryBackendReports(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryBackend(10, 10)
	t.Cleanup(func() { _ = m.Close() })

	type report struct {
		Total float64  `json:"total"`
		Zones []string `json:"zones"`
	}
	want := report{Total: 312.5, Zones: []string{"tempo", "endurance"}}

	var got report
	if err := m.GetReport(ctx, 1, "dashboard", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetReport() on empty cache error = %v, want ErrNotFound", err)
	}

	if err := m.SetReport(ctx, 1, "dashboard", want, time.Minute); err != nil {
		t.Fatalf("SetReport() error = %v", err)
	}
	if err := m.GetReport(ctx, 1, "dashboard", &got); err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetReport() mismatch (-want +got):\n%s", diff)
	}

	if err := m.InvalidateReports(ctx, 1); err != nil {
		t.Fatalf("InvalidateReports() error = %v", err)
	}
	if err := m.GetReport(ctx, 1, "dashboard", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport() after invalidate error = %v, want ErrNotFound", err)
	}

	_ = m.SetReport(ctx, 2, "dashboard", want, -time.Second)
	if err := m.GetReport(ctx, 2, "dashboard", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport() expired error = %v, want ErrNotFound", err)
	}
}
