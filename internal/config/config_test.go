package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "123")
	t.Setenv("STRAVA_CLIENT_SECRET", "shh")
	t.Setenv("DEFAULT_FTP", "260")

	got, err := Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := Config{
		Strava: Strava{ClientID: "123", ClientSecret: "shh"},
		Metrics: Metrics{
			DefaultFTP:      260,
			CalcConcurrency: 4,
			ReportCacheTTL:  5 * time.Minute,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
	if !got.Strava.Configured() {
		t.Error("Configured() = false, want true")
	}
}
