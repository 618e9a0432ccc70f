package paths

import (
	"path/filepath"
	"testing"
)

func TestDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "home default", want: filepath.Join(home, ".config", "fitmetrics")},
		{name: "xdg config", env: map[string]string{"XDG_CONFIG_HOME": "/xdg"}, want: filepath.Join("/xdg", "fitmetrics")},
		{name: "explicit home wins", env: map[string]string{"XDG_CONFIG_HOME": "/xdg", "FITMETRICS_HOME": "/data/fit"}, want: "/data/fit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", "")
			t.Setenv("FITMETRICS_HOME", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := Dir()
			if err != nil {
				t.Fatalf("Dir() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Dir() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Setenv("FITMETRICS_HOME", filepath.Join(home, "nested", "fit"))
	dir, err := EnsureDir()
	if err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	db, err := DB()
	if err != nil || db != filepath.Join(dir, "fitmetrics.db") {
		t.Errorf("DB() = %q, %v", db, err)
	}
}
