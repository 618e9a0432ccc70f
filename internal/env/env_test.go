package env

import "testing"

func TestEnvironmentUnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{in: "development", want: Development},
		{in: "Production", want: Production},
		{in: " prod ", want: Production},
		{in: "dev", want: Development},
		{in: "staging", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			var got Environment
			err := got.UnmarshalText([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("UnmarshalText(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !tt.wantErr && got.IsProduction() == got.IsDevelopment() {
				t.Errorf("%q is both or neither development and production", got)
			}
		})
	}
}
