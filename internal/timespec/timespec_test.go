package timespec

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", spec: "30s", want: 30 * time.Second},
		{name: "minutes", spec: "5m", want: 5 * time.Minute},
		{name: "hours", spec: "2h", want: 2 * time.Hour},
		{name: "days", spec: "400d", want: 400 * 24 * time.Hour},
		{name: "single_unit_value", spec: "1s", want: time.Second},
		{name: "empty", spec: "", wantErr: true},
		{name: "zero_amount", spec: "0m", wantErr: true},
		{name: "negative", spec: "-5m", wantErr: true},
		{name: "missing_unit", spec: "42", wantErr: true},
		{name: "unknown_unit", spec: "3w", wantErr: true},
		{name: "unit_first", spec: "m5", wantErr: true},
		{name: "trailing_garbage", spec: "5mm", wantErr: true},
		{name: "uppercase_unit", spec: "5M", want: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) succeeded, want error", tt.spec)
				}
				return
			}

			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}
