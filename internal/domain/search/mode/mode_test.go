package mode

import "testing"

func TestMode_IsValid(t *testing.T) {
	tests := []struct {
		m    Mode
		want bool
	}{
		{Browse, true},
		{Fuzzy, true},
		{"hybrid", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.m.IsValid(); got != tt.want {
			t.Errorf("Mode(%q).IsValid() = %v, want %v", tt.m, got, tt.want)
		}
	}
}
