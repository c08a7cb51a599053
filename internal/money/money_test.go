package money

import "testing"

func TestFromMilliunits(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want float64
	}{
		{"whole units", -1000000, -1000},
		{"cents preserved", 200850, 200.85},
		{"sub cent rounds", -4167, -4.17},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromMilliunits(tt.ms); got != tt.want {
				t.Errorf("FromMilliunits(%d) = %v, want %v", tt.ms, got, tt.want)
			}
		})
	}
}

func TestRoundTolerance(t *testing.T) {
	if got := RoundTolerance(100.00049); got != 100.0 {
		t.Errorf("RoundTolerance = %v, want 100.0", got)
	}
	if got := RoundTolerance(100.0006); got != 100.001 {
		t.Errorf("RoundTolerance = %v, want 100.001", got)
	}
}

func TestRoundUnit(t *testing.T) {
	if got := RoundUnit(-4166.6667); got != -4167 {
		t.Errorf("RoundUnit = %d, want -4167", got)
	}
	if got := RoundUnit(2.4); got != 2 {
		t.Errorf("RoundUnit = %d, want 2", got)
	}
}
