package dates

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		delta int
		want  string
	}{
		{"forward one month", "2023-03-15", 1, "2023-04-15"},
		{"backward one month", "2023-03-15", -1, "2023-02-15"},
		{"year rollover forward", "2023-12-10", 1, "2024-01-10"},
		{"year rollover backward", "2023-01-10", -1, "2022-12-10"},
		{"clamp to end of february", "2023-01-31", 1, "2023-02-28"},
		{"clamp to end of leap february", "2024-01-31", 1, "2024-02-29"},
		{"clamp to 30 day month", "2023-05-31", -2, "2023-03-31"},
		{"multiple months", "2023-06-01", 7, "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(day(tt.date), tt.delta)
			if FormatDay(got) != tt.want {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.date, tt.delta, FormatDay(got), tt.want)
			}
		})
	}
}

func TestFirstOfMonth(t *testing.T) {
	got := FirstOfMonth(day("2023-04-17"))
	if FormatDay(got) != "2023-04-01" {
		t.Errorf("FirstOfMonth = %s, want 2023-04-01", FormatDay(got))
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	if _, err := ParseDay("04/17/2023"); err == nil {
		t.Error("Expected error for non ISO date, got nil")
	}
}
