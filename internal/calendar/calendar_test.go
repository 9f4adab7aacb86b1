package calendar

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		m, err := ParseMonth("2025-02")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Year != 2025 || m.Month != time.February {
			t.Errorf("expected 2025-02, got %v", m)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		if _, err := ParseMonth("2025-2"); err == nil {
			t.Error("expected error for non-canonical key")
		}
		if _, err := ParseMonth("not-a-month"); err == nil {
			t.Error("expected error for garbage input")
		}
	})

	t.Run("round trips through Key", func(t *testing.T) {
		m, err := ParseMonth("1999-12")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Key() != "1999-12" {
			t.Errorf("expected key 1999-12, got %s", m.Key())
		}
	})
}

func TestMonthClamp(t *testing.T) {
	tests := []struct {
		name  string
		month Month
		day   int
		want  string
	}{
		{"day within month", Month{2025, time.January}, 15, "2025-01-15"},
		{"day 31 in 30-day month", Month{2025, time.April}, 31, "2025-04-30"},
		{"day 31 in february", Month{2025, time.February}, 31, "2025-02-28"},
		{"day 29 in leap february", Month{2024, time.February}, 29, "2024-02-29"},
		{"day 29 in non-leap february", Month{2025, time.February}, 29, "2025-02-28"},
		{"day below range snaps to first", Month{2025, time.June}, 0, "2025-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDate(tt.month.Clamp(tt.day))
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMonthDays(t *testing.T) {
	if d := (Month{2025, time.January}).Days(); d != 31 {
		t.Errorf("expected 31 days in January, got %d", d)
	}
	if d := (Month{2024, time.February}).Days(); d != 29 {
		t.Errorf("expected 29 days in leap February, got %d", d)
	}
	if d := (Month{2025, time.February}).Days(); d != 28 {
		t.Errorf("expected 28 days in February, got %d", d)
	}
}

func TestAddMonths(t *testing.T) {
	t.Run("crosses year boundary forward", func(t *testing.T) {
		m := Month{2025, time.November}.AddMonths(3)
		if m.Key() != "2026-02" {
			t.Errorf("expected 2026-02, got %s", m.Key())
		}
	})

	t.Run("crosses year boundary backward", func(t *testing.T) {
		m := Month{2025, time.January}.AddMonths(-1)
		if m.Key() != "2024-12" {
			t.Errorf("expected 2024-12, got %s", m.Key())
		}
	})
}

func TestMonthsBetween(t *testing.T) {
	a := Month{2024, time.November}
	b := Month{2025, time.February}
	if n := MonthsBetween(a, b); n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
	if n := MonthsBetween(b, a); n != -3 {
		t.Errorf("expected -3, got %d", n)
	}
	if n := MonthsBetween(a, a); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestEnumerate(t *testing.T) {
	months := Enumerate(Month{2025, time.December}, 3)
	want := []string{"2025-12", "2026-01", "2026-02"}
	if len(months) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(months))
	}
	for i, m := range months {
		if m.Key() != want[i] {
			t.Errorf("month %d: expected %s, got %s", i, want[i], m.Key())
		}
	}
}

func TestContains(t *testing.T) {
	m := Month{2025, time.March}
	if !m.Contains("2025-03-15") {
		t.Error("expected 2025-03-15 to be contained in 2025-03")
	}
	if m.Contains("2025-04-01") {
		t.Error("expected 2025-04-01 not to be contained in 2025-03")
	}
	if m.Contains("bad") {
		t.Error("expected malformed date not to be contained")
	}
}

func TestParseDate(t *testing.T) {
	t.Run("valid date is UTC", func(t *testing.T) {
		d, err := ParseDate("2025-07-04")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Location() != time.UTC {
			t.Errorf("expected UTC, got %v", d.Location())
		}
		if FormatDate(d) != "2025-07-04" {
			t.Errorf("expected round trip, got %s", FormatDate(d))
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		if _, err := ParseDate("2025-13-01"); err == nil {
			t.Error("expected error for month 13")
		}
	})
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {31, "31st"},
	}
	for _, tt := range tests {
		if got := Ordinal(tt.n); got != tt.want {
			t.Errorf("Ordinal(%d): expected %s, got %s", tt.n, tt.want, got)
		}
	}
}
