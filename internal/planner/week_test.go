package planner

import (
	"context"
	"testing"
	"time"
)

func TestMondayOf(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"Monday", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), "2024-06-10"},
		{"Sunday", time.Date(2024, 6, 16, 23, 59, 59, 0, time.UTC), "2024-06-10"},
		{"AcrossMonth", time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), "2024-02-26"},
		{"AcrossYear", time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), "2024-12-30"},
		{"DSTWeek", time.Date(2024, 3, 31, 12, 0, 0, 0, madrid), "2024-03-25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MondayOf(tt.in)
			if FormatDate(got) != tt.want {
				t.Errorf("MondayOf(%v) = %s, want %s", tt.in, FormatDate(got), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Errorf("Expected midnight, got %v", got)
			}
		})
	}
}

func TestIsEligible(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	day := func(s string) time.Time {
		d, err := ParseDate(s, time.UTC)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	if !IsEligible(day("2024-06-10"), now) || !IsEligible(day("2024-06-16"), now) {
		t.Error("Expected Monday and Sunday of the current week to be eligible")
	}
	if IsEligible(day("2024-06-09"), now) || IsEligible(day("2024-06-17"), now) {
		t.Error("Expected the neighbouring weeks not to be eligible")
	}
}

func TestWeekDays(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	days, err := WeekDays(now, 1)
	if err != nil {
		t.Fatalf("WeekDays failed: %v", err)
	}
	if FormatDate(days[0]) != "2024-06-17" || FormatDate(days[6]) != "2024-06-23" {
		t.Errorf("Unexpected range %s..%s", FormatDate(days[0]), FormatDate(days[6]))
	}
	if _, err := WeekDays(now, 2); err == nil {
		t.Error("Expected error for offset 2")
	}
}

func TestParseMealType(t *testing.T) {
	for in, want := range map[string]MealType{"lunch": Lunch, " DINNER ": Dinner, "Lunch": Lunch} {
		got, err := ParseMealType(in)
		if err != nil || got != want {
			t.Errorf("ParseMealType(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseMealType("brunch"); err == nil {
		t.Error("Expected error for brunch")
	}
}

func TestTicker(t *testing.T) {
	now := time.Date(2024, 6, 16, 23, 59, 30, 0, time.UTC)
	ticker := NewTicker(func() time.Time { return now }, 10*time.Millisecond, nil)

	if !ticker.Now().Equal(now) {
		t.Fatalf("Expected initial sample, got %v", ticker.Now())
	}

	now = now.Add(time.Minute)
	ticker.sample()
	if FormatDate(MondayOf(ticker.Now())) != "2024-06-17" {
		t.Errorf("Expected the new week after re-sampling, got %v", ticker.Now())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Run to return after cancel")
	}
}
