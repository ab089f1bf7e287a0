package recurrence_test

import (
	"testing"
	"time"

	"github.com/jmorrow/larder/internal/recurrence"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDue_EmptyHistory(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	last, next := recurrence.NextDue(nil, 7, now)
	if last != nil {
		t.Errorf("expected nil lastCompleted, got %v", last)
	}
	if !next.Equal(day(2025, 6, 15)) {
		t.Errorf("expected nextDue today at midnight, got %v", next)
	}
}

func TestNextDue_UsesMaxOfHistory(t *testing.T) {
	now := day(2025, 6, 20)
	history := []time.Time{
		day(2025, 6, 1),
		day(2025, 6, 10),
		day(2025, 6, 5),
	}

	last, next := recurrence.NextDue(history, 7, now)
	if last == nil || !last.Equal(day(2025, 6, 10)) {
		t.Errorf("expected lastCompleted 2025-06-10, got %v", last)
	}
	if !next.Equal(day(2025, 6, 17)) {
		t.Errorf("expected nextDue 2025-06-17, got %v", next)
	}
}

func TestNextDue_OrderIndependent(t *testing.T) {
	now := day(2025, 6, 20)
	a := []time.Time{day(2025, 6, 1), day(2025, 6, 10), day(2025, 6, 5)}
	b := []time.Time{day(2025, 6, 10), day(2025, 6, 5), day(2025, 6, 1)}

	lastA, nextA := recurrence.NextDue(a, 3, now)
	lastB, nextB := recurrence.NextDue(b, 3, now)
	if !lastA.Equal(*lastB) || !nextA.Equal(nextB) {
		t.Errorf("derived fields depend on insertion order: (%v, %v) vs (%v, %v)", lastA, nextA, lastB, nextB)
	}
}

func TestNextDue_NormalizesTimeOfDay(t *testing.T) {
	now := day(2025, 6, 20)
	history := []time.Time{time.Date(2025, 6, 10, 23, 45, 0, 0, time.UTC)}

	last, next := recurrence.NextDue(history, 1, now)
	if !last.Equal(day(2025, 6, 10)) {
		t.Errorf("expected midnight-normalized lastCompleted, got %v", last)
	}
	if !next.Equal(day(2025, 6, 11)) {
		t.Errorf("expected nextDue 2025-06-11, got %v", next)
	}
}

func TestNextDue_WeeklyChain(t *testing.T) {
	// frequency=7, completed day 0 -> due day 7; completed day 7 -> due day 14.
	start := day(2025, 6, 1)
	now := start

	_, next := recurrence.NextDue([]time.Time{start}, 7, now)
	if !next.Equal(day(2025, 6, 8)) {
		t.Fatalf("expected first nextDue 2025-06-08, got %v", next)
	}

	_, next = recurrence.NextDue([]time.Time{start, next}, 7, next)
	if !next.Equal(day(2025, 6, 15)) {
		t.Fatalf("expected second nextDue 2025-06-15, got %v", next)
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		due      time.Time
		status   recurrence.Status
		distance int
	}{
		{"three days overdue", day(2025, 6, 12), recurrence.StatusOverdue, 3},
		{"one day overdue", day(2025, 6, 14), recurrence.StatusOverdue, 1},
		{"due today", day(2025, 6, 15), recurrence.StatusDueToday, 0},
		{"due today late evening", time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC), recurrence.StatusDueToday, 0},
		{"due tomorrow", day(2025, 6, 16), recurrence.StatusUpcoming, 1},
		{"due next week", day(2025, 6, 22), recurrence.StatusUpcoming, 7},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, distance := recurrence.Classify(test.due, now)
			if status != test.status {
				t.Errorf("expected status %s, got %s", test.status, status)
			}
			if distance != test.distance {
				t.Errorf("expected distance %d, got %d", test.distance, distance)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

	if got := recurrence.DaysUntil(day(2025, 6, 18), now); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := recurrence.DaysUntil(day(2025, 6, 10), now); got != -5 {
		t.Errorf("expected -5, got %d", got)
	}
}

func TestDaysUntil_DaylightSavingTransitions(t *testing.T) {
	// New York springs forward on 2026-03-08 (a 23-hour day) and falls
	// back on 2026-11-01 (a 25-hour day). Calendar-day counts must not
	// shift across either boundary.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	springNow := time.Date(2026, 3, 8, 9, 0, 0, 0, loc)
	if got := recurrence.DaysUntil(time.Date(2026, 3, 9, 0, 0, 0, 0, loc), springNow); got != 1 {
		t.Errorf("across spring-forward: expected 1 day, got %d", got)
	}
	if status, days := recurrence.Classify(time.Date(2026, 3, 9, 0, 0, 0, 0, loc), springNow); status != recurrence.StatusUpcoming || days != 1 {
		t.Errorf("across spring-forward: expected upcoming/1, got %s/%d", status, days)
	}

	fallNow := time.Date(2026, 11, 1, 9, 0, 0, 0, loc)
	if got := recurrence.DaysUntil(time.Date(2026, 11, 8, 0, 0, 0, 0, loc), fallNow); got != 7 {
		t.Errorf("across fall-back: expected 7 days, got %d", got)
	}
	if got := recurrence.DaysUntil(time.Date(2026, 10, 31, 0, 0, 0, 0, loc), fallNow); got != -1 {
		t.Errorf("into fall-back: expected -1 day, got %d", got)
	}
}
