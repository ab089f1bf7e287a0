// Package recurrence holds the calendar-day arithmetic shared by the
// chore scheduling and stock status logic. All calculations normalize
// time-of-day to midnight so that clock drift never shifts a due date.
package recurrence

import "time"

type Status string

const (
	StatusOverdue  Status = "overdue"
	StatusDueToday Status = "due_today"
	StatusUpcoming Status = "upcoming"
)

// Midnight truncates a time to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDue derives a chore's lastCompleted and nextDue from its
// completion history. A non-empty history yields lastCompleted =
// max(history) and nextDue = lastCompleted + frequencyDays. An empty
// history resets nextDue to today.
func NextDue(history []time.Time, frequencyDays int, now time.Time) (lastCompleted *time.Time, nextDue time.Time) {
	if len(history) == 0 {
		return nil, Midnight(now)
	}

	latest := Midnight(history[0])
	for _, completion := range history[1:] {
		day := Midnight(completion)
		if day.After(latest) {
			latest = day
		}
	}

	return &latest, latest.AddDate(0, 0, frequencyDays)
}

// DaysUntil returns the number of whole calendar days from now until
// the target date. Negative for past dates, zero for today. The count
// is taken over UTC-pinned dates so a daylight-saving transition
// between the two days never shortens the span.
func DaysUntil(target, now time.Time) int {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Classify buckets a due date relative to now. The second return is
// the day distance: days overdue for StatusOverdue, days remaining
// otherwise.
func Classify(due, now time.Time) (Status, int) {
	remaining := DaysUntil(due, now)
	switch {
	case remaining < 0:
		return StatusOverdue, -remaining
	case remaining == 0:
		return StatusDueToday, 0
	default:
		return StatusUpcoming, remaining
	}
}
