package services

import (
	"time"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/recurrence"
)

type FreshnessLevel string

const (
	FreshnessExpired FreshnessLevel = "expired"
	FreshnessWarning FreshnessLevel = "warning"
	FreshnessGood    FreshnessLevel = "good"
)

// freshnessWarningDays is the window, in days, in which an approaching
// expiration or replacement date is flagged as a warning.
const freshnessWarningDays = 7

// FreshnessStatus classifies an item's expiration or periodic
// replacement date. Days counts days overdue for expired, days
// remaining otherwise.
type FreshnessStatus struct {
	Level FreshnessLevel `json:"level"`
	Days  int            `json:"days"`
}

// StockStatus is the live-derived status of one item. Restock and
// freshness are independent axes; nothing here is ever persisted.
type StockStatus struct {
	NeedsRestock bool             `json:"needs_restock"`
	Freshness    *FreshnessStatus `json:"freshness,omitempty"`
}

// EvaluateStock derives the item's display status as of now. An item
// reports at most one freshness axis: expiration when an expiration
// date is set, otherwise the periodic replacement cycle when enabled.
func EvaluateStock(item models.Item, now time.Time) StockStatus {
	status := StockStatus{
		NeedsRestock: item.CurrentStock <= item.SafetyStock,
	}

	switch {
	case item.ExpirationDate != nil:
		status.Freshness = classifyFreshness(*item.ExpirationDate, now)
	case item.IsPeriodic && item.ReplacementCycle != nil && item.LastReplaced != nil:
		nextReplacement := recurrence.Midnight(*item.LastReplaced).AddDate(0, 0, *item.ReplacementCycle)
		status.Freshness = classifyFreshness(nextReplacement, now)
	}

	return status
}

func classifyFreshness(deadline, now time.Time) *FreshnessStatus {
	remaining := recurrence.DaysUntil(deadline, now)
	switch {
	case remaining < 0:
		return &FreshnessStatus{Level: FreshnessExpired, Days: -remaining}
	case remaining <= freshnessWarningDays:
		return &FreshnessStatus{Level: FreshnessWarning, Days: remaining}
	default:
		return &FreshnessStatus{Level: FreshnessGood, Days: remaining}
	}
}
