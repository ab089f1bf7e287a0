package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmorrow/larder/internal/recurrence"
	"github.com/jmorrow/larder/internal/repository"
)

// ReminderScheduler periodically scans for due and overdue chores and
// sends each affected list owner a single digest notification.
type ReminderScheduler struct {
	choreRepo repository.ChoreRepository
	listRepo  repository.ListRepository
	notifier  *Notifier
	interval  time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewReminderScheduler(
	choreRepo repository.ChoreRepository,
	listRepo repository.ListRepository,
	notifier *Notifier,
	interval time.Duration,
) *ReminderScheduler {
	return &ReminderScheduler{
		choreRepo: choreRepo,
		listRepo:  listRepo,
		notifier:  notifier,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

func (scheduler *ReminderScheduler) Start() {
	go scheduler.run()
}

func (scheduler *ReminderScheduler) Stop() {
	scheduler.stopOnce.Do(func() {
		close(scheduler.stopCh)
	})
}

func (scheduler *ReminderScheduler) run() {
	ticker := time.NewTicker(scheduler.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := scheduler.RunOnce(ctx); err != nil {
				slog.Error("reminder sweep failed", "error", err)
			}
			cancel()
		case <-scheduler.stopCh:
			return
		}
	}
}

// RunOnce performs one reminder sweep: every chore due today or earlier
// is counted toward its list owner's digest.
func (scheduler *ReminderScheduler) RunOnce(ctx context.Context) error {
	now := time.Now()
	endOfToday := recurrence.Midnight(now).AddDate(0, 0, 1)

	chores, err := scheduler.choreRepo.FindDueBefore(ctx, endOfToday)
	if err != nil {
		return err
	}

	type digest struct {
		due     int
		overdue int
	}
	digests := make(map[string]*digest)
	listOwners := make(map[string]string)

	for _, chore := range chores {
		ownerID, known := listOwners[chore.ListID]
		if !known {
			list, err := scheduler.listRepo.FindByID(ctx, chore.ListID)
			if err != nil {
				slog.Warn("loading list for reminder", "list_id", chore.ListID, "error", err)
				continue
			}
			ownerID = list.OwnerID
			listOwners[chore.ListID] = ownerID
		}

		entry := digests[ownerID]
		if entry == nil {
			entry = &digest{}
			digests[ownerID] = entry
		}

		status, _ := recurrence.Classify(chore.NextDue, now)
		switch status {
		case recurrence.StatusOverdue:
			entry.overdue++
		case recurrence.StatusDueToday:
			entry.due++
		}
	}

	for userID, entry := range digests {
		scheduler.notifier.SendDueDigest(ctx, userID, entry.due, entry.overdue)
	}

	if len(digests) > 0 {
		slog.Info("sent due-chore reminders", "users", len(digests), "chores", len(chores))
	}
	return nil
}
