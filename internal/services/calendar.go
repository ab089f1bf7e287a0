package services

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/recurrence"
	"github.com/jmorrow/larder/internal/repository"
)

// CalendarService renders a user's chore due dates and item expiration
// dates as an iCalendar feed that calendar apps can subscribe to.
type CalendarService struct {
	listRepo  repository.ListRepository
	choreRepo repository.ChoreRepository
	itemRepo  repository.ItemRepository
}

func NewCalendarService(
	listRepo repository.ListRepository,
	choreRepo repository.ChoreRepository,
	itemRepo repository.ItemRepository,
) *CalendarService {
	return &CalendarService{
		listRepo:  listRepo,
		choreRepo: choreRepo,
		itemRepo:  itemRepo,
	}
}

// Feed serializes all-day events for every chore due date and item
// expiration across the user's lists. Chore events project forward one
// recurrence per chore from its current next-due date.
func (service *CalendarService) Feed(ctx context.Context, userID string) (string, error) {
	lists, err := service.listRepo.FindByMember(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading lists for feed: %w", err)
	}

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId("-//larder//calendar feed//EN")

	now := time.Now()
	for _, list := range lists {
		if err := service.addChoreEvents(ctx, calendar, list, now); err != nil {
			return "", err
		}
		if err := service.addItemEvents(ctx, calendar, list, now); err != nil {
			return "", err
		}
	}

	return calendar.Serialize(), nil
}

func (service *CalendarService) addChoreEvents(ctx context.Context, calendar *ical.Calendar, list models.List, now time.Time) error {
	chores, err := service.choreRepo.FindByList(ctx, list.ID)
	if err != nil {
		return fmt.Errorf("loading chores for feed: %w", err)
	}

	for _, chore := range chores {
		event := calendar.AddEvent("chore-" + chore.ID + "@larder")
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(chore.NextDue)
		event.SetAllDayEndAt(chore.NextDue.AddDate(0, 0, 1))
		event.SetSummary(chore.Name)
		event.SetDescription(fmt.Sprintf("Due in %s, every %d days", list.Name, chore.FrequencyDays))
	}
	return nil
}

func (service *CalendarService) addItemEvents(ctx context.Context, calendar *ical.Calendar, list models.List, now time.Time) error {
	items, err := service.itemRepo.FindByList(ctx, list.ID)
	if err != nil {
		return fmt.Errorf("loading items for feed: %w", err)
	}

	for _, item := range items {
		deadline, label := itemDeadline(item)
		if deadline == nil {
			continue
		}
		day := recurrence.Midnight(*deadline)

		event := calendar.AddEvent("item-" + item.ID + "@larder")
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s %s", item.Name, label))
		event.SetDescription(fmt.Sprintf("In %s", list.Name))
	}
	return nil
}

// itemDeadline mirrors the freshness axis order: an explicit expiration
// date wins over the periodic replacement cycle.
func itemDeadline(item models.Item) (*time.Time, string) {
	if item.ExpirationDate != nil {
		return item.ExpirationDate, "expires"
	}
	if item.IsPeriodic && item.ReplacementCycle != nil && item.LastReplaced != nil {
		next := recurrence.Midnight(*item.LastReplaced).AddDate(0, 0, *item.ReplacementCycle)
		return &next, "due for replacement"
	}
	return nil, ""
}
