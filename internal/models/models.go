package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type ListType string

const (
	ListTypePrivate ListType = "private"
	ListTypeShared  ListType = "shared"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

type ItemCategory string

const (
	CategoryFood      ItemCategory = "food"
	CategoryDrink     ItemCategory = "drink"
	CategoryHousehold ItemCategory = "household"
	CategoryHygiene   ItemCategory = "hygiene"
	CategoryMedicine  ItemCategory = "medicine"
	CategoryOther     ItemCategory = "other"
)

type User struct {
	ID          string    `json:"id"`
	OIDCSubject string    `json:"-"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// List is a container of items and chores. Private lists belong to one
// user; shared lists carry a member set that always includes the owner.
type List struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       ListType  `json:"type"`
	OwnerID    string    `json:"owner_id"`
	OwnerEmail string    `json:"owner_email"`
	Tombstoned bool      `json:"tombstoned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	MemberIDs    []string `json:"member_ids,omitempty"`
	MemberEmails []string `json:"member_emails,omitempty"`
}

type Invitation struct {
	ID           string           `json:"id"`
	ListID       string           `json:"list_id"`
	ListName     string           `json:"list_name"`
	ToEmail      string           `json:"to_email"`
	InviterID    string           `json:"inviter_id"`
	InviterEmail string           `json:"inviter_email"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	ResolvedAt   *time.Time       `json:"resolved_at,omitempty"`
}

type Item struct {
	ID           string       `json:"id"`
	ListID       string       `json:"list_id"`
	Name         string       `json:"name"`
	Category     ItemCategory `json:"category"`
	CurrentStock int          `json:"current_stock"`
	SafetyStock  int          `json:"safety_stock"`
	Unit         string       `json:"unit"`

	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	IsPeriodic       bool       `json:"is_periodic"`
	ReplacementCycle *int       `json:"replacement_cycle,omitempty"`
	LastReplaced     *time.Time `json:"last_replaced,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chore is a recurring task. LastCompleted and NextDue are derived from
// the completion history and rewritten together on every history change.
type Chore struct {
	ID            string     `json:"id"`
	ListID        string     `json:"list_id"`
	Name          string     `json:"name"`
	FrequencyDays int        `json:"frequency_days"`
	LastCompleted *time.Time `json:"last_completed,omitempty"`
	NextDue       time.Time  `json:"next_due"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Completion records one chore completion. At most one per chore per
// calendar day; CompletedOn is the day in YYYY-MM-DD form.
type Completion struct {
	ID                string    `json:"id"`
	ChoreID           string    `json:"chore_id"`
	CompletedOn       string    `json:"completed_on"`
	CompletedByUserID string    `json:"completed_by_user_id"`
	CreatedAt         time.Time `json:"created_at"`
}

type DeviceToken struct {
	Token      string    `json:"token"`
	UserID     string    `json:"user_id"`
	DeviceName string    `json:"device_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeen   time.Time `json:"last_seen"`
}

type NotificationKind string

const (
	NotificationChoreCompleted NotificationKind = "chore_completed"
	NotificationChoreDue       NotificationKind = "chore_due"
)

// Notification is a log entry for one push attempt to one user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	ListID    string           `json:"list_id,omitempty"`
	ChoreID   string           `json:"chore_id,omitempty"`
	SendError string           `json:"send_error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type APIToken struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	TokenHash       string     `json:"-"`
	CreatedByUserID string     `json:"created_by_user_id"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ValidCategory reports whether the label is one of the fixed item categories.
func ValidCategory(category ItemCategory) bool {
	switch category {
	case CategoryFood, CategoryDrink, CategoryHousehold, CategoryHygiene, CategoryMedicine, CategoryOther:
		return true
	}
	return false
}
