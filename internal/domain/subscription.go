package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a user's request to be reminded about an item's release.
// NotifiedAt is nil while the subscription is pending.
type Subscription struct {
	ID         uuid.UUID
	UserID     string
	ItemID     string
	CreatedAt  time.Time
	NotifiedAt *time.Time
}

// IsPending reports whether the reminder has not been delivered yet.
func (s Subscription) IsPending() bool { return s.NotifiedAt == nil }

// SubscriptionView is a subscription joined with the current catalog data.
type SubscriptionView struct {
	Subscription
	ItemName         string
	ReleaseAt        *time.Time
	ReleasePrecision ReleasePrecision
}

// DueReminder is a pending subscription selected by the scheduler. Item is
// nil when the referenced catalog row could not be found.
type DueReminder struct {
	Subscription Subscription
	Item         *CatalogItem
}

// ReminderMessage builds the text delivered to the user.
func ReminderMessage(item CatalogItem, now time.Time) string {
	if item.IsReleasedAt(now) {
		return "**" + item.Name + "** is out now! " + item.StoreURL()
	}
	return "**" + item.Name + "** is coming out soon! " + item.StoreURL()
}

// DueCursor is the position of a due reminder in scheduling order: release
// time (missing items last), then subscription creation time, then id.
// A nil ReleaseAt marks an orphaned reminder.
type DueCursor struct {
	ReleaseAt *time.Time
	CreatedAt time.Time
	ID        uuid.UUID
}

// Cursor returns the position of d, for fetching the reminders after it.
func (d DueReminder) Cursor() DueCursor {
	c := DueCursor{CreatedAt: d.Subscription.CreatedAt, ID: d.Subscription.ID}
	if d.Item != nil {
		c.ReleaseAt = d.Item.ReleaseAt
	}
	return c
}

// Before reports whether c sorts ahead of other.
func (c DueCursor) Before(other DueCursor) bool {
	switch {
	case c.ReleaseAt == nil && other.ReleaseAt != nil:
		return false
	case c.ReleaseAt != nil && other.ReleaseAt == nil:
		return true
	case c.ReleaseAt != nil && !c.ReleaseAt.Equal(*other.ReleaseAt):
		return c.ReleaseAt.Before(*other.ReleaseAt)
	case !c.CreatedAt.Equal(other.CreatedAt):
		return c.CreatedAt.Before(other.CreatedAt)
	}
	return c.ID.String() < other.ID.String()
}

// TickReport summarizes one scheduler run.
type TickReport struct {
	Due       int
	Delivered int
	Failed    int
	Skipped   int
	Orphaned  int
}
