package entity

import "time"

const (
	UserStatusDeleted int32 = 0
	UserStatusActive  int32 = 10
)

const (
	VisibilityPublic      = "public"
	VisibilitySubscribers = "subscribers"
	VisibilityPrivate     = "private"
)

func IsVisibilityAllowed(v string) bool {
	switch v {
	case VisibilityPublic, VisibilitySubscribers, VisibilityPrivate:
		return true
	default:
		return false
	}
}

type PrivacySettings struct {
	ProfileVisibility string `json:"profile_visibility"`
	ContactVisibility string `json:"contact_visibility"`
}

type ChannelNotifications struct {
	Billing   bool `json:"billing"`
	Marketing bool `json:"marketing"`
	Security  bool `json:"security"`
}

type NotificationSettings struct {
	Email ChannelNotifications `json:"email"`
	Push  ChannelNotifications `json:"push"`
}

// SubscriptionSnapshot is the user's current entitlement: plan reference plus
// the name and price captured at purchase time.
type SubscriptionSnapshot struct {
	PlanID    uint64
	PlanName  string
	Price     float64
	ExpiresAt *time.Time
}

type User struct {
	ID            string
	Name          string
	Email         string
	Phone         *string
	PasswordHash  string
	Status        int32
	Privacy       PrivacySettings
	Notifications NotificationSettings
	Subscription  *SubscriptionSnapshot
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
