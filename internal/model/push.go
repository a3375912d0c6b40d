package model

import "time"

// Notification type constants
const (
	NotifTypeEventTomorrow    = "event_tomorrow"
	NotifTypeEventToday       = "event_today"
	NotifTypeEventSoon        = "event_soon"
	NotifTypeChoreOverdue     = "chore_overdue"
	NotifTypeChoreDue         = "chore_due"
	NotifTypeWellnessReminder = "wellness_reminder"
)

type PushSubscription struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationLogEntry records that a notification went out on a local date.
type NotificationLogEntry struct {
	ID          string `json:"id"`
	PlayerID    string `json:"player_id"`
	Type        string `json:"type"`
	ReferenceID string `json:"reference_id"`
	SentDate    string `json:"sent_date"`
}
