package models

import "time"

// Notification types.
const (
	NotificationSubscription = "subscription"
	NotificationDeal         = "deal"
	NotificationSystem       = "system"
)

// Notification is an in-app message shown to a user.
type Notification struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
