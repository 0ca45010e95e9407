package domain

import "time"

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

type NotificationAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

type Notification struct {
	ID        string             `json:"id"`
	Type      NotificationType   `json:"type"`
	Message   string             `json:"message"`
	Action1   NotificationAction `json:"action1"`
	CreatedAt time.Time          `json:"created_at"`
}
