package entity

import "time"

// Tipos de notificación mostrados en el dashboard.
const (
	NotificationStatusChange = "status_change"
	NotificationError        = "error"
	NotificationSuccess      = "success"
)

// Notification aviso para el usuario dueño de la empresa (tabla notifications).
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Type      string
	Read      bool
	CreatedAt time.Time
}
