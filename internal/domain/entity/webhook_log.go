package entity

import (
	"encoding/json"
	"time"
)

const (
	WebhookLogSuccess = "success"
	WebhookLogError   = "error"
)

// WebhookLog registro de auditoría de un evento recibido (tabla webhook_logs).
type WebhookLog struct {
	ID        string
	Event     string
	Status    string
	Details   json.RawMessage
	CreatedAt time.Time
}
