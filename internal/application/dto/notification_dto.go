package dto

import "time"

// NotificationResponse aviso no leído del dashboard.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookResponse acuse devuelto a eNotas.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse cuerpo de GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
