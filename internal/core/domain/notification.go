package domain

import (
	"fmt"
	"time"
)

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
)

// Notification is a transient, user-visible message (a toast).
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderEvent is a realtime message pushed by the backend about orders.
type OrderEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
	// Message is set on "connection" and echo frames.
	Message string `json:"message,omitempty"`
}

const (
	EventNewOrder      = "new_order"
	EventOrderAccepted = "order_accepted"
	EventPaymentStatus = "payment_status"
)

// OrderID returns the "id" field of the event payload.
func (e OrderEvent) OrderID() (int64, bool) {
	switch v := e.Data["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// Field returns a payload field rendered as text, or "" when absent.
func (e OrderEvent) Field(name string) string {
	v, ok := e.Data[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
