package domain

import "time"

// Service is a marketplace offering.
type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tone is the visual tone of a badge.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Badge is a small label rendered next to a record.
type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// ActiveBadge renders the active/inactive state of a user or service.
func ActiveBadge(active bool) Badge {
	if active {
		return Badge{Label: "Active", Tone: ToneSuccess}
	}
	return Badge{Label: "Inactive", Tone: ToneDanger}
}
