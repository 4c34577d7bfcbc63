package entities

import (
	"time"
)

// WebhookWildcard subscribes a webhook to every event kind.
const WebhookWildcard = "*"

// Webhook belongs to an account. A nil SessionID makes it global for every
// session of that account.
type Webhook struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	SessionID *string   `json:"session_id" gorm:"type:varchar(64);index"`
	URL       string    `json:"url" gorm:"type:text;not null"`
	Secret    string    `json:"-" gorm:"type:varchar(255)"`
	Events    []string  `json:"events" gorm:"serializer:json;type:text"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscribes reports whether the webhook wants events of the given kind.
func (w *Webhook) Subscribes(kind string) bool {
	for _, e := range w.Events {
		if e == kind || e == WebhookWildcard {
			return true
		}
	}
	return false
}
