package entities

import (
	"time"
)

type SessionStatus string

const (
	SessionDisconnected SessionStatus = "DISCONNECTED"
	SessionScanQR       SessionStatus = "SCAN_QR"
	SessionConnected    SessionStatus = "CONNECTED"
	SessionLoggedOut    SessionStatus = "LOGGED_OUT"
	SessionStopped      SessionStatus = "STOPPED"
)

// Session is the persisted half of a protocol connection. Status, QR and
// DeviceJID are written only by the owning session instance.
type Session struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID    uint          `json:"user_id" gorm:"index;not null"`
	Name      string        `json:"name" gorm:"type:varchar(255)"`
	Status    SessionStatus `json:"status" gorm:"type:varchar(20);default:'DISCONNECTED';index"`
	QR        string        `json:"qr" gorm:"type:text"`
	DeviceJID string        `json:"device_jid" gorm:"type:varchar(255)"`
	Config    SessionConfig `json:"config" gorm:"serializer:json;type:text"`
	StartedAt *time.Time    `json:"started_at"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SessionConfig holds the per-session switches read by the ingestion pipeline.
type SessionConfig struct {
	// IgnoreHistory drops history replay batches instead of storing them.
	IgnoreHistory bool `json:"ignore_history"`
	// IgnoreStatusBroadcast drops status@broadcast posts.
	IgnoreStatusBroadcast bool `json:"ignore_status_broadcast"`
	// ReadReceipts marks stored inbound messages as read on the protocol side.
	ReadReceipts bool `json:"read_receipts"`
}
