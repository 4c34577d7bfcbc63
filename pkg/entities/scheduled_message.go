package entities

import (
	"time"
)

type ScheduleStatus string

const (
	SchedulePending ScheduleStatus = "PENDING"
	// ScheduleProcessing marks a row claimed by a poll cycle while its send is in flight.
	ScheduleProcessing ScheduleStatus = "PROCESSING"
	ScheduleSent       ScheduleStatus = "SENT"
	ScheduleFailed     ScheduleStatus = "FAILED"
)

type ScheduledMessage struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	SessionID         string         `json:"session_id" gorm:"type:varchar(64);not null;index"`
	ChatJID           string         `json:"chat_jid" gorm:"type:varchar(255);not null"`
	Content           string         `json:"content" gorm:"type:text"`
	MediaURL          string         `json:"media_url,omitempty" gorm:"type:text"`
	SendAt            time.Time      `json:"send_at" gorm:"index:idx_scheduled_due,priority:2"`
	Status            ScheduleStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index:idx_scheduled_due,priority:1"`
	Error             string         `json:"error,omitempty" gorm:"type:text"`
	ProtocolMessageID string         `json:"message_id,omitempty" gorm:"type:varchar(255)"`
	SentAt            *time.Time     `json:"sent_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
