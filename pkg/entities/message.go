package entities

import (
	"time"
)

type MessageType string

const (
	MessageText     MessageType = "TEXT"
	MessageImage    MessageType = "IMAGE"
	MessageVideo    MessageType = "VIDEO"
	MessageAudio    MessageType = "AUDIO"
	MessageDocument MessageType = "DOCUMENT"
	MessageSticker  MessageType = "STICKER"
	MessageLocation MessageType = "LOCATION"
	MessageContact  MessageType = "CONTACT"
	MessageUnknown  MessageType = "UNKNOWN"
)

type MessageStatus string

const (
	MessagePending   MessageStatus = "PENDING"
	MessageSent      MessageStatus = "SENT"
	MessageDelivered MessageStatus = "DELIVERED"
	MessageRead      MessageStatus = "READ"
	MessageFailed    MessageStatus = "FAILED"
)

// Message is unique per (session, protocol message id).
type Message struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	SessionID         string        `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_messages_session_protocol,priority:1;index:idx_messages_session_chat,priority:1"`
	ProtocolMessageID string        `json:"message_id" gorm:"type:varchar(255);not null;uniqueIndex:ux_messages_session_protocol,priority:2"`
	ChatJID           string        `json:"chat_jid" gorm:"type:varchar(255);not null;index:idx_messages_session_chat,priority:2"`
	SenderJID         string        `json:"sender_jid" gorm:"type:varchar(255)"`
	FromMe            bool          `json:"from_me"`
	Type              MessageType   `json:"type" gorm:"type:varchar(20)"`
	Content           string        `json:"content" gorm:"type:text"`
	MediaURL          string        `json:"media_url,omitempty" gorm:"type:text"`
	Status            MessageStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	Timestamp         time.Time     `json:"timestamp" gorm:"index"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Contact is unique per (session, jid).
type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_contacts_session_jid,priority:1"`
	JID       string    `json:"jid" gorm:"type:varchar(255);not null;uniqueIndex:ux_contacts_session_jid,priority:2"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	PushName  string    `json:"push_name" gorm:"type:varchar(255)"`
	Phone     string    `json:"phone" gorm:"type:varchar(32)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group is unique per (session, jid). Rows are refreshed on every connect.
type Group struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	SessionID    string     `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_groups_session_jid,priority:1"`
	JID          string     `json:"jid" gorm:"type:varchar(255);not null;uniqueIndex:ux_groups_session_jid,priority:2"`
	Name         string     `json:"name" gorm:"type:varchar(255)"`
	Topic        string     `json:"topic" gorm:"type:text"`
	OwnerJID     string     `json:"owner_jid" gorm:"type:varchar(255)"`
	Participants int        `json:"participants"`
	GroupCreated *time.Time `json:"group_created,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
