package entities

// Event kinds delivered to webhooks and observers.
const (
	EventMessageReceived  = "message.received"
	EventMessageSent      = "message.sent"
	EventMessageStatus    = "message.status"
	EventContactUpdate    = "contact.update"
	EventConnectionUpdate = "connection.update"
)

// EventKinds lists every kind a webhook may subscribe to, besides the wildcard.
var EventKinds = []string{
	EventMessageReceived,
	EventMessageSent,
	EventMessageStatus,
	EventContactUpdate,
	EventConnectionUpdate,
}

// MessageStatusData is the payload of message.status.
type MessageStatusData struct {
	MessageID string        `json:"message_id"`
	ChatJID   string        `json:"chat_jid"`
	Status    MessageStatus `json:"status"`
	Updated   int64         `json:"updated"`
}

// ConnectionUpdateData is the payload of connection.update.
type ConnectionUpdateData struct {
	Status SessionStatus `json:"status"`
	QR     string        `json:"qr,omitempty"`
	Reason string        `json:"reason,omitempty"`
}
