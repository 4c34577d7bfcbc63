package adapter

import (
	"time"

	"go.mau.fi/whatsmeow/proto/waE2E"
)

// Event is one of the types below.
type Event interface {
	isEvent()
}

// PairingCodeEvent carries a fresh QR payload for linking a device.
type PairingCodeEvent struct {
	Code string
}

// ConnectedEvent is emitted once the connection is authenticated.
type ConnectedEvent struct {
	SelfJID  string
	PushName string
}

type CloseReason int

// Close reasons mirror the protocol's disconnect status codes.
const (
	CloseConnectionLost     CloseReason = 408
	CloseRequested          CloseReason = 428
	CloseLoggedOut          CloseReason = 401
	CloseConnectionReplaced CloseReason = 440
	CloseRestartRequired    CloseReason = 515
)

// IsLogout reports whether the close is an authoritative logout.
func (r CloseReason) IsLogout() bool {
	return r == CloseLoggedOut
}

func (r CloseReason) String() string {
	switch r {
	case CloseConnectionLost:
		return "connection_lost"
	case CloseRequested:
		return "requested"
	case CloseLoggedOut:
		return "logged_out"
	case CloseConnectionReplaced:
		return "connection_replaced"
	case CloseRestartRequired:
		return "restart_required"
	}
	return "unknown"
}

// ClosedEvent ends a connection attempt.
type ClosedEvent struct {
	Reason CloseReason
	Err    error
}

// Message is a decoded protocol message as observed by this session.
type Message struct {
	ID      string
	ChatJID string
	// SenderJID is the per-message participant (the author in groups).
	SenderJID string
	// SenderAltJID is the phone-form identifier when SenderJID is a
	// session-local one.
	SenderAltJID string
	FromMe       bool
	PushName     string
	Timestamp    time.Time
	Content      *waE2E.Message
}

// MessagesEvent is a batch of live or history replay messages.
type MessagesEvent struct {
	Messages []Message
	History  bool
}

type Contact struct {
	JID      string
	Name     string
	PushName string
}

type ContactsEvent struct {
	Contacts []Contact
}

// StatusCode is the protocol's numeric delivery state.
type StatusCode int

const (
	StatusError       StatusCode = 0
	StatusPending     StatusCode = 1
	StatusServerAck   StatusCode = 2
	StatusDeliveryAck StatusCode = 3
	StatusRead        StatusCode = 4
	StatusPlayed      StatusCode = 5
)

type StatusUpdate struct {
	MessageID string
	ChatJID   string
	Status    StatusCode
	Timestamp time.Time
}

type StatusEvent struct {
	Updates []StatusUpdate
}

func (PairingCodeEvent) isEvent() {}
func (ConnectedEvent) isEvent()   {}
func (ClosedEvent) isEvent()      {}
func (MessagesEvent) isEvent()    {}
func (ContactsEvent) isEvent()    {}
func (StatusEvent) isEvent()      {}
