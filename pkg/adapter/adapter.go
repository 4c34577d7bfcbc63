// Package adapter defines the boundary to the messaging protocol. A session
// owns exactly one Adapter; the adapter turns protocol callbacks into a single
// ordered stream of tagged Event values.
package adapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mau.fi/whatsmeow/proto/waE2E"
)

var (
	ErrNotConnected = errors.New("adapter not connected")
	ErrInvalidJID   = errors.New("invalid jid")
)

// Adapter is one live protocol connection.
type Adapter interface {
	// Events is the ordered event stream. It is never closed; a ClosedEvent
	// is the last event of a connection attempt.
	Events() <-chan Event
	Connect(ctx context.Context) error
	// Disconnect releases the socket and emits ClosedEvent{Reason: CloseRequested}.
	// Credentials are kept.
	Disconnect()
	// PurgeCredentials deletes the pairing material from the credential store.
	PurgeCredentials(ctx context.Context) error
	IsConnected() bool
	Send(ctx context.Context, chatJID string, content Content) (SendResult, error)
	Download(ctx context.Context, media Downloadable) ([]byte, error)
	MarkRead(ctx context.Context, chatJID, senderJID string, ids []string) error
	// JoinedGroups lists the groups the account participates in.
	JoinedGroups(ctx context.Context) ([]Group, error)
}

// Factory builds adapters. deviceJID is the paired account of a previous run,
// empty for a session that was never paired.
type Factory interface {
	New(ctx context.Context, sessionID, deviceJID string) (Adapter, error)
}

// Downloadable is the media part of a message. The waE2E media messages
// satisfy it.
type Downloadable interface {
	GetDirectPath() string
	GetMediaKey() []byte
	GetFileSHA256() []byte
	GetFileEncSHA256() []byte
	GetMimetype() string
}

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
	MediaSticker  MediaKind = "sticker"
)

// OutboundMedia is media to upload and attach to an outbound message.
type OutboundMedia struct {
	Kind     MediaKind
	Data     []byte
	MimeType string
	FileName string
}

// Quote references the message an outbound message replies to.
type Quote struct {
	MessageID string
	SenderJID string
	Message   *waE2E.Message
}

// Content is an outbound message. Text becomes the caption when Media is set.
type Content struct {
	Text  string
	Media *OutboundMedia
	Quote *Quote
}

// Group is a group chat the account belongs to.
type Group struct {
	JID          string
	Name         string
	Topic        string
	OwnerJID     string
	Participants int
	CreatedAt    time.Time
}

type SendResult struct {
	MessageID string
	Timestamp time.Time
}

// KindForMime picks how media of the given content type is sent.
func KindForMime(mime string) MediaKind {
	switch {
	case mime == "image/webp":
		return MediaSticker
	case strings.HasPrefix(mime, "image/"):
		return MediaImage
	case strings.HasPrefix(mime, "video/"):
		return MediaVideo
	case strings.HasPrefix(mime, "audio/"):
		return MediaAudio
	}
	return MediaDocument
}
