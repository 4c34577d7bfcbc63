package ingest

import (
	"fmt"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ignorableFields are technical sub-messages that never make a message worth
// storing on their own.
var ignorableFields = map[string]bool{
	"protocolMessage":                            true,
	"senderKeyDistributionMessage":               true,
	"fastRatchetKeySenderKeyDistributionMessage": true,
	"reactionMessage":                            true,
	"encReactionMessage":                         true,
	"messageContextInfo":                         true,
	"keepInChatMessage":                          true,
}

// unwrap strips container messages down to the payload.
func unwrap(m *waE2E.Message) *waE2E.Message {
	for i := 0; i < 4 && m != nil; i++ {
		switch {
		case m.GetEphemeralMessage().GetMessage() != nil:
			m = m.GetEphemeralMessage().GetMessage()
		case m.GetViewOnceMessage().GetMessage() != nil:
			m = m.GetViewOnceMessage().GetMessage()
		case m.GetViewOnceMessageV2().GetMessage() != nil:
			m = m.GetViewOnceMessageV2().GetMessage()
		case m.GetDocumentWithCaptionMessage().GetMessage() != nil:
			m = m.GetDocumentWithCaptionMessage().GetMessage()
		default:
			return m
		}
	}
	return m
}

// isIgnorable reports whether m has no populated field besides technical ones.
func isIgnorable(m *waE2E.Message) bool {
	if m == nil {
		return true
	}
	meaningful := false
	m.ProtoReflect().Range(func(fd protoreflect.FieldDescriptor, _ protoreflect.Value) bool {
		if !ignorableFields[fd.JSONName()] {
			meaningful = true
			return false
		}
		return true
	})
	return !meaningful
}

// classified is the searchable shape of a message.
type classified struct {
	Type  entities.MessageType
	Text  string
	Media adapter.Downloadable
}

// classify picks the first populated type in priority order.
func classify(m *waE2E.Message) classified {
	switch {
	case m.Conversation != nil:
		return classified{Type: entities.MessageText, Text: m.GetConversation()}
	case m.ExtendedTextMessage != nil:
		return classified{Type: entities.MessageText, Text: m.GetExtendedTextMessage().GetText()}
	case m.ImageMessage != nil:
		return classified{Type: entities.MessageImage, Text: m.GetImageMessage().GetCaption(), Media: m.GetImageMessage()}
	case m.VideoMessage != nil:
		return classified{Type: entities.MessageVideo, Text: m.GetVideoMessage().GetCaption(), Media: m.GetVideoMessage()}
	case m.AudioMessage != nil:
		return classified{Type: entities.MessageAudio, Media: m.GetAudioMessage()}
	case m.DocumentMessage != nil:
		doc := m.GetDocumentMessage()
		text := doc.GetCaption()
		if text == "" {
			text = doc.GetFileName()
		}
		return classified{Type: entities.MessageDocument, Text: text, Media: doc}
	case m.StickerMessage != nil:
		return classified{Type: entities.MessageSticker, Media: m.GetStickerMessage()}
	case m.LocationMessage != nil:
		loc := m.GetLocationMessage()
		text := fmt.Sprintf("%f,%f", loc.GetDegreesLatitude(), loc.GetDegreesLongitude())
		if loc.GetName() != "" {
			text = loc.GetName() + " (" + text + ")"
		}
		return classified{Type: entities.MessageLocation, Text: text}
	case m.ContactMessage != nil:
		return classified{Type: entities.MessageContact, Text: m.GetContactMessage().GetDisplayName()}
	}
	return classified{Type: entities.MessageUnknown}
}

// resolveSender returns the identifier permission checks compare against:
// the participant in groups, the phone-form id in direct chats when known.
func resolveSender(msg adapter.Message) string {
	if adapter.IsGroup(msg.ChatJID) {
		return msg.SenderJID
	}
	if msg.SenderAltJID != "" {
		return msg.SenderAltJID
	}
	if msg.SenderJID != "" {
		return msg.SenderJID
	}
	return msg.ChatJID
}

// mapStatus converts a protocol status code. Played counts as read.
func mapStatus(code adapter.StatusCode) entities.MessageStatus {
	switch {
	case code == adapter.StatusError:
		return entities.MessageFailed
	case code <= adapter.StatusPending:
		return entities.MessagePending
	case code == adapter.StatusServerAck:
		return entities.MessageSent
	case code == adapter.StatusDeliveryAck:
		return entities.MessageDelivered
	}
	return entities.MessageRead
}

func outboundType(content adapter.Content) entities.MessageType {
	if content.Media == nil {
		return entities.MessageText
	}
	switch content.Media.Kind {
	case adapter.MediaImage:
		return entities.MessageImage
	case adapter.MediaVideo:
		return entities.MessageVideo
	case adapter.MediaAudio:
		return entities.MessageAudio
	case adapter.MediaSticker:
		return entities.MessageSticker
	}
	return entities.MessageDocument
}
