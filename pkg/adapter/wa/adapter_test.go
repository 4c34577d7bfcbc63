package wa

import (
	"testing"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func TestParseRecipient(t *testing.T) {
	jid, err := parseRecipient("+6281234567890")
	require.NoError(t, err)
	assert.Equal(t, "6281234567890@s.whatsapp.net", jid.String())

	jid, err = parseRecipient("120363000000@g.us")
	require.NoError(t, err)
	assert.Equal(t, types.GroupServer, jid.Server)

	_, err = parseRecipient("123")
	assert.ErrorIs(t, err, adapter.ErrInvalidJID)
}

func TestConvertMessage(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	evt := &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:      types.NewJID("111", types.HiddenUserServer),
				Sender:    types.NewJID("111", types.HiddenUserServer),
				SenderAlt: types.NewJID("6281234", types.DefaultUserServer),
			},
			ID:        "ABC",
			PushName:  "Alice",
			Timestamp: ts,
		},
		Message: &waE2E.Message{Conversation: proto.String("hi")},
	}

	msg := convertMessage(evt)
	assert.Equal(t, "ABC", msg.ID)
	assert.Equal(t, "111@lid", msg.ChatJID)
	assert.Equal(t, "6281234@s.whatsapp.net", msg.SenderAltJID)
	assert.Equal(t, "Alice", msg.PushName)
	assert.Equal(t, ts, msg.Timestamp)
	assert.Equal(t, "hi", msg.Content.GetConversation())
}

func TestConvertReceipt(t *testing.T) {
	evt := &events.Receipt{
		MessageSource: types.MessageSource{Chat: types.NewJID("6281234", types.DefaultUserServer)},
		MessageIDs:    []types.MessageID{"m1", "m2"},
		Type:          types.ReceiptTypeRead,
	}
	out, ok := convertReceipt(evt)
	require.True(t, ok)
	require.Len(t, out.Updates, 2)
	assert.Equal(t, adapter.StatusRead, out.Updates[0].Status)
	assert.Equal(t, "m2", out.Updates[1].MessageID)

	evt.Type = types.ReceiptTypeDelivered
	out, ok = convertReceipt(evt)
	require.True(t, ok)
	assert.Equal(t, adapter.StatusDeliveryAck, out.Updates[0].Status)

	evt.Type = types.ReceiptTypeRetry
	_, ok = convertReceipt(evt)
	assert.False(t, ok)
}

func TestQuoteContext(t *testing.T) {
	assert.Nil(t, quoteContext(nil))

	ci := quoteContext(&adapter.Quote{MessageID: "q1", SenderJID: "1@s.whatsapp.net"})
	assert.Equal(t, "q1", ci.GetStanzaID())
	assert.Equal(t, "1@s.whatsapp.net", ci.GetParticipant())
}
