package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/database"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/bot"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"
	"gorm.io/gorm"
)

type notification struct {
	Session string
	Kind    string
	Data    any
}

type recorder struct {
	mu     sync.Mutex
	events []notification
}

func (r *recorder) Notify(ctx context.Context, sessionID, kind string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notification{sessionID, kind, data})
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type botRecorder struct {
	handled []bot.Incoming
}

func (b *botRecorder) Handle(ctx context.Context, r bot.Replier, in bot.Incoming) {
	b.handled = append(b.handled, in)
}

type fakeSession struct {
	id       string
	cfg      entities.SessionConfig
	media    []byte
	mediaErr error
	reads    []string
}

func (f *fakeSession) ID() string                     { return f.id }
func (f *fakeSession) StartedAt() time.Time           { return time.Time{} }
func (f *fakeSession) Config() entities.SessionConfig { return f.cfg }

func (f *fakeSession) Send(ctx context.Context, chatJID string, content adapter.Content) (adapter.SendResult, error) {
	return adapter.SendResult{}, errors.New("not used")
}

func (f *fakeSession) Download(ctx context.Context, media adapter.Downloadable) ([]byte, error) {
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	return f.media, nil
}

func (f *fakeSession) MarkRead(ctx context.Context, chatJID, senderJID string, ids []string) error {
	f.reads = append(f.reads, ids...)
	return nil
}

type fixture struct {
	db       *gorm.DB
	pipeline *Pipeline
	notes    *recorder
	bots     *botRecorder
	session  *fakeSession
}

func newFixture(t *testing.T) *fixture {
	db := database.OpenTestDB(t)
	media, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)
	f := &fixture{
		db:      db,
		notes:   &recorder{},
		bots:    &botRecorder{},
		session: &fakeSession{id: "S"},
	}
	f.pipeline = NewPipeline(NewRepo(db), media, f.notes, f.bots, nil, zerolog.Nop())
	return f
}

func text(id, chat, body string, fromMe bool) adapter.Message {
	return adapter.Message{
		ID:        id,
		ChatJID:   chat,
		SenderJID: chat,
		FromMe:    fromMe,
		PushName:  "Peer",
		Timestamp: time.Unix(1700000000, 0),
		Content:   &waE2E.Message{Conversation: proto.String(body)},
	}
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestIdempotentIngestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	evt := adapter.MessagesEvent{Messages: []adapter.Message{text("m1", "111@s.whatsapp.net", "hi", false)}}

	f.pipeline.HandleMessages(ctx, f.session, evt)
	f.pipeline.HandleMessages(ctx, f.session, evt)

	assert.EqualValues(t, 1, f.count(t, &entities.Message{}, "session_id = ? AND protocol_message_id = ?", "S", "m1"))
	assert.Equal(t, []string{entities.EventMessageReceived}, f.notes.kinds())
	require.Len(t, f.bots.handled, 1)

	stored := f.notes.events[0].Data.(*entities.Message)
	assert.Equal(t, "hi", stored.Content)
	assert.Equal(t, entities.MessageDelivered, stored.Status)
	assert.Equal(t, entities.MessageText, stored.Type)
}

func TestHistorySuppression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{
		History:  true,
		Messages: []adapter.Message{text("h1", "111@s.whatsapp.net", "old", false), text("h2", "111@s.whatsapp.net", "older", true)},
	})

	assert.EqualValues(t, 2, f.count(t, &entities.Message{}, "session_id = ?", "S"))
	assert.Empty(t, f.notes.kinds())
	assert.Empty(t, f.bots.handled)
}

func TestIgnoreHistoryConfig(t *testing.T) {
	f := newFixture(t)
	f.session.cfg.IgnoreHistory = true
	f.pipeline.HandleMessages(context.Background(), f.session, adapter.MessagesEvent{
		History:  true,
		Messages: []adapter.Message{text("h1", "111@s.whatsapp.net", "old", false)},
	})
	assert.EqualValues(t, 0, f.count(t, &entities.Message{}, "session_id = ?", "S"))
}

func TestContactNameProtection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := "111@s.whatsapp.net"

	inbound := text("m1", chat, "hello", false)
	inbound.PushName = "Alice"
	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{Messages: []adapter.Message{inbound}})

	outbound := text("m2", chat, "hey alice", true)
	outbound.PushName = "Me Myself"
	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{Messages: []adapter.Message{outbound}})

	var contact entities.Contact
	require.NoError(t, f.db.Where("session_id = ? AND jid = ?", "S", chat).First(&contact).Error)
	assert.Equal(t, "Alice", contact.PushName)
	assert.Equal(t, "111", contact.Phone)
	assert.Equal(t, []string{entities.EventMessageReceived, entities.EventMessageSent}, f.notes.kinds())
}

func TestOutboundToNewPeerHasNoName(t *testing.T) {
	f := newFixture(t)
	out := text("m1", "222@s.whatsapp.net", "first contact", true)
	out.PushName = "Me"
	f.pipeline.HandleMessages(context.Background(), f.session, adapter.MessagesEvent{Messages: []adapter.Message{out}})

	var contact entities.Contact
	require.NoError(t, f.db.Where("jid = ?", "222@s.whatsapp.net").First(&contact).Error)
	assert.Empty(t, contact.PushName)
}

func TestNoContactForGroupsAndBroadcast(t *testing.T) {
	f := newFixture(t)
	group := text("g1", "120363@g.us", "hi all", false)
	group.SenderJID = "111@s.whatsapp.net"
	status := text("st1", "status@broadcast", "my story", false)
	f.pipeline.HandleMessages(context.Background(), f.session, adapter.MessagesEvent{Messages: []adapter.Message{group, status}})

	assert.EqualValues(t, 2, f.count(t, &entities.Message{}, "session_id = ?", "S"))
	assert.EqualValues(t, 0, f.count(t, &entities.Contact{}, "session_id = ?", "S"))

	var stored entities.Message
	require.NoError(t, f.db.Where("protocol_message_id = ?", "g1").First(&stored).Error)
	assert.Equal(t, "111@s.whatsapp.net", stored.SenderJID)
}

func TestIgnoreStatusBroadcast(t *testing.T) {
	f := newFixture(t)
	f.session.cfg.IgnoreStatusBroadcast = true
	f.pipeline.HandleMessages(context.Background(), f.session, adapter.MessagesEvent{
		Messages: []adapter.Message{text("st1", "status@broadcast", "story", false)},
	})
	assert.EqualValues(t, 0, f.count(t, &entities.Message{}, "session_id = ?", "S"))
}

func TestDropsInvalidAndIgnorable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noID := text("", "111@s.whatsapp.net", "x", false)
	noChat := text("m2", "", "x", false)
	reaction := adapter.Message{ID: "m3", ChatJID: "111@s.whatsapp.net", Content: &waE2E.Message{
		ReactionMessage:    &waE2E.ReactionMessage{Text: proto.String("👍")},
		MessageContextInfo: &waE2E.MessageContextInfo{},
	}}
	control := adapter.Message{ID: "m4", ChatJID: "111@s.whatsapp.net", Content: &waE2E.Message{
		ProtocolMessage: &waE2E.ProtocolMessage{},
	}}
	empty := adapter.Message{ID: "m5", ChatJID: "111@s.whatsapp.net"}

	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{Messages: []adapter.Message{noID, noChat, reaction, control, empty}})
	assert.EqualValues(t, 0, f.count(t, &entities.Message{}, "1 = 1"))
	assert.Empty(t, f.notes.kinds())
}

func TestReobservedSelfSentPromotesUnsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&entities.Message{
		SessionID: "S", ProtocolMessageID: "m1", ChatJID: "111@s.whatsapp.net", FromMe: true, Status: entities.MessagePending,
	}).Error)
	require.NoError(t, f.db.Create(&entities.Message{
		SessionID: "S", ProtocolMessageID: "m2", ChatJID: "111@s.whatsapp.net", FromMe: true, Status: entities.MessageRead,
	}).Error)
	require.NoError(t, f.db.Create(&entities.Message{
		SessionID: "S", ProtocolMessageID: "m3", ChatJID: "111@s.whatsapp.net", FromMe: true, Status: entities.MessageFailed,
	}).Error)

	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{Messages: []adapter.Message{
		text("m1", "111@s.whatsapp.net", "x", true),
		text("m2", "111@s.whatsapp.net", "x", true),
		text("m3", "111@s.whatsapp.net", "x", true),
	}})

	var m1, m2, m3 entities.Message
	require.NoError(t, f.db.Where("protocol_message_id = ?", "m1").First(&m1).Error)
	require.NoError(t, f.db.Where("protocol_message_id = ?", "m2").First(&m2).Error)
	require.NoError(t, f.db.Where("protocol_message_id = ?", "m3").First(&m3).Error)
	assert.Equal(t, entities.MessageSent, m1.Status)
	assert.Equal(t, entities.MessageRead, m2.Status)
	assert.Equal(t, entities.MessageSent, m3.Status)
	assert.Empty(t, f.notes.kinds())
}

func TestMediaDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.media = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	img := adapter.Message{ID: "img1", ChatJID: "111@s.whatsapp.net", SenderJID: "111@s.whatsapp.net", Content: &waE2E.Message{
		ImageMessage: &waE2E.ImageMessage{Caption: proto.String("look")},
	}}
	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{Messages: []adapter.Message{img}})

	var stored entities.Message
	require.NoError(t, f.db.Where("protocol_message_id = ?", "img1").First(&stored).Error)
	assert.Equal(t, entities.MessageImage, stored.Type)
	assert.Equal(t, "look", stored.Content)
	assert.Equal(t, "/media/S/img1.png", stored.MediaURL)
}

func TestMediaFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.session.mediaErr = errors.New("cdn down")

	doc := adapter.Message{ID: "d1", ChatJID: "111@s.whatsapp.net", Content: &waE2E.Message{
		DocumentWithCaptionMessage: &waE2E.FutureProofMessage{Message: &waE2E.Message{
			DocumentMessage: &waE2E.DocumentMessage{FileName: proto.String("report.pdf")},
		}},
	}}
	f.pipeline.HandleMessages(context.Background(), f.session, adapter.MessagesEvent{Messages: []adapter.Message{doc}})

	var stored entities.Message
	require.NoError(t, f.db.Where("protocol_message_id = ?", "d1").First(&stored).Error)
	assert.Equal(t, entities.MessageDocument, stored.Type)
	assert.Equal(t, "report.pdf", stored.Content)
	assert.Empty(t, stored.MediaURL)
	assert.Equal(t, []string{entities.EventMessageReceived}, f.notes.kinds())
}

func TestSenderResolution(t *testing.T) {
	direct := adapter.Message{ChatJID: "99@lid", SenderJID: "99@lid", SenderAltJID: "6281@s.whatsapp.net"}
	assert.Equal(t, "6281@s.whatsapp.net", resolveSender(direct))

	group := adapter.Message{ChatJID: "1@g.us", SenderJID: "99@lid", SenderAltJID: "6281@s.whatsapp.net"}
	assert.Equal(t, "99@lid", resolveSender(group))

	plain := adapter.Message{ChatJID: "6281@s.whatsapp.net", SenderJID: "6281@s.whatsapp.net"}
	assert.Equal(t, "6281@s.whatsapp.net", resolveSender(plain))
}

func TestClassifyPriority(t *testing.T) {
	m := &waE2E.Message{
		Conversation: proto.String("text wins"),
		ImageMessage: &waE2E.ImageMessage{Caption: proto.String("caption")},
	}
	c := classify(m)
	assert.Equal(t, entities.MessageText, c.Type)
	assert.Equal(t, "text wins", c.Text)
	assert.Nil(t, c.Media)

	loc := classify(&waE2E.Message{LocationMessage: &waE2E.LocationMessage{DegreesLatitude: proto.Float64(1.5), DegreesLongitude: proto.Float64(2.5)}})
	assert.Equal(t, entities.MessageLocation, loc.Type)
	assert.Equal(t, "1.500000,2.500000", loc.Text)

	assert.Equal(t, entities.MessageUnknown, classify(&waE2E.Message{PollCreationMessage: &waE2E.PollCreationMessage{}}).Type)
}

func TestStatusUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&entities.Message{SessionID: "S", ProtocolMessageID: "m1", ChatJID: "c", Status: entities.MessageSent}).Error)
	require.NoError(t, f.db.Create(&entities.Message{SessionID: "other", ProtocolMessageID: "m1", ChatJID: "c", Status: entities.MessageSent}).Error)

	f.pipeline.HandleStatus(ctx, f.session, adapter.StatusEvent{Updates: []adapter.StatusUpdate{
		{MessageID: "m1", ChatJID: "c", Status: adapter.StatusRead},
		{MessageID: "unknown", ChatJID: "c", Status: adapter.StatusDeliveryAck},
	}})

	var mine, theirs entities.Message
	require.NoError(t, f.db.Where("session_id = ? AND protocol_message_id = ?", "S", "m1").First(&mine).Error)
	require.NoError(t, f.db.Where("session_id = ? AND protocol_message_id = ?", "other", "m1").First(&theirs).Error)
	assert.Equal(t, entities.MessageRead, mine.Status)
	assert.Equal(t, entities.MessageSent, theirs.Status)
	assert.Equal(t, []string{entities.EventMessageStatus, entities.EventMessageStatus}, f.notes.kinds())
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, entities.MessageFailed, mapStatus(adapter.StatusError))
	assert.Equal(t, entities.MessagePending, mapStatus(adapter.StatusPending))
	assert.Equal(t, entities.MessageSent, mapStatus(adapter.StatusServerAck))
	assert.Equal(t, entities.MessageDelivered, mapStatus(adapter.StatusDeliveryAck))
	assert.Equal(t, entities.MessageRead, mapStatus(adapter.StatusRead))
	assert.Equal(t, entities.MessageRead, mapStatus(adapter.StatusPlayed))
}

func TestContactStream(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pipeline.HandleContacts(ctx, f.session, adapter.ContactsEvent{Contacts: []adapter.Contact{
		{JID: "111@s.whatsapp.net", Name: "Alice Address Book"},
		{JID: "120363@g.us", Name: "Group"},
	}})
	f.pipeline.HandleContacts(ctx, f.session, adapter.ContactsEvent{Contacts: []adapter.Contact{
		{JID: "111@s.whatsapp.net", PushName: "Ali"},
	}})

	var contact entities.Contact
	require.NoError(t, f.db.Where("jid = ?", "111@s.whatsapp.net").First(&contact).Error)
	assert.Equal(t, "Alice Address Book", contact.Name)
	assert.Equal(t, "Ali", contact.PushName)
	assert.EqualValues(t, 1, f.count(t, &entities.Contact{}, "session_id = ?", "S"))
	assert.Equal(t, []string{entities.EventContactUpdate, entities.EventContactUpdate}, f.notes.kinds())
}

func TestReadReceipts(t *testing.T) {
	f := newFixture(t)
	f.session.cfg.ReadReceipts = true
	f.pipeline.HandleMessages(context.Background(), f.session, adapter.MessagesEvent{Messages: []adapter.Message{
		text("in1", "111@s.whatsapp.net", "hi", false),
		text("out1", "111@s.whatsapp.net", "yo", true),
	}})
	assert.Equal(t, []string{"in1"}, f.session.reads)
}

func TestRecordOutbound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := adapter.SendResult{MessageID: "out-1", Timestamp: time.Now()}

	f.pipeline.RecordOutbound(ctx, "S", "111@s.whatsapp.net", adapter.Content{Text: "sent via api"}, res)
	// The protocol echoing the same id later is a re-observation.
	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{Messages: []adapter.Message{text("out-1", "111@s.whatsapp.net", "sent via api", true)}})

	assert.EqualValues(t, 1, f.count(t, &entities.Message{}, "protocol_message_id = ?", "out-1"))
	assert.Equal(t, []string{entities.EventMessageSent}, f.notes.kinds())
	assert.Empty(t, f.bots.handled)
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	evt := adapter.MessagesEvent{Messages: []adapter.Message{text("m1", "111@s.whatsapp.net", "hi", false)}}

	f.pipeline.HandleMessages(ctx, f.session, evt)
	f.pipeline.HandleMessages(ctx, f.session, evt)

	assert.EqualValues(t, 1, f.count(t, &entities.Message{}, "session_id = ? AND protocol_message_id = ?", "S", "m1"))
	require.Len(t, f.notes.events, 1)
	assert.Equal(t, "hi", f.notes.events[0].Data.(*entities.Message).Content)
}

func TestListMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pipeline.HandleMessages(ctx, f.session, adapter.MessagesEvent{Messages: []adapter.Message{
		text("m1", "111@s.whatsapp.net", "a", false),
		text("m2", "222@s.whatsapp.net", "b", false),
	}})

	repo := NewRepo(f.db)
	msgs, pages, err := repo.ListMessages(ctx, "S", "222@s.whatsapp.net", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m2", msgs[0].ProtocolMessageID)

	contacts, _, err := repo.ListContacts(ctx, "S", 1, 10)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestSyncGroups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := time.Unix(1600000000, 0).UTC()

	f.pipeline.SyncGroups(ctx, "S", []adapter.Group{
		{JID: "120363@g.us", Name: "Team", Participants: 3, CreatedAt: created},
		{JID: "111@s.whatsapp.net", Name: "not a group"},
	})
	f.pipeline.SyncGroups(ctx, "S", []adapter.Group{
		{JID: "120363@g.us", Name: "Team renamed", Topic: "weekly", Participants: 4},
	})

	repo := NewRepo(f.db)
	groups, pages, err := repo.ListGroups(ctx, "S", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	require.Len(t, groups, 1)
	assert.Equal(t, "Team renamed", groups[0].Name)
	assert.Equal(t, "weekly", groups[0].Topic)
	assert.Equal(t, 4, groups[0].Participants)
	assert.Nil(t, groups[0].GroupCreated)
	assert.Empty(t, f.notes.kinds())
}
