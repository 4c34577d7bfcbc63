// Package ingest turns adapter events into stored, de-duplicated records and
// fires webhooks and bots for messages seen for the first time.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/bot"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/metrics"
	"github.com/rs/zerolog"
)

// Session is the live session an event was observed on.
type Session interface {
	bot.Replier
	Config() entities.SessionConfig
	MarkRead(ctx context.Context, chatJID, senderJID string, ids []string) error
}

type Notifier interface {
	Notify(ctx context.Context, sessionID, kind string, data any)
}

type BotHandler interface {
	Handle(ctx context.Context, r bot.Replier, in bot.Incoming)
}

type MediaStore interface {
	Save(ctx context.Context, sessionID, name string, data []byte) (string, error)
}

type Pipeline struct {
	repo     Repository
	media    MediaStore
	notifier Notifier
	bots     BotHandler
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewPipeline(repo Repository, media MediaStore, notifier Notifier, bots BotHandler, m *metrics.Metrics, log zerolog.Logger) *Pipeline {
	if m == nil {
		m = metrics.Nop()
	}
	return &Pipeline{
		repo:     repo,
		media:    media,
		notifier: notifier,
		bots:     bots,
		metrics:  m,
		log:      log.With().Str("component", "ingest").Logger(),
	}
}

// HandleMessages processes a live or history batch in order.
func (p *Pipeline) HandleMessages(ctx context.Context, s Session, evt adapter.MessagesEvent) {
	cfg := s.Config()
	if evt.History && cfg.IgnoreHistory {
		return
	}
	var toRead []adapter.Message
	for _, msg := range evt.Messages {
		stored, isNew, err := p.Ingest(ctx, s, msg)
		if err != nil {
			p.log.Error().Err(err).Str("session", s.ID()).Str("message", msg.ID).Msg("failed to ingest message")
			continue
		}
		if !isNew {
			continue
		}
		source := "live"
		if evt.History {
			source = "history"
		}
		direction := "inbound"
		if msg.FromMe {
			direction = "outbound"
		}
		p.metrics.MessagesIngested.WithLabelValues(direction, source).Inc()

		// Backfill never notifies.
		if evt.History {
			continue
		}
		kind := entities.EventMessageReceived
		if msg.FromMe {
			kind = entities.EventMessageSent
		}
		p.notifier.Notify(ctx, s.ID(), kind, stored)

		if p.bots != nil {
			p.bots.Handle(ctx, s, bot.Incoming{
				MessageID: msg.ID,
				ChatJID:   msg.ChatJID,
				SenderJID: stored.SenderJID,
				FromMe:    msg.FromMe,
				Text:      stored.Content,
				Raw:       unwrap(msg.Content),
			})
		}
		if cfg.ReadReceipts && !msg.FromMe {
			toRead = append(toRead, msg)
		}
	}
	p.markRead(ctx, s, toRead)
}

// Ingest stores msg and reports whether it was seen for the first time.
// Dropped and re-observed messages return isNew false and a nil error.
func (p *Pipeline) Ingest(ctx context.Context, s Session, msg adapter.Message) (*entities.Message, bool, error) {
	if msg.ID == "" || msg.ChatJID == "" {
		return nil, false, nil
	}
	content := unwrap(msg.Content)
	if isIgnorable(content) {
		return nil, false, nil
	}
	if s.Config().IgnoreStatusBroadcast && adapter.IsStatusBroadcast(msg.ChatJID) {
		return nil, false, nil
	}

	sessionID := s.ID()
	exists, err := p.repo.MessageExists(ctx, sessionID, msg.ID)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, false, p.reobserved(ctx, sessionID, msg)
	}

	c := classify(content)
	stored := &entities.Message{
		SessionID:         sessionID,
		ProtocolMessageID: msg.ID,
		ChatJID:           msg.ChatJID,
		SenderJID:         resolveSender(msg),
		FromMe:            msg.FromMe,
		Type:              c.Type,
		Content:           c.Text,
		Status:            entities.MessageDelivered,
		Timestamp:         msg.Timestamp,
	}
	if msg.FromMe {
		stored.Status = entities.MessageSent
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	if c.Media != nil {
		stored.MediaURL = p.saveMedia(ctx, s, msg.ID, c.Media)
	}

	inserted, err := p.repo.InsertMessage(ctx, stored)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		// A concurrent observation won the insert.
		return nil, false, p.reobserved(ctx, sessionID, msg)
	}

	if adapter.IsDirect(msg.ChatJID) {
		contact := entities.Contact{SessionID: sessionID, JID: msg.ChatJID, Phone: phoneOf(msg.ChatJID)}
		if !msg.FromMe {
			contact.PushName = msg.PushName
		}
		if err := p.repo.UpsertContact(ctx, contact, !msg.FromMe); err != nil {
			p.log.Warn().Err(err).Str("session", sessionID).Str("jid", msg.ChatJID).Msg("failed to upsert contact")
		}
	}
	return stored, true, nil
}

func (p *Pipeline) reobserved(ctx context.Context, sessionID string, msg adapter.Message) error {
	if !msg.FromMe {
		return nil
	}
	return p.repo.PromoteToSent(ctx, sessionID, msg.ID)
}

// saveMedia downloads once; any failure leaves the message without media.
func (p *Pipeline) saveMedia(ctx context.Context, s Session, id string, media adapter.Downloadable) string {
	if p.media == nil {
		return ""
	}
	data, err := s.Download(ctx, media)
	if err != nil {
		p.log.Warn().Err(err).Str("session", s.ID()).Str("message", id).Msg("media download failed")
		return ""
	}
	url, err := p.media.Save(ctx, s.ID(), id, data)
	if err != nil {
		p.log.Warn().Err(err).Str("session", s.ID()).Str("message", id).Msg("media save failed")
		return ""
	}
	return url
}

func (p *Pipeline) markRead(ctx context.Context, s Session, msgs []adapter.Message) {
	for _, m := range msgs {
		sender := ""
		if adapter.IsGroup(m.ChatJID) {
			sender = m.SenderJID
		}
		if err := s.MarkRead(ctx, m.ChatJID, sender, []string{m.ID}); err != nil {
			p.log.Debug().Err(err).Str("session", s.ID()).Str("chat", m.ChatJID).Msg("failed to send read receipt")
		}
	}
}

// HandleContacts refreshes every contact in the batch.
func (p *Pipeline) HandleContacts(ctx context.Context, s Session, evt adapter.ContactsEvent) {
	for _, c := range evt.Contacts {
		if c.JID == "" || adapter.IsGroup(c.JID) || adapter.IsStatusBroadcast(c.JID) {
			continue
		}
		contact := entities.Contact{
			SessionID: s.ID(),
			JID:       c.JID,
			Name:      c.Name,
			PushName:  c.PushName,
			Phone:     phoneOf(c.JID),
		}
		if err := p.repo.UpsertContact(ctx, contact, true); err != nil {
			p.log.Warn().Err(err).Str("session", s.ID()).Str("jid", c.JID).Msg("failed to upsert contact")
			continue
		}
		p.notifier.Notify(ctx, s.ID(), entities.EventContactUpdate, contact)
	}
}

// SyncGroups refreshes the stored group list of a session. Groups the
// account left are kept.
func (p *Pipeline) SyncGroups(ctx context.Context, sessionID string, groups []adapter.Group) {
	synced := 0
	for _, g := range groups {
		if !adapter.IsGroup(g.JID) {
			continue
		}
		row := entities.Group{
			SessionID:    sessionID,
			JID:          g.JID,
			Name:         g.Name,
			Topic:        g.Topic,
			OwnerJID:     g.OwnerJID,
			Participants: g.Participants,
		}
		if !g.CreatedAt.IsZero() {
			created := g.CreatedAt
			row.GroupCreated = &created
		}
		if err := p.repo.UpsertGroup(ctx, row); err != nil {
			p.log.Warn().Err(err).Str("session", sessionID).Str("jid", g.JID).Msg("failed to upsert group")
			continue
		}
		synced++
	}
	p.log.Debug().Str("session", sessionID).Int("groups", synced).Msg("groups synced")
}

// HandleStatus applies delivery receipts and always notifies.
func (p *Pipeline) HandleStatus(ctx context.Context, s Session, evt adapter.StatusEvent) {
	for _, u := range evt.Updates {
		status := mapStatus(u.Status)
		if _, err := p.repo.UpdateStatus(ctx, s.ID(), u.MessageID, status); err != nil {
			p.log.Warn().Err(err).Str("session", s.ID()).Str("message", u.MessageID).Msg("failed to update message status")
		}
		ts := u.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		p.notifier.Notify(ctx, s.ID(), entities.EventMessageStatus, entities.MessageStatusData{
			MessageID: u.MessageID,
			ChatJID:   u.ChatJID,
			Status:    status,
			Updated:   ts.Unix(),
		})
	}
}

// RecordOutbound stores a message this gateway just sent. It notifies
// message.sent but never runs bots, so replies cannot trigger replies.
func (p *Pipeline) RecordOutbound(ctx context.Context, sessionID, chatJID string, content adapter.Content, res adapter.SendResult) {
	stored := &entities.Message{
		SessionID:         sessionID,
		ProtocolMessageID: res.MessageID,
		ChatJID:           chatJID,
		FromMe:            true,
		Type:              outboundType(content),
		Content:           content.Text,
		Status:            entities.MessageSent,
		Timestamp:         res.Timestamp,
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	if content.Media != nil && p.media != nil {
		if url, err := p.media.Save(ctx, sessionID, res.MessageID, content.Media.Data); err == nil {
			stored.MediaURL = url
		}
	}

	inserted, err := p.repo.InsertMessage(ctx, stored)
	if err != nil {
		p.log.Error().Err(err).Str("session", sessionID).Str("message", res.MessageID).Msg("failed to record outbound message")
		return
	}
	if !inserted {
		return
	}
	if adapter.IsDirect(chatJID) {
		if err := p.repo.UpsertContact(ctx, entities.Contact{SessionID: sessionID, JID: chatJID, Phone: phoneOf(chatJID)}, false); err != nil {
			p.log.Warn().Err(err).Str("session", sessionID).Str("jid", chatJID).Msg("failed to upsert contact")
		}
	}
	p.metrics.MessagesIngested.WithLabelValues("outbound", "api").Inc()
	p.notifier.Notify(ctx, sessionID, entities.EventMessageSent, stored)
}

func phoneOf(jid string) string {
	if !strings.HasSuffix(jid, "@s.whatsapp.net") {
		return ""
	}
	return adapter.UserPart(jid)
}
