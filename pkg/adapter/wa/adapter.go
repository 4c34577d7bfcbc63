package wa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mdp/qrterminal"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

const eventBuffer = 256

// Adapter wraps one whatsmeow client. Any ClosedEvent is terminal: the
// session builds a new adapter for the next connection attempt.
type Adapter struct {
	client  *whatsmeow.Client
	log     zerolog.Logger
	printQR bool

	events    chan adapter.Event
	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
}

var _ adapter.Adapter = (*Adapter)(nil)

func newAdapter(client *whatsmeow.Client, log zerolog.Logger, printQR bool) *Adapter {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Adapter{
		client:  client,
		log:     log,
		printQR: printQR,
		events:  make(chan adapter.Event, eventBuffer),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	client.AddEventHandler(a.handleEvent)
	return a
}

func (a *Adapter) Events() <-chan adapter.Event { return a.events }

func (a *Adapter) Connect(ctx context.Context) error {
	if a.client.Store.ID != nil {
		return a.client.Connect()
	}

	// The QR channel must exist before connecting.
	qrChan, err := a.client.GetQRChannel(a.ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := a.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	go a.pumpQR(qrChan)
	return nil
}

func (a *Adapter) pumpQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		switch item.Event {
		case "code":
			if a.printQR {
				qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, os.Stdout)
			}
			a.emit(adapter.PairingCodeEvent{Code: item.Code})
		case "success":
			a.log.Info().Msg("pairing completed")
		case "timeout":
			a.close(adapter.ClosedEvent{Reason: adapter.CloseConnectionLost, Err: errors.New("pairing code expired")})
		case "error":
			a.close(adapter.ClosedEvent{Reason: adapter.CloseConnectionLost, Err: item.Error})
		default:
			a.log.Warn().Str("event", item.Event).Msg("unexpected pairing event")
		}
	}
}

func (a *Adapter) Disconnect() {
	a.client.Disconnect()
	a.close(adapter.ClosedEvent{Reason: adapter.CloseRequested})
}

func (a *Adapter) PurgeCredentials(ctx context.Context) error {
	if a.client.Store.ID == nil {
		return nil
	}
	if err := a.client.Store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

func (a *Adapter) IsConnected() bool {
	return a.client.IsConnected() && a.client.IsLoggedIn()
}

func (a *Adapter) Download(ctx context.Context, media adapter.Downloadable) ([]byte, error) {
	dm, ok := media.(whatsmeow.DownloadableMessage)
	if !ok {
		return nil, fmt.Errorf("unsupported media type %T", media)
	}
	return a.client.Download(ctx, dm)
}

func (a *Adapter) MarkRead(ctx context.Context, chatJID, senderJID string, ids []string) error {
	chat, err := types.ParseJID(chatJID)
	if err != nil {
		return fmt.Errorf("%w: %s", adapter.ErrInvalidJID, chatJID)
	}
	var sender types.JID
	if senderJID != "" {
		sender, _ = types.ParseJID(senderJID)
	}
	return a.client.MarkRead(ctx, ids, time.Now(), chat, sender)
}

func (a *Adapter) JoinedGroups(ctx context.Context) ([]adapter.Group, error) {
	infos, err := a.client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing joined groups: %w", err)
	}
	groups := make([]adapter.Group, 0, len(infos))
	for _, gi := range infos {
		if gi == nil {
			continue
		}
		g := adapter.Group{
			JID:          gi.JID.String(),
			Name:         gi.Name,
			Topic:        gi.Topic,
			Participants: len(gi.Participants),
			CreatedAt:    gi.GroupCreated,
		}
		if !gi.OwnerJID.IsEmpty() {
			g.OwnerJID = gi.OwnerJID.ToNonAD().String()
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// emit delivers evt unless the adapter already closed.
func (a *Adapter) emit(evt adapter.Event) {
	select {
	case <-a.done:
		return
	default:
	}
	select {
	case a.events <- evt:
	case <-a.done:
	}
}

// close emits the terminal event once and stops further delivery.
func (a *Adapter) close(evt adapter.ClosedEvent) {
	a.closeOnce.Do(func() {
		a.events <- evt
		close(a.done)
		a.cancel()
		a.client.RemoveEventHandlers()
	})
}

func (a *Adapter) handleEvent(raw interface{}) {
	switch evt := raw.(type) {
	case *events.Connected:
		self := ""
		if a.client.Store.ID != nil {
			self = a.client.Store.ID.ToNonAD().String()
		}
		a.emit(adapter.ConnectedEvent{SelfJID: self, PushName: a.client.Store.PushName})
	case *events.Disconnected:
		a.close(adapter.ClosedEvent{Reason: adapter.CloseConnectionLost})
	case *events.LoggedOut:
		a.log.Warn().Str("reason", evt.Reason.String()).Msg("logged out by server")
		a.close(adapter.ClosedEvent{Reason: adapter.CloseLoggedOut})
	case *events.StreamReplaced:
		a.close(adapter.ClosedEvent{Reason: adapter.CloseConnectionReplaced})
	case *events.ConnectFailure:
		a.close(adapter.ClosedEvent{Reason: adapter.CloseConnectionLost, Err: fmt.Errorf("connect failure: %s %s", evt.Reason, evt.Message)})
	case *events.Message:
		a.emit(adapter.MessagesEvent{Messages: []adapter.Message{convertMessage(evt)}})
	case *events.HistorySync:
		a.handleHistorySync(evt)
	case *events.Receipt:
		if update, ok := convertReceipt(evt); ok {
			a.emit(update)
		}
	case *events.Contact:
		name := evt.Action.GetFullName()
		if name == "" {
			name = evt.Action.GetFirstName()
		}
		a.emit(adapter.ContactsEvent{Contacts: []adapter.Contact{{JID: evt.JID.ToNonAD().String(), Name: name}}})
	case *events.PushName:
		a.emit(adapter.ContactsEvent{Contacts: []adapter.Contact{{JID: evt.JID.ToNonAD().String(), PushName: evt.NewPushName}}})
	}
}

func (a *Adapter) handleHistorySync(evt *events.HistorySync) {
	var batch []adapter.Message
	for _, conv := range evt.Data.GetConversations() {
		chatJID, err := types.ParseJID(conv.GetID())
		if err != nil {
			continue
		}
		for _, hm := range conv.GetMessages() {
			parsed, err := a.client.ParseWebMessage(chatJID, hm.GetMessage())
			if err != nil {
				a.log.Debug().Err(err).Str("chat", chatJID.String()).Msg("skipping unparsable history message")
				continue
			}
			batch = append(batch, convertMessage(parsed))
		}
	}
	if len(batch) > 0 {
		a.emit(adapter.MessagesEvent{Messages: batch, History: true})
	}

	var contacts []adapter.Contact
	for _, pn := range evt.Data.GetPushnames() {
		if pn.GetID() == "" || pn.GetPushname() == "" {
			continue
		}
		contacts = append(contacts, adapter.Contact{JID: pn.GetID(), PushName: pn.GetPushname()})
	}
	if len(contacts) > 0 {
		a.emit(adapter.ContactsEvent{Contacts: contacts})
	}
}

func convertMessage(evt *events.Message) adapter.Message {
	info := evt.Info
	msg := adapter.Message{
		ID:        info.ID,
		ChatJID:   info.Chat.ToNonAD().String(),
		SenderJID: info.Sender.ToNonAD().String(),
		FromMe:    info.IsFromMe,
		PushName:  info.PushName,
		Timestamp: info.Timestamp,
		Content:   evt.Message,
	}
	if !info.SenderAlt.IsEmpty() {
		msg.SenderAltJID = info.SenderAlt.ToNonAD().String()
	}
	return msg
}

func convertReceipt(evt *events.Receipt) (adapter.StatusEvent, bool) {
	var code adapter.StatusCode
	switch evt.Type {
	case types.ReceiptTypeDelivered, types.ReceiptTypeSender:
		code = adapter.StatusDeliveryAck
	case types.ReceiptTypeRead, types.ReceiptTypeReadSelf:
		code = adapter.StatusRead
	case types.ReceiptTypePlayed:
		code = adapter.StatusPlayed
	case types.ReceiptTypeServerError:
		code = adapter.StatusError
	default:
		return adapter.StatusEvent{}, false
	}
	updates := make([]adapter.StatusUpdate, 0, len(evt.MessageIDs))
	for _, id := range evt.MessageIDs {
		updates = append(updates, adapter.StatusUpdate{
			MessageID: id,
			ChatJID:   evt.Chat.ToNonAD().String(),
			Status:    code,
			Timestamp: evt.Timestamp,
		})
	}
	return adapter.StatusEvent{Updates: updates}, true
}

// parseRecipient accepts a full JID or a bare phone number.
func parseRecipient(chatJID string) (types.JID, error) {
	if strings.Contains(chatJID, "@") {
		jid, err := types.ParseJID(chatJID)
		if err != nil {
			return types.JID{}, fmt.Errorf("%w: %s", adapter.ErrInvalidJID, chatJID)
		}
		return jid, nil
	}
	phone := strings.TrimPrefix(strings.TrimSpace(chatJID), "+")
	if len(phone) < 8 {
		return types.JID{}, fmt.Errorf("%w: %s", adapter.ErrInvalidJID, chatJID)
	}
	return types.NewJID(phone, types.DefaultUserServer), nil
}

func (a *Adapter) Send(ctx context.Context, chatJID string, content adapter.Content) (adapter.SendResult, error) {
	if !a.client.IsConnected() {
		return adapter.SendResult{}, adapter.ErrNotConnected
	}
	recipient, err := parseRecipient(chatJID)
	if err != nil {
		return adapter.SendResult{}, err
	}

	msg, err := a.buildMessage(ctx, content)
	if err != nil {
		return adapter.SendResult{}, err
	}

	resp, err := a.client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return adapter.SendResult{}, fmt.Errorf("failed to send message: %w", err)
	}
	return adapter.SendResult{MessageID: resp.ID, Timestamp: resp.Timestamp}, nil
}

func quoteContext(q *adapter.Quote) *waE2E.ContextInfo {
	if q == nil {
		return nil
	}
	ci := &waE2E.ContextInfo{
		StanzaID:      proto.String(q.MessageID),
		QuotedMessage: q.Message,
	}
	if q.SenderJID != "" {
		ci.Participant = proto.String(q.SenderJID)
	}
	return ci
}

func (a *Adapter) buildMessage(ctx context.Context, content adapter.Content) (*waE2E.Message, error) {
	ctxInfo := quoteContext(content.Quote)
	if content.Media == nil {
		if ctxInfo == nil {
			return &waE2E.Message{Conversation: proto.String(content.Text)}, nil
		}
		return &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text:        proto.String(content.Text),
			ContextInfo: ctxInfo,
		}}, nil
	}

	media := content.Media
	var mediaType whatsmeow.MediaType
	switch media.Kind {
	case adapter.MediaImage, adapter.MediaSticker:
		mediaType = whatsmeow.MediaImage
	case adapter.MediaVideo:
		mediaType = whatsmeow.MediaVideo
	case adapter.MediaAudio:
		mediaType = whatsmeow.MediaAudio
	default:
		mediaType = whatsmeow.MediaDocument
	}

	uploaded, err := a.client.Upload(ctx, media.Data, mediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	switch media.Kind {
	case adapter.MediaImage:
		return &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			URL:           proto.String(uploaded.URL),
			Mimetype:      proto.String(media.MimeType),
			Caption:       proto.String(content.Text),
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			ContextInfo:   ctxInfo,
		}}, nil
	case adapter.MediaSticker:
		return &waE2E.Message{StickerMessage: &waE2E.StickerMessage{
			URL:           proto.String(uploaded.URL),
			Mimetype:      proto.String(media.MimeType),
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			ContextInfo:   ctxInfo,
		}}, nil
	case adapter.MediaVideo:
		return &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
			URL:           proto.String(uploaded.URL),
			Mimetype:      proto.String(media.MimeType),
			Caption:       proto.String(content.Text),
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			ContextInfo:   ctxInfo,
		}}, nil
	case adapter.MediaAudio:
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			URL:           proto.String(uploaded.URL),
			Mimetype:      proto.String(media.MimeType),
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			ContextInfo:   ctxInfo,
		}}, nil
	default:
		return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			URL:           proto.String(uploaded.URL),
			Mimetype:      proto.String(media.MimeType),
			Title:         proto.String(media.FileName),
			FileName:      proto.String(media.FileName),
			Caption:       proto.String(content.Text),
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			ContextInfo:   ctxInfo,
		}}, nil
	}
}
