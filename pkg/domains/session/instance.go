package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/ingest"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/metrics"
	"github.com/rs/zerolog"
)

var ErrNotConnected = errors.New("session not connected")

// Pipeline consumes the event stream of a session.
type Pipeline interface {
	HandleMessages(ctx context.Context, s ingest.Session, evt adapter.MessagesEvent)
	HandleContacts(ctx context.Context, s ingest.Session, evt adapter.ContactsEvent)
	HandleStatus(ctx context.Context, s ingest.Session, evt adapter.StatusEvent)
	RecordOutbound(ctx context.Context, sessionID, chatJID string, content adapter.Content, res adapter.SendResult)
	SyncGroups(ctx context.Context, sessionID string, groups []adapter.Group)
}

const groupSyncTimeout = 30 * time.Second

type Notifier interface {
	Notify(ctx context.Context, sessionID, kind string, data any)
}

// generation is one adapter and the loop draining it.
type generation struct {
	adapter adapter.Adapter
	done    chan struct{}
	once    sync.Once
}

func (g *generation) finish() {
	g.once.Do(func() { close(g.done) })
}

// Instance owns one protocol connection and its state machine. Every
// adapter event is handled on a single goroutine per connection attempt, in
// the order it was emitted.
type Instance struct {
	id      string
	ownerID uint

	factory  adapter.Factory
	repo     Repository
	pipeline Pipeline
	notifier Notifier
	metrics  *metrics.Metrics
	log      zerolog.Logger
	onGone   func(id string)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	gen       *generation
	last      adapter.Adapter
	status    entities.SessionStatus
	qr        string
	deviceJID string
	cfg       entities.SessionConfig
	startedAt time.Time
	stopping  bool
	closing   bool
}

var _ ingest.Session = (*Instance)(nil)

func (i *Instance) ID() string { return i.id }

func (i *Instance) OwnerID() uint { return i.ownerID }

func (i *Instance) Status() entities.SessionStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status
}

func (i *Instance) QR() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.qr
}

func (i *Instance) Config() entities.SessionConfig {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.cfg
}

func (i *Instance) SetConfig(cfg entities.SessionConfig) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cfg = cfg
}

// StartedAt is when the current connection opened, zero when not connected.
func (i *Instance) StartedAt() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.startedAt
}

func (i *Instance) IsConnected() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.gen != nil && i.status == entities.SessionConnected && i.gen.adapter.IsConnected()
}

// Start opens a new connection unless one is already running. It clears a
// previous Stop.
func (i *Instance) Start(ctx context.Context) error {
	i.mu.Lock()
	if i.gen != nil {
		i.mu.Unlock()
		return nil
	}
	i.stopping = false
	i.closing = false
	i.mu.Unlock()
	return i.connect(ctx)
}

// connect builds a new generation. It gives up when a Stop or Close lands
// while the adapter is being built.
func (i *Instance) connect(ctx context.Context) error {
	i.mu.Lock()
	if i.gen != nil || i.stopping || i.closing {
		i.mu.Unlock()
		return nil
	}
	deviceJID := i.deviceJID
	i.mu.Unlock()

	a, err := i.factory.New(ctx, i.id, deviceJID)
	if err != nil {
		return fmt.Errorf("creating adapter: %w", err)
	}

	gen := &generation{adapter: a, done: make(chan struct{})}
	i.mu.Lock()
	if i.gen != nil {
		i.mu.Unlock()
		return nil
	}
	if i.stopping || i.closing {
		stopped := i.stopping && !i.closing && i.status != entities.SessionStopped
		i.mu.Unlock()
		if stopped {
			i.transition(entities.SessionStopped, map[string]interface{}{"qr": ""}, adapter.CloseRequested.String())
		}
		return nil
	}
	i.gen = gen
	i.last = a
	i.mu.Unlock()

	go i.run(gen)

	if err := a.Connect(ctx); err != nil {
		i.mu.Lock()
		if i.gen == gen {
			i.gen = nil
		}
		i.mu.Unlock()
		gen.finish()
		i.transition(entities.SessionDisconnected, map[string]interface{}{"qr": ""}, "connect failed")
		return fmt.Errorf("connecting: %w", err)
	}
	return nil
}

func (i *Instance) run(gen *generation) {
	defer gen.finish()
	events := gen.adapter.Events()
	for {
		select {
		case <-gen.done:
			return
		case <-i.ctx.Done():
			return
		case evt := <-events:
			if !i.current(gen) {
				return
			}
			if exit := i.handle(gen, evt); exit {
				return
			}
		}
	}
}

func (i *Instance) current(gen *generation) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.gen == gen
}

// handle applies one event and reports whether this generation is over.
func (i *Instance) handle(gen *generation, evt adapter.Event) bool {
	ctx := i.ctx
	switch e := evt.(type) {
	case adapter.PairingCodeEvent:
		i.mu.RLock()
		stopping := i.stopping || i.closing
		i.mu.RUnlock()
		if stopping {
			return false
		}
		i.mu.Lock()
		i.qr = e.Code
		i.mu.Unlock()
		return !i.transition(entities.SessionScanQR, map[string]interface{}{"qr": e.Code}, "")

	case adapter.ConnectedEvent:
		now := time.Now()
		i.mu.Lock()
		i.qr = ""
		i.startedAt = now
		if e.SelfJID != "" {
			i.deviceJID = e.SelfJID
		}
		deviceJID := i.deviceJID
		i.mu.Unlock()
		if !i.transition(entities.SessionConnected, map[string]interface{}{
			"qr":         "",
			"device_jid": deviceJID,
			"started_at": now,
		}, "") {
			return true
		}
		i.syncGroups(ctx, gen.adapter)
		return false

	case adapter.ClosedEvent:
		i.closed(ctx, gen, e)
		return true

	case adapter.MessagesEvent:
		i.pipeline.HandleMessages(ctx, i, e)
	case adapter.ContactsEvent:
		i.pipeline.HandleContacts(ctx, i, e)
	case adapter.StatusEvent:
		i.pipeline.HandleStatus(ctx, i, e)
	}
	return false
}

func (i *Instance) syncGroups(ctx context.Context, a adapter.Adapter) {
	ctx, cancel := context.WithTimeout(ctx, groupSyncTimeout)
	defer cancel()
	groups, err := a.JoinedGroups(ctx)
	if err != nil {
		i.log.Warn().Err(err).Msg("failed to list joined groups")
		return
	}
	i.pipeline.SyncGroups(ctx, i.id, groups)
}

func (i *Instance) closed(ctx context.Context, gen *generation, e adapter.ClosedEvent) {
	i.mu.Lock()
	if i.gen != gen {
		i.mu.Unlock()
		return
	}
	i.gen = nil
	i.startedAt = time.Time{}
	stopping, closing := i.stopping, i.closing
	i.mu.Unlock()

	log := i.log.With().Str("reason", e.Reason.String()).Logger()
	if e.Err != nil {
		log = log.With().AnErr("cause", e.Err).Logger()
	}

	switch {
	case e.Reason.IsLogout():
		log.Warn().Msg("logged out, removing credentials")
		if err := gen.adapter.PurgeCredentials(ctx); err != nil {
			log.Error().Err(err).Msg("failed to purge credentials")
		}
		i.mu.Lock()
		i.deviceJID = ""
		i.qr = ""
		i.mu.Unlock()
		i.transition(entities.SessionLoggedOut, map[string]interface{}{"qr": "", "device_jid": ""}, e.Reason.String())
	case closing:
		log.Debug().Msg("connection closed for shutdown")
	case stopping:
		log.Info().Msg("session stopped")
		i.transition(entities.SessionStopped, map[string]interface{}{"qr": ""}, e.Reason.String())
	default:
		log.Info().Msg("connection closed, reconnecting")
		if !i.transition(entities.SessionDisconnected, nil, e.Reason.String()) {
			return
		}
		// Reconnects immediately and without limit.
		if err := i.connect(ctx); err != nil {
			log.Error().Err(err).Msg("reconnect failed")
		}
	}
}

// transition persists and broadcasts status. It returns false when the
// session row vanished, after stopping the instance.
func (i *Instance) transition(status entities.SessionStatus, fields map[string]interface{}, reason string) bool {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["status"] = status

	i.mu.Lock()
	i.status = status
	qr := i.qr
	i.mu.Unlock()

	if err := i.repo.UpdateState(i.ctx, i.id, fields); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			i.log.Warn().Str("status", string(status)).Msg("session record is gone, stopping instance")
			i.abandon()
			return false
		}
		i.log.Error().Err(err).Str("status", string(status)).Msg("failed to persist session status")
	}

	i.metrics.SessionTransitions.WithLabelValues(string(status)).Inc()
	data := entities.ConnectionUpdateData{Status: status, Reason: reason}
	if status == entities.SessionScanQR {
		data.QR = qr
	}
	i.notifier.Notify(i.ctx, i.id, entities.EventConnectionUpdate, data)
	return true
}

// abandon releases the connection without touching storage.
func (i *Instance) abandon() {
	i.mu.Lock()
	i.closing = true
	gen := i.gen
	i.gen = nil
	i.mu.Unlock()
	if gen != nil {
		gen.adapter.Disconnect()
	}
	if i.onGone != nil {
		i.onGone(i.id)
	}
}

// Stop closes the connection and keeps credentials. It waits for the
// STOPPED transition or ctx.
func (i *Instance) Stop(ctx context.Context) error {
	i.mu.Lock()
	i.stopping = true
	gen := i.gen
	status := i.status
	i.mu.Unlock()

	if gen == nil {
		if status != entities.SessionStopped && status != entities.SessionLoggedOut {
			i.transition(entities.SessionStopped, map[string]interface{}{"qr": ""}, adapter.CloseRequested.String())
		}
		return nil
	}
	gen.adapter.Disconnect()
	select {
	case <-gen.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the connection for process shutdown. The persisted status
// is left as is so the session comes back on the next boot.
func (i *Instance) Close(ctx context.Context) {
	i.mu.Lock()
	i.closing = true
	gen := i.gen
	i.mu.Unlock()
	if gen != nil {
		gen.adapter.Disconnect()
		select {
		case <-gen.done:
		case <-ctx.Done():
		}
	}
	i.cancel()
}

// PurgeCredentials deletes the pairing material of this session.
func (i *Instance) PurgeCredentials(ctx context.Context) error {
	i.mu.RLock()
	a, deviceJID := i.last, i.deviceJID
	i.mu.RUnlock()
	if a == nil {
		var err error
		if a, err = i.factory.New(ctx, i.id, deviceJID); err != nil {
			return err
		}
	}
	return a.PurgeCredentials(ctx)
}

func (i *Instance) adapterIfConnected() (adapter.Adapter, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.gen == nil || i.status != entities.SessionConnected {
		return nil, ErrNotConnected
	}
	return i.gen.adapter, nil
}

// Send delivers content and records it as an outbound message.
func (i *Instance) Send(ctx context.Context, chatJID string, content adapter.Content) (adapter.SendResult, error) {
	a, err := i.adapterIfConnected()
	if err != nil {
		return adapter.SendResult{}, err
	}
	chatJID = adapter.NormalizeJID(chatJID)
	res, err := a.Send(ctx, chatJID, content)
	if err != nil {
		return res, err
	}
	i.pipeline.RecordOutbound(ctx, i.id, chatJID, content, res)
	return res, nil
}

func (i *Instance) Download(ctx context.Context, media adapter.Downloadable) ([]byte, error) {
	a, err := i.adapterIfConnected()
	if err != nil {
		return nil, err
	}
	return a.Download(ctx, media)
}

func (i *Instance) MarkRead(ctx context.Context, chatJID, senderJID string, ids []string) error {
	a, err := i.adapterIfConnected()
	if err != nil {
		return err
	}
	return a.MarkRead(ctx, chatJID, senderJID, ids)
}

// Snapshot returns the live view of the session row.
func (i *Instance) Snapshot(row entities.Session) entities.Session {
	i.mu.RLock()
	defer i.mu.RUnlock()
	row.Status = i.status
	row.QR = i.qr
	row.Config = i.cfg
	if !i.startedAt.IsZero() {
		started := i.startedAt
		row.StartedAt = &started
	}
	return row
}
