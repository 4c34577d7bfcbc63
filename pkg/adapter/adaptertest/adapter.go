// Package adaptertest provides a scriptable in-memory adapter for tests.
package adaptertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
)

// Sent records one outbound Send call.
type Sent struct {
	ChatJID string
	Content adapter.Content
}

// Credentials is a shared fake credential store keyed by session id.
type Credentials struct {
	mu     sync.Mutex
	paired map[string]string
}

func NewCredentials() *Credentials {
	return &Credentials{paired: make(map[string]string)}
}

// Pair stores credentials for sessionID as if a pairing had completed.
func (c *Credentials) Pair(sessionID, deviceJID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paired[sessionID] = deviceJID
}

func (c *Credentials) Has(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.paired[sessionID]
	return ok
}

func (c *Credentials) Delete(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.paired, sessionID)
}

// Adapter is a fake connection. Connect emits ConnectedEvent when
// credentials exist, otherwise a PairingCodeEvent.
type Adapter struct {
	SessionID string
	creds     *Credentials
	events    chan adapter.Event

	mu          sync.Mutex
	connected   bool
	sent        []Sent
	connects    int
	readMarks   []string
	nextID      int
	SendErr     error
	DownloadErr error
	Media       []byte
	Groups      []adapter.Group
	GroupsErr   error

	// ManualConnect suppresses the automatic event on Connect.
	ManualConnect bool
}

func New(sessionID string, creds *Credentials) *Adapter {
	if creds == nil {
		creds = NewCredentials()
	}
	return &Adapter{
		SessionID: sessionID,
		creds:     creds,
		events:    make(chan adapter.Event, 64),
	}
}

func (a *Adapter) Events() <-chan adapter.Event { return a.events }

func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	a.connects++
	manual := a.ManualConnect
	a.mu.Unlock()
	if manual {
		return nil
	}
	if a.creds.Has(a.SessionID) {
		a.mu.Lock()
		a.connected = true
		a.mu.Unlock()
		a.Emit(adapter.ConnectedEvent{SelfJID: a.SessionID + "@s.whatsapp.net"})
		return nil
	}
	a.Emit(adapter.PairingCodeEvent{Code: fmt.Sprintf("qr-%s-%d", a.SessionID, a.Connects())})
	return nil
}

func (a *Adapter) Disconnect() {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	a.Emit(adapter.ClosedEvent{Reason: adapter.CloseRequested})
}

func (a *Adapter) PurgeCredentials(ctx context.Context) error {
	a.creds.Delete(a.SessionID)
	return nil
}

func (a *Adapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// SetConnected flips the connection flag without emitting events.
func (a *Adapter) SetConnected(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected = v
}

func (a *Adapter) Send(ctx context.Context, chatJID string, content adapter.Content) (adapter.SendResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.SendErr != nil {
		return adapter.SendResult{}, a.SendErr
	}
	if !a.connected {
		return adapter.SendResult{}, adapter.ErrNotConnected
	}
	a.nextID++
	a.sent = append(a.sent, Sent{ChatJID: chatJID, Content: content})
	return adapter.SendResult{MessageID: fmt.Sprintf("out-%s-%d", a.SessionID, a.nextID), Timestamp: time.Now()}, nil
}

func (a *Adapter) Download(ctx context.Context, media adapter.Downloadable) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.DownloadErr != nil {
		return nil, a.DownloadErr
	}
	if a.Media == nil {
		return nil, errors.New("no media scripted")
	}
	return a.Media, nil
}

func (a *Adapter) MarkRead(ctx context.Context, chatJID, senderJID string, ids []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readMarks = append(a.readMarks, ids...)
	return nil
}

func (a *Adapter) JoinedGroups(ctx context.Context) ([]adapter.Group, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.GroupsErr != nil {
		return nil, a.GroupsErr
	}
	return append([]adapter.Group(nil), a.Groups...), nil
}

// Emit pushes an event into the stream.
func (a *Adapter) Emit(evt adapter.Event) {
	a.events <- evt
}

// Pair completes a pending pairing: credentials are stored and the
// connection opens.
func (a *Adapter) Pair() {
	a.creds.Pair(a.SessionID, a.SessionID+"@s.whatsapp.net")
	a.SetConnected(true)
	a.Emit(adapter.ConnectedEvent{SelfJID: a.SessionID + "@s.whatsapp.net"})
}

func (a *Adapter) Sent() []Sent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Sent, len(a.sent))
	copy(out, a.sent)
	return out
}

func (a *Adapter) Connects() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connects
}

func (a *Adapter) ReadMarks() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.readMarks...)
}

// Factory hands out fake adapters and remembers every one it built.
type Factory struct {
	Creds *Credentials

	mu       sync.Mutex
	built    map[string][]*Adapter
	Prepare  func(*Adapter)
	NewError error
}

func NewFactory() *Factory {
	return &Factory{Creds: NewCredentials(), built: make(map[string][]*Adapter)}
}

func (f *Factory) New(ctx context.Context, sessionID, deviceJID string) (adapter.Adapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NewError != nil {
		return nil, f.NewError
	}
	a := New(sessionID, f.Creds)
	if f.Prepare != nil {
		f.Prepare(a)
	}
	f.built[sessionID] = append(f.built[sessionID], a)
	return a, nil
}

// Latest returns the most recent adapter built for sessionID.
func (f *Factory) Latest(sessionID string) *Adapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.built[sessionID]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

// Built returns how many adapters were built for sessionID.
func (f *Factory) Built(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.built[sessionID])
}
