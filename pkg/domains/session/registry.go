package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// loadConcurrency bounds how many sessions connect in parallel at boot.
const loadConcurrency = 4

// BotConfigs creates the default bot configuration of a new session.
type BotConfigs interface {
	GetConfig(ctx context.Context, sessionID string) (entities.BotConfig, error)
}

type Deps struct {
	Repo       Repository
	BotConfigs BotConfigs
	Factory    adapter.Factory
	Pipeline   Pipeline
	Notifier   Notifier
	Metrics    *metrics.Metrics
	Log        zerolog.Logger
}

// Registry maps session ids to live instances. It is built once at boot
// and handed to every component that needs a live session.
type Registry struct {
	deps Deps
	log  zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Instance
}

func NewRegistry(deps Deps) *Registry {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop()
	}
	return &Registry{
		deps:     deps,
		log:      deps.Log.With().Str("component", "registry").Logger(),
		sessions: make(map[string]*Instance),
	}
}

func (r *Registry) newInstance(row entities.Session) *Instance {
	ctx, cancel := context.WithCancel(context.Background())
	return &Instance{
		id:        row.ID,
		ownerID:   row.UserID,
		factory:   r.deps.Factory,
		repo:      r.deps.Repo,
		pipeline:  r.deps.Pipeline,
		notifier:  r.deps.Notifier,
		metrics:   r.deps.Metrics,
		log:       r.deps.Log.With().Str("session", row.ID).Logger(),
		onGone:    r.forget,
		ctx:       ctx,
		cancel:    cancel,
		status:    row.Status,
		deviceJID: row.DeviceJID,
		cfg:       row.Config,
	}
}

// LoadAll registers and connects every session that is not logged out,
// including sessions stopped before the restart.
func (r *Registry) LoadAll(ctx context.Context) error {
	rows, err := r.deps.Repo.ListRestorable(ctx)
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, row := range rows {
		inst, fresh := r.register(row)
		if !fresh {
			continue
		}
		g.Go(func() error {
			if err := inst.Start(gctx); err != nil {
				r.log.Error().Err(err).Str("session", inst.ID()).Msg("failed to start session")
			}
			return nil
		})
	}
	err = g.Wait()
	r.log.Info().Int("sessions", len(rows)).Msg("sessions loaded")
	return err
}

// register returns the live instance for row, creating it when missing.
func (r *Registry) register(row entities.Session) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.sessions[row.ID]; ok {
		return inst, false
	}
	inst := r.newInstance(row)
	r.sessions[row.ID] = inst
	return inst, true
}

func (r *Registry) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Create persists a new session with the default bot config and starts
// pairing. An empty id gets a random one.
func (r *Registry) Create(ctx context.Context, ownerID uint, name, id string) (*Instance, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := r.Get(id); ok {
		return nil, ErrSessionExists
	}

	row := entities.Session{
		ID:     id,
		UserID: ownerID,
		Name:   name,
		Status: entities.SessionDisconnected,
	}
	if err := r.deps.Repo.CreateSession(ctx, &row); err != nil {
		return nil, err
	}
	if r.deps.BotConfigs != nil {
		if _, err := r.deps.BotConfigs.GetConfig(ctx, id); err != nil {
			r.log.Warn().Err(err).Str("session", id).Msg("failed to create default bot config")
		}
	}

	inst, fresh := r.register(row)
	if !fresh {
		return nil, ErrSessionExists
	}
	if err := inst.Start(ctx); err != nil {
		return inst, err
	}
	return inst, nil
}

// Get looks up a live instance.
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.sessions[id]
	return inst, ok
}

func (r *Registry) List() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instance, 0, len(r.sessions))
	for _, inst := range r.sessions {
		out = append(out, inst)
	}
	return out
}

// Start (re)opens a session, loading it from storage if it is not live,
// e.g. after a logout.
func (r *Registry) Start(ctx context.Context, id string) (*Instance, error) {
	inst, ok := r.Get(id)
	if !ok {
		row, err := r.deps.Repo.FindSession(ctx, id)
		if err != nil {
			return nil, err
		}
		inst, _ = r.register(row)
	}
	return inst, inst.Start(ctx)
}

// Stop closes a session and keeps its credentials.
func (r *Registry) Stop(ctx context.Context, id string) error {
	inst, ok := r.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	return inst.Stop(ctx)
}

func (r *Registry) Restart(ctx context.Context, id string) (*Instance, error) {
	if err := r.Stop(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	return r.Start(ctx, id)
}

// Delete closes the connection, purges credentials and removes the session
// with everything scoped to it.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	inst, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		row, err := r.deps.Repo.FindSession(ctx, id)
		if err != nil {
			return err
		}
		inst = r.newInstance(row)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := inst.Stop(stopCtx); err != nil {
		r.log.Warn().Err(err).Str("session", id).Msg("session did not stop cleanly")
	}
	if err := inst.PurgeCredentials(ctx); err != nil {
		r.log.Warn().Err(err).Str("session", id).Msg("failed to purge credentials")
	}
	inst.cancel()
	return r.deps.Repo.DeleteSession(ctx, id)
}

// Shutdown releases every connection without changing persisted status.
func (r *Registry) Shutdown(ctx context.Context) {
	var wg sync.WaitGroup
	for _, inst := range r.List() {
		wg.Add(1)
		go func(inst *Instance) {
			defer wg.Done()
			inst.Close(ctx)
		}(inst)
	}
	wg.Wait()
}
