package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/metrics"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/storage"
	"github.com/rs/zerolog"
)

// batchSize caps the rows handled by one poll cycle.
const batchSize = 100

// Sender is a live session able to send.
type Sender interface {
	IsConnected() bool
	Send(ctx context.Context, chatJID string, content adapter.Content) (adapter.SendResult, error)
}

// Lookup finds the live session for a session id.
type Lookup func(sessionID string) (Sender, bool)

type MediaFetcher interface {
	Fetch(ctx context.Context, ref string) (*storage.Media, error)
}

// Runner polls due scheduled messages and sends them through their
// session. Each row is claimed with a conditional update before sending,
// so overlapping cycles or processes never send the same row twice.
type Runner struct {
	repo     Repository
	sessions Lookup
	media    MediaFetcher
	interval time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewRunner(repo Repository, sessions Lookup, media MediaFetcher, interval time.Duration, m *metrics.Metrics, log zerolog.Logger) *Runner {
	if m == nil {
		m = metrics.Nop()
	}
	return &Runner{
		repo:     repo,
		sessions: sessions,
		media:    media,
		interval: interval,
		metrics:  m,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

// Run polls until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.log.Info().Dur("interval", r.interval).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle. A cycle still running makes this one a no-op.
func (r *Runner) Tick(ctx context.Context) {
	if !r.mu.TryLock() {
		r.log.Debug().Msg("previous cycle still running")
		return
	}
	defer r.mu.Unlock()

	due, err := r.repo.ListDue(ctx, r.now().UTC(), batchSize)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to list due messages")
		return
	}
	for _, m := range due {
		if ctx.Err() != nil {
			return
		}
		r.process(ctx, m)
	}
}

func (r *Runner) process(ctx context.Context, m entities.ScheduledMessage) {
	log := r.log.With().Uint("schedule", m.ID).Str("session", m.SessionID).Logger()

	sender, ok := r.sessions(m.SessionID)
	if !ok || !sender.IsConnected() {
		log.Debug().Msg("session not connected, keeping message pending")
		r.metrics.ScheduledMessages.WithLabelValues("deferred").Inc()
		return
	}

	won, err := r.repo.Claim(ctx, m.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to claim scheduled message")
		return
	}
	if !won {
		return
	}

	content, err := r.content(ctx, m)
	if err == nil {
		var res adapter.SendResult
		res, err = sender.Send(ctx, m.ChatJID, content)
		if err == nil {
			if err := r.repo.MarkSent(ctx, m.ID, res.MessageID, r.now()); err != nil {
				log.Error().Err(err).Msg("failed to mark scheduled message sent")
			}
			r.metrics.ScheduledMessages.WithLabelValues("sent").Inc()
			log.Info().Str("message_id", res.MessageID).Msg("scheduled message sent")
			return
		}
	}

	if errors.Is(err, adapter.ErrNotConnected) {
		// Lost the connection between the check and the send.
		if err := r.repo.Release(ctx, m.ID); err != nil {
			log.Error().Err(err).Msg("failed to release scheduled message")
		}
		r.metrics.ScheduledMessages.WithLabelValues("deferred").Inc()
		return
	}
	log.Warn().Err(err).Msg("scheduled message failed")
	if err := r.repo.MarkFailed(ctx, m.ID, err.Error()); err != nil {
		log.Error().Err(err).Msg("failed to mark scheduled message failed")
	}
	r.metrics.ScheduledMessages.WithLabelValues("failed").Inc()
}

func (r *Runner) content(ctx context.Context, m entities.ScheduledMessage) (adapter.Content, error) {
	content := adapter.Content{Text: m.Content}
	if m.MediaURL == "" {
		return content, nil
	}
	media, err := r.media.Fetch(ctx, m.MediaURL)
	if err != nil {
		return content, fmt.Errorf("resolving media: %w", err)
	}
	content.Media = &adapter.OutboundMedia{
		Kind:     adapter.KindForMime(media.MimeType),
		Data:     media.Data,
		MimeType: media.MimeType,
		FileName: media.FileName,
	}
	return content, nil
}
