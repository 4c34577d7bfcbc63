package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/broadcast"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/config"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/metrics"
	"github.com/rs/zerolog"
)

const SignatureHeader = "X-Webhook-Signature"

// Envelope is the JSON body POSTed to every webhook.
type Envelope struct {
	Event     string    `json:"event"`
	Session   string    `json:"session"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type job struct {
	hook entities.Webhook
	body []byte
}

// Dispatcher delivers events to webhooks through a bounded queue drained by
// a fixed set of workers. Delivery is at-most-once: failures are logged and
// counted, never retried.
type Dispatcher struct {
	repo      Repository
	client    *http.Client
	timeout   time.Duration
	userAgent string
	workers   int
	queue     chan job
	observers broadcast.Publisher
	metrics   *metrics.Metrics
	log       zerolog.Logger

	startOnce sync.Once
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// NewDispatcher builds a dispatcher; observers may be nil.
func NewDispatcher(repo Repository, cfg config.Webhook, observers broadcast.Publisher, m *metrics.Metrics, log zerolog.Logger) *Dispatcher {
	if m == nil {
		m = metrics.Nop()
	}
	return &Dispatcher{
		repo:      repo,
		client:    &http.Client{},
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		workers:   cfg.Workers,
		queue:     make(chan job, cfg.QueueSize),
		observers: observers,
		metrics:   m,
		log:       log.With().Str("component", "webhook").Logger(),
	}
}

// Start launches the workers. They exit when ctx ends or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		ctx, d.cancel = context.WithCancel(ctx)
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.work(ctx)
		}
	})
}

// Stop cancels in-flight deliveries and waits for workers to exit.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.queue:
			d.deliver(ctx, j)
		}
	}
}

// Notify publishes the event to observers and queues one delivery per
// matching webhook of the session's owner.
func (d *Dispatcher) Notify(ctx context.Context, sessionID, kind string, data any) {
	now := time.Now().UTC()
	if d.observers != nil {
		d.observers.Publish(broadcast.Event{Session: sessionID, Kind: kind, Data: data, Timestamp: now})
	}

	owner, err := d.repo.SessionOwner(ctx, sessionID)
	if err != nil {
		d.log.Warn().Err(err).Str("session", sessionID).Str("event", kind).Msg("cannot resolve session owner")
		return
	}
	hooks, err := d.repo.FindActive(ctx, owner, sessionID)
	if err != nil {
		d.log.Error().Err(err).Str("session", sessionID).Msg("failed to load webhooks")
		return
	}

	var body []byte
	for _, hook := range hooks {
		if !hook.Subscribes(kind) {
			continue
		}
		if body == nil {
			body, err = json.Marshal(Envelope{Event: kind, Session: sessionID, Timestamp: now, Data: data})
			if err != nil {
				d.log.Error().Err(err).Str("event", kind).Msg("failed to encode webhook payload")
				return
			}
		}
		select {
		case d.queue <- job{hook: hook, body: body}:
		default:
			d.metrics.WebhookDropped.Inc()
			d.log.Warn().Str("webhook", hook.ID).Str("event", kind).Msg("webhook queue full, dropping delivery")
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	log := d.log.With().Str("webhook", j.hook.ID).Str("url", j.hook.URL).Logger()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.hook.URL, bytes.NewReader(j.body))
	if err != nil {
		d.metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		log.Warn().Err(err).Msg("invalid webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	if j.hook.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(j.hook.Secret, j.body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		log.Warn().Err(err).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.metrics.WebhookDeliveries.WithLabelValues("rejected").Inc()
		log.Warn().Int("status", resp.StatusCode).Msg("webhook rejected delivery")
		return
	}
	d.metrics.WebhookDeliveries.WithLabelValues("ok").Inc()
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
