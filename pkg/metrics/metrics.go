// Package metrics holds the gateway's Prometheus collectors. They are
// registered on the default registry so the /metrics endpoint exposed by
// ginprom serves them next to the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MessagesIngested   *prometheus.CounterVec
	SessionTransitions *prometheus.CounterVec
	WebhookDeliveries  *prometheus.CounterVec
	WebhookDropped     prometheus.Counter
	ScheduledMessages  *prometheus.CounterVec
	BotReplies         *prometheus.CounterVec
}

// New registers the collectors on reg. Use prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MessagesIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wa_messages_ingested_total",
			Help: "Messages stored by the ingestion pipeline.",
		}, []string{"direction", "source"}),
		SessionTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wa_session_transitions_total",
			Help: "Session state transitions by target status.",
		}, []string{"status"}),
		WebhookDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wa_webhook_deliveries_total",
			Help: "Webhook POST attempts by outcome.",
		}, []string{"result"}),
		WebhookDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "wa_webhook_dropped_total",
			Help: "Webhook jobs dropped because the delivery queue was full.",
		}),
		ScheduledMessages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wa_scheduled_messages_total",
			Help: "Scheduled messages processed by outcome.",
		}, []string{"result"}),
		BotReplies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wa_bot_replies_total",
			Help: "Replies sent by the bot by kind.",
		}, []string{"kind"}),
	}
}

// Nop returns collectors bound to a throwaway registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
