// Package bot runs the per-session command router and keyword auto-replies
// against newly ingested live messages.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/metrics"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/proto/waE2E"
)

// CommandPrefix starts every bot command.
const CommandPrefix = "!"

// Replier is the live session a message arrived on.
type Replier interface {
	ID() string
	StartedAt() time.Time
	Send(ctx context.Context, chatJID string, content adapter.Content) (adapter.SendResult, error)
	Download(ctx context.Context, media adapter.Downloadable) ([]byte, error)
}

// Incoming is a newly stored live message.
type Incoming struct {
	MessageID string
	ChatJID   string
	// SenderJID is the resolved sender used for permission checks.
	SenderJID string
	FromMe    bool
	Text      string
	Raw       *waE2E.Message
}

type Engine struct {
	repo    Repository
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewEngine(repo Repository, m *metrics.Metrics, log zerolog.Logger) *Engine {
	if m == nil {
		m = metrics.Nop()
	}
	return &Engine{
		repo:    repo,
		metrics: m,
		log:     log.With().Str("component", "bot").Logger(),
		now:     time.Now,
	}
}

// Handle routes a command if the message carries one and otherwise runs
// the auto-reply rules. Errors are logged; nothing propagates to ingestion.
func (e *Engine) Handle(ctx context.Context, r Replier, in Incoming) {
	if strings.TrimSpace(in.Text) == "" && in.Raw == nil {
		return
	}
	log := e.log.With().Str("session", r.ID()).Str("message", in.MessageID).Logger()

	cfg, err := e.repo.GetConfig(ctx, r.ID())
	if err != nil {
		log.Error().Err(err).Msg("failed to load bot config")
		return
	}
	if !cfg.Enabled {
		return
	}

	if name, ok := parseCommand(in.Text); ok {
		// The owner may always issue commands.
		if in.FromMe || CanAct(cfg.BotMode, cfg.AllowedJIDs, in.FromMe, in.SenderJID) {
			e.runCommand(ctx, r, cfg, in, name, log)
		}
		return
	}

	if !CanAct(cfg.AutoReplyMode, cfg.AllowedJIDs, in.FromMe, in.SenderJID) {
		return
	}
	rules, err := e.repo.ListRules(ctx, r.ID())
	if err != nil {
		log.Error().Err(err).Msg("failed to load auto reply rules")
		return
	}
	rule := MatchRule(rules, in.Text, log)
	if rule == nil {
		return
	}
	if e.reply(ctx, r, in, adapter.Content{Text: rule.Response}, log) {
		e.metrics.BotReplies.WithLabelValues("auto_reply").Inc()
	}
}

// parseCommand extracts the word right after the prefix.
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, CommandPrefix) {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(text, CommandPrefix))
	if len(fields) == 0 || strings.HasPrefix(text, CommandPrefix+" ") {
		return "", false
	}
	return strings.ToLower(fields[0]), true
}

func (e *Engine) reply(ctx context.Context, r Replier, in Incoming, content adapter.Content, log zerolog.Logger) bool {
	content.Quote = &adapter.Quote{MessageID: in.MessageID, SenderJID: in.SenderJID, Message: in.Raw}
	if _, err := r.Send(ctx, in.ChatJID, content); err != nil {
		log.Warn().Err(err).Msg("failed to send bot reply")
		return false
	}
	return true
}

func (e *Engine) runCommand(ctx context.Context, r Replier, cfg entities.BotConfig, in Incoming, name string, log zerolog.Logger) {
	var content *adapter.Content
	switch name {
	case "ping":
		if cfg.EnablePing {
			content = &adapter.Content{Text: "Pong!"}
		}
	case "uptime":
		if cfg.EnableUptime {
			content = &adapter.Content{Text: uptimeText(r.StartedAt(), e.now())}
		}
	case "id":
		if cfg.EnableChatID {
			content = &adapter.Content{Text: fmt.Sprintf("Chat ID: %s\nSender: %s", in.ChatJID, in.SenderJID)}
		}
	case "sticker", "s":
		if cfg.EnableSticker {
			content = e.stickerReply(ctx, r, in, log)
		}
	case "help", "menu":
		if cfg.EnableHelp {
			content = &adapter.Content{Text: helpText(cfg)}
		}
	}
	if content == nil {
		return
	}
	if e.reply(ctx, r, in, *content, log) {
		e.metrics.BotReplies.WithLabelValues("command_" + name).Inc()
	}
}

func (e *Engine) stickerReply(ctx context.Context, r Replier, in Incoming, log zerolog.Logger) *adapter.Content {
	img, video := stickerSource(in.Raw)
	if img == nil {
		if video != nil {
			// Animated stickers need a video transcoder; only stills are converted.
			log.Debug().Msg("video sticker requested, not supported")
		}
		return nil
	}
	data, err := r.Download(ctx, img)
	if err != nil {
		log.Warn().Err(err).Msg("failed to download sticker source")
		return nil
	}
	sticker, err := toSticker(data)
	if err != nil {
		log.Warn().Err(err).Msg("failed to convert sticker")
		return nil
	}
	return &adapter.Content{Media: &adapter.OutboundMedia{Kind: adapter.MediaSticker, Data: sticker, MimeType: "image/png"}}
}

func uptimeText(started, now time.Time) string {
	if started.IsZero() {
		return "Uptime: not connected"
	}
	return "Uptime: " + now.Sub(started).Round(time.Second).String()
}

func helpText(cfg entities.BotConfig) string {
	var b strings.Builder
	b.WriteString("Available commands:")
	if cfg.EnablePing {
		b.WriteString("\n" + CommandPrefix + "ping - check the bot is alive")
	}
	if cfg.EnableUptime {
		b.WriteString("\n" + CommandPrefix + "uptime - time since the session connected")
	}
	if cfg.EnableChatID {
		b.WriteString("\n" + CommandPrefix + "id - show this chat's id")
	}
	if cfg.EnableSticker {
		b.WriteString("\n" + CommandPrefix + "sticker - turn an image into a sticker")
	}
	b.WriteString("\n" + CommandPrefix + "help - this list")
	return b.String()
}
