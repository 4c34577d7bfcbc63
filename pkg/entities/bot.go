package entities

import (
	"time"
)

type AccessMode string

const (
	AccessAll      AccessMode = "ALL"
	AccessOwner    AccessMode = "OWNER"
	AccessSpecific AccessMode = "SPECIFIC"
)

func (m AccessMode) Valid() bool {
	switch m {
	case AccessAll, AccessOwner, AccessSpecific:
		return true
	}
	return false
}

// BotConfig is created lazily with DefaultBotConfig when a session has none.
type BotConfig struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	SessionID     string     `json:"session_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Enabled       bool       `json:"enabled"`
	BotMode       AccessMode `json:"bot_mode" gorm:"type:varchar(20)"`
	AutoReplyMode AccessMode `json:"auto_reply_mode" gorm:"type:varchar(20)"`
	AllowedJIDs   []string   `json:"allowed_jids" gorm:"serializer:json;type:text"`
	EnablePing    bool       `json:"enable_ping"`
	EnableUptime  bool       `json:"enable_uptime"`
	EnableChatID  bool       `json:"enable_chat_id"`
	EnableSticker bool       `json:"enable_sticker"`
	EnableHelp    bool       `json:"enable_help"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DefaultBotConfig is enabled, owner-only for commands and open to all senders
// for auto-replies.
func DefaultBotConfig(sessionID string) BotConfig {
	return BotConfig{
		SessionID:     sessionID,
		Enabled:       true,
		BotMode:       AccessOwner,
		AutoReplyMode: AccessAll,
		AllowedJIDs:   []string{},
		EnablePing:    true,
		EnableUptime:  true,
		EnableChatID:  true,
		EnableSticker: true,
		EnableHelp:    true,
	}
}

// Normalize repairs values read from storage that predate a field or were
// written with an unknown mode.
func (c *BotConfig) Normalize() {
	if !c.BotMode.Valid() {
		c.BotMode = AccessOwner
	}
	if !c.AutoReplyMode.Valid() {
		c.AutoReplyMode = AccessAll
	}
	if c.AllowedJIDs == nil {
		c.AllowedJIDs = []string{}
	}
}

type MatchType string

const (
	MatchExact    MatchType = "EXACT"
	MatchContains MatchType = "CONTAINS"
	MatchRegex    MatchType = "REGEX"
)

type AutoReplyRule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"type:varchar(64);not null;index"`
	Keyword   string    `json:"keyword" gorm:"type:text;not null"`
	MatchType MatchType `json:"match_type" gorm:"type:varchar(20);not null"`
	Response  string    `json:"response" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}
