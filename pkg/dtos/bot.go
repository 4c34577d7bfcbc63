package dtos

// Nil fields are left unchanged.
type BotConfigUpdateDTO struct {
	Enabled       *bool    `json:"enabled"`
	BotMode       *string  `json:"bot_mode"`
	AutoReplyMode *string  `json:"auto_reply_mode"`
	AllowedJIDs   []string `json:"allowed_jids"`
	EnablePing    *bool    `json:"enable_ping"`
	EnableUptime  *bool    `json:"enable_uptime"`
	EnableChatID  *bool    `json:"enable_chat_id"`
	EnableSticker *bool    `json:"enable_sticker"`
	EnableHelp    *bool    `json:"enable_help"`
}

type AutoReplyCreateDTO struct {
	Keyword   string `json:"keyword" binding:"required"`
	MatchType string `json:"match_type" binding:"required,matchtype"`
	Response  string `json:"response" binding:"required"`
}
