package dtos

type SessionCreateDTO struct {
	Name      string `json:"name" binding:"required"`
	SessionID string `json:"session_id" binding:"omitempty,sessionid"`
}

// Nil fields are left unchanged.
type SessionConfigDTO struct {
	IgnoreHistory         *bool `json:"ignore_history"`
	IgnoreStatusBroadcast *bool `json:"ignore_status_broadcast"`
	ReadReceipts          *bool `json:"read_receipts"`
}

type SendMessageDTO struct {
	To       string `json:"to" binding:"required"`
	Text     string `json:"text" binding:"required_without=MediaURL"`
	MediaURL string `json:"media_url"`
}

type MessageResponseDTO struct {
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
}
