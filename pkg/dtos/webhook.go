package dtos

type WebhookCreateDTO struct {
	URL       string   `json:"url" binding:"required,url"`
	Secret    string   `json:"secret"`
	Events    []string `json:"events" binding:"required,min=1"`
	SessionID string   `json:"session_id"`
	Active    *bool    `json:"active"`
}

type WebhookToggleDTO struct {
	Active *bool `json:"active" binding:"required"`
}
