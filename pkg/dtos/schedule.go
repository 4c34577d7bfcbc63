package dtos

import "time"

type ScheduleCreateDTO struct {
	To       string    `json:"to" binding:"required"`
	Content  string    `json:"content" binding:"required_without=MediaURL"`
	MediaURL string    `json:"media_url"`
	SendAt   time.Time `json:"send_at" binding:"required"`
}
