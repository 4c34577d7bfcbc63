package database

import (
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.User{},
		&entities.Session{},
		&entities.Message{},
		&entities.Contact{},
		&entities.Group{},
		&entities.Webhook{},
		&entities.ScheduledMessage{},
		&entities.BotConfig{},
		&entities.AutoReplyRule{},
	)
}
