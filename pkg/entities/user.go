package entities

import (
	"gorm.io/gorm"
)

// User is the account that owns sessions and webhooks.
type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Name     string `json:"name" gorm:"type:varchar(255);not null"`
	Phone    string `json:"phone" gorm:"type:varchar(20)"`
}
