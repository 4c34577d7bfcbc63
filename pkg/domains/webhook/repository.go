package webhook

import (
	"context"
	"errors"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"gorm.io/gorm"
)

var (
	ErrWebhookNotFound = errors.New("webhook not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Repository interface {
	// SessionOwner returns the account that owns sessionID.
	SessionOwner(ctx context.Context, sessionID string) (uint, error)
	// FindActive returns active webhooks of userID that are global or scoped
	// to sessionID.
	FindActive(ctx context.Context, userID uint, sessionID string) ([]entities.Webhook, error)
	CreateWebhook(ctx context.Context, hook *entities.Webhook) error
	ListWebhooks(ctx context.Context, userID uint) ([]entities.Webhook, error)
	FindWebhook(ctx context.Context, userID uint, id string) (entities.Webhook, error)
	SetActive(ctx context.Context, userID uint, id string, active bool) error
	DeleteWebhook(ctx context.Context, userID uint, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) SessionOwner(ctx context.Context, sessionID string) (uint, error) {
	var session entities.Session
	err := r.db.WithContext(ctx).Select("user_id").Where("id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrSessionNotFound
	}
	return session.UserID, err
}

func (r *repository) FindActive(ctx context.Context, userID uint, sessionID string) ([]entities.Webhook, error) {
	var hooks []entities.Webhook
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("session_id IS NULL OR session_id = ?", sessionID).
		Find(&hooks).Error
	return hooks, err
}

func (r *repository) CreateWebhook(ctx context.Context, hook *entities.Webhook) error {
	return r.db.WithContext(ctx).Create(hook).Error
}

func (r *repository) ListWebhooks(ctx context.Context, userID uint) ([]entities.Webhook, error) {
	var hooks []entities.Webhook
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&hooks).Error
	return hooks, err
}

func (r *repository) FindWebhook(ctx context.Context, userID uint, id string) (entities.Webhook, error) {
	var hook entities.Webhook
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&hook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return hook, ErrWebhookNotFound
	}
	return hook, err
}

func (r *repository) SetActive(ctx context.Context, userID uint, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&entities.Webhook{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWebhookNotFound
	}
	return nil
}

func (r *repository) DeleteWebhook(ctx context.Context, userID uint, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Webhook{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWebhookNotFound
	}
	return nil
}
