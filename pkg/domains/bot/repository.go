package bot

import (
	"context"
	"errors"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"gorm.io/gorm"
)

var ErrRuleNotFound = errors.New("auto reply rule not found")

type Repository interface {
	// GetConfig returns the session's config, creating the default one when
	// none exists yet.
	GetConfig(ctx context.Context, sessionID string) (entities.BotConfig, error)
	SaveConfig(ctx context.Context, cfg *entities.BotConfig) error
	ListRules(ctx context.Context, sessionID string) ([]entities.AutoReplyRule, error)
	CreateRule(ctx context.Context, rule *entities.AutoReplyRule) error
	DeleteRule(ctx context.Context, sessionID string, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) GetConfig(ctx context.Context, sessionID string) (entities.BotConfig, error) {
	cfg := entities.DefaultBotConfig(sessionID)
	err := r.db.WithContext(ctx).
		Where(entities.BotConfig{SessionID: sessionID}).
		Attrs(cfg).
		FirstOrCreate(&cfg).Error
	if err != nil {
		return entities.BotConfig{}, err
	}
	cfg.Normalize()
	return cfg, nil
}

func (r *repository) SaveConfig(ctx context.Context, cfg *entities.BotConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// ListRules returns rules in creation order, which is evaluation order.
func (r *repository) ListRules(ctx context.Context, sessionID string) ([]entities.AutoReplyRule, error) {
	var rules []entities.AutoReplyRule
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&rules).Error
	return rules, err
}

func (r *repository) CreateRule(ctx context.Context, rule *entities.AutoReplyRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) DeleteRule(ctx context.Context, sessionID string, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND session_id = ?", id, sessionID).Delete(&entities.AutoReplyRule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}
