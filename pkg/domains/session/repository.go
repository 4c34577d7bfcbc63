package session

import (
	"context"
	"errors"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

type Repository interface {
	CreateSession(ctx context.Context, s *entities.Session) error
	FindSession(ctx context.Context, id string) (entities.Session, error)
	ListSessions(ctx context.Context, userID uint) ([]entities.Session, error)
	// ListRestorable returns every session that may reconnect without pairing
	// again, i.e. all but LOGGED_OUT ones.
	ListRestorable(ctx context.Context) ([]entities.Session, error)
	// UpdateState writes lifecycle columns. It returns ErrSessionNotFound
	// when the row is gone.
	UpdateState(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateConfig(ctx context.Context, id string, cfg entities.SessionConfig) error
	// DeleteSession removes the session and everything scoped to it.
	DeleteSession(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) CreateSession(ctx context.Context, s *entities.Session) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSessionExists
	}
	return err
}

func (r *repository) FindSession(ctx context.Context, id string) (entities.Session, error) {
	var s entities.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, ErrSessionNotFound
	}
	return s, err
}

func (r *repository) ListSessions(ctx context.Context, userID uint) ([]entities.Session, error) {
	var sessions []entities.Session
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&sessions).Error
	return sessions, err
}

func (r *repository) ListRestorable(ctx context.Context) ([]entities.Session, error) {
	var sessions []entities.Session
	err := r.db.WithContext(ctx).Where("status <> ?", entities.SessionLoggedOut).Find(&sessions).Error
	return sessions, err
}

func (r *repository) UpdateState(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&entities.Session{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *repository) UpdateConfig(ctx context.Context, id string, cfg entities.SessionConfig) error {
	res := r.db.WithContext(ctx).Model(&entities.Session{ID: id}).Select("config").Updates(&entities.Session{Config: cfg})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *repository) DeleteSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&entities.BotConfig{},
			&entities.AutoReplyRule{},
			&entities.ScheduledMessage{},
			&entities.Contact{},
			&entities.Group{},
			&entities.Message{},
			&entities.Webhook{},
		} {
			if err := tx.Where("session_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&entities.Session{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return nil
	})
}
