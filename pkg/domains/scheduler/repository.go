package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"gorm.io/gorm"
)

var ErrScheduleNotFound = errors.New("scheduled message not found")

type Repository interface {
	// ListDue returns pending rows whose send time has passed, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]entities.ScheduledMessage, error)
	// Claim moves a row from PENDING to PROCESSING and reports whether this
	// caller won it.
	Claim(ctx context.Context, id uint) (bool, error)
	// Release puts a claimed row back to PENDING.
	Release(ctx context.Context, id uint) error
	MarkSent(ctx context.Context, id uint, messageID string, at time.Time) error
	MarkFailed(ctx context.Context, id uint, reason string) error

	CreateSchedule(ctx context.Context, m *entities.ScheduledMessage) error
	ListSchedules(ctx context.Context, sessionID string) ([]entities.ScheduledMessage, error)
	DeleteSchedule(ctx context.Context, sessionID string, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) ListDue(ctx context.Context, now time.Time, limit int) ([]entities.ScheduledMessage, error) {
	var due []entities.ScheduledMessage
	err := r.db.WithContext(ctx).
		Where("status = ? AND send_at <= ?", entities.SchedulePending, now).
		Order("send_at ASC").
		Limit(limit).
		Find(&due).Error
	return due, err
}

func (r *repository) transition(ctx context.Context, id uint, from entities.ScheduleStatus, fields map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entities.ScheduledMessage{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) Claim(ctx context.Context, id uint) (bool, error) {
	return r.transition(ctx, id, entities.SchedulePending, map[string]interface{}{"status": entities.ScheduleProcessing})
}

func (r *repository) Release(ctx context.Context, id uint) error {
	_, err := r.transition(ctx, id, entities.ScheduleProcessing, map[string]interface{}{"status": entities.SchedulePending})
	return err
}

func (r *repository) MarkSent(ctx context.Context, id uint, messageID string, at time.Time) error {
	_, err := r.transition(ctx, id, entities.ScheduleProcessing, map[string]interface{}{
		"status":              entities.ScheduleSent,
		"protocol_message_id": messageID,
		"sent_at":             at,
		"error":               "",
	})
	return err
}

func (r *repository) MarkFailed(ctx context.Context, id uint, reason string) error {
	_, err := r.transition(ctx, id, entities.ScheduleProcessing, map[string]interface{}{
		"status": entities.ScheduleFailed,
		"error":  reason,
	})
	return err
}

func (r *repository) CreateSchedule(ctx context.Context, m *entities.ScheduledMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) ListSchedules(ctx context.Context, sessionID string) ([]entities.ScheduledMessage, error) {
	var list []entities.ScheduledMessage
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("send_at DESC").Find(&list).Error
	return list, err
}

func (r *repository) DeleteSchedule(ctx context.Context, sessionID string, id uint) error {
	res := r.db.WithContext(ctx).Where("session_id = ? AND id = ?", sessionID, id).Delete(&entities.ScheduledMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
