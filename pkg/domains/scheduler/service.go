package scheduler

import (
	"context"
	"errors"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
)

var ErrInvalidRecipient = errors.New("invalid recipient")

// Authorizer checks session ownership.
type Authorizer interface {
	Authorize(ctx context.Context, userID uint, sessionID string) error
}

type Service interface {
	CreateSchedule(ctx context.Context, userID uint, sessionID string, req dtos.ScheduleCreateDTO) (entities.ScheduledMessage, error)
	ListSchedules(ctx context.Context, userID uint, sessionID string) ([]entities.ScheduledMessage, error)
	DeleteSchedule(ctx context.Context, userID uint, sessionID string, id uint) error
}

type service struct {
	repository Repository
	sessions   Authorizer
}

func NewService(r Repository, sessions Authorizer) Service {
	return &service{
		repository: r,
		sessions:   sessions,
	}
}

func (s *service) CreateSchedule(ctx context.Context, userID uint, sessionID string, req dtos.ScheduleCreateDTO) (entities.ScheduledMessage, error) {
	if err := s.sessions.Authorize(ctx, userID, sessionID); err != nil {
		return entities.ScheduledMessage{}, err
	}
	chatJID := adapter.NormalizeJID(req.To)
	if adapter.UserPart(chatJID) == "" {
		return entities.ScheduledMessage{}, ErrInvalidRecipient
	}
	m := entities.ScheduledMessage{
		SessionID: sessionID,
		ChatJID:   chatJID,
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		SendAt:    req.SendAt.UTC(),
		Status:    entities.SchedulePending,
	}
	if err := s.repository.CreateSchedule(ctx, &m); err != nil {
		return entities.ScheduledMessage{}, err
	}
	return m, nil
}

func (s *service) ListSchedules(ctx context.Context, userID uint, sessionID string) ([]entities.ScheduledMessage, error) {
	if err := s.sessions.Authorize(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.repository.ListSchedules(ctx, sessionID)
}

func (s *service) DeleteSchedule(ctx context.Context, userID uint, sessionID string, id uint) error {
	if err := s.sessions.Authorize(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.repository.DeleteSchedule(ctx, sessionID, id)
}
