package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"gorm.io/gorm"
)

var ErrUnknownEvent = errors.New("unknown event kind")

type Service interface {
	CreateWebhook(ctx context.Context, userID uint, req dtos.WebhookCreateDTO) (entities.Webhook, error)
	ListWebhooks(ctx context.Context, userID uint) ([]entities.Webhook, error)
	ToggleWebhook(ctx context.Context, userID uint, id string, active bool) error
	DeleteWebhook(ctx context.Context, userID uint, id string) error
}

type service struct {
	repository Repository
}

func NewService(r Repository) Service {
	return &service{
		repository: r,
	}
}

func (s *service) CreateWebhook(ctx context.Context, userID uint, req dtos.WebhookCreateDTO) (entities.Webhook, error) {
	if err := validateEvents(req.Events); err != nil {
		return entities.Webhook{}, err
	}

	hook := entities.Webhook{
		ID:       uuid.NewString(),
		UserID:   userID,
		URL:      req.URL,
		Secret:   req.Secret,
		Events:   req.Events,
		IsActive: true,
	}
	if req.Active != nil {
		hook.IsActive = *req.Active
	}
	if req.SessionID != "" {
		owner, err := s.repository.SessionOwner(ctx, req.SessionID)
		if err != nil || owner != userID {
			return entities.Webhook{}, ErrSessionNotFound
		}
		sessionID := req.SessionID
		hook.SessionID = &sessionID
	}

	if err := s.repository.CreateWebhook(ctx, &hook); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entities.Webhook{}, fmt.Errorf("webhook %s already exists", hook.ID)
		}
		return entities.Webhook{}, err
	}
	return hook, nil
}

func (s *service) ListWebhooks(ctx context.Context, userID uint) ([]entities.Webhook, error) {
	return s.repository.ListWebhooks(ctx, userID)
}

func (s *service) ToggleWebhook(ctx context.Context, userID uint, id string, active bool) error {
	return s.repository.SetActive(ctx, userID, id, active)
}

func (s *service) DeleteWebhook(ctx context.Context, userID uint, id string) error {
	return s.repository.DeleteWebhook(ctx, userID, id)
}

func validateEvents(events []string) error {
	for _, e := range events {
		if e == entities.WebhookWildcard {
			continue
		}
		known := false
		for _, k := range entities.EventKinds {
			if e == k {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %s", ErrUnknownEvent, e)
		}
	}
	return nil
}
