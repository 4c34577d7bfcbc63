package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
)

var (
	ErrInvalidMode    = errors.New("invalid access mode")
	ErrInvalidMatch   = errors.New("invalid match type")
	ErrInvalidPattern = errors.New("invalid pattern")
)

type Service interface {
	GetConfig(ctx context.Context, sessionID string) (entities.BotConfig, error)
	UpdateConfig(ctx context.Context, sessionID string, req dtos.BotConfigUpdateDTO) (entities.BotConfig, error)
	ListRules(ctx context.Context, sessionID string) ([]entities.AutoReplyRule, error)
	CreateRule(ctx context.Context, sessionID string, req dtos.AutoReplyCreateDTO) (entities.AutoReplyRule, error)
	DeleteRule(ctx context.Context, sessionID string, id uint) error
}

type service struct {
	repository Repository
}

func NewService(r Repository) Service {
	return &service{
		repository: r,
	}
}

func (s *service) GetConfig(ctx context.Context, sessionID string) (entities.BotConfig, error) {
	return s.repository.GetConfig(ctx, sessionID)
}

// UpdateConfig applies only the fields present in req.
func (s *service) UpdateConfig(ctx context.Context, sessionID string, req dtos.BotConfigUpdateDTO) (entities.BotConfig, error) {
	cfg, err := s.repository.GetConfig(ctx, sessionID)
	if err != nil {
		return cfg, err
	}

	if req.BotMode != nil {
		mode := entities.AccessMode(strings.ToUpper(*req.BotMode))
		if !mode.Valid() {
			return cfg, fmt.Errorf("%w: %s", ErrInvalidMode, *req.BotMode)
		}
		cfg.BotMode = mode
	}
	if req.AutoReplyMode != nil {
		mode := entities.AccessMode(strings.ToUpper(*req.AutoReplyMode))
		if !mode.Valid() {
			return cfg, fmt.Errorf("%w: %s", ErrInvalidMode, *req.AutoReplyMode)
		}
		cfg.AutoReplyMode = mode
	}
	if req.AllowedJIDs != nil {
		cfg.AllowedJIDs = req.AllowedJIDs
	}
	setBool(&cfg.Enabled, req.Enabled)
	setBool(&cfg.EnablePing, req.EnablePing)
	setBool(&cfg.EnableUptime, req.EnableUptime)
	setBool(&cfg.EnableChatID, req.EnableChatID)
	setBool(&cfg.EnableSticker, req.EnableSticker)
	setBool(&cfg.EnableHelp, req.EnableHelp)

	if err := s.repository.SaveConfig(ctx, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (s *service) ListRules(ctx context.Context, sessionID string) ([]entities.AutoReplyRule, error) {
	return s.repository.ListRules(ctx, sessionID)
}

func (s *service) CreateRule(ctx context.Context, sessionID string, req dtos.AutoReplyCreateDTO) (entities.AutoReplyRule, error) {
	match := entities.MatchType(strings.ToUpper(req.MatchType))
	switch match {
	case entities.MatchExact, entities.MatchContains:
	case entities.MatchRegex:
		if _, err := regexp.Compile(req.Keyword); err != nil {
			return entities.AutoReplyRule{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	default:
		return entities.AutoReplyRule{}, fmt.Errorf("%w: %s", ErrInvalidMatch, req.MatchType)
	}

	rule := entities.AutoReplyRule{
		SessionID: sessionID,
		Keyword:   req.Keyword,
		MatchType: match,
		Response:  req.Response,
	}
	if err := s.repository.CreateRule(ctx, &rule); err != nil {
		return entities.AutoReplyRule{}, err
	}
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, sessionID string, id uint) error {
	return s.repository.DeleteRule(ctx, sessionID, id)
}
