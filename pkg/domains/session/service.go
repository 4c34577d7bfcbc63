package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/storage"
	"github.com/skip2/go-qrcode"
)

var ErrNoQRCode = errors.New("no pairing code available")

// History reads stored messages, contacts and groups.
type History interface {
	ListMessages(ctx context.Context, sessionID, chatJID string, page, pageSize int) ([]entities.Message, int, error)
	ListContacts(ctx context.Context, sessionID string, page, pageSize int) ([]entities.Contact, int, error)
	ListGroups(ctx context.Context, sessionID string, page, pageSize int) ([]entities.Group, int, error)
}

// MediaFetcher resolves media references for outbound sends.
type MediaFetcher interface {
	Fetch(ctx context.Context, ref string) (*storage.Media, error)
}

type Service interface {
	CreateSession(ctx context.Context, userID uint, req dtos.SessionCreateDTO) (entities.Session, error)
	ListSessions(ctx context.Context, userID uint) ([]entities.Session, error)
	GetSession(ctx context.Context, userID uint, id string) (entities.Session, error)
	DeleteSession(ctx context.Context, userID uint, id string) error
	StartSession(ctx context.Context, userID uint, id string) (entities.Session, error)
	StopSession(ctx context.Context, userID uint, id string) (entities.Session, error)
	RestartSession(ctx context.Context, userID uint, id string) (entities.Session, error)
	UpdateConfig(ctx context.Context, userID uint, id string, req dtos.SessionConfigDTO) (entities.Session, error)
	QRCode(ctx context.Context, userID uint, id string) ([]byte, error)
	SendMessage(ctx context.Context, userID uint, id string, req dtos.SendMessageDTO) (adapter.SendResult, error)
	ListMessages(ctx context.Context, userID uint, id, chatJID string, page, pageSize int) ([]entities.Message, int, error)
	ListContacts(ctx context.Context, userID uint, id string, page, pageSize int) ([]entities.Contact, int, error)
	ListGroups(ctx context.Context, userID uint, id string, page, pageSize int) ([]entities.Group, int, error)
	// Authorize checks that userID owns the session.
	Authorize(ctx context.Context, userID uint, id string) error
}

type service struct {
	registry   *Registry
	repository Repository
	history    History
	media      MediaFetcher
}

func NewService(registry *Registry, r Repository, history History, media MediaFetcher) Service {
	return &service{
		registry:   registry,
		repository: r,
		history:    history,
		media:      media,
	}
}

func (s *service) owned(ctx context.Context, userID uint, id string) (entities.Session, error) {
	row, err := s.repository.FindSession(ctx, id)
	if err != nil {
		return row, err
	}
	if row.UserID != userID {
		return entities.Session{}, ErrSessionNotFound
	}
	return row, nil
}

func (s *service) view(row entities.Session) entities.Session {
	if inst, ok := s.registry.Get(row.ID); ok {
		return inst.Snapshot(row)
	}
	return row
}

func (s *service) Authorize(ctx context.Context, userID uint, id string) error {
	_, err := s.owned(ctx, userID, id)
	return err
}

func (s *service) CreateSession(ctx context.Context, userID uint, req dtos.SessionCreateDTO) (entities.Session, error) {
	inst, err := s.registry.Create(ctx, userID, req.Name, req.SessionID)
	if inst == nil {
		return entities.Session{}, err
	}
	row, findErr := s.repository.FindSession(ctx, inst.ID())
	if findErr != nil {
		return entities.Session{}, findErr
	}
	return inst.Snapshot(row), err
}

func (s *service) ListSessions(ctx context.Context, userID uint) ([]entities.Session, error) {
	rows, err := s.repository.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = s.view(rows[i])
	}
	return rows, nil
}

func (s *service) GetSession(ctx context.Context, userID uint, id string) (entities.Session, error) {
	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return row, err
	}
	return s.view(row), nil
}

func (s *service) DeleteSession(ctx context.Context, userID uint, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.registry.Delete(ctx, id)
}

func (s *service) StartSession(ctx context.Context, userID uint, id string) (entities.Session, error) {
	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return row, err
	}
	inst, err := s.registry.Start(ctx, id)
	if err != nil {
		return row, err
	}
	return inst.Snapshot(row), nil
}

func (s *service) StopSession(ctx context.Context, userID uint, id string) (entities.Session, error) {
	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return row, err
	}
	if err := s.registry.Stop(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return row, err
	}
	return s.view(row), nil
}

func (s *service) RestartSession(ctx context.Context, userID uint, id string) (entities.Session, error) {
	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return row, err
	}
	inst, err := s.registry.Restart(ctx, id)
	if err != nil {
		return row, err
	}
	return inst.Snapshot(row), nil
}

func (s *service) UpdateConfig(ctx context.Context, userID uint, id string, req dtos.SessionConfigDTO) (entities.Session, error) {
	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return row, err
	}
	cfg := row.Config
	if req.IgnoreHistory != nil {
		cfg.IgnoreHistory = *req.IgnoreHistory
	}
	if req.IgnoreStatusBroadcast != nil {
		cfg.IgnoreStatusBroadcast = *req.IgnoreStatusBroadcast
	}
	if req.ReadReceipts != nil {
		cfg.ReadReceipts = *req.ReadReceipts
	}
	if err := s.repository.UpdateConfig(ctx, id, cfg); err != nil {
		return row, err
	}
	if inst, ok := s.registry.Get(id); ok {
		inst.SetConfig(cfg)
	}
	row.Config = cfg
	return s.view(row), nil
}

// QRCode renders the current pairing code as a PNG.
func (s *service) QRCode(ctx context.Context, userID uint, id string) ([]byte, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	inst, ok := s.registry.Get(id)
	if !ok || inst.QR() == "" {
		return nil, ErrNoQRCode
	}
	return qrcode.Encode(inst.QR(), qrcode.Medium, 256)
}

func (s *service) SendMessage(ctx context.Context, userID uint, id string, req dtos.SendMessageDTO) (adapter.SendResult, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return adapter.SendResult{}, err
	}
	inst, ok := s.registry.Get(id)
	if !ok {
		return adapter.SendResult{}, ErrNotConnected
	}

	content := adapter.Content{Text: req.Text}
	if req.MediaURL != "" {
		media, err := s.media.Fetch(ctx, req.MediaURL)
		if err != nil {
			return adapter.SendResult{}, fmt.Errorf("resolving media: %w", err)
		}
		content.Media = &adapter.OutboundMedia{
			Kind:     adapter.KindForMime(media.MimeType),
			Data:     media.Data,
			MimeType: media.MimeType,
			FileName: media.FileName,
		}
	}
	return inst.Send(ctx, req.To, content)
}

func (s *service) ListMessages(ctx context.Context, userID uint, id, chatJID string, page, pageSize int) ([]entities.Message, int, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, 0, err
	}
	return s.history.ListMessages(ctx, id, chatJID, page, pageSize)
}

func (s *service) ListContacts(ctx context.Context, userID uint, id string, page, pageSize int) ([]entities.Contact, int, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, 0, err
	}
	return s.history.ListContacts(ctx, id, page, pageSize)
}

func (s *service) ListGroups(ctx context.Context, userID uint, id string, page, pageSize int) ([]entities.Group, int, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, 0, err
	}
	return s.history.ListGroups(ctx, id, page, pageSize)
}
