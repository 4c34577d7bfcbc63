package ingest

import (
	"context"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	MessageExists(ctx context.Context, sessionID, protocolID string) (bool, error)
	// InsertMessage inserts msg unless (session, protocol id) already exists
	// and reports whether this call created the row.
	InsertMessage(ctx context.Context, msg *entities.Message) (bool, error)
	// PromoteToSent moves a message that is PENDING or FAILED to SENT.
	PromoteToSent(ctx context.Context, sessionID, protocolID string) error
	UpdateStatus(ctx context.Context, sessionID, protocolID string, status entities.MessageStatus) (int64, error)
	// UpsertContact inserts the contact or refreshes it. Name columns are
	// written only when updateNames is set.
	UpsertContact(ctx context.Context, contact entities.Contact, updateNames bool) error
	ListMessages(ctx context.Context, sessionID, chatJID string, page, pageSize int) ([]entities.Message, int, error)
	ListContacts(ctx context.Context, sessionID string, page, pageSize int) ([]entities.Contact, int, error)
	UpsertGroup(ctx context.Context, group entities.Group) error
	ListGroups(ctx context.Context, sessionID string, page, pageSize int) ([]entities.Group, int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) MessageExists(ctx context.Context, sessionID, protocolID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Message{}).
		Where("session_id = ? AND protocol_message_id = ?", sessionID, protocolID).
		Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *repository) InsertMessage(ctx context.Context, msg *entities.Message) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "protocol_message_id"}},
		DoNothing: true,
	}).Create(msg)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) PromoteToSent(ctx context.Context, sessionID, protocolID string) error {
	return r.db.WithContext(ctx).Model(&entities.Message{}).
		Where("session_id = ? AND protocol_message_id = ? AND status IN ?", sessionID, protocolID,
			[]entities.MessageStatus{entities.MessagePending, entities.MessageFailed}).
		Update("status", entities.MessageSent).Error
}

func (r *repository) UpdateStatus(ctx context.Context, sessionID, protocolID string, status entities.MessageStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entities.Message{}).
		Where("session_id = ? AND protocol_message_id = ?", sessionID, protocolID).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *repository) UpsertContact(ctx context.Context, contact entities.Contact, updateNames bool) error {
	columns := []string{"updated_at"}
	if contact.Phone != "" {
		columns = append(columns, "phone")
	}
	if updateNames {
		if contact.Name != "" {
			columns = append(columns, "name")
		}
		if contact.PushName != "" {
			columns = append(columns, "push_name")
		}
	} else {
		contact.Name = ""
		contact.PushName = ""
	}
	contact.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "jid"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&contact).Error
}

func (r *repository) ListMessages(ctx context.Context, sessionID, chatJID string, page, pageSize int) ([]entities.Message, int, error) {
	var messages []entities.Message
	query, args := "session_id = ?", []interface{}{sessionID}
	if chatJID != "" {
		query += " AND chat_jid = ?"
		args = append(args, chatJID)
	}
	pages, err := utils.Pagination(&messages, page, pageSize, "timestamp DESC", r.db, ctx, query, args...)
	return messages, pages, err
}

func (r *repository) ListContacts(ctx context.Context, sessionID string, page, pageSize int) ([]entities.Contact, int, error) {
	var contacts []entities.Contact
	pages, err := utils.Pagination(&contacts, page, pageSize, "updated_at DESC", r.db, ctx, "session_id = ?", sessionID)
	return contacts, pages, err
}

func (r *repository) UpsertGroup(ctx context.Context, group entities.Group) error {
	group.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "jid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "topic", "owner_jid", "participants", "group_created", "updated_at"}),
	}).Create(&group).Error
}

func (r *repository) ListGroups(ctx context.Context, sessionID string, page, pageSize int) ([]entities.Group, int, error) {
	var groups []entities.Group
	pages, err := utils.Pagination(&groups, page, pageSize, "name ASC", r.db, ctx, "session_id = ?", sessionID)
	return groups, pages, err
}
