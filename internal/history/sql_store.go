package history

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Entry is one persisted chat turn.
type Entry struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SessionKey string    `gorm:"type:varchar(200);not null;index"`
	Type       string    `gorm:"type:varchar(16);not null"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

func (Entry) TableName() string { return "message_store" }

// SQLStore keeps chat history in the relational store alongside the
// conversation schema.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Append(ctx context.Context, sessionKey string, msg Message) error {
	return s.db.WithContext(ctx).Create(&Entry{
		SessionKey: sessionKey,
		Type:       msg.Type,
		Content:    msg.Content,
	}).Error
}

func (s *SQLStore) Messages(ctx context.Context, sessionKey string) ([]Message, error) {
	var entries []Entry
	if err := s.db.WithContext(ctx).
		Where("session_key = ?", sessionKey).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		out = append(out, Message{Type: e.Type, Content: e.Content})
	}
	return out, nil
}

func (s *SQLStore) Recent(ctx context.Context, sessionKey string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []Entry
	if err := s.db.WithContext(ctx).
		Where("session_key = ?", sessionKey).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	// reverse to ASC (oldest -> newest)
	out := make([]Message, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, Message{Type: entries[i].Type, Content: entries[i].Content})
	}
	return out, nil
}
