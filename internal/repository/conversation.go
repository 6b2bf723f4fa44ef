package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
)

// LogConversation appends one audit row
func (s *Store) LogConversation(ctx context.Context, phone, direction, messageType, content string, metadata map[string]any, at time.Time) error {
	row := &database.Conversation{
		UserPhone:   phone,
		Direction:   direction,
		MessageType: messageType,
		Content:     content,
		CreatedAt:   at.UTC(),
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return wrap("encode conversation metadata", err)
		}
		row.Metadata = datatypes.JSON(raw)
	}
	return wrap("log conversation", s.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error)
}

// RecentConversations returns the newest audit rows first
func (s *Store) RecentConversations(ctx context.Context, phone string, limit int) ([]database.Conversation, error) {
	var rows []database.Conversation
	err := s.db.WithContext(ctx).
		Where("user_phone = ?", phone).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, wrap("list conversations", err)
	}
	return rows, nil
}
