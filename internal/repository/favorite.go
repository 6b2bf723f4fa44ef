package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
)

// ListFavorites returns the user's favorite meals ordered by name
func (s *Store) ListFavorites(ctx context.Context, phone string) ([]database.FavoriteMeal, error) {
	var favs []database.FavoriteMeal
	if err := s.db.WithContext(ctx).Where("user_phone = ?", phone).Order("name").Find(&favs).Error; err != nil {
		return nil, wrap("list favorites", err)
	}
	return favs, nil
}

// GetFavorite returns apperrors.ErrNotFound when the name is unknown
func (s *Store) GetFavorite(ctx context.Context, phone, name string) (*database.FavoriteMeal, error) {
	var fav database.FavoriteMeal
	err := s.db.WithContext(ctx).Where("user_phone = ? AND name = ?", phone, name).First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, wrap("get favorite", err)
	}
	return &fav, nil
}

// SaveFavorite inserts a favorite or replaces the one with the same name.
// The pending command is cleared in the same transaction.
func (s *Store) SaveFavorite(ctx context.Context, fav *database.FavoriteMeal) error {
	err := s.withUserTx(ctx, fav.UserPhone, func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_phone"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "calories"}),
		}).Create(fav).Error
		if err != nil {
			return err
		}
		return clearPending(tx, fav.UserPhone)
	})
	return wrap("save favorite", err)
}

// DeleteFavorite reports whether a favorite was removed
func (s *Store) DeleteFavorite(ctx context.Context, phone, name string) (bool, error) {
	var deleted bool
	err := s.withUserTx(ctx, phone, func(tx *gorm.DB) error {
		res := tx.Where("user_phone = ? AND name = ?", phone, name).Delete(&database.FavoriteMeal{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return clearPending(tx, phone)
	})
	return deleted, wrap("delete favorite", err)
}
