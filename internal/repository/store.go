package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
)

// Store is the persistence gateway over gorm
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// lockUser loads the user row inside tx, taking a row lock where the dialect supports it.
// SQLite serializes writers on its own.
func (s *Store) lockUser(tx *gorm.DB, phone string) (*database.User, error) {
	q := tx
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user database.User
	if err := q.First(&user, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func clearPending(tx *gorm.DB, phone string) error {
	return tx.Model(&database.User{}).
		Where("phone = ?", phone).
		Update("pending_command", gorm.Expr("NULL")).Error
}

// withUserTx runs fn in a transaction holding the user's row
func (s *Store) withUserTx(ctx context.Context, phone string, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockUser(tx, phone); err != nil {
			return err
		}
		return fn(tx)
	})
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, apperrors.NewDatabaseError(err))
}
