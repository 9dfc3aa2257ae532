package store

import (
	"context"
	"errors"
	"time"

	"weatherapp/internal/model"

	"gorm.io/gorm"
)

type Gorm struct {
	db *gorm.DB
}

// NewGorm expects a connection opened with TranslateError so unique
// violations come back as gorm.ErrDuplicatedKey
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *Gorm) FindByVerifyToken(ctx context.Context, token string) (*model.User, error) {
	return s.findOne(ctx, "verify_token = ?", token)
}

func (s *Gorm) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	return s.findOne(ctx, "reset_token = ?", token)
}

func (s *Gorm) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	// Never match rows where the column is empty
	if arg == "" {
		return nil, ErrNotFound
	}

	var user model.User

	err := s.db.WithContext(ctx).
		Where(query, arg).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (s *Gorm) Create(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}

	return err
}

func (s *Gorm) Save(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Save(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}

	return err
}

func (s *Gorm) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("reset_token IS NOT NULL AND reset_token_expires <= ?", now).
		Updates(map[string]any{
			"reset_token":         nil,
			"reset_token_expires": nil,
		})

	return r.RowsAffected, r.Error
}
