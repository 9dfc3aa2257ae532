package session

import (
	"context"
	"errors"
	"time"

	"weatherapp/internal/model"

	"gorm.io/gorm"
)

// DBStore keeps sessions in the sessions table. Expired rows are filtered
// on read and removed by DeleteExpired.
type DBStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db, now: time.Now}
}

func (s *DBStore) Put(ctx context.Context, d *Data) error {
	return s.db.WithContext(ctx).Save(&model.Session{
		ID:        d.ID,
		UserID:    d.UserID,
		Username:  d.Username,
		Email:     d.Email,
		Phone:     d.Phone,
		Gender:    d.Gender,
		ExpiresAt: d.ExpiresAt,
	}).Error
}

func (s *DBStore) Get(ctx context.Context, id string) (*Data, error) {
	var row model.Session

	err := s.db.
		WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, s.now()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}

		return nil, err
	}

	return &Data{
		ID:        row.ID,
		UserID:    row.UserID,
		Username:  row.Username,
		Email:     row.Email,
		Phone:     row.Phone,
		Gender:    row.Gender,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error
}

func (s *DBStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
