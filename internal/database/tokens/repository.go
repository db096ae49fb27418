// Package tokens stores bearer tokens that were revoked before expiry.
package tokens

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/library/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Revoke records jti as revoked until expiresAt. Revoking twice is a no-op.
func (r *Repository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.RevokedToken{ID: jti, ExpiresAt: expiresAt.UTC()}).Error
}

func (r *Repository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var token entities.RevokedToken
	err := r.db.WithContext(ctx).Where("id = ?", jti).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired deletes revocations whose token would no longer validate anyway.
func (r *Repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&entities.RevokedToken{})
	return result.RowsAffected, result.Error
}
