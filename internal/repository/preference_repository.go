package repository

import (
	"context"
	"errors"

	"github.com/cargolink/freight-backend/internal/model"
	"gorm.io/gorm"
)

type PreferenceRepository interface {
	// Find returns nil without error when the user has no preference row.
	Find(ctx context.Context, uid string) (*model.NotificationPreference, error)
	Upsert(ctx context.Context, p *model.NotificationPreference) error
	SetDB(db *gorm.DB)
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *preferenceRepository) Find(ctx context.Context, uid string) (*model.NotificationPreference, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.NotificationPreference
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, p *model.NotificationPreference) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(p).Error
}
