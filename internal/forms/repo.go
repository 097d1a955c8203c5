package forms

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/maisydat/sheetbridge/pkg/db/models"
)

// Repository exposes persistence helpers for per-form export settings.
type Repository interface {
	GetSettings(ctx context.Context, formID string) (*models.FormSettings, error)
	SaveSettings(ctx context.Context, settings *models.FormSettings) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// GetSettings returns nil without error when the form has no settings row.
func (r *repositoryImpl) GetSettings(ctx context.Context, formID string) (*models.FormSettings, error) {
	var settings models.FormSettings
	err := r.db.WithContext(ctx).Where("form_id = ?", formID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repositoryImpl) SaveSettings(ctx context.Context, settings *models.FormSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
