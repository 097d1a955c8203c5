package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/maisydat/sheetbridge/pkg/db/models"
)

// MappingRepository reads the persisted source-field → column mapping.
type MappingRepository interface {
	ListMappings(ctx context.Context, scope string) ([]models.FieldMapping, error)
}

type mappingRepositoryImpl struct {
	db *gorm.DB
}

// NewMappingRepository returns a mapping repository bound to the database.
func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepositoryImpl{db: db}
}

func (r *mappingRepositoryImpl) ListMappings(ctx context.Context, scope string) ([]models.FieldMapping, error) {
	var mappings []models.FieldMapping
	err := r.db.WithContext(ctx).
		Where("scope = ? AND destination <> ''", scope).
		Order("id ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}
