package repository

import (
	"context"

	"gorm.io/gorm"

	"studiodesk/internal/domain"
)

// EnumRepository reads the allowed values of lookup enumerations.
type EnumRepository struct {
	db *gorm.DB
}

func NewEnumRepository(db *gorm.DB) *EnumRepository {
	return &EnumRepository{db: db}
}

// Values returns the values of the named enumeration in display order. An
// unknown name yields an empty slice.
func (r *EnumRepository) Values(ctx context.Context, name string) ([]string, error) {
	var rows []domain.EnumValue
	err := r.db.WithContext(ctx).
		Where("enum_name = ?", name).
		Order("position ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, classify("enum values", err)
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Value)
	}
	return out, nil
}
