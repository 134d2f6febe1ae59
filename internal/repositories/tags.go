package repositories

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/notevault/internal/models"
)

// Tags is the global tag registry.
type Tags struct {
	db *gorm.DB
}

// Upsert returns the tag called name, creating it when needed. The insert
// is ON CONFLICT DO NOTHING against the unique name index, so a concurrent
// creator of the same name makes this call fall through to the lookup.
func (r *Tags) Upsert(name string) (*models.Tag, error) {
	tag := models.Tag{Name: name}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error
	if err != nil {
		return nil, fmt.Errorf("upsert tag %q: %w", name, err)
	}

	// Some drivers report no id for a skipped insert, so always look it up.
	var stored models.Tag
	if err := r.db.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load tag %q: %w", name, err)
	}
	return &stored, nil
}

// UpsertAll upserts every name, preserving order.
func (r *Tags) UpsertAll(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := r.Upsert(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// All lists every tag ordered by name.
func (r *Tags) All() ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := r.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ByName returns gorm.ErrRecordNotFound when the tag does not exist.
func (r *Tags) ByName(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}
