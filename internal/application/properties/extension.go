package properties

import (
	"fmt"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var upsertByProperty = clause.OnConflict{
	Columns:   []clause.Column{{Name: "property_id"}},
	UpdateAll: true,
}

// UpsertExtension leaves at most one extension row for propertyID: the one
// matching t. Rows of other kinds are deleted. Types that carry an
// extension always get a row, empty when ext is nil.
func UpsertExtension(tx *gorm.DB, propertyID uint, t domain.PropertyType, ext domain.Extension) error {
	for _, model := range domain.ExtensionModels() {
		if model.Kind() == t {
			continue
		}
		if err := tx.Where("property_id = ?", propertyID).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %s info: %w", model.Kind(), err)
		}
	}
	if !t.HasExtension() {
		return nil
	}
	if ext == nil {
		ext = domain.NewExtension(t)
	}
	if ext.Kind() != t {
		return domain.Invalid("propertyType", "%s 매물에 %s 정보를 저장할 수 없습니다.", t, ext.Kind())
	}
	ext.Bind(propertyID)
	if err := tx.Clauses(upsertByProperty).Create(ext).Error; err != nil {
		return fmt.Errorf("failed to save %s info: %w", t, err)
	}
	return nil
}

// UpsertAgent stores agent contact for propertyID. An empty agent leaves
// any existing row untouched.
func UpsertAgent(tx *gorm.DB, propertyID uint, agent *domain.AgentInfo) error {
	if agent.Empty() {
		return nil
	}
	row := *agent
	row.ID = 0
	row.PropertyID = propertyID
	if err := tx.Clauses(upsertByProperty).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save agent info: %w", err)
	}
	return nil
}
