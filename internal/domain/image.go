package domain

import "time"

// Image is one entry of a property's ordered gallery. At most one image per
// property has IsMain set; the application keeps exactly one when any exist.
type Image struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"column:property_id;not null;index" json:"propertyId"`
	URL        string    `gorm:"column:url;type:text;not null" json:"url"`
	Order      int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsMain     bool      `gorm:"column:is_main;not null;default:false" json:"isMain"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Image) TableName() string {
	return "images"
}
