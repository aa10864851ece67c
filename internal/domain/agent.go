package domain

// AgentInfo holds the broker contact for a property, one row per property.
type AgentInfo struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	PropertyID     uint   `gorm:"column:property_id;uniqueIndex;not null" json:"propertyId"`
	OfficeName     string `gorm:"column:office_name" json:"officeName"`
	Phone          string `gorm:"column:phone" json:"phone"`
	RegistrationNo string `gorm:"column:registration_no" json:"registrationNo"`
}

func (AgentInfo) TableName() string {
	return "agent_infos"
}

// Empty reports whether the record carries no contact worth storing.
func (a *AgentInfo) Empty() bool {
	return a == nil || (a.OfficeName == "" && a.Phone == "")
}
