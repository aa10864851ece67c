package domain

// Extension is the type-specific part of a property. Exactly one variant
// exists per extension-bearing property type; Kind names it.
type Extension interface {
	Kind() PropertyType
	// Bind attaches the variant to a property before it is written.
	Bind(propertyID uint)
}

// ExtensionModels lists one zero value of every extension table, for
// migrations and for clearing stale rows.
func ExtensionModels() []Extension {
	return []Extension{&CommercialInfo{}, &LandInfo{}, &OfficeInfo{}, &FactoryInfo{}}
}

// NewExtension returns an empty variant for t, or nil when t carries none.
func NewExtension(t PropertyType) Extension {
	switch t {
	case TypeCommercial:
		return &CommercialInfo{}
	case TypeLand:
		return &LandInfo{}
	case TypeOffice:
		return &OfficeInfo{}
	case TypeFactory:
		return &FactoryInfo{}
	}
	return nil
}

type CommercialInfo struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	PropertyID            uint   `gorm:"column:property_id;uniqueIndex;not null" json:"propertyId"`
	PremiumFee            *int64 `gorm:"column:premium_fee" json:"premiumFee"`
	BusinessRestrictions  string `gorm:"column:business_restrictions" json:"businessRestrictions"`
	RecommendedBusinesses string `gorm:"column:recommended_businesses" json:"recommendedBusinesses"`
	MonthlyRevenue        *int64 `gorm:"column:monthly_revenue" json:"monthlyRevenue"`
	IsOperating           bool   `gorm:"column:is_operating;not null;default:false" json:"isOperating"`
	IsTransfer            bool   `gorm:"column:is_transfer;not null;default:false" json:"isTransfer"`
}

func (CommercialInfo) TableName() string { return "commercial_infos" }
func (*CommercialInfo) Kind() PropertyType { return TypeCommercial }
func (c *CommercialInfo) Bind(propertyID uint) { c.ID = 0; c.PropertyID = propertyID }

type LandInfo struct {
	ID                    uint     `gorm:"primaryKey" json:"id"`
	PropertyID            uint     `gorm:"column:property_id;uniqueIndex;not null" json:"propertyId"`
	LandCategory          string   `gorm:"column:land_category" json:"landCategory"`
	Zoning                string   `gorm:"column:zoning" json:"zoning"`
	RoadFacing            string   `gorm:"column:road_facing" json:"roadFacing"`
	Topography            string   `gorm:"column:topography" json:"topography"`
	BuildingCoverageRatio *float64 `gorm:"column:building_coverage_ratio" json:"buildingCoverageRatio"`
	FloorAreaRatio        *float64 `gorm:"column:floor_area_ratio" json:"floorAreaRatio"`
}

func (LandInfo) TableName() string { return "land_infos" }
func (*LandInfo) Kind() PropertyType { return TypeLand }
func (l *LandInfo) Bind(propertyID uint) { l.ID = 0; l.PropertyID = propertyID }

type OfficeInfo struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	PropertyID     uint   `gorm:"column:property_id;uniqueIndex;not null" json:"propertyId"`
	MeetingRooms   *int   `gorm:"column:meeting_rooms" json:"meetingRooms"`
	DeskCapacity   *int   `gorm:"column:desk_capacity" json:"deskCapacity"`
	InternetSpeed  string `gorm:"column:internet_speed" json:"internetSpeed"`
	HasSecurity    bool   `gorm:"column:has_security;not null;default:false" json:"hasSecurity"`
	Is24HourAccess bool   `gorm:"column:is24_hour_access;not null;default:false" json:"is24HourAccess"`
}

func (OfficeInfo) TableName() string { return "office_infos" }
func (*OfficeInfo) Kind() PropertyType { return TypeOffice }
func (o *OfficeInfo) Bind(propertyID uint) { o.ID = 0; o.PropertyID = propertyID }

type FactoryInfo struct {
	ID                     uint     `gorm:"primaryKey" json:"id"`
	PropertyID             uint     `gorm:"column:property_id;uniqueIndex;not null" json:"propertyId"`
	CeilingHeight          *float64 `gorm:"column:ceiling_height" json:"ceilingHeight"`
	ElectricCapacity       *float64 `gorm:"column:electric_capacity" json:"electricCapacity"`
	WaterCapacity          *float64 `gorm:"column:water_capacity" json:"waterCapacity"`
	HasCargoElevator       bool     `gorm:"column:has_cargo_elevator;not null;default:false" json:"hasCargoElevator"`
	HasCrane               bool     `gorm:"column:has_crane;not null;default:false" json:"hasCrane"`
	HasEnvironmentalPermit bool     `gorm:"column:has_environmental_permit;not null;default:false" json:"hasEnvironmentalPermit"`
}

func (FactoryInfo) TableName() string { return "factory_infos" }
func (*FactoryInfo) Kind() PropertyType { return TypeFactory }
func (f *FactoryInfo) Bind(propertyID uint) { f.ID = 0; f.PropertyID = propertyID }
