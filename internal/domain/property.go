package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TradeType string

const (
	TradeSale    TradeType = "SALE"
	TradeJeonse  TradeType = "JEONSE"
	TradeMonthly TradeType = "MONTHLY"
)

var tradeTypeLabels = map[TradeType]string{
	TradeSale:    "매매",
	TradeJeonse:  "전세",
	TradeMonthly: "월세",
}

// Valid reports whether t is a known trade type.
func (t TradeType) Valid() bool {
	_, ok := tradeTypeLabels[t]
	return ok
}

func (t TradeType) Label() string {
	if l, ok := tradeTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseTradeType accepts a code ("SALE") or its Korean label ("매매").
func ParseTradeType(s string) (TradeType, bool) {
	t := TradeType(strings.ToUpper(strings.TrimSpace(s)))
	if t.Valid() {
		return t, true
	}
	for code, label := range tradeTypeLabels {
		if label == strings.TrimSpace(s) {
			return code, true
		}
	}
	return "", false
}

type PropertyType string

const (
	TypeApartment  PropertyType = "APARTMENT"
	TypeOfficetel  PropertyType = "OFFICETEL"
	TypeVilla      PropertyType = "VILLA"
	TypeHouse      PropertyType = "HOUSE"
	TypeOneRoom    PropertyType = "ONE_ROOM"
	TypeTwoRoom    PropertyType = "TWO_ROOM"
	TypeCommercial PropertyType = "COMMERCIAL"
	TypeOffice     PropertyType = "OFFICE"
	TypeFactory    PropertyType = "FACTORY"
	TypeLand       PropertyType = "LAND"
)

// PropertyTypes lists every property type in display order.
var PropertyTypes = []PropertyType{
	TypeApartment, TypeOfficetel, TypeVilla, TypeHouse, TypeOneRoom,
	TypeTwoRoom, TypeCommercial, TypeOffice, TypeFactory, TypeLand,
}

var propertyTypeLabels = map[PropertyType]string{
	TypeApartment:  "아파트",
	TypeOfficetel:  "오피스텔",
	TypeVilla:      "빌라",
	TypeHouse:      "주택",
	TypeOneRoom:    "원룸",
	TypeTwoRoom:    "투룸",
	TypeCommercial: "상가",
	TypeOffice:     "사무실",
	TypeFactory:    "공장",
	TypeLand:       "토지",
}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	_, ok := propertyTypeLabels[t]
	return ok
}

// Label returns the Korean display label, or the raw code if unknown.
func (t PropertyType) Label() string {
	if l, ok := propertyTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParsePropertyType accepts a code ("APARTMENT") or its Korean label ("아파트").
func ParsePropertyType(s string) (PropertyType, bool) {
	t := PropertyType(strings.ToUpper(strings.TrimSpace(s)))
	if t.Valid() {
		return t, true
	}
	for code, label := range propertyTypeLabels {
		if label == strings.TrimSpace(s) {
			return code, true
		}
	}
	return "", false
}

// HasExtension reports whether properties of this type carry an extension record.
func (t PropertyType) HasExtension() bool {
	switch t {
	case TypeCommercial, TypeLand, TypeOffice, TypeFactory:
		return true
	}
	return false
}

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusReserved  Status = "RESERVED"
	StatusSold      Status = "SOLD"
)

// Statuses lists every listing status.
var Statuses = []Status{StatusAvailable, StatusReserved, StatusSold}

// Valid reports whether s is a known status. Any status may follow any other.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// Property is the base listing record. Extension records, agent info and
// images hang off it and are removed with it.
type Property struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Title               string          `gorm:"column:title;not null" json:"title"`
	TradeType           TradeType       `gorm:"column:trade_type;type:varchar(16);not null" json:"tradeType"`
	SalePrice           *int64          `gorm:"column:sale_price" json:"salePrice"`
	Deposit             *int64          `gorm:"column:deposit" json:"deposit"`
	MonthlyRent         *int64          `gorm:"column:monthly_rent" json:"monthlyRent"`
	Address             string          `gorm:"column:address;not null;index" json:"address"`
	AddressDetail       string          `gorm:"column:address_detail" json:"addressDetail"`
	ExclusiveArea       float64         `gorm:"column:exclusive_area;not null" json:"exclusiveArea"`
	SupplyArea          *float64        `gorm:"column:supply_area" json:"supplyArea"`
	PropertyType        PropertyType    `gorm:"column:property_type;type:varchar(16);not null;index" json:"propertyType"`
	Floor               *int            `gorm:"column:floor" json:"floor"`
	TotalFloors         *int            `gorm:"column:total_floors" json:"totalFloors"`
	Rooms               int             `gorm:"column:rooms;not null;default:1" json:"rooms"`
	Bathrooms           int             `gorm:"column:bathrooms;not null;default:1" json:"bathrooms"`
	Direction           string          `gorm:"column:direction" json:"direction"`
	BuildYear           *int            `gorm:"column:build_year" json:"buildYear"`
	HasElevator         bool            `gorm:"column:has_elevator;not null;default:false" json:"hasElevator"`
	ParkingSpaces       int             `gorm:"column:parking_spaces;not null;default:0" json:"parkingSpaces"`
	HeatingType         string          `gorm:"column:heating_type" json:"heatingType"`
	AvailableFrom       *datatypes.Date `gorm:"column:available_from" json:"availableFrom"`
	MaintenanceFee      *int64          `gorm:"column:maintenance_fee" json:"maintenanceFee"`
	MaintenanceIncludes string          `gorm:"column:maintenance_includes" json:"maintenanceIncludes"`
	Summary             string          `gorm:"column:summary" json:"summary"`
	Description         string          `gorm:"column:description;type:text" json:"description"`
	ApprovalNo          string          `gorm:"column:approval_no" json:"approvalNo"`
	ConfirmDate         *datatypes.Date `gorm:"column:confirm_date" json:"confirmDate"`
	Status              Status          `gorm:"column:status;type:varchar(16);not null;default:'AVAILABLE';index" json:"status"`
	UserID              uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	CreatedAt           time.Time       `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"column:updated_at" json:"updatedAt"`

	Commercial *CommercialInfo `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"commercialInfo,omitempty"`
	Land       *LandInfo       `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"landInfo,omitempty"`
	Office     *OfficeInfo     `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"officeInfo,omitempty"`
	Factory    *FactoryInfo    `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"factoryInfo,omitempty"`
	Agent      *AgentInfo      `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"agentInfo,omitempty"`
	Images     []Image         `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}

// Extension returns the loaded extension record matching the current
// property type, or nil. Stale records of other kinds are ignored.
func (p *Property) Extension() Extension {
	switch p.PropertyType {
	case TypeCommercial:
		if p.Commercial != nil {
			return p.Commercial
		}
	case TypeLand:
		if p.Land != nil {
			return p.Land
		}
	case TypeOffice:
		if p.Office != nil {
			return p.Office
		}
	case TypeFactory:
		if p.Factory != nil {
			return p.Factory
		}
	}
	return nil
}

// MainImage returns the image flagged as main, or nil.
func (p *Property) MainImage() *Image {
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	return nil
}
