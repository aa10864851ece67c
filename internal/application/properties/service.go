// Package properties manages property listings together with their
// type-specific extension, agent contact and image gallery.
package properties

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/imaijo201-star/real-estate-mg/internal/application/images"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageSize is the number of properties per list page.
const PageSize = 20

type Service struct {
	DB     *gorm.DB
	Images *images.Service
	Now    func() time.Time
}

// Input carries the editable fields of a property. Create ignores Status;
// on update an empty Status keeps the current one and a nil Images leaves
// the gallery alone.
type Input struct {
	Title               string
	TradeType           domain.TradeType
	SalePrice           *int64
	Deposit             *int64
	MonthlyRent         *int64
	Address             string
	AddressDetail       string
	ExclusiveArea       float64
	SupplyArea          *float64
	PropertyType        domain.PropertyType
	Floor               *int
	TotalFloors         *int
	Rooms               int
	Bathrooms           int
	Direction           string
	BuildYear           *int
	HasElevator         bool
	ParkingSpaces       int
	HeatingType         string
	AvailableFrom       *time.Time
	MaintenanceFee      *int64
	MaintenanceIncludes string
	Summary             string
	Description         string
	ApprovalNo          string
	ConfirmDate         *time.Time
	Status              domain.Status

	Extension domain.Extension
	Agent     *domain.AgentInfo
	Images    []images.Desired
	// ImagesTouched marks Images as authoritative even when empty.
	ImagesTouched bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func validate(in *Input) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Address = strings.TrimSpace(in.Address)
	if in.Title == "" {
		return domain.Invalid("title", "제목은 필수입니다.")
	}
	if in.Address == "" {
		return domain.Invalid("address", "주소는 필수입니다.")
	}
	if !finite(in.ExclusiveArea) || in.ExclusiveArea <= 0 {
		return domain.Invalid("exclusiveArea", "전용면적은 0보다 커야 합니다.")
	}
	if in.SupplyArea != nil && !finite(*in.SupplyArea) {
		return domain.Invalid("supplyArea", "공급면적 값이 올바르지 않습니다.")
	}
	if field := nonFiniteExtensionField(in.Extension); field != "" {
		return domain.Invalid(field, "%s 값이 올바르지 않습니다.", field)
	}
	if !in.TradeType.Valid() {
		return domain.Invalid("tradeType", "잘못된 거래유형입니다: %s", in.TradeType)
	}
	if !in.PropertyType.Valid() {
		return domain.Invalid("propertyType", "잘못된 건물유형입니다: %s", in.PropertyType)
	}
	if in.Status != "" && !in.Status.Valid() {
		return domain.Invalid("status", "잘못된 상태입니다: %s", in.Status)
	}
	if in.Extension != nil && in.Extension.Kind() != in.PropertyType {
		return domain.Invalid("propertyType", "%s 매물에 %s 정보를 저장할 수 없습니다.", in.PropertyType, in.Extension.Kind())
	}
	if in.Rooms <= 0 {
		in.Rooms = 1
	}
	if in.Bathrooms <= 0 {
		in.Bathrooms = 1
	}
	if in.ParkingSpaces < 0 {
		in.ParkingSpaces = 0
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// nonFiniteExtensionField names the first NaN or infinite measurement of
// ext, or returns "".
func nonFiniteExtensionField(ext domain.Extension) string {
	var fields map[string]*float64
	switch e := ext.(type) {
	case *domain.LandInfo:
		fields = map[string]*float64{
			"buildingCoverageRatio": e.BuildingCoverageRatio,
			"floorAreaRatio":        e.FloorAreaRatio,
		}
	case *domain.FactoryInfo:
		fields = map[string]*float64{
			"ceilingHeight":    e.CeilingHeight,
			"electricCapacity": e.ElectricCapacity,
			"waterCapacity":    e.WaterCapacity,
		}
	}
	for name, v := range fields {
		if v != nil && !finite(*v) {
			return name
		}
	}
	return ""
}

func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(*t)
	return &d
}

func (in *Input) property() *domain.Property {
	return &domain.Property{
		Title:               in.Title,
		TradeType:           in.TradeType,
		SalePrice:           in.SalePrice,
		Deposit:             in.Deposit,
		MonthlyRent:         in.MonthlyRent,
		Address:             in.Address,
		AddressDetail:       in.AddressDetail,
		ExclusiveArea:       in.ExclusiveArea,
		SupplyArea:          in.SupplyArea,
		PropertyType:        in.PropertyType,
		Floor:               in.Floor,
		TotalFloors:         in.TotalFloors,
		Rooms:               in.Rooms,
		Bathrooms:           in.Bathrooms,
		Direction:           in.Direction,
		BuildYear:           in.BuildYear,
		HasElevator:         in.HasElevator,
		ParkingSpaces:       in.ParkingSpaces,
		HeatingType:         in.HeatingType,
		AvailableFrom:       toDate(in.AvailableFrom),
		MaintenanceFee:      in.MaintenanceFee,
		MaintenanceIncludes: in.MaintenanceIncludes,
		Summary:             in.Summary,
		Description:         in.Description,
		ApprovalNo:          in.ApprovalNo,
		ConfirmDate:         toDate(in.ConfirmDate),
		Status:              in.Status,
	}
}

// withTx runs fn in a transaction, rolling back on error or panic.
func (s *Service) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Create stores a new property owned by ownerID with its extension, agent
// and images in one transaction, then moves staged image files into the
// property folder.
func (s *Service) Create(ctx context.Context, in Input, ownerID uuid.UUID) (*domain.Property, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validate(&in); err != nil {
		return nil, err
	}
	p := in.property()
	p.Status = domain.StatusAvailable
	p.UserID = ownerID

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("failed to create property: %w", err)
		}
		if err := UpsertExtension(tx, p.ID, p.PropertyType, in.Extension); err != nil {
			return err
		}
		if err := UpsertAgent(tx, p.ID, in.Agent); err != nil {
			return err
		}
		return s.Images.AttachTx(tx, p.ID, in.Images)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordPropertyCreated(string(p.PropertyType))

	if len(in.Images) > 0 {
		s.Images.PromoteTempFiles(ctx, p.ID, images.DesiredURLs(in.Images))
	}
	return s.Get(ctx, p.ID)
}

// Update rewrites every base field of property id, switches its extension
// to the one matching the (possibly new) type and, when image edits were
// sent, reconciles the gallery. Files of removed images are deleted after
// commit.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*domain.Property, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	var current domain.Property
	if err := s.DB.WithContext(ctx).First(&current, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &domain.NotFoundError{Resource: "property", ID: id}
		}
		return nil, err
	}
	next := in.property()
	if next.Status == "" {
		next.Status = current.Status
	}
	touched := in.ImagesTouched || len(in.Images) > 0

	var removed []string
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&current).Select("*").Omit("id", "user_id", "created_at", clause.Associations).
			Updates(next).Error; err != nil {
			return fmt.Errorf("failed to update property: %w", err)
		}
		if err := UpsertExtension(tx, id, next.PropertyType, in.Extension); err != nil {
			return err
		}
		if err := UpsertAgent(tx, id, in.Agent); err != nil {
			return err
		}
		if !touched {
			return nil
		}
		var err error
		removed, err = s.Images.ReconcileTx(tx, id, in.Images)
		return err
	})
	if err != nil {
		return nil, err
	}

	if touched {
		s.Images.DeleteFiles(ctx, removed)
		s.Images.PromoteTempFiles(ctx, id, images.DesiredURLs(in.Images))
	}
	return s.Get(ctx, id)
}

// Delete removes the image files of property id, then the property and
// everything attached to it.
func (s *Service) Delete(ctx context.Context, id uint) error {
	var p domain.Property
	if err := s.DB.WithContext(ctx).Preload("Images").First(&p, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &domain.NotFoundError{Resource: "property", ID: id}
		}
		return err
	}
	urls := make([]string, len(p.Images))
	for i, img := range p.Images {
		urls[i] = img.URL
	}
	s.Images.DeleteFiles(ctx, urls)

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&domain.Image{}).Error; err != nil {
			return fmt.Errorf("failed to delete images: %w", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&domain.AgentInfo{}).Error; err != nil {
			return fmt.Errorf("failed to delete agent info: %w", err)
		}
		for _, ext := range domain.ExtensionModels() {
			if err := tx.Where("property_id = ?", id).Delete(ext).Error; err != nil {
				return fmt.Errorf("failed to delete %s info: %w", ext.Kind(), err)
			}
		}
		if err := tx.Delete(&domain.Property{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete property: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordPropertyDeleted()
	return nil
}

// Get loads a property with its extension, agent and ordered gallery.
func (s *Service) Get(ctx context.Context, id uint) (*domain.Property, error) {
	var p domain.Property
	err := s.DB.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Agent").
		Preload("Commercial").
		Preload("Land").
		Preload("Office").
		Preload("Factory").
		First(&p, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &domain.NotFoundError{Resource: "property", ID: id}
		}
		return nil, err
	}
	return &p, nil
}

// Filter narrows List. Query matches title or address substrings.
type Filter struct {
	Query        string
	PropertyType domain.PropertyType
	Status       domain.Status
}

type Page struct {
	Items      []domain.Property `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// List returns one page of properties, newest first, each with its main
// image only.
func (s *Service) List(ctx context.Context, f Filter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	items := []domain.Property{}
	err := s.filtered(ctx, f).Preload("Images", "is_main = ?", true).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * PageSize).Limit(PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: int((total + PageSize - 1) / PageSize),
	}, nil
}

func (s *Service) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&domain.Property{})
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + term + "%"
		q = q.Where("title LIKE ? OR address LIKE ?", like, like)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// All returns every property matching f, newest first, without relations.
func (s *Service) All(ctx context.Context, f Filter) ([]domain.Property, error) {
	items := []domain.Property{}
	if err := s.filtered(ctx, f).Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	return items, nil
}
