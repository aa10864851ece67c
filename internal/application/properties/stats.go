package properties

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"gorm.io/gorm"
)

// Stats summarises the catalogue for the dashboard.
type Stats struct {
	Total            int64                   `json:"total"`
	ByStatus         map[domain.Status]int64 `json:"byStatus"`
	ByType           []TypeCount             `json:"byType"`
	NewThisMonth     int64                   `json:"newThisMonth"`
	NewLastMonth     int64                   `json:"newLastMonth"`
	GrowthRate       float64                 `json:"growthRate"`
	AverageSalePrice int64                   `json:"averageSalePrice"`
	CompletionRate   float64                 `json:"completionRate"`
	TopAddresses     []AddressCount          `json:"topAddresses"`
	Recent           []domain.Property       `json:"recent"`
}

type TypeCount struct {
	PropertyType domain.PropertyType `json:"propertyType"`
	Label        string              `json:"label"`
	Count        int64               `json:"count"`
}

type AddressCount struct {
	Address string `json:"address"`
	Count   int64  `json:"count"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// AggregateStats computes dashboard figures relative to the current time.
// Growth compares properties created this calendar month with last month;
// with no properties last month it is 100 when any were created this month.
func (s *Service) AggregateStats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	model := func() *gorm.DB { return db.Model(&domain.Property{}) }
	st := &Stats{ByStatus: make(map[domain.Status]int64, len(domain.Statuses))}

	if err := model().Count(&st.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	var statusRows []struct {
		Status domain.Status
		Count  int64
	}
	if err := model().Select("status, COUNT(*) AS count").Group("status").Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	for _, status := range domain.Statuses {
		st.ByStatus[status] = 0
	}
	for _, r := range statusRows {
		st.ByStatus[r.Status] = r.Count
	}

	var typeRows []struct {
		PropertyType domain.PropertyType
		Count        int64
	}
	if err := model().Select("property_type, COUNT(*) AS count").Group("property_type").
		Order("count DESC, property_type ASC").Limit(5).Scan(&typeRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count by type: %w", err)
	}
	st.ByType = make([]TypeCount, len(typeRows))
	for i, r := range typeRows {
		st.ByType[i] = TypeCount{PropertyType: r.PropertyType, Label: r.PropertyType.Label(), Count: r.Count}
	}

	now := s.now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)
	if err := model().Where("created_at >= ?", thisMonth).Count(&st.NewThisMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count this month: %w", err)
	}
	if err := model().Where("created_at >= ? AND created_at < ?", lastMonth, thisMonth).Count(&st.NewLastMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count last month: %w", err)
	}
	switch {
	case st.NewLastMonth > 0:
		st.GrowthRate = round1(float64(st.NewThisMonth-st.NewLastMonth) / float64(st.NewLastMonth) * 100)
	case st.NewThisMonth > 0:
		st.GrowthRate = 100
	}

	var avg sql.NullFloat64
	if err := model().Select("AVG(sale_price)").Where("sale_price IS NOT NULL").Row().Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to average sale price: %w", err)
	}
	if avg.Valid {
		st.AverageSalePrice = int64(math.Round(avg.Float64))
	}

	if st.Total > 0 {
		st.CompletionRate = round1(float64(st.ByStatus[domain.StatusSold]) / float64(st.Total) * 100)
	}

	st.TopAddresses = []AddressCount{}
	if err := model().Select("address, COUNT(*) AS count").Group("address").
		Order("count DESC, address ASC").Limit(3).Scan(&st.TopAddresses).Error; err != nil {
		return nil, fmt.Errorf("failed to rank addresses: %w", err)
	}

	st.Recent = []domain.Property{}
	if err := db.Preload("Images", "is_main = ?", true).
		Order("created_at DESC, id DESC").Limit(6).Find(&st.Recent).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent properties: %w", err)
	}
	return st, nil
}
