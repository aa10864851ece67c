package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/imaijo201-star/real-estate-mg/internal/application/properties"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 100

// Result reports an import. Skipped counts duplicate rows.
type Result struct {
	Count   int `json:"count"`
	Skipped int `json:"skipped"`
}

type columns struct {
	title, tradeType, salePrice, deposit, monthlyRent, address, addressDetail   int
	exclusiveArea, supplyArea, propertyType, floor, totalFloors, rooms          int
	bathrooms, direction, buildYear, elevator, parking, heating, maintenanceFee int
	summary, description                                                        int
}

func headerIndex(headers []string, candidates ...string) int {
	for i, h := range headers {
		hl := strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if hl == strings.ToLower(c) {
				return i
			}
		}
	}
	return -1
}

func resolveColumns(h []string) columns {
	return columns{
		title:          headerIndex(h, "제목", "매물명"),
		tradeType:      headerIndex(h, "거래유형"),
		salePrice:      headerIndex(h, "매매가"),
		deposit:        headerIndex(h, "보증금"),
		monthlyRent:    headerIndex(h, "월세"),
		address:        headerIndex(h, "주소"),
		addressDetail:  headerIndex(h, "상세주소"),
		exclusiveArea:  headerIndex(h, "전용면적", "면적"),
		supplyArea:     headerIndex(h, "공급면적"),
		propertyType:   headerIndex(h, "건물유형", "유형"),
		floor:          headerIndex(h, "층수"),
		totalFloors:    headerIndex(h, "전체층수"),
		rooms:          headerIndex(h, "방개수"),
		bathrooms:      headerIndex(h, "욕실개수"),
		direction:      headerIndex(h, "향"),
		buildYear:      headerIndex(h, "준공년도"),
		elevator:       headerIndex(h, "엘리베이터", "엘리베이터(Y/N)"),
		parking:        headerIndex(h, "주차"),
		heating:        headerIndex(h, "난방"),
		maintenanceFee: headerIndex(h, "관리비"),
		summary:        headerIndex(h, "한줄소개"),
		description:    headerIndex(h, "설명", "상세설명"),
	}
}

type record []string

func (r record) text(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

func (r record) blank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r record) number(i int, label string) (*float64, error) {
	s := strings.ReplaceAll(r.text(i), ",", "")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s 값이 숫자가 아닙니다: %s", label, r.text(i))
	}
	return &v, nil
}

// whole rounds the number in column i and checks it fits in [lo, hi].
func (r record) whole(i int, label string, lo, hi float64) (*float64, error) {
	v, err := r.number(i, label)
	if v == nil || err != nil {
		return nil, err
	}
	n := math.Round(*v)
	if n < lo || n > hi {
		return nil, fmt.Errorf("%s 값이 범위를 벗어났습니다: %s", label, r.text(i))
	}
	return &n, nil
}

func (r record) amount(i int, label string) (*int64, error) {
	v, err := r.whole(i, label, math.MinInt64, math.Nextafter(math.MaxInt64, 0))
	if v == nil || err != nil {
		return nil, err
	}
	n := int64(*v)
	return &n, nil
}

func (r record) count(i int, label string) (*int, error) {
	v, err := r.whole(i, label, math.MinInt32, math.MaxInt32)
	if v == nil || err != nil {
		return nil, err
	}
	n := int(*v)
	return &n, nil
}

func (r record) flag(i int) bool {
	switch strings.ToLower(r.text(i)) {
	case "y", "예", "true", "1":
		return true
	}
	return false
}

func valueOr(v *int, def int) int {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

// parseRow maps one spreadsheet row to a property. Errors are plain
// messages; the caller attaches the row number.
func parseRow(r record, c columns) (*domain.Property, error) {
	p := &domain.Property{
		Title:         r.text(c.title),
		Address:       r.text(c.address),
		AddressDetail: r.text(c.addressDetail),
		Direction:     r.text(c.direction),
		HeatingType:   r.text(c.heating),
		Summary:       r.text(c.summary),
		Description:   r.text(c.description),
		HasElevator:   r.flag(c.elevator),
		Status:        domain.StatusAvailable,
	}
	if p.Title == "" {
		return nil, errors.New("제목이 없습니다.")
	}
	if p.Address == "" {
		return nil, errors.New("주소가 없습니다.")
	}
	area, err := r.number(c.exclusiveArea, "전용면적")
	if err != nil {
		return nil, err
	}
	if area == nil || *area <= 0 {
		return nil, errors.New("전용면적은 0보다 커야 합니다.")
	}
	p.ExclusiveArea = *area

	p.TradeType = domain.TradeSale
	if s := r.text(c.tradeType); s != "" {
		t, ok := domain.ParseTradeType(s)
		if !ok {
			return nil, fmt.Errorf("알 수 없는 거래유형입니다: %s", s)
		}
		p.TradeType = t
	}
	p.PropertyType = domain.TypeApartment
	if s := r.text(c.propertyType); s != "" {
		t, ok := domain.ParsePropertyType(s)
		if !ok {
			return nil, fmt.Errorf("알 수 없는 건물유형입니다: %s", s)
		}
		p.PropertyType = t
	}

	if p.SalePrice, err = r.amount(c.salePrice, "매매가"); err != nil {
		return nil, err
	}
	if p.Deposit, err = r.amount(c.deposit, "보증금"); err != nil {
		return nil, err
	}
	if p.MonthlyRent, err = r.amount(c.monthlyRent, "월세"); err != nil {
		return nil, err
	}
	if p.MaintenanceFee, err = r.amount(c.maintenanceFee, "관리비"); err != nil {
		return nil, err
	}
	if p.SupplyArea, err = r.number(c.supplyArea, "공급면적"); err != nil {
		return nil, err
	}
	if p.Floor, err = r.count(c.floor, "층수"); err != nil {
		return nil, err
	}
	if p.TotalFloors, err = r.count(c.totalFloors, "전체층수"); err != nil {
		return nil, err
	}
	if p.BuildYear, err = r.count(c.buildYear, "준공년도"); err != nil {
		return nil, err
	}
	rooms, err := r.count(c.rooms, "방개수")
	if err != nil {
		return nil, err
	}
	bathrooms, err := r.count(c.bathrooms, "욕실개수")
	if err != nil {
		return nil, err
	}
	parking, err := r.count(c.parking, "주차")
	if err != nil {
		return nil, err
	}
	p.Rooms = valueOr(rooms, 1)
	p.Bathrooms = valueOr(bathrooms, 1)
	p.ParkingSpaces = valueOr(parking, 0)
	return p, nil
}

func dedupKey(title, address string) string {
	return title + "\x00" + address
}

// ImportFromSpreadsheet reads the first sheet of an xlsx workbook and
// inserts its rows as properties owned by ownerID. The first invalid row
// aborts the whole import. Rows whose (title, address) already exists, in
// the database or earlier in the file, are skipped.
func (s *Service) ImportFromSpreadsheet(ctx context.Context, r io.Reader, ownerID uuid.UUID) (*Result, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &domain.ImportError{Message: "엑셀 파일을 읽을 수 없습니다."}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &domain.ImportError{Message: "엑셀 파일에 시트가 없습니다."}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &domain.ImportError{Message: "엑셀 파일을 읽을 수 없습니다."}
	}
	if len(rows) < 2 {
		return nil, &domain.ImportError{Message: "엑셀 파일에 데이터가 없습니다."}
	}

	cols := resolveColumns(rows[0])
	var parsed []*domain.Property
	for i, raw := range rows[1:] {
		rec := record(raw)
		if rec.blank() {
			continue
		}
		p, err := parseRow(rec, cols)
		if err != nil {
			return nil, &domain.ImportError{Row: i + 2, Message: err.Error()}
		}
		p.UserID = ownerID
		parsed = append(parsed, p)
	}
	if len(parsed) == 0 {
		return nil, &domain.ImportError{Message: "엑셀 파일에 데이터가 없습니다."}
	}

	res := &Result{}
	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	seen, err := existingKeys(tx, parsed)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	fresh := make([]*domain.Property, 0, len(parsed))
	for _, p := range parsed {
		key := dedupKey(p.Title, p.Address)
		if seen[key] {
			res.Skipped++
			continue
		}
		seen[key] = true
		fresh = append(fresh, p)
	}

	if len(fresh) > 0 {
		if err := tx.Omit(clause.Associations).CreateInBatches(fresh, insertBatchSize).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to insert properties: %w", err)
		}
		for _, p := range fresh {
			if !p.PropertyType.HasExtension() {
				continue
			}
			if err := properties.UpsertExtension(tx, p.ID, p.PropertyType, nil); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to import properties: %w", err)
	}

	res.Count = len(fresh)
	metrics.RecordImported(res.Count)
	return res, nil
}

func existingKeys(tx *gorm.DB, parsed []*domain.Property) (map[string]bool, error) {
	titles := make([]string, 0, len(parsed))
	uniq := make(map[string]bool)
	for _, p := range parsed {
		if !uniq[p.Title] {
			uniq[p.Title] = true
			titles = append(titles, p.Title)
		}
	}

	seen := make(map[string]bool)
	for start := 0; start < len(titles); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(titles) {
			end = len(titles)
		}
		var pairs []struct {
			Title   string
			Address string
		}
		if err := tx.Model(&domain.Property{}).Select("title, address").
			Where("title IN ?", titles[start:end]).Scan(&pairs).Error; err != nil {
			return nil, fmt.Errorf("failed to check duplicates: %w", err)
		}
		for _, p := range pairs {
			seen[dedupKey(p.Title, p.Address)] = true
		}
	}
	return seen, nil
}
