// Package bulk converts between property records and spreadsheets.
package bulk

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/imaijo201-star/real-estate-mg/internal/application/properties"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	ExportSheet   = "매물목록"
	TemplateSheet = "매물등록템플릿"
	TemplateName  = "매물등록_템플릿.xlsx"
)

var exportHeaders = []string{
	"번호", "제목", "건물유형", "거래유형", "주소", "상세주소", "전용면적", "공급면적",
	"매매가", "보증금", "월세", "층수", "전체층수", "방개수", "욕실개수", "향",
	"준공년도", "엘리베이터(Y/N)", "주차", "난방", "관리비", "한줄소개", "설명",
	"상태", "등록일",
}

var templateHeaders = []string{
	"제목", "건물유형", "거래유형", "주소", "상세주소", "전용면적",
	"매매가", "보증금", "월세", "층수", "방개수", "욕실개수",
}

var templateExample = []interface{}{
	"강남 래미안 아파트 34평", "APARTMENT", "SALE", "서울시 강남구 역삼동", "101동 1001호", 84.5,
	50000, 0, 0, 10, 3, 2,
}

var templateWidths = []float64{20, 12, 10, 25, 15, 10, 10, 10, 10, 8, 8, 8}

type Service struct {
	DB         *gorm.DB
	Properties *properties.Service
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ExportName is the download file name for an export made now.
func (s *Service) ExportName() string {
	return fmt.Sprintf("%s_%s.xlsx", ExportSheet, s.now().Format("2006-01-02"))
}

// ExportAll writes every property matching f to a workbook.
func (s *Service) ExportAll(ctx context.Context, f properties.Filter) (*bytes.Buffer, error) {
	items, err := s.Properties.All(ctx, f)
	if err != nil {
		return nil, err
	}
	return Export(items)
}

// Export writes one row per property. Enum columns hold codes so the file
// can be imported again.
func Export(items []domain.Property) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, ExportSheet, 1, toRow(exportHeaders)); err != nil {
		return nil, err
	}
	for i, p := range items {
		if err := writeRow(f, ExportSheet, i+2, exportRow(p)); err != nil {
			return nil, err
		}
	}
	return f.WriteToBuffer()
}

// DownloadTemplate returns the bulk-registration template with one example
// row.
func DownloadTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, TemplateSheet, 1, toRow(templateHeaders)); err != nil {
		return nil, err
	}
	example := append([]interface{}(nil), templateExample...)
	if err := writeRow(f, TemplateSheet, 2, example); err != nil {
		return nil, err
	}
	for i, w := range templateWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(TemplateSheet, col, col, w); err != nil {
			return nil, err
		}
	}
	return f.WriteToBuffer()
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toRow(headers []string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

func exportRow(p domain.Property) []interface{} {
	elevator := "N"
	if p.HasElevator {
		elevator = "Y"
	}
	return []interface{}{
		p.ID,
		p.Title,
		string(p.PropertyType),
		string(p.TradeType),
		p.Address,
		p.AddressDetail,
		p.ExclusiveArea,
		orEmpty(p.SupplyArea),
		orEmpty(p.SalePrice),
		orEmpty(p.Deposit),
		orEmpty(p.MonthlyRent),
		orEmpty(p.Floor),
		orEmpty(p.TotalFloors),
		p.Rooms,
		p.Bathrooms,
		p.Direction,
		orEmpty(p.BuildYear),
		elevator,
		p.ParkingSpaces,
		p.HeatingType,
		orEmpty(p.MaintenanceFee),
		p.Summary,
		p.Description,
		string(p.Status),
		p.CreatedAt.Format("2006-01-02"),
	}
}

func orEmpty[T int | int64 | float64](v *T) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
