package properties

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/imaijo201-star/real-estate-mg/internal/application/images"
	propsvc "github.com/imaijo201-star/real-estate-mg/internal/application/properties"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// form reads a multipart or urlencoded body. The first bad value is kept
// in err so parsing can run straight through.
type form struct {
	c   *fiber.Ctx
	err error
}

func (f *form) values(key string) []string {
	if mf, err := f.c.MultipartForm(); err == nil {
		return mf.Value[key]
	}
	var out []string
	for _, v := range f.c.Request().PostArgs().PeekMulti(key) {
		out = append(out, string(v))
	}
	return out
}

func (f *form) has(key string) bool {
	return len(f.values(key)) > 0
}

func (f *form) str(key string) string {
	return strings.TrimSpace(f.c.FormValue(key))
}

func (f *form) fail(key, label string) {
	if f.err == nil {
		f.err = domain.Invalid(key, "%s 값이 올바르지 않습니다.", label)
	}
}

func (f *form) float(key, label string) *float64 {
	s := strings.ReplaceAll(f.str(key), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.fail(key, label)
		return nil
	}
	return &v
}

// whole rounds the number at key and checks it fits in [lo, hi].
func (f *form) whole(key, label string, lo, hi float64) *float64 {
	v := f.float(key, label)
	if v == nil {
		return nil
	}
	r := math.Round(*v)
	if r < lo || r > hi {
		f.fail(key, label)
		return nil
	}
	return &r
}

func (f *form) int64(key, label string) *int64 {
	// float64(math.MaxInt64) rounds up to 2^63, so the bound is exclusive.
	v := f.whole(key, label, math.MinInt64, math.Nextafter(math.MaxInt64, 0))
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func (f *form) int(key, label string) *int {
	v := f.whole(key, label, math.MinInt32, math.MaxInt32)
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func (f *form) intOr(key, label string, def int) int {
	if v := f.int(key, label); v != nil {
		return *v
	}
	return def
}

func (f *form) bool(key string) bool {
	switch strings.ToLower(f.str(key)) {
	case "true", "on", "1", "y":
		return true
	}
	return false
}

func (f *form) date(key, label string) *time.Time {
	s := f.str(key)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		f.fail(key, label)
		return nil
	}
	return &t
}

// parseInput maps the property form to a service input.
func parseInput(c *fiber.Ctx) (propsvc.Input, error) {
	f := &form{c: c}
	in := propsvc.Input{
		Title:               f.str("title"),
		TradeType:           domain.TradeType(f.str("tradeType")),
		SalePrice:           f.int64("salePrice", "매매가"),
		Deposit:             f.int64("deposit", "보증금"),
		MonthlyRent:         f.int64("monthlyRent", "월세"),
		Address:             f.str("address"),
		AddressDetail:       f.str("addressDetail"),
		SupplyArea:          f.float("supplyArea", "공급면적"),
		PropertyType:        domain.PropertyType(f.str("propertyType")),
		Floor:               f.int("floor", "층수"),
		TotalFloors:         f.int("totalFloors", "전체층수"),
		Rooms:               f.intOr("rooms", "방개수", 1),
		Bathrooms:           f.intOr("bathrooms", "욕실개수", 1),
		Direction:           f.str("direction"),
		BuildYear:           f.int("buildYear", "준공년도"),
		HasElevator:         f.bool("hasElevator"),
		ParkingSpaces:       f.intOr("parkingSpaces", "주차", 0),
		HeatingType:         f.str("heatingType"),
		AvailableFrom:       f.date("availableFrom", "입주가능일"),
		MaintenanceFee:      f.int64("maintenanceFee", "관리비"),
		MaintenanceIncludes: f.str("maintenanceIncludes"),
		Summary:             f.str("summary"),
		Description:         f.str("description"),
		ApprovalNo:          f.str("approvalNo"),
		ConfirmDate:         f.date("confirmDate", "확인일자"),
		Status:              domain.Status(f.str("status")),
	}
	if area := f.float("exclusiveArea", "전용면적"); area != nil {
		in.ExclusiveArea = *area
	}
	in.Extension = parseExtension(f, in.PropertyType)
	in.Agent = &domain.AgentInfo{
		OfficeName:     f.str("officeName"),
		Phone:          f.str("agentPhone"),
		RegistrationNo: f.str("registrationNo"),
	}
	in.Images = parseImages(f)
	in.ImagesTouched = f.has("imageUrls") || f.bool("imagesTouched")
	return in, f.err
}

func parseExtension(f *form, t domain.PropertyType) domain.Extension {
	switch t {
	case domain.TypeCommercial:
		return &domain.CommercialInfo{
			PremiumFee:            f.int64("premiumFee", "권리금"),
			BusinessRestrictions:  f.str("businessRestrictions"),
			RecommendedBusinesses: f.str("recommendedBusinesses"),
			MonthlyRevenue:        f.int64("monthlyRevenue", "월매출"),
			IsOperating:           f.bool("isOperating"),
			IsTransfer:            f.bool("isTransfer"),
		}
	case domain.TypeLand:
		return &domain.LandInfo{
			LandCategory:          f.str("landCategory"),
			Zoning:                f.str("zoning"),
			RoadFacing:            f.str("roadFacing"),
			Topography:            f.str("topography"),
			BuildingCoverageRatio: f.float("buildingCoverageRatio", "건폐율"),
			FloorAreaRatio:        f.float("floorAreaRatio", "용적률"),
		}
	case domain.TypeOffice:
		return &domain.OfficeInfo{
			MeetingRooms:   f.int("meetingRooms", "회의실"),
			DeskCapacity:   f.int("deskCapacity", "수용인원"),
			InternetSpeed:  f.str("internetSpeed"),
			HasSecurity:    f.bool("hasSecurity"),
			Is24HourAccess: f.bool("is24HourAccess"),
		}
	case domain.TypeFactory:
		return &domain.FactoryInfo{
			CeilingHeight:          f.float("ceilingHeight", "층고"),
			ElectricCapacity:       f.float("electricCapacity", "전력"),
			WaterCapacity:          f.float("waterCapacity", "용수"),
			HasCargoElevator:       f.bool("hasCargoElevator"),
			HasCrane:               f.bool("hasCrane"),
			HasEnvironmentalPermit: f.bool("hasEnvironmentalPermit"),
		}
	}
	return nil
}

// parseImages pairs imageUrls with imageIds and imageOrders by position.
// An empty or missing id marks a new image; a missing order falls back to
// the position.
func parseImages(f *form) []images.Desired {
	urls := f.values("imageUrls")
	ids := f.values("imageIds")
	orders := f.values("imageOrders")
	main := -1
	if s := f.str("mainImageIndex"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			main = n
		}
	}

	out := make([]images.Desired, 0, len(urls))
	for i, u := range urls {
		d := images.Desired{URL: strings.TrimSpace(u), Order: i, IsMain: i == main}
		if i < len(ids) && ids[i] != "" {
			id, err := strconv.ParseUint(ids[i], 10, 64)
			if err != nil {
				f.fail("imageIds", "이미지 ID")
			}
			d.ID = uint(id)
		}
		if i < len(orders) {
			if n, err := strconv.Atoi(orders[i]); err == nil {
				d.Order = n
			}
		}
		out = append(out, d)
	}
	return out
}
