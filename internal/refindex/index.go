// Package refindex xây các map tra cứu in-memory từ reference data: tỉnh /
// quận huyện / phường xã (gazetteer files) và bến xe / địa chỉ (output của
// pipeline addresses). Mỗi lần chạy build lại một lần duy nhất, sau đó
// read-only — resolver chỉ đọc, không ghi.
package refindex

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/busline-seeder/app/models"
	"github.com/busline-seeder/internal/csvstore"
	"github.com/busline-seeder/internal/normalizer"
)

// Layout cột của gazetteer files (province.csv, district.csv, ward.csv):
// id ở cột 0, tên ở cột 2, parent id ở cột cuối (13). Các cột giữa là
// metadata + stamp, index không cần đến.
const (
	colID     = 0
	colName   = 2
	colParent = 13
)

// StationDescPrefix sentinel trong cột description của station.csv, phần
// sau prefix là tên tỉnh của bến.
const StationDescPrefix = "Station in "

// Gazetteer headers — converter ghi ra đúng thứ tự này, index đọc theo vị trí
// nên file ngoài chỉ cần giữ đúng layout cột.
var (
	ProvinceHeaders = []string{"id", "code", "name", "normalized_name", "division_type", "codename", "active", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by", "description", "phone_code"}
	DistrictHeaders = []string{"id", "code", "name", "normalized_name", "division_type", "codename", "active", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by", "description", "province_id"}
	WardHeaders     = []string{"id", "code", "name", "normalized_name", "division_type", "codename", "active", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by", "description", "district_id"}
)

// Index toàn bộ reference data của một lần chạy.
type Index struct {
	Provinces []*models.Province
	Districts []*models.District
	Wards     []*models.Ward

	ProvinceByNorm map[string]*models.Province
	DistrictByNorm map[string]*models.District
	WardByNorm     map[string]*models.Ward

	// Back-refs theo parent id, giữ nguyên thứ tự input (thứ tự quét của
	// cascade phụ thuộc vào đây).
	DistrictsByProvince map[int64][]*models.District
	WardsByDistrict     map[int64][]*models.Ward

	// Station / address reference (từ output của pipeline addresses).
	// StationIDs giữ thứ tự file — các bước quét tuyến tính của resolver
	// phải deterministic.
	StationIDs         []int64
	StationIDByNorm    map[string]int64
	StationNameByID    map[int64]string
	AddressIDByStation map[int64]int64
	AddressTextByID    map[int64]string

	// Theo sentinel "Station in <Province>": tất cả bến trong tỉnh, và bến
	// mặc định (bến đầu tiên gặp, theo thứ tự file). SentinelProvinces là
	// danh sách key theo thứ tự gặp lần đầu.
	StationsByProvince       map[string][]int64
	DefaultStationByProvince map[string]int64
	SentinelProvinces        []string

	SkippedRows int
}

func newIndex() *Index {
	return &Index{
		ProvinceByNorm:           make(map[string]*models.Province),
		DistrictByNorm:           make(map[string]*models.District),
		WardByNorm:               make(map[string]*models.Ward),
		DistrictsByProvince:      make(map[int64][]*models.District),
		WardsByDistrict:          make(map[int64][]*models.Ward),
		StationIDByNorm:          make(map[string]int64),
		StationNameByID:          make(map[int64]string),
		AddressIDByStation:       make(map[int64]int64),
		AddressTextByID:          make(map[int64]string),
		StationsByProvince:       make(map[string][]int64),
		DefaultStationByProvince: make(map[string]int64),
	}
}

// Load build index từ 3 gazetteer files trong dir. Thiếu file là fatal —
// không có chế độ chạy thiếu reference data.
func Load(dir string, log *zap.Logger) (*Index, error) {
	ix := newIndex()

	provinces, err := csvstore.ReadTable(filepath.Join(dir, "province.csv"), csvstore.Semicolon)
	if err != nil {
		return nil, fmt.Errorf("failed to load province reference: %w", err)
	}
	districts, err := csvstore.ReadTable(filepath.Join(dir, "district.csv"), csvstore.Semicolon)
	if err != nil {
		return nil, fmt.Errorf("failed to load district reference: %w", err)
	}
	wards, err := csvstore.ReadTable(filepath.Join(dir, "ward.csv"), csvstore.Semicolon)
	if err != nil {
		return nil, fmt.Errorf("failed to load ward reference: %w", err)
	}

	ix.addProvinces(provinces, log)
	ix.addDistricts(districts, log)
	ix.addWards(wards, log)

	log.Info("reference index built",
		zap.Int("provinces", len(ix.Provinces)),
		zap.Int("districts", len(ix.Districts)),
		zap.Int("wards", len(ix.Wards)),
		zap.Int("skipped_rows", ix.SkippedRows))
	return ix, nil
}

func (ix *Index) addProvinces(t *csvstore.Table, log *zap.Logger) {
	for _, row := range t.Rows {
		id, ok := ix.rowID(t, row, "province", log)
		if !ok {
			continue
		}
		name := t.Col(row, colName)
		p := &models.Province{
			ID:             id,
			Code:           t.Col(row, 1),
			Name:           name,
			NormalizedName: normalizer.Normalize(name),
			CodeName:       t.Col(row, 5),
		}
		ix.Provinces = append(ix.Provinces, p)
		// Trùng normalized name: dòng sau đè dòng trước. Known limitation,
		// giữ nguyên hành vi thay vì tự sửa.
		ix.ProvinceByNorm[p.NormalizedName] = p
	}
}

func (ix *Index) addDistricts(t *csvstore.Table, log *zap.Logger) {
	for _, row := range t.Rows {
		id, ok := ix.rowID(t, row, "district", log)
		if !ok {
			continue
		}
		parent, err := strconv.ParseInt(strings.TrimSpace(t.Col(row, colParent)), 10, 64)
		if err != nil {
			ix.skip("district", t.Col(row, colName), log)
			continue
		}
		name := t.Col(row, colName)
		d := &models.District{
			ID:             id,
			Code:           t.Col(row, 1),
			Name:           name,
			NormalizedName: normalizer.Normalize(name),
			CodeName:       t.Col(row, 5),
			ProvinceID:     parent,
		}
		ix.Districts = append(ix.Districts, d)
		ix.DistrictByNorm[d.NormalizedName] = d
		ix.DistrictsByProvince[parent] = append(ix.DistrictsByProvince[parent], d)
	}
}

func (ix *Index) addWards(t *csvstore.Table, log *zap.Logger) {
	for _, row := range t.Rows {
		id, ok := ix.rowID(t, row, "ward", log)
		if !ok {
			continue
		}
		parent, err := strconv.ParseInt(strings.TrimSpace(t.Col(row, colParent)), 10, 64)
		if err != nil {
			ix.skip("ward", t.Col(row, colName), log)
			continue
		}
		name := t.Col(row, colName)
		w := &models.Ward{
			ID:             id,
			Code:           t.Col(row, 1),
			Name:           name,
			NormalizedName: normalizer.Normalize(name),
			CodeName:       t.Col(row, 5),
			DistrictID:     parent,
		}
		ix.Wards = append(ix.Wards, w)
		ix.WardByNorm[w.NormalizedName] = w
		ix.WardsByDistrict[parent] = append(ix.WardsByDistrict[parent], w)
	}
}

// AddStations nạp station.csv + address.csv (output của pipeline addresses)
// vào index để cascade resolve station dùng được. Gọi sau Load; bảng rỗng
// là hợp lệ (chưa chạy addresses lần nào).
func (ix *Index) AddStations(stations, addresses *csvstore.Table, log *zap.Logger) {
	for _, row := range addresses.Rows {
		id, err := strconv.ParseInt(strings.TrimSpace(row["id"]), 10, 64)
		if err != nil {
			ix.skip("address", row["street_address"], log)
			continue
		}
		ix.AddressTextByID[id] = row["street_address"]
	}

	for _, row := range stations.Rows {
		id, err := strconv.ParseInt(strings.TrimSpace(row["id"]), 10, 64)
		if err != nil {
			ix.skip("station", row["name"], log)
			continue
		}
		name := row["name"]
		ix.StationIDs = append(ix.StationIDs, id)
		ix.StationNameByID[id] = name
		ix.StationIDByNorm[normalizer.Normalize(name)] = id

		if addrID, err := strconv.ParseInt(strings.TrimSpace(row["address_id"]), 10, 64); err == nil {
			ix.AddressIDByStation[id] = addrID
		}

		desc := row["description"]
		if !strings.HasPrefix(desc, StationDescPrefix) {
			continue
		}
		provNorm := normalizer.Normalize(strings.TrimPrefix(desc, StationDescPrefix))
		if provNorm == "" {
			continue
		}
		ix.StationsByProvince[provNorm] = append(ix.StationsByProvince[provNorm], id)
		// Bến mặc định của tỉnh: first-seen wins, theo thứ tự file.
		if _, ok := ix.DefaultStationByProvince[provNorm]; !ok {
			ix.DefaultStationByProvince[provNorm] = id
			ix.SentinelProvinces = append(ix.SentinelProvinces, provNorm)
		}
	}

	log.Debug("station reference attached",
		zap.Int("stations", len(ix.StationNameByID)),
		zap.Int("addresses", len(ix.AddressTextByID)),
		zap.Int("provinces_with_station", len(ix.StationsByProvince)))
}

// StationAddressText text địa chỉ đã resolve của một bến ("" nếu chưa có).
func (ix *Index) StationAddressText(stationID int64) string {
	addrID, ok := ix.AddressIDByStation[stationID]
	if !ok {
		return ""
	}
	return ix.AddressTextByID[addrID]
}

func (ix *Index) rowID(t *csvstore.Table, row csvstore.Row, kind string, log *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(t.Col(row, colID)), 10, 64)
	if err != nil {
		ix.skip(kind, t.Col(row, colName), log)
		return 0, false
	}
	return id, true
}

func (ix *Index) skip(kind, name string, log *zap.Logger) {
	ix.SkippedRows++
	log.Debug("skipping malformed reference row", zap.String("kind", kind), zap.String("name", name))
}
