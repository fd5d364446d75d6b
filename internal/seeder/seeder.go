// Package seeder chứa các pipeline sinh dữ liệu: addresses, routes, staff,
// layout, trips. Mỗi pipeline đọc input + output cũ, resolve / allocate id,
// và chỉ append những dòng mới — chạy lại với input không đổi thì không
// thêm dòng nào.
package seeder

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/busline-seeder/app/config"
	"github.com/busline-seeder/internal/csvstore"
	"github.com/busline-seeder/internal/refindex"
	"github.com/busline-seeder/internal/resolver"
)

// TimeLayout format timestamp của mọi cột created_at / departure_time.
const TimeLayout = "2006-01-02 15:04:05"

// nullMarker giá trị NULL trong các bảng semicolon (load thẳng vào MySQL).
const nullMarker = `\N`

// Input / output file names.
const (
	FileBenxeAddresses     = "benxe_addresses.csv"
	FileBenxeAddressesWard = "benxe_addresses_with_ward_ids.csv"
	FileBenxeTickets       = "benxe_tickets.csv"
	FileNhaxeTickets       = "nhaxe_tickets.csv"

	FileAddress   = "address.csv"
	FileStation   = "station.csv"
	FileRoute     = "route.csv"
	FileStaff     = "staff.csv"
	FileDriver    = "driver.csv"
	FileAttendant = "attendant.csv"
	FileVehicle   = "vehicle.csv"
	FileSeatMap   = "seat_map.csv"
	FileFloor     = "floor.csv"
	FileSeat      = "seat.csv"
	FileTrip      = "trip.csv"
)

// Output headers — thứ tự cột phải giữ nguyên giữa các lần chạy.
var (
	addressHeaders = []string{"id", "street_address", "latitude", "longitude", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by", "ward_id"}
	stationHeaders = []string{"id", "name", "phone_number", "description", "active", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by", "address_id", "station_img_id"}
	routeHeaders   = []string{"id", "route_code", "distance_km", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by", "origin_id", "destination_id"}

	staffHeaders     = []string{"id", "name", "age", "gender", "phone_number", "status", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}
	driverHeaders    = []string{"id", "staff_id", "license_class", "years_experience", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}
	attendantHeaders = []string{"id", "staff_id", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}
	vehicleHeaders   = []string{"id", "seat_map_id", "type", "type_factor", "plate_number", "brand", "description", "status", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}

	seatMapHeaders = []string{"id", "name", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}
	floorHeaders   = []string{"id", "seat_map_id", "floor_no", "price_factor_floor", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}
	seatHeaders    = []string{"id", "floor_id", "seat_no", "row_no", "col_no", "price_factor", "seat_type", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}

	tripHeaders = []string{"id", "route_id", "vehicle_id", "driver_id", "attendant_id", "trip_code", "departure_time", "arrival_time", "base_fare", "created_at", "updated_at", "is_deleted", "deleted_at", "deleted_by"}
)

// Summary đếm kết quả một pipeline, in ra cuối lần chạy.
type Summary struct {
	Read     int
	Matched  int
	Skipped  int
	Appended int
}

func (s Summary) Log(log *zap.Logger, pipeline string) {
	log.Info("pipeline finished",
		zap.String("pipeline", pipeline),
		zap.Int("read", s.Read),
		zap.Int("matched", s.Matched),
		zap.Int("skipped", s.Skipped),
		zap.Int("appended", s.Appended))
}

// Seeder giữ dependencies chung của mọi pipeline, thread tường minh —
// không có global state.
type Seeder struct {
	cfg *config.Config
	ix  *refindex.Index
	res *resolver.Resolver
	rng *rand.Rand
	log *zap.Logger
	now func() time.Time
}

func New(cfg *config.Config, ix *refindex.Index, res *resolver.Resolver, rng *rand.Rand, log *zap.Logger) *Seeder {
	return &Seeder{cfg: cfg, ix: ix, res: res, rng: rng, log: log, now: time.Now}
}

// stamp điền 5 cột audit chung. deletedBy là \N ở các bảng semicolon,
// rỗng ở các bảng comma.
func (s *Seeder) stamp(row csvstore.Row, deletedBy string) csvstore.Row {
	row["created_at"] = s.now().Format(TimeLayout)
	row["updated_at"] = ""
	row["is_deleted"] = "false"
	row["deleted_at"] = ""
	row["deleted_by"] = deletedBy
	return row
}

// readPipeLines đọc file pipe-delimited headerless của scraper. Dòng scrape
// có thể chứa quote lệch nên không đi qua encoding/csv; mỗi dòng split
// trên "|" và trim từng field.
func readPipeLines(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var records [][]string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		records = append(records, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
