package seeder

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/busline-seeder/internal/csvstore"
)

// Ticket fields theo vị trí cột của từng kênh scrape.
const (
	benxePriceIdx  = 2
	benxeDepartIdx = 5
	benxeArriveIdx = 7
	benxeDateIdx   = 11

	nhaxeDepartIdx = 4
	nhaxeArriveIdx = 6
	nhaxePriceIdx  = 9
	nhaxeDateIdx   = 11
)

const ticketDateLayout = "02-01-2006 15:04"

type ticketRec struct {
	routeText string
	depart    string
	arrive    string
	price     string
	date      string
	source    string
}

// SeedTrips sinh trip.csv từ ticket records của hai kênh.
//
// Khác các pipeline append-only, trip.csv được rewrite nguyên bảng với key
// sort tăng dần; id reuse qua registry key route|trip_code|departure nên
// rewrite không đổi id của trip đã có. Xe / tài xế / phụ xe gán random —
// không cache lựa chọn random.
func (s *Seeder) SeedTrips() (Summary, error) {
	var sum Summary

	recs, err := s.readTickets()
	if err != nil {
		return sum, err
	}

	routes, err := csvstore.ReadTableIfExists(filepath.Join(s.cfg.OutDir, FileRoute), csvstore.Semicolon, routeHeaders)
	if err != nil {
		return sum, err
	}
	if len(routes.Rows) == 0 {
		return sum, fmt.Errorf("no routes available, run the routes pipeline first")
	}
	vehicleIDs, err := s.columnValues(FileVehicle, vehicleHeaders, "id")
	if err != nil {
		return sum, err
	}
	driverIDs, err := s.columnValues(FileDriver, driverHeaders, "id")
	if err != nil {
		return sum, err
	}
	attendantIDs, err := s.columnValues(FileAttendant, attendantHeaders, "id")
	if err != nil {
		return sum, err
	}
	if len(vehicleIDs) == 0 || len(driverIDs) == 0 || len(attendantIDs) == 0 {
		return sum, fmt.Errorf("vehicle/driver/attendant data missing, run the staff pipeline first")
	}

	tripPath := filepath.Join(s.cfg.OutDir, FileTrip)
	existing, err := csvstore.ReadTableIfExists(tripPath, csvstore.Comma, tripHeaders)
	if err != nil {
		return sum, err
	}
	reg := seedRegistry(existing, s.cfg.IDs.TripFloor, func(r csvstore.Row) string {
		return tripKey(r["route_id"], r["trip_code"], r["departure_time"])
	})

	type keyedRow struct {
		key string
		row csvstore.Row
	}
	var out []keyedRow
	tripNo := 0
	for _, rec := range recs {
		sum.Read++

		departure, arrival, err := tripTimes(rec)
		if err != nil {
			sum.Skipped++
			s.log.Debug("unparseable ticket times", zap.String("source", rec.source), zap.Error(err))
			continue
		}
		route, ok := s.pickRoute(rec.routeText, routes.Rows)
		if !ok {
			sum.Skipped++
			continue
		}
		sum.Matched++

		tripNo++
		tripCode := fmt.Sprintf("TRIP%06d", tripNo)
		key := tripKey(route["id"], tripCode, departure)
		known := reg.Has(key)
		id := reg.GetOrCreate(key)
		if !known {
			sum.Appended++
		}

		out = append(out, keyedRow{key: key, row: s.stamp(csvstore.Row{
			"id":             fmt.Sprintf("%d", id),
			"route_id":       route["id"],
			"vehicle_id":     vehicleIDs[s.rng.Intn(len(vehicleIDs))],
			"driver_id":      driverIDs[s.rng.Intn(len(driverIDs))],
			"attendant_id":   attendantIDs[s.rng.Intn(len(attendantIDs))],
			"trip_code":      tripCode,
			"departure_time": departure,
			"arrival_time":   arrival,
			"base_fare":      baseFare(rec.price),
		}, "")})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].key < out[j].key })
	rows := make([]csvstore.Row, len(out))
	for i, kr := range out {
		rows[i] = kr.row
	}
	if err := csvstore.WriteTable(tripPath, csvstore.Comma, tripHeaders, rows); err != nil {
		return sum, err
	}
	return sum, nil
}

func (s *Seeder) readTickets() ([]ticketRec, error) {
	var recs []ticketRec

	benxe, err := readPipeLines(filepath.Join(s.cfg.DataDir, FileBenxeTickets))
	if err != nil {
		return nil, fmt.Errorf("failed to read benxe tickets: %w", err)
	}
	for _, rec := range benxe {
		recs = append(recs, ticketRec{
			routeText: field(rec, 0),
			price:     field(rec, benxePriceIdx),
			depart:    field(rec, benxeDepartIdx),
			arrive:    field(rec, benxeArriveIdx),
			date:      field(rec, benxeDateIdx),
			source:    "benxe",
		})
	}

	nhaxe, err := readPipeLines(filepath.Join(s.cfg.DataDir, FileNhaxeTickets))
	if err != nil {
		return nil, fmt.Errorf("failed to read nhaxe tickets: %w", err)
	}
	for _, rec := range nhaxe {
		recs = append(recs, ticketRec{
			routeText: stripSlugTag(field(rec, 0)),
			depart:    field(rec, nhaxeDepartIdx),
			arrive:    field(rec, nhaxeArriveIdx),
			price:     field(rec, nhaxePriceIdx),
			date:      field(rec, nhaxeDateIdx),
			source:    "nhaxe",
		})
	}
	return recs, nil
}

func (s *Seeder) columnValues(file string, headers []string, col string) ([]string, error) {
	t, err := csvstore.ReadTableIfExists(filepath.Join(s.cfg.OutDir, file), csvstore.Comma, headers)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range t.Rows {
		if v := r[col]; v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// pickRoute tra route theo mã sinh từ text: exact trước, rồi containment
// hai chiều, cuối cùng random một route bất kỳ.
func (s *Seeder) pickRoute(routeText string, routes []csvstore.Row) (csvstore.Row, bool) {
	if len(routes) == 0 {
		return nil, false
	}
	if origin, dest, ok := splitRouteText(routeText); ok {
		code := RouteCode(origin, dest)
		for _, r := range routes {
			if r["route_code"] == code {
				return r, true
			}
		}
		for _, r := range routes {
			if containsBidi(r["route_code"], code) {
				return r, true
			}
		}
	}
	return routes[s.rng.Intn(len(routes))], true
}

func containsBidi(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func tripKey(routeID, tripCode, departure string) string {
	if routeID == "" || tripCode == "" {
		return ""
	}
	return "trip:" + routeID + "|" + tripCode + "|" + departure
}

// tripTimes ghép date + giờ thành timestamp; chuyến qua đêm (giờ đến nhỏ
// hơn giờ đi) cộng thêm một ngày cho arrival.
func tripTimes(rec ticketRec) (departure, arrival string, err error) {
	dep, err := time.Parse(ticketDateLayout, rec.date+" "+rec.depart)
	if err != nil {
		return "", "", fmt.Errorf("bad departure: %w", err)
	}
	arr, err := time.Parse(ticketDateLayout, rec.date+" "+rec.arrive)
	if err != nil {
		return "", "", fmt.Errorf("bad arrival: %w", err)
	}
	if arr.Before(dep) {
		arr = arr.Add(24 * time.Hour)
	}
	return dep.Format(TimeLayout), arr.Format(TimeLayout), nil
}

// baseFare giữ lại phần chữ số của text giá ("250.000đ" → "250000").
func baseFare(price string) string {
	var b strings.Builder
	for _, r := range price {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
