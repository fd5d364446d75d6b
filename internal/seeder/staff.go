package seeder

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/busline-seeder/app/models"
	"github.com/busline-seeder/internal/allocator"
	"github.com/busline-seeder/internal/csvstore"
)

// Sample datasets — dữ liệu mẫu cố định, không scrape. Key tự nhiên
// (tên + sđt, biển số + hãng) giữ id ổn định giữa các lần chạy.
type sampleStaff struct {
	name    string
	age     int
	gender  string
	phone   string
	role    string // "driver" | "attendant"
	license string // chỉ driver
	years   int    // chỉ driver
}

type sampleVehicle struct {
	vtype      string
	typeFactor string
	plate      string
	brand      string
	desc       string
}

var staffSamples = []sampleStaff{
	{name: "Nguyễn Văn An", age: 45, gender: "MALE", phone: "0901234567", role: "driver", license: "E", years: 18},
	{name: "Trần Quốc Bảo", age: 38, gender: "MALE", phone: "0912345678", role: "driver", license: "E", years: 12},
	{name: "Lê Minh Cường", age: 52, gender: "MALE", phone: "0923456789", role: "driver", license: "E", years: 25},
	{name: "Phạm Hữu Đức", age: 33, gender: "MALE", phone: "0934567890", role: "driver", license: "D", years: 8},
	{name: "Hoàng Thế Em", age: 41, gender: "MALE", phone: "0945678901", role: "driver", license: "E", years: 15},
	{name: "Võ Thị Phương", age: 27, gender: "FEMALE", phone: "0956789012", role: "attendant"},
	{name: "Đặng Thu Giang", age: 31, gender: "FEMALE", phone: "0967890123", role: "attendant"},
	{name: "Bùi Văn Hùng", age: 24, gender: "MALE", phone: "0978901234", role: "attendant"},
	{name: "Đỗ Thị Kim", age: 29, gender: "FEMALE", phone: "0989012345", role: "attendant"},
	{name: "Ngô Thanh Long", age: 35, gender: "MALE", phone: "0990123456", role: "attendant"},
}

var vehicleSamples = []sampleVehicle{
	{vtype: models.VehicleStandardVIP, typeFactor: "1.200", plate: "51B-123.45", brand: "Thaco Mobihome", desc: "Giường nằm VIP 2 tầng"},
	{vtype: models.VehicleStandardVIP, typeFactor: "1.200", plate: "51B-234.56", brand: "Hyundai Universe", desc: "Giường nằm VIP 2 tầng"},
	{vtype: models.VehicleStandardNormal, typeFactor: "1.000", plate: "51B-345.67", brand: "Thaco TB120S", desc: "Giường nằm thường"},
	{vtype: models.VehicleStandardNormal, typeFactor: "1.000", plate: "29B-456.78", brand: "Hyundai Universe", desc: "Giường nằm thường"},
	{vtype: models.VehicleStandardNormal, typeFactor: "1.000", plate: "29B-567.89", brand: "Samco Felix", desc: "Ghế ngồi 45 chỗ"},
	{vtype: models.VehicleLimousine, typeFactor: "1.500", plate: "51B-678.90", brand: "Ford Transit Dcar", desc: "Limousine 9 chỗ"},
	{vtype: models.VehicleLimousine, typeFactor: "1.500", plate: "43B-789.01", brand: "Ford Transit Dcar", desc: "Limousine 9 chỗ"},
}

func staffKey(name, phone string) string {
	if name == "" {
		return ""
	}
	return "staff:" + name + ":" + phone
}

func vehicleKey(plate, brand string) string {
	if plate == "" {
		return ""
	}
	return "vehicle:" + plate + ":" + brand
}

// seatMapKey một seat map cho mỗi xe, đánh số theo thứ tự xe cùng loại.
func seatMapKey(vtype string, idx int) string {
	return fmt.Sprintf("seatmap:%s:%d", vtype, idx)
}

// SeedStaff ghi staff/driver/attendant/vehicle.csv từ sample datasets.
// Mỗi bảng có registry riêng; seat_map_id của xe được allocate ở đây (key
// theo loại xe + thứ tự) để layout pipeline dựng seat map tương ứng sau.
func (s *Seeder) SeedStaff() (Summary, error) {
	var sum Summary

	staffPath := filepath.Join(s.cfg.OutDir, FileStaff)
	driverPath := filepath.Join(s.cfg.OutDir, FileDriver)
	attendantPath := filepath.Join(s.cfg.OutDir, FileAttendant)
	vehiclePath := filepath.Join(s.cfg.OutDir, FileVehicle)

	existingStaff, err := csvstore.ReadTableIfExists(staffPath, csvstore.Comma, staffHeaders)
	if err != nil {
		return sum, err
	}
	existingDriver, err := csvstore.ReadTableIfExists(driverPath, csvstore.Comma, driverHeaders)
	if err != nil {
		return sum, err
	}
	existingAttendant, err := csvstore.ReadTableIfExists(attendantPath, csvstore.Comma, attendantHeaders)
	if err != nil {
		return sum, err
	}
	existingVehicle, err := csvstore.ReadTableIfExists(vehiclePath, csvstore.Comma, vehicleHeaders)
	if err != nil {
		return sum, err
	}

	floor := s.cfg.IDs.StaffFloor
	staffReg := seedRegistry(existingStaff, floor, func(r csvstore.Row) string {
		return staffKey(r["name"], r["phone_number"])
	})
	driverReg := seedRegistry(existingDriver, floor, func(r csvstore.Row) string {
		return "driver:" + r["staff_id"]
	})
	attendantReg := seedRegistry(existingAttendant, floor, func(r csvstore.Row) string {
		return "attendant:" + r["staff_id"]
	})
	vehicleReg := seedRegistry(existingVehicle, floor, func(r csvstore.Row) string {
		return vehicleKey(r["plate_number"], r["brand"])
	})

	// Seat map id mint cùng floor với layout pipeline; seed lại từ cột
	// seat_map_id của vehicle.csv theo đúng cách derive key bên dưới.
	seatMapReg := allocator.NewRegistry(allocator.NewSequence(s.cfg.IDs.LayoutFloor))
	perType := make(map[string]int)
	for _, r := range existingVehicle.Rows {
		vtype := r["type"]
		idx := perType[vtype]
		perType[vtype]++
		if id, err := strconv.ParseInt(r["seat_map_id"], 10, 64); err == nil {
			seatMapReg.Seed(seatMapKey(vtype, idx), id)
		}
	}

	var staffRows, driverRows, attendantRows []csvstore.Row
	for _, sample := range staffSamples {
		sum.Read++
		key := staffKey(sample.name, sample.phone)
		known := staffReg.Has(key)
		id := staffReg.GetOrCreate(key)
		sum.Matched++
		if !known {
			staffRows = append(staffRows, s.stamp(csvstore.Row{
				"id":           strconv.FormatInt(id, 10),
				"name":         sample.name,
				"age":          strconv.Itoa(sample.age),
				"gender":       sample.gender,
				"phone_number": sample.phone,
				"status":       "ACTIVE",
			}, ""))
		}

		staffID := strconv.FormatInt(id, 10)
		switch sample.role {
		case "driver":
			roleKey := "driver:" + staffID
			if !driverReg.Has(roleKey) {
				driverRows = append(driverRows, s.stamp(csvstore.Row{
					"id":               strconv.FormatInt(driverReg.GetOrCreate(roleKey), 10),
					"staff_id":         staffID,
					"license_class":    sample.license,
					"years_experience": strconv.Itoa(sample.years),
				}, ""))
			}
		case "attendant":
			roleKey := "attendant:" + staffID
			if !attendantReg.Has(roleKey) {
				attendantRows = append(attendantRows, s.stamp(csvstore.Row{
					"id":       strconv.FormatInt(attendantReg.GetOrCreate(roleKey), 10),
					"staff_id": staffID,
				}, ""))
			}
		}
	}

	var vehicleRows []csvstore.Row
	perTypeNew := make(map[string]int)
	for _, sample := range vehicleSamples {
		sum.Read++
		key := vehicleKey(sample.plate, sample.brand)
		idx := perTypeNew[sample.vtype]
		perTypeNew[sample.vtype]++
		if vehicleReg.Has(key) {
			sum.Matched++
			continue
		}
		sum.Matched++
		id := vehicleReg.GetOrCreate(key)
		seatMapID := seatMapReg.GetOrCreate(seatMapKey(sample.vtype, idx))
		vehicleRows = append(vehicleRows, s.stamp(csvstore.Row{
			"id":           strconv.FormatInt(id, 10),
			"seat_map_id":  strconv.FormatInt(seatMapID, 10),
			"type":         sample.vtype,
			"type_factor":  sample.typeFactor,
			"plate_number": sample.plate,
			"brand":        sample.brand,
			"description":  sample.desc,
			"status":       "ACTIVE",
		}, ""))
	}

	if err := csvstore.AppendRows(staffPath, csvstore.Comma, staffHeaders, staffRows); err != nil {
		return sum, err
	}
	if err := csvstore.AppendRows(driverPath, csvstore.Comma, driverHeaders, driverRows); err != nil {
		return sum, err
	}
	if err := csvstore.AppendRows(attendantPath, csvstore.Comma, attendantHeaders, attendantRows); err != nil {
		return sum, err
	}
	if err := csvstore.AppendRows(vehiclePath, csvstore.Comma, vehicleHeaders, vehicleRows); err != nil {
		return sum, err
	}

	sum.Appended = len(staffRows) + len(driverRows) + len(attendantRows) + len(vehicleRows)
	return sum, nil
}
