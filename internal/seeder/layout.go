package seeder

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/busline-seeder/app/models"
	"github.com/busline-seeder/internal/csvstore"
)

// SeedLayout dựng seat_map / floor / seat cho mọi xe trong vehicle.csv.
//
// Layout hoàn toàn deterministic: số ghế mỗi tầng băm từ (seat_map_id,
// floor_no) nên chạy lại cho ra đúng các dòng cũ — không append gì thêm.
// Limousine 1 tầng, các loại khác 2 tầng.
func (s *Seeder) SeedLayout() (Summary, error) {
	var sum Summary

	vehicles, err := csvstore.ReadTableIfExists(filepath.Join(s.cfg.OutDir, FileVehicle), csvstore.Comma, vehicleHeaders)
	if err != nil {
		return sum, err
	}

	seatMapPath := filepath.Join(s.cfg.OutDir, FileSeatMap)
	floorPath := filepath.Join(s.cfg.OutDir, FileFloor)
	seatPath := filepath.Join(s.cfg.OutDir, FileSeat)

	existingSeatMap, err := csvstore.ReadTableIfExists(seatMapPath, csvstore.Comma, seatMapHeaders)
	if err != nil {
		return sum, err
	}
	existingFloor, err := csvstore.ReadTableIfExists(floorPath, csvstore.Comma, floorHeaders)
	if err != nil {
		return sum, err
	}
	existingSeat, err := csvstore.ReadTableIfExists(seatPath, csvstore.Comma, seatHeaders)
	if err != nil {
		return sum, err
	}

	knownSeatMaps := make(map[string]bool, len(existingSeatMap.Rows))
	for _, r := range existingSeatMap.Rows {
		knownSeatMaps[r["id"]] = true
	}
	floorReg := seedRegistry(existingFloor, s.cfg.IDs.LayoutFloor, func(r csvstore.Row) string {
		return floorKey(r["seat_map_id"], r["floor_no"])
	})
	seatReg := seedRegistry(existingSeat, s.cfg.IDs.LayoutFloor, func(r csvstore.Row) string {
		return seatKey(r["floor_id"], r["seat_no"])
	})

	var seatMapRows, floorRows, seatRows []csvstore.Row
	seenThisRun := make(map[string]bool)
	for _, v := range vehicles.Rows {
		sum.Read++
		seatMapID := v["seat_map_id"]
		if seatMapID == "" || seenThisRun[seatMapID] {
			sum.Skipped++
			continue
		}
		seenThisRun[seatMapID] = true
		sum.Matched++

		if !knownSeatMaps[seatMapID] {
			seatMapRows = append(seatMapRows, s.stamp(csvstore.Row{
				"id":   seatMapID,
				"name": fmt.Sprintf("%s seat map %s", v["type"], seatMapID),
			}, ""))
		}

		floors := 2
		if v["type"] == models.VehicleLimousine {
			floors = 1
		}
		for floorNo := 1; floorNo <= floors; floorNo++ {
			fKey := floorKey(seatMapID, strconv.Itoa(floorNo))
			floorKnown := floorReg.Has(fKey)
			floorID := strconv.FormatInt(floorReg.GetOrCreate(fKey), 10)
			if !floorKnown {
				floorRows = append(floorRows, s.stamp(csvstore.Row{
					"id":                 floorID,
					"seat_map_id":        seatMapID,
					"floor_no":           strconv.Itoa(floorNo),
					"price_factor_floor": s.floorFactor(floorNo),
				}, ""))
			}

			seats := s.seatCount(seatMapID, floorNo)
			cols := s.cfg.Fit.SeatColumns
			for i := 0; i < seats; i++ {
				rowNo := i/cols + 1
				colNo := i%cols + 1
				seatNo := fmt.Sprintf("%c%02d", 'A'+rune(rowNo-1), colNo)
				sKey := seatKey(floorID, seatNo)
				if seatReg.Has(sKey) {
					continue
				}
				seatRows = append(seatRows, s.stamp(csvstore.Row{
					"id":           strconv.FormatInt(seatReg.GetOrCreate(sKey), 10),
					"floor_id":     floorID,
					"seat_no":      seatNo,
					"row_no":       strconv.Itoa(rowNo),
					"col_no":       strconv.Itoa(colNo),
					"price_factor": fmt.Sprintf("%.3f", s.cfg.Fit.SeatFactor),
					"seat_type":    "STANDARD",
				}, ""))
			}
		}
	}

	if err := csvstore.AppendRows(seatMapPath, csvstore.Comma, seatMapHeaders, seatMapRows); err != nil {
		return sum, err
	}
	if err := csvstore.AppendRows(floorPath, csvstore.Comma, floorHeaders, floorRows); err != nil {
		return sum, err
	}
	if err := csvstore.AppendRows(seatPath, csvstore.Comma, seatHeaders, seatRows); err != nil {
		return sum, err
	}

	sum.Appended = len(seatMapRows) + len(floorRows) + len(seatRows)
	return sum, nil
}

func floorKey(seatMapID, floorNo string) string {
	if seatMapID == "" {
		return ""
	}
	return "floor:" + seatMapID + ":" + floorNo
}

func seatKey(floorID, seatNo string) string {
	if floorID == "" {
		return ""
	}
	return "seat:" + floorID + ":" + seatNo
}

func (s *Seeder) floorFactor(floorNo int) string {
	if floorNo == 2 {
		return fmt.Sprintf("%.3f", s.cfg.Fit.Floor2Factor)
	}
	return fmt.Sprintf("%.3f", s.cfg.Fit.Floor1Factor)
}

// seatCount số ghế một tầng, băm từ (seat_map_id, floor_no) để mỗi lần
// chạy ra cùng một con số trong [min, max].
func (s *Seeder) seatCount(seatMapID string, floorNo int) int {
	sum := sha256.Sum256([]byte(fmt.Sprintf("seatcount:%s:%d", seatMapID, floorNo)))
	n := binary.BigEndian.Uint64(sum[:8]) &^ (uint64(1) << 63)
	span := s.cfg.Fit.MaxSeatsPerFloor - s.cfg.Fit.MinSeatsPerFloor + 1
	if span < 1 {
		span = 1
	}
	return int(n%uint64(span)) + s.cfg.Fit.MinSeatsPerFloor
}
