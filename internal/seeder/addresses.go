package seeder

import (
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/busline-seeder/internal/allocator"
	"github.com/busline-seeder/internal/csvstore"
	"github.com/busline-seeder/internal/normalizer"
	"github.com/busline-seeder/internal/refindex"
)

var benxeWardHeaders = []string{"slug", "name", "address", "province", "ward_id", "matched_ward", "matched_district"}

// SeedAddresses resolve địa chỉ bến xe scrape được về ward id rồi sinh
// address.csv + station.csv.
//
// Hai đầu ra: intermediate benxe_addresses_with_ward_ids.csv (ghi đè mỗi
// lần, giữ cả dòng không resolve được với ward_id rỗng) và hai bảng output
// append-only (chỉ dòng đã resolve). Id reuse theo key: station = slug của
// tên bến, address = nguyên văn text địa chỉ.
func (s *Seeder) SeedAddresses() (Summary, error) {
	var sum Summary

	input, err := csvstore.ReadTable(filepath.Join(s.cfg.DataDir, FileBenxeAddresses), csvstore.Comma)
	if err != nil {
		return sum, fmt.Errorf("failed to read scraped addresses: %w", err)
	}

	addrPath := filepath.Join(s.cfg.OutDir, FileAddress)
	stationPath := filepath.Join(s.cfg.OutDir, FileStation)

	existingAddr, err := csvstore.ReadTableIfExists(addrPath, csvstore.Semicolon, addressHeaders)
	if err != nil {
		return sum, err
	}
	existingStation, err := csvstore.ReadTableIfExists(stationPath, csvstore.Semicolon, stationHeaders)
	if err != nil {
		return sum, err
	}

	addrReg := seedRegistry(existingAddr, s.cfg.IDs.StationFloor, func(r csvstore.Row) string {
		return r["street_address"]
	})
	stationReg := seedRegistry(existingStation, s.cfg.IDs.StationFloor, func(r csvstore.Row) string {
		return normalizer.Slug(r["name"])
	})

	var intermediate, newAddrRows, newStationRows []csvstore.Row
	for _, row := range input.Rows {
		sum.Read++
		name := row["name"]
		addrText := row["address"]
		provText := row["province"]

		inter := csvstore.Row{
			"slug": row["slug"], "name": name, "address": addrText, "province": provText,
			"ward_id": "", "matched_ward": "", "matched_district": "",
		}

		m, ok := s.res.ResolveWard(addrText, provText)
		if !ok {
			// Giữ lại dòng với ward rỗng, không bao giờ drop record.
			sum.Skipped++
			intermediate = append(intermediate, inter)
			continue
		}
		sum.Matched++
		inter["ward_id"] = strconv.FormatInt(m.Ward.ID, 10)
		inter["matched_ward"] = m.Ward.Name
		inter["matched_district"] = m.District.Name
		intermediate = append(intermediate, inter)

		addrKey := addrText
		addrKnown := addrReg.Has(addrKey)
		addrID := addrReg.GetOrCreate(addrKey)
		if !addrKnown {
			newAddrRows = append(newAddrRows, s.stamp(csvstore.Row{
				"id":             strconv.FormatInt(addrID, 10),
				"street_address": addrText,
				"latitude":       nullMarker,
				"longitude":      nullMarker,
				"ward_id":        strconv.FormatInt(m.Ward.ID, 10),
			}, nullMarker))
		}

		stationKey := normalizer.Slug(name)
		if stationReg.Has(stationKey) {
			continue
		}
		stationID := stationReg.GetOrCreate(stationKey)
		newStationRows = append(newStationRows, s.stamp(csvstore.Row{
			"id":             strconv.FormatInt(stationID, 10),
			"name":           name,
			"phone_number":   nullMarker,
			"description":    refindex.StationDescPrefix + provText,
			"active":         "true",
			"address_id":     strconv.FormatInt(addrID, 10),
			"station_img_id": nullMarker,
		}, nullMarker))
	}

	interPath := filepath.Join(s.cfg.DataDir, FileBenxeAddressesWard)
	if err := csvstore.WriteTable(interPath, csvstore.Comma, benxeWardHeaders, intermediate); err != nil {
		return sum, err
	}
	if err := csvstore.AppendRows(addrPath, csvstore.Semicolon, addressHeaders, newAddrRows); err != nil {
		return sum, err
	}
	if err := csvstore.AppendRows(stationPath, csvstore.Semicolon, stationHeaders, newStationRows); err != nil {
		return sum, err
	}

	sum.Appended = len(newAddrRows) + len(newStationRows)
	s.log.Debug("addresses appended",
		zap.Int("addresses", len(newAddrRows)),
		zap.Int("stations", len(newStationRows)))
	return sum, nil
}

// seedRegistry dựng registry từ một bảng output sẵn có: sequence floor +
// max id hiện tại, key do caller derive lại từ row (phải trùng cách derive
// lúc ghi).
func seedRegistry(t *csvstore.Table, floor int64, keyFn func(csvstore.Row) string) *allocator.Registry {
	seq := allocator.NewSequence(floor)
	seq.Bump(t.MaxNumericID("id"))
	reg := allocator.NewRegistry(seq)
	for _, row := range t.Rows {
		id, err := strconv.ParseInt(row["id"], 10, 64)
		if err != nil {
			continue
		}
		if key := keyFn(row); key != "" {
			reg.Seed(key, id)
		}
	}
	return reg
}
