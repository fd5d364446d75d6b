package seeder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/busline-seeder/internal/csvstore"
	"github.com/busline-seeder/internal/normalizer"
	"github.com/busline-seeder/internal/refindex"
)

// FileGazetteerJSON dump JSON 3 tầng tỉnh → quận/huyện → phường/xã từ
// provinces.open-api.vn.
const FileGazetteerJSON = "provinces.open-api.vn.json"

type gazWard struct {
	Name         string `json:"name"`
	Code         int64  `json:"code"`
	DivisionType string `json:"division_type"`
	Codename     string `json:"codename"`
}

type gazDistrict struct {
	Name         string    `json:"name"`
	Code         int64     `json:"code"`
	DivisionType string    `json:"division_type"`
	Codename     string    `json:"codename"`
	Wards        []gazWard `json:"wards"`
}

type gazProvince struct {
	Name         string        `json:"name"`
	Code         int64         `json:"code"`
	DivisionType string        `json:"division_type"`
	Codename     string        `json:"codename"`
	PhoneCode    int64         `json:"phone_code"`
	Districts    []gazDistrict `json:"districts"`
}

// ConvertGazetteer đọc dump JSON và ghi đè province.csv / district.csv /
// ward.csv trong data dir. Id = code của open-api nên convert lại bao nhiêu
// lần vẫn ra cùng id — reference data không đi qua allocator.
func (s *Seeder) ConvertGazetteer() error {
	raw, err := os.ReadFile(filepath.Join(s.cfg.DataDir, FileGazetteerJSON))
	if err != nil {
		return fmt.Errorf("failed to read gazetteer dump: %w", err)
	}
	var provinces []gazProvince
	if err := json.Unmarshal(raw, &provinces); err != nil {
		return fmt.Errorf("failed to parse gazetteer dump: %w", err)
	}

	var provinceRows, districtRows, wardRows []csvstore.Row
	for _, p := range provinces {
		provinceRows = append(provinceRows, s.gazetteerRow(p.Code, p.Name, p.DivisionType, p.Codename, refindex.ProvinceHeaders, p.PhoneCode))
		for _, d := range p.Districts {
			districtRows = append(districtRows, s.gazetteerRow(d.Code, d.Name, d.DivisionType, d.Codename, refindex.DistrictHeaders, p.Code))
			for _, w := range d.Wards {
				wardRows = append(wardRows, s.gazetteerRow(w.Code, w.Name, w.DivisionType, w.Codename, refindex.WardHeaders, d.Code))
			}
		}
	}

	if err := csvstore.WriteTable(filepath.Join(s.cfg.DataDir, "province.csv"), csvstore.Semicolon, refindex.ProvinceHeaders, provinceRows); err != nil {
		return err
	}
	if err := csvstore.WriteTable(filepath.Join(s.cfg.DataDir, "district.csv"), csvstore.Semicolon, refindex.DistrictHeaders, districtRows); err != nil {
		return err
	}
	if err := csvstore.WriteTable(filepath.Join(s.cfg.DataDir, "ward.csv"), csvstore.Semicolon, refindex.WardHeaders, wardRows); err != nil {
		return err
	}

	s.log.Info("gazetteer converted",
		zap.Int("provinces", len(provinceRows)),
		zap.Int("districts", len(districtRows)),
		zap.Int("wards", len(wardRows)))
	return nil
}

// gazetteerRow một dòng reference: cột cuối của header là parent id
// (phone_code với tỉnh).
func (s *Seeder) gazetteerRow(code int64, name, divisionType, codename string, headers []string, parent int64) csvstore.Row {
	row := s.stamp(csvstore.Row{
		"id":              strconv.FormatInt(code, 10),
		"code":            strconv.FormatInt(code, 10),
		"name":            name,
		"normalized_name": normalizer.Normalize(name),
		"division_type":   divisionType,
		"codename":        codename,
		"active":          "true",
		"description":     "",
	}, nullMarker)
	row[headers[len(headers)-1]] = strconv.FormatInt(parent, 10)
	return row
}
