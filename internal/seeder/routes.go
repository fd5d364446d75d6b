package seeder

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/busline-seeder/internal/csvstore"
	"github.com/busline-seeder/internal/normalizer"
)

// routeSep "đi" — separator giữa nơi đi và nơi đến trong text tuyến.
const routeSep = " đi "

const routeCodeMaxLen = 10

// SeedRoutes parse text tuyến từ hai kênh scrape, resolve hai đầu về
// station id và append các tuyến mới vào route.csv. Uniqueness theo cặp
// (origin_id, destination_id): hai text khác nhau cùng cặp bến gộp làm một.
func (s *Seeder) SeedRoutes() (Summary, error) {
	var sum Summary

	type rawRoute struct {
		text   string
		source string
	}
	var raws []rawRoute

	benxe, err := readPipeLines(filepath.Join(s.cfg.DataDir, FileBenxeTickets))
	if err != nil {
		return sum, fmt.Errorf("failed to read benxe tickets: %w", err)
	}
	for _, rec := range benxe {
		raws = append(raws, rawRoute{text: field(rec, 0), source: "benxe"})
	}

	nhaxe, err := readPipeLines(filepath.Join(s.cfg.DataDir, FileNhaxeTickets))
	if err != nil {
		return sum, fmt.Errorf("failed to read nhaxe tickets: %w", err)
	}
	for _, rec := range nhaxe {
		raws = append(raws, rawRoute{text: stripSlugTag(field(rec, 0)), source: "nhaxe"})
	}

	routePath := filepath.Join(s.cfg.OutDir, FileRoute)
	existing, err := csvstore.ReadTableIfExists(routePath, csvstore.Semicolon, routeHeaders)
	if err != nil {
		return sum, err
	}
	reg := seedRegistry(existing, s.cfg.IDs.RouteFloor, func(r csvstore.Row) string {
		return routePairKey(r["origin_id"], r["destination_id"])
	})

	var newRows []csvstore.Row
	for _, raw := range raws {
		sum.Read++

		origin, dest, ok := splitRouteText(raw.text)
		if !ok {
			sum.Skipped++
			continue
		}
		originID, ok := s.res.ResolveStation(origin)
		if !ok {
			sum.Skipped++
			s.log.Debug("route origin unresolved", zap.String("text", origin), zap.String("source", raw.source))
			continue
		}
		destID, ok := s.res.ResolveStation(dest)
		if !ok {
			sum.Skipped++
			s.log.Debug("route destination unresolved", zap.String("text", dest), zap.String("source", raw.source))
			continue
		}
		if originID == destID {
			sum.Skipped++
			continue
		}
		sum.Matched++

		key := routePairKey(strconv.FormatInt(originID, 10), strconv.FormatInt(destID, 10))
		if reg.Has(key) {
			continue
		}
		id := reg.GetOrCreate(key)
		newRows = append(newRows, s.stamp(csvstore.Row{
			"id":             strconv.FormatInt(id, 10),
			"route_code":     RouteCode(origin, dest),
			"distance_km":    strconv.Itoa(50 + s.rng.Intn(1950)),
			"origin_id":      strconv.FormatInt(originID, 10),
			"destination_id": strconv.FormatInt(destID, 10),
		}, nullMarker))
	}

	if err := csvstore.AppendRows(routePath, csvstore.Semicolon, routeHeaders, newRows); err != nil {
		return sum, err
	}
	sum.Appended = len(newRows)
	return sum, nil
}

// splitRouteText tách "A đi B"; fallback shape 4 phần
// "Quận - Tỉnh - Quận - Tỉnh" thành hai cặp "Quận - Tỉnh".
func splitRouteText(text string) (origin, dest string, ok bool) {
	if i := strings.Index(text, routeSep); i >= 0 {
		origin = strings.TrimSpace(text[:i])
		dest = strings.TrimSpace(text[i+len(routeSep):])
		return origin, dest, origin != "" && dest != ""
	}
	parts := strings.Split(text, " - ")
	if len(parts) == 4 {
		origin = strings.TrimSpace(parts[0]) + " - " + strings.TrimSpace(parts[1])
		dest = strings.TrimSpace(parts[2]) + " - " + strings.TrimSpace(parts[3])
		return origin, dest, true
	}
	return "", "", false
}

// stripSlugTag bỏ tag "[slug] " đứng đầu record của kênh nhaxe.
func stripSlugTag(text string) string {
	if !strings.HasPrefix(text, "[") {
		return text
	}
	i := strings.Index(text, "]")
	if i < 0 {
		return text
	}
	return strings.TrimSpace(text[i+1:])
}

func routePairKey(originID, destID string) string {
	if originID == "" || destID == "" {
		return ""
	}
	return originID + "->" + destID
}

// RouteCode sinh mã tuyến dạng ORIGIN_DEST: bỏ dấu, bỏ mọi ký tự không
// phải chữ/số, upper, mỗi bên tối đa 10 ký tự.
func RouteCode(origin, dest string) string {
	return routeCodeSide(origin) + "_" + routeCodeSide(dest)
}

func routeCodeSide(text string) string {
	side := strings.ToUpper(strings.ReplaceAll(normalizer.Normalize(text), " ", ""))
	if len(side) > routeCodeMaxLen {
		side = side[:routeCodeMaxLen]
	}
	return side
}
