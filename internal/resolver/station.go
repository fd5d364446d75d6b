package resolver

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/busline-seeder/app/models"
	"github.com/busline-seeder/internal/normalizer"
)

// splitSep separator của shape "Quận/Huyện - Tỉnh" trong text tuyến.
const splitSep = " - "

// ResolveStation map text nơi đi/đến về một station id. Input có hai shape:
// tên trơ ("Hà Nội", "Sài Gòn", "Bến xe Miền Đông") hoặc "Quận - Tỉnh".
//
// Thứ tự tier:
//  1. place alias (Sài Gòn → random bến trong Hồ Chí Minh) — random nên
//     không memo
//  2. tên bến khớp chính xác
//  3. tên tỉnh khớp chính xác → bến mặc định của tỉnh
//  4. quét địa chỉ các bến tìm text làm substring
//  5. shape "Quận - Tỉnh": tra quận (exact rồi containment, có kiểm tra
//     cùng tỉnh) → bến mặc định của tỉnh quận đó; fallback tra tỉnh
func (r *Resolver) ResolveStation(locationText string) (int64, bool) {
	norm := normalizer.Normalize(locationText)
	if norm == "" {
		return 0, false
	}

	// Tier 1: alias. Chọn random mỗi lần gọi, kết quả không được cache.
	if provNorm, ok := r.aliases[norm]; ok {
		if ids := r.ix.StationsByProvince[provNorm]; len(ids) > 0 {
			return ids[r.rng.Intn(len(ids))], true
		}
	}

	if id, ok := r.stationCache.Get(norm); ok {
		return id, true
	}

	if id, ok := r.resolveStationDeterministic(locationText, norm); ok {
		r.stationCache.Add(norm, id)
		return id, true
	}

	r.logStationMiss(locationText, norm)
	return 0, false
}

func (r *Resolver) resolveStationDeterministic(locationText, norm string) (int64, bool) {
	// Tier 2: tên bến.
	if id, ok := r.ix.StationIDByNorm[norm]; ok {
		return id, true
	}

	// Tier 3: tên tỉnh → bến mặc định.
	if id, ok := r.defaultStationForProvince(norm); ok {
		return id, true
	}

	// Tier 4: text nằm trong địa chỉ đã resolve của một bến.
	for _, stationID := range r.ix.StationIDs {
		addr := normalizer.Normalize(r.ix.StationAddressText(stationID))
		if containsExact(addr, norm) {
			return stationID, true
		}
	}

	// Tier 5: shape "Quận - Tỉnh".
	if strings.Contains(locationText, splitSep) {
		parts := strings.SplitN(locationText, splitSep, 2)
		if id, ok := r.resolveSplit(parts[0], parts[1]); ok {
			return id, true
		}
	}
	return 0, false
}

// defaultStationForProvince tra bến mặc định theo tên tỉnh đã normalize.
// Key của map là tên tỉnh từ sentinel (thường không có prefix "Thành phố"),
// nên sau exact match còn một vòng containment theo thứ tự first-seen.
func (r *Resolver) defaultStationForProvince(provNorm string) (int64, bool) {
	if provNorm == "" {
		return 0, false
	}
	if id, ok := r.ix.DefaultStationByProvince[provNorm]; ok {
		return id, true
	}
	for _, key := range r.ix.SentinelProvinces {
		if containsEither(key, provNorm) {
			return r.ix.DefaultStationByProvince[key], true
		}
	}
	return 0, false
}

// resolveSplit tier "Quận - Tỉnh": chốt quận trước (ưu tiên quận thuộc đúng
// tỉnh đi kèm), lấy bến mặc định của tỉnh chứa quận; không ra thì tra tỉnh.
func (r *Resolver) resolveSplit(districtPart, provincePart string) (int64, bool) {
	dNorm := normalizer.Normalize(districtPart)
	pNorm := normalizer.Normalize(provincePart)

	var matched *models.District
	if d, ok := r.ix.DistrictByNorm[dNorm]; ok {
		matched = d
	} else {
		for _, d := range r.ix.Districts {
			if !containsEither(d.NormalizedName, dNorm) {
				continue
			}
			if pNorm != "" && !r.districtInProvince(d, pNorm) {
				continue
			}
			matched = d
			break
		}
	}

	if matched != nil {
		if p := r.provinceByID(matched.ProvinceID); p != nil {
			if id, ok := r.defaultStationForProvince(p.NormalizedName); ok {
				return id, true
			}
		}
	}
	return r.defaultStationForProvince(pNorm)
}

func (r *Resolver) districtInProvince(d *models.District, provNorm string) bool {
	p := r.provinceByID(d.ProvinceID)
	return p != nil && containsEither(p.NormalizedName, provNorm)
}

// logStationMiss log gợi ý các tên bến gần nhất cho text không resolve
// được, chỉ ở debug level. Rank bằng JaroWinkler, kèm khoảng cách
// levenshtein để dễ soi dữ liệu scrape bẩn.
func (r *Resolver) logStationMiss(locationText, norm string) {
	if !r.log.Core().Enabled(zap.DebugLevel) {
		return
	}

	type candidate struct {
		name  string
		score float64
		dist  int
	}
	var cands []candidate
	for _, id := range r.ix.StationIDs {
		name := r.ix.StationNameByID[id]
		cn := normalizer.Normalize(name)
		cands = append(cands, candidate{
			name:  name,
			score: smetrics.JaroWinkler(norm, cn, 0.7, 4),
			dist:  levenshtein.ComputeDistance(norm, cn),
		})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	if len(cands) > 3 {
		cands = cands[:3]
	}

	fields := []zap.Field{zap.String("location", locationText)}
	for _, c := range cands {
		fields = append(fields, zap.String("suggestion", c.name), zap.Int("levenshtein", c.dist))
	}
	r.log.Debug("station unresolved", fields...)
}
