package resolver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/busline-seeder/app/models"
	"github.com/busline-seeder/internal/normalizer"
)

// WardMatch kết quả resolve một địa chỉ: ward + district + province đã chốt.
// District/Ward name đi kèm để pipeline addresses ghi lại vào intermediate
// output (cột matched_ward / matched_district).
type WardMatch struct {
	Province *models.Province
	District *models.District
	Ward     *models.Ward
}

// ResolveWard map (địa chỉ, tỉnh) về một ward. Policy: một khi tỉnh đã
// resolve được thì không bao giờ trả về miss — tier cuối random trong toàn
// bộ ward của tỉnh. Chỉ miss khi không chốt được tỉnh.
//
// Thứ tự tier:
//  1. resolve tỉnh (containment hai chiều; fallback coi text tỉnh là tên
//     quận; fallback quét địa chỉ tìm tên tỉnh)
//  2. tên ward xuất hiện nguyên văn trong địa chỉ
//  3. tên quận xuất hiện (nguyên văn, rồi bỏ prefix hành chính) → random
//     ward trong quận đó
//  4. random ward trong toàn tỉnh
func (r *Resolver) ResolveWard(addressText, provinceText string) (*WardMatch, bool) {
	normAddr := normalizer.Normalize(addressText)

	province := r.resolveProvince(normalizer.Normalize(provinceText), normAddr)
	if province == nil {
		r.log.Debug("province unresolved, address kept without ward",
			zap.String("address", addressText),
			zap.String("province", provinceText))
		return nil, false
	}

	districts := r.ix.DistrictsByProvince[province.ID]

	// Tier 2: exact ward-name containment, thứ tự district rồi ward.
	for _, d := range districts {
		for _, w := range r.ix.WardsByDistrict[d.ID] {
			if w.NormalizedName != "" && containsExact(normAddr, w.NormalizedName) {
				return &WardMatch{Province: province, District: d, Ward: w}, true
			}
		}
	}

	// Tier 3: district match → random ward của quận đó.
	for _, d := range districts {
		if !r.districtMentioned(normAddr, d) {
			continue
		}
		wards := r.ix.WardsByDistrict[d.ID]
		if len(wards) == 0 {
			continue
		}
		w := wards[r.rng.Intn(len(wards))]
		return &WardMatch{Province: province, District: d, Ward: w}, true
	}

	// Tier 4: random trong toàn bộ ward của tỉnh.
	var pool []*models.Ward
	poolDistrict := make(map[int64]*models.District)
	for _, d := range districts {
		for _, w := range r.ix.WardsByDistrict[d.ID] {
			pool = append(pool, w)
			poolDistrict[w.ID] = d
		}
	}
	if len(pool) == 0 {
		return nil, false
	}
	w := pool[r.rng.Intn(len(pool))]
	return &WardMatch{Province: province, District: poolDistrict[w.ID], Ward: w}, true
}

// resolveProvince tier 1 của cascade.
func (r *Resolver) resolveProvince(normProv, normAddr string) *models.Province {
	// Dạng thông tục / viết tắt (Sài Gòn, TP.HCM) về tên chuẩn trước.
	if alias, ok := r.aliases[normProv]; ok {
		normProv = alias
	}
	// Containment hai chiều với tên tỉnh.
	if normProv != "" {
		for _, p := range r.ix.Provinces {
			if containsEither(p.NormalizedName, normProv) {
				return p
			}
		}
		// Text "tỉnh" thực ra là tên quận (dữ liệu scrape hay nhầm cột).
		for _, d := range r.ix.Districts {
			if d.NormalizedName == normProv || containsEither(d.NormalizedName, normProv) {
				if p := r.provinceByID(d.ProvinceID); p != nil {
					return p
				}
			}
		}
	}
	// Quét địa chỉ đầy đủ tìm tên một tỉnh bất kỳ.
	for _, p := range r.ix.Provinces {
		if p.NormalizedName != "" && containsExact(normAddr, p.NormalizedName) {
			return p
		}
	}
	return nil
}

// districtMentioned tên quận có trong địa chỉ không: nguyên văn trước, rồi
// dạng bỏ prefix (chỉ khi phần còn lại dài hơn MinStrippedLen, tránh match
// nhầm chuỗi ngắn kiểu "1", "2").
func (r *Resolver) districtMentioned(normAddr string, d *models.District) bool {
	if containsExact(normAddr, d.NormalizedName) {
		return true
	}
	stripped := r.stripDistrictPrefix(d.NormalizedName)
	return len(stripped) > r.rules.MinStrippedLen && containsExact(normAddr, stripped)
}

// containsExact là strings.Contains nhưng needle rỗng không match gì cả.
func containsExact(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}
