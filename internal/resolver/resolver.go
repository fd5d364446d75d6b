// Package resolver là cascade entity resolution: map text tự do (địa chỉ,
// tên nơi đi/đến) về ward id hoặc station id trong reference index. Các
// tier được thử theo thứ tự, tier đầu tiên match thắng; các bước chọn trong
// nhiều candidate dùng random đều (best-effort, không bao giờ fail khi đã
// resolve được tỉnh).
package resolver

import (
	"fmt"
	"math/rand"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/busline-seeder/app/models"
	"github.com/busline-seeder/internal/normalizer"
	"github.com/busline-seeder/internal/refindex"
)

const stationCacheSize = 1024

// Resolver giữ index + rules + nguồn random được inject (tests fix seed).
type Resolver struct {
	ix    *refindex.Index
	rules *normalizer.RulesConfig
	rng   *rand.Rand
	log   *zap.Logger

	// Memo các lookup station deterministic. Tier alias (random) không bao
	// giờ được cache.
	stationCache *lru.Cache[string, int64]

	// place alias đã normalize cả key lẫn value, build một lần
	aliases map[string]string
}

// New dựng resolver trên một index đã build xong.
func New(ix *refindex.Index, rules *normalizer.RulesConfig, rng *rand.Rand, log *zap.Logger) (*Resolver, error) {
	cache, err := lru.New[string, int64](stationCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create station cache: %w", err)
	}

	aliases := make(map[string]string, len(rules.PlaceAliases))
	for k, v := range rules.PlaceAliases {
		aliases[normalizer.Normalize(k)] = normalizer.Normalize(v)
	}

	return &Resolver{
		ix:           ix,
		rules:        rules,
		rng:          rng,
		log:          log,
		stationCache: cache,
		aliases:      aliases,
	}, nil
}

// containsEither a chứa b hoặc b chứa a. Hai chuỗi rỗng không bao giờ match.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func (r *Resolver) provinceByID(id int64) *models.Province {
	for _, p := range r.ix.Provinces {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// stripDistrictPrefix bỏ prefix hành chính ("quan", "huyen", "thanh pho",
// "thi xa") khỏi tên quận đã normalize. Trả về "" nếu không có prefix nào.
func (r *Resolver) stripDistrictPrefix(norm string) string {
	for _, prefix := range r.rules.DistrictPrefixes {
		if strings.HasPrefix(norm, prefix+" ") {
			return strings.TrimSpace(strings.TrimPrefix(norm, prefix))
		}
	}
	return ""
}
