package seeder

import (
	"math/rand"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/busline-seeder/app/config"
	"github.com/busline-seeder/internal/csvstore"
	"github.com/busline-seeder/internal/normalizer"
	"github.com/busline-seeder/internal/refindex"
	"github.com/busline-seeder/internal/resolver"
)

// Build wire một seeder đầy đủ: load gazetteer index, nạp station/address
// reference từ output của các lần chạy trước, dựng resolver. Gọi lại sau
// mỗi pipeline làm thay đổi station.csv để index nhìn thấy bến mới.
func Build(cfg *config.Config, rng *rand.Rand, log *zap.Logger) (*Seeder, error) {
	ix, err := refindex.Load(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}

	stations, err := csvstore.ReadTableIfExists(filepath.Join(cfg.OutDir, FileStation), csvstore.Semicolon, stationHeaders)
	if err != nil {
		return nil, err
	}
	addresses, err := csvstore.ReadTableIfExists(filepath.Join(cfg.OutDir, FileAddress), csvstore.Semicolon, addressHeaders)
	if err != nil {
		return nil, err
	}
	ix.AddStations(stations, addresses, log)

	rules, err := normalizer.LoadRulesConfig()
	if err != nil {
		return nil, err
	}
	res, err := resolver.New(ix, rules, rng, log)
	if err != nil {
		return nil, err
	}
	return New(cfg, ix, res, rng, log), nil
}
