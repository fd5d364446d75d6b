package seeder

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/busline-seeder/app/config"
	"github.com/busline-seeder/internal/csvstore"
)

// Gazetteer thu nhỏ: HCM (Quận 1, Quận Bình Thạnh) + Hà Nội (Quận Ba Đình).
const gazetteerFixture = `[
  {
    "name": "Thành phố Hồ Chí Minh", "code": 79,
    "division_type": "thành phố trung ương", "codename": "thanh_pho_ho_chi_minh", "phone_code": 28,
    "districts": [
      {
        "name": "Quận 1", "code": 760, "division_type": "quận", "codename": "quan_1",
        "wards": [
          {"name": "Phường Bến Nghé", "code": 26734, "division_type": "phường", "codename": "phuong_ben_nghe"},
          {"name": "Phường Đa Kao", "code": 26737, "division_type": "phường", "codename": "phuong_da_kao"}
        ]
      },
      {
        "name": "Quận Bình Thạnh", "code": 765, "division_type": "quận", "codename": "quan_binh_thanh",
        "wards": [
          {"name": "Phường 25", "code": 26911, "division_type": "phường", "codename": "phuong_25"}
        ]
      }
    ]
  },
  {
    "name": "Thành phố Hà Nội", "code": 1,
    "division_type": "thành phố trung ương", "codename": "thanh_pho_ha_noi", "phone_code": 24,
    "districts": [
      {
        "name": "Quận Ba Đình", "code": 2, "division_type": "quận", "codename": "quan_ba_dinh",
        "wards": [
          {"name": "Phường Trúc Bạch", "code": 7, "division_type": "phường", "codename": "phuong_truc_bach"}
        ]
      }
    ]
  }
]`

const addressesFixture = `slug,name,address,province
ben-xe-mien-dong,Bến xe Miền Đông,"292 Đinh Bộ Lĩnh, Phường 25, Quận Bình Thạnh",Hồ Chí Minh
ben-xe-my-dinh,Bến xe Mỹ Đình,"20 Phạm Hùng",Hà Nội
ben-xe-hu,Bến xe Hư,"số 1 đường nào đó",Atlantis
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir: t.TempDir(),
		OutDir:  t.TempDir(),
		Log:     config.LogConfig{Level: "info"},
		IDs: config.IDConfig{
			StationFloor: 1499,
			RouteFloor:   999,
			StaffFloor:   1499,
			LayoutFloor:  1499,
			TripFloor:    1499,
		},
		Rng: config.RandomCfg{Seed: 7},
		Fit: config.LayoutConfg{
			MinSeatsPerFloor: 15,
			MaxSeatsPerFloor: 20,
			SeatColumns:      4,
			Floor1Factor:     1.00,
			Floor2Factor:     1.10,
			SeatFactor:       1.00,
		},
	}
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// buildSeeder dựng seeder như main: convert gazetteer (nếu chưa có), load
// index, nạp station reference từ output hiện tại. Gọi lại giữa các pipeline
// để index nhìn thấy output mới — giống một lần chạy mới của binary.
func buildSeeder(t *testing.T, cfg *config.Config) *Seeder {
	t.Helper()
	log := zap.NewNop()

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "province.csv")); os.IsNotExist(err) {
		writeFixture(t, filepath.Join(cfg.DataDir, FileGazetteerJSON), gazetteerFixture)
		boot := New(cfg, nil, nil, rand.New(rand.NewSource(cfg.Rng.Seed)), log)
		require.NoError(t, boot.ConvertGazetteer())
	}

	s, err := Build(cfg, rand.New(rand.NewSource(cfg.Rng.Seed)), log)
	require.NoError(t, err)
	return s
}

func readOut(t *testing.T, cfg *config.Config, file string, d csvstore.Dialect) *csvstore.Table {
	t.Helper()
	table, err := csvstore.ReadTable(filepath.Join(cfg.OutDir, file), d)
	require.NoError(t, err)
	return table
}
