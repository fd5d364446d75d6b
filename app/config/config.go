package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config toàn bộ cấu hình cho một lần chạy seeder
type Config struct {
	DataDir string `mapstructure:"data_dir"` // scraped inputs + gazetteer json
	OutDir  string `mapstructure:"out_dir"`  // csv_output

	Log LogConfig   `mapstructure:"log"`
	IDs IDConfig    `mapstructure:"ids"`
	Rng RandomCfg   `mapstructure:"random"`
	Fit LayoutConfg `mapstructure:"layout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// IDConfig id floors per entity family. Sequences start at
// max(floor, max existing id in output).
type IDConfig struct {
	StationFloor int64 `mapstructure:"station_floor"`
	RouteFloor   int64 `mapstructure:"route_floor"`
	StaffFloor   int64 `mapstructure:"staff_floor"`
	LayoutFloor  int64 `mapstructure:"layout_floor"`
	TripFloor    int64 `mapstructure:"trip_floor"`
}

// RandomCfg seed cho các bước tie-break ngẫu nhiên. Seed = 0 nghĩa là
// time-based (non-reproducible, như bản gốc); tests set a fixed seed.
type RandomCfg struct {
	Seed int64 `mapstructure:"seed"`
}

type LayoutConfg struct {
	MinSeatsPerFloor int     `mapstructure:"min_seats_per_floor"`
	MaxSeatsPerFloor int     `mapstructure:"max_seats_per_floor"`
	SeatColumns      int     `mapstructure:"seat_columns"`
	Floor1Factor     float64 `mapstructure:"floor1_factor"`
	Floor2Factor     float64 `mapstructure:"floor2_factor"`
	SeatFactor       float64 `mapstructure:"seat_factor"`
}

// Load đọc config từ file (yaml) + ENV overrides, với defaults đầy đủ
// để chạy được không cần file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "data")
	v.SetDefault("out_dir", "csv_output")
	v.SetDefault("log.level", "info")
	v.SetDefault("ids.station_floor", 1499)
	v.SetDefault("ids.route_floor", 999)
	v.SetDefault("ids.staff_floor", 1499)
	v.SetDefault("ids.layout_floor", 1499)
	v.SetDefault("ids.trip_floor", 1499)
	v.SetDefault("random.seed", 0)
	v.SetDefault("layout.min_seats_per_floor", 15)
	v.SetDefault("layout.max_seats_per_floor", 20)
	v.SetDefault("layout.seat_columns", 4)
	v.SetDefault("layout.floor1_factor", 1.00)
	v.SetDefault("layout.floor2_factor", 1.10)
	v.SetDefault("layout.seat_factor", 1.00)

	v.SetEnvPrefix("SEEDER")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
