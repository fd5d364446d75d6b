// Seeder CLI: sinh dataset đặt vé xe khách từ gazetteer + dữ liệu scrape.
// Mỗi subcommand là một pipeline; `all` chạy cả chuỗi theo đúng thứ tự
// phụ thuộc.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/busline-seeder/app/config"
	"github.com/busline-seeder/internal/logger"
	"github.com/busline-seeder/internal/seeder"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	dataDir    string
	outDir     string
	seed       int64
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "seeder",
		Short:         "Seed the bus-line booking dataset from scraped text and the gazetteer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "override data directory")
	root.PersistentFlags().StringVar(&flags.outDir, "out-dir", "", "override output directory")
	root.PersistentFlags().Int64Var(&flags.seed, "seed", 0, "random seed, 0 = time-based")

	root.AddCommand(
		newGazetteerCmd(flags),
		newPipelineCmd(flags, "addresses", "Resolve scraped station addresses and seed address.csv + station.csv",
			func(s *seeder.Seeder) (seeder.Summary, error) { return s.SeedAddresses() }),
		newPipelineCmd(flags, "routes", "Resolve route endpoints and seed route.csv",
			func(s *seeder.Seeder) (seeder.Summary, error) { return s.SeedRoutes() }),
		newPipelineCmd(flags, "staff", "Seed staff, drivers, attendants and vehicles",
			func(s *seeder.Seeder) (seeder.Summary, error) { return s.SeedStaff() }),
		newPipelineCmd(flags, "layout", "Generate seat maps, floors and seats for every vehicle",
			func(s *seeder.Seeder) (seeder.Summary, error) { return s.SeedLayout() }),
		newPipelineCmd(flags, "trips", "Generate trips from ticket records",
			func(s *seeder.Seeder) (seeder.Summary, error) { return s.SeedTrips() }),
		newAllCmd(flags),
	)
	return root
}

// setup load config + logger; flags đè lên giá trị file/env.
func setup(flags *rootFlags) (*config.Config, *zap.Logger, *rand.Rand, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if flags.outDir != "" {
		cfg.OutDir = flags.outDir
	}
	if flags.seed != 0 {
		cfg.Rng.Seed = flags.seed
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	seed := cfg.Rng.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return cfg, log, rand.New(rand.NewSource(seed)), nil
}

func newGazetteerCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "gazetteer",
		Short: "Convert the provinces.open-api.vn dump into the gazetteer reference CSVs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, rng, err := setup(flags)
			if err != nil {
				return err
			}
			defer log.Sync()
			return seeder.New(cfg, nil, nil, rng, log).ConvertGazetteer()
		},
	}
}

func newPipelineCmd(flags *rootFlags, name, short string, run func(*seeder.Seeder) (seeder.Summary, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, rng, err := setup(flags)
			if err != nil {
				return err
			}
			defer log.Sync()

			s, err := seeder.Build(cfg, rng, log)
			if err != nil {
				return err
			}
			sum, err := run(s)
			if err != nil {
				return err
			}
			sum.Log(log, name)
			return nil
		},
	}
}

func newAllCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every pipeline in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, rng, err := setup(flags)
			if err != nil {
				return err
			}
			defer log.Sync()

			// Convert gazetteer khi có dump JSON, còn không thì dùng
			// reference CSVs sẵn có.
			if _, statErr := os.Stat(cfg.DataDir + "/" + seeder.FileGazetteerJSON); statErr == nil {
				if err := seeder.New(cfg, nil, nil, rng, log).ConvertGazetteer(); err != nil {
					return err
				}
			}

			stages := []struct {
				name string
				run  func(*seeder.Seeder) (seeder.Summary, error)
			}{
				{"addresses", (*seeder.Seeder).SeedAddresses},
				{"routes", (*seeder.Seeder).SeedRoutes},
				{"staff", (*seeder.Seeder).SeedStaff},
				{"layout", (*seeder.Seeder).SeedLayout},
				{"trips", (*seeder.Seeder).SeedTrips},
			}
			for _, stage := range stages {
				// Rebuild sau mỗi stage: routes cần thấy station mới
				// do addresses vừa append.
				s, err := seeder.Build(cfg, rng, log)
				if err != nil {
					return err
				}
				sum, err := stage.run(s)
				if err != nil {
					return fmt.Errorf("%s pipeline: %w", stage.name, err)
				}
				sum.Log(log, stage.name)
			}
			return nil
		},
	}
}
