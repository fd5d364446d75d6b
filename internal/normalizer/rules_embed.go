package normalizer

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed data/aliases.yaml
var aliasesYAML []byte

// RulesConfig chứa cấu hình rules được load từ YAML
type RulesConfig struct {
	DistrictPrefixes []string          `yaml:"district_prefixes"`
	MinStrippedLen   int               `yaml:"min_stripped_len"`
	PlaceAliases     map[string]string `yaml:"place_aliases"`
}

// LoadRulesConfig load cấu hình rules từ embedded YAML
func LoadRulesConfig() (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(aliasesYAML, config); err != nil {
		return nil, err
	}
	return config, nil
}
