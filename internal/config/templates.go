package config

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// StrictnessPreset holds threshold values for a strictness level
type StrictnessPreset struct {
	MaxChainLength      int
	PolymorphismMin     int
	TypeCodeMinBranches int
	MaxParams           int
	MaxImportsWarning   int
	MinDictKeys         int
}

// GetStrictnessPresets returns presets for the strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MaxChainLength:      2,
			PolymorphismMin:     4,
			TypeCodeMinBranches: 3,
			MaxParams:           6,
			MaxImportsWarning:   15,
			MinDictKeys:         3,
		},
		StrictnessStandard: {
			MaxChainLength:      1,
			PolymorphismMin:     3,
			TypeCodeMinBranches: 2,
			MaxParams:           4,
			MaxImportsWarning:   10,
			MinDictKeys:         2,
		},
		StrictnessStrict: {
			MaxChainLength:      1,
			PolymorphismMin:     2,
			TypeCodeMinBranches: 2,
			MaxParams:           3,
			MaxImportsWarning:   8,
			MinDictKeys:         2,
		},
	}
}

// TemplateConfig builds a full configuration for a strictness level.
// The result is what `oopscan init` writes.
func TemplateConfig(strictness Strictness) *Config {
	preset, ok := GetStrictnessPresets()[strictness]
	if !ok {
		preset = GetStrictnessPresets()[StrictnessStandard]
	}

	cfg := DefaultConfig()

	setOption := func(rule, key string, value interface{}) {
		rc := cfg.Rules[rule]
		if rc.Options == nil {
			rc.Options = map[string]interface{}{}
		}
		rc.Options[key] = value
		cfg.Rules[rule] = rc
	}

	setOption("encapsulation", "max_chain_length", preset.MaxChainLength)
	setOption("polymorphism", "min_branches", preset.PolymorphismMin)
	setOption("type_code", "min_branches", preset.TypeCodeMinBranches)
	setOption("functions_to_objects", "max_params", preset.MaxParams)
	setOption("coupling", "max_imports_warning", preset.MaxImportsWarning)
	setOption("dictionary_usage", "min_dict_keys", preset.MinDictKeys)

	return cfg
}
