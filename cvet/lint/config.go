package lint

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ConfigFilename is the file looked up in the working directory when
// no configuration path is given explicitly.
const ConfigFilename = "cvet.toml"

type IdentStyle string

const (
	IdentStyleSnake IdentStyle = "snake"
	IdentStyleAny   IdentStyle = "any"
)

type Config struct {
	// Enabled turns the style pass on or off as a whole.
	Enabled bool `toml:"enabled"`
	// IdentStyle is the required casing of declared names.
	IdentStyle IdentStyle `toml:"ident_style"`
	// MaxFunctionLines is the longest acceptable function body; 0
	// disables the check.
	MaxFunctionLines uint `toml:"max_function_lines"`
	// RequireBraces flags loop and branch bodies that are not blocks.
	RequireBraces bool `toml:"require_braces"`
	// MagicNumbers flags integer literals outside of AllowedNumbers
	// appearing anywhere but an initializer.
	MagicNumbers   bool    `toml:"magic_numbers"`
	AllowedNumbers []int64 `toml:"allowed_numbers"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		IdentStyle:       IdentStyleSnake,
		MaxFunctionLines: 60,
		RequireBraces:    true,
		MagicNumbers:     true,
		AllowedNumbers:   []int64{-1, 0, 1, 2},
	}
}

// LoadConfig reads a TOML configuration file, filling omitted keys with
// their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("cannot load %s: %w", path, err)
	}
	switch config.IdentStyle {
	case IdentStyleSnake, IdentStyleAny:
	default:
		return DefaultConfig(), fmt.Errorf(
			"cannot load %s: invalid ident_style %q (expected %q or %q)",
			path, config.IdentStyle, IdentStyleSnake, IdentStyleAny,
		)
	}
	return config, nil
}
