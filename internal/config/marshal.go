package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Marshal
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// ValidFormats returns the formats accepted by Marshal
func ValidFormats() []string {
	return []string{FormatYAML, FormatTOML}
}

// Marshal renders cfg in the given format ("yaml" or "toml", case-insensitive).
// An empty format means yaml, which is also what the config file uses.
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatYAML, "yml":
		return yaml.Marshal(cfg)
	case FormatTOML:
		return toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported format %q (valid: %s)", format, strings.Join(ValidFormats(), ", "))
	}
}
