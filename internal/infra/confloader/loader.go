package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "KVSH_"

// Sources names the layers Load merges over a target's current values.
type Sources struct {
	// File is a YAML file. Empty skips the layer.
	File string
	// EnvPrefix selects environment variables. Empty means EnvPrefix.
	EnvPrefix string
	// Flags maps dotted keys ("log.level") to command-line values.
	Flags map[string]any
}

type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

func (s Sources) layers() []layer {
	prefix := s.EnvPrefix
	if prefix == "" {
		prefix = EnvPrefix
	}

	var out []layer
	if s.File != "" {
		out = append(out, layer{"file " + s.File, file.Provider(s.File), yaml.Parser()})
	}
	out = append(out, layer{"environment", env.Provider(prefix, ".", func(name string) string {
		return EnvKey(prefix, name)
	}), nil})
	if len(s.Flags) > 0 {
		out = append(out, layer{"flags", confmap.Provider(s.Flags, "."), nil})
	}
	return out
}

// Load merges file, environment and flags, in increasing priority, into
// target. Fields no layer sets keep their value, so target should hold
// the defaults.
func Load(target any, src Sources) error {
	k := koanf.New(".")
	for _, l := range src.layers() {
		if err := k.Load(l.provider, l.parser); err != nil {
			return fmt.Errorf("load %s: %w", l.name, err)
		}
	}
	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// EnvKey maps an environment variable to a config key:
// KVSH_TIMEOUTS_CONNECT becomes timeouts.connect.
func EnvKey(prefix, name string) string {
	name = strings.TrimPrefix(name, prefix)
	return strings.ReplaceAll(strings.ToLower(name), "_", ".")
}
