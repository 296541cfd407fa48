package langregistry

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-loadable shape of a session's language list: the
// metadata fields a config file can express directly (name,
// extensions, shebangs, included_langs, auto_limit_new). Load and
// AutoAllows are behavior, not data, so a Config only describes which
// languages exist and how they nest; the caller supplies the matching
// loader/auto_allows functions when turning a Config into a Registry.
type Config struct {
	Languages []LanguageConfig `yaml:"languages"`
}

// LanguageConfig is one entry under Config.Languages.
type LanguageConfig struct {
	Name          string   `yaml:"name"`
	Extensions    []string `yaml:"extensions"`
	Shebangs      []string `yaml:"shebangs"`
	IncludedLangs []string `yaml:"included_langs"`
	AutoLimitNew  bool     `yaml:"auto_limit_new"`
}

// LoadConfig parses a YAML document of the Config shape.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("langregistry: decode config: %w", err)
	}
	return cfg, nil
}

// Loaders maps a language name to the functions a Config can't carry
// itself: Load (builds the language's tables) and AutoAllows (the
// host grammar's token-acceptance rule). A name present in Config but
// absent from loaders registers with a nil Load, which EvaluateSupport
// reports as unsupported rather than treating as an error — a config
// may list a language the running process hasn't wired a loader for
// yet.
type Loaders map[string]struct {
	Load       func() (Tables, error)
	AutoAllows func(sub, tokenKind string) bool
}

// Build turns cfg into a Registry, pairing each entry's metadata with
// the matching Loaders entry when one exists.
func (cfg Config) Build(loaders Loaders) *Registry {
	reg := NewRegistry()
	for _, lc := range cfg.Languages {
		d := Descriptor{
			Name:          lc.Name,
			Extensions:    lc.Extensions,
			Shebangs:      lc.Shebangs,
			IncludedLangs: lc.IncludedLangs,
			AutoLimitNew:  lc.AutoLimitNew,
		}
		if entry, ok := loaders[lc.Name]; ok {
			d.Load = entry.Load
			d.AutoAllows = entry.AutoAllows
		}
		reg.Register(d)
	}
	return reg
}
