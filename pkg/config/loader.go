package config

import (
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/tagfarm/pkg/errors"
)

// EnvPrefix is the prefix for configuration environment variables.
// Nesting uses a double underscore: TAGFARM_TAGS__FAVOURITE=true sets
// tags.favourite, while TAGFARM_STASH_URL sets stash_url.
const EnvPrefix = "TAGFARM_"

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"use_title": true,
	}
}

// Load reads the configuration file at path, applies defaults and
// environment overrides, and returns the validated Config.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			// Unknown keys are rejected at load time, not deep inside planning.
			ErrorUnused: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "invalid configuration in %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad,
			"unsupported config file extension on %s (want .yaml, .yml or .toml)", path)
	}
}
