// Package config loads and validates the tagfarm configuration.
//
// Configuration is layered with koanf: built-in defaults first, then the
// config file (YAML or TOML, chosen by extension), then TAGFARM_*
// environment variables. The result is decoded strictly into Config; an
// unknown key is a load-time error rather than a surprise deep inside
// planning.
package config

import (
	"net/url"

	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/paths"
)

// GroupConfig selects tags or performers for inclusion in the farm.
type GroupConfig struct {
	// Favourite includes every catalog entry carrying the favourite flag.
	Favourite bool `koanf:"favourite"`
	// Names includes entries by exact display name.
	Names []string `koanf:"names"`
}

// Config is the resolved tagfarm configuration.
type Config struct {
	// StashURL is the GraphQL endpoint of the catalog server. Required.
	StashURL string `koanf:"stash_url"`
	// APIKey is sent in the ApiKey header when non-empty.
	APIKey string `koanf:"api_key"`
	// FarmPath is the linkfarm root directory. Required.
	FarmPath string `koanf:"farm_path"`
	// UseTitle names links after the scene title instead of the source
	// file basename. Defaults to true.
	UseTitle bool `koanf:"use_title"`
	// PathMap rewrites scene source path prefixes, longest prefix wins.
	// Useful when the catalog server reports container paths that differ
	// from the local mount.
	PathMap map[string]string `koanf:"path_map"`

	Tags       GroupConfig `koanf:"tags"`
	Performers GroupConfig `koanf:"performers"`
}

// Validate checks required fields and value shapes. Errors name the
// offending key.
func (c *Config) Validate() error {
	if c.StashURL == "" {
		return errors.New(errors.ErrConfigValid, "stash_url is required")
	}
	u, err := url.Parse(c.StashURL)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "stash_url %q is not a valid URL", c.StashURL)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.Newf(errors.ErrConfigValid, "stash_url %q must be an absolute http(s) URL", c.StashURL)
	}
	if c.FarmPath == "" {
		return errors.New(errors.ErrConfigValid, "farm_path is required")
	}

	expanded, err := paths.ExpandHome(c.FarmPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "farm_path")
	}
	c.FarmPath = expanded

	for from, to := range c.PathMap {
		if from == "" || to == "" {
			return errors.New(errors.ErrConfigValid, "path_map entries must map a non-empty prefix to a non-empty prefix")
		}
	}
	return nil
}

// Sample returns the configuration emitted by `tagfarm init`.
func Sample() *Config {
	return &Config{
		StashURL: "http://localhost:9999/graphql",
		FarmPath: "/path/to/linkfarm",
		UseTitle: true,
		Tags: GroupConfig{
			Favourite: true,
			Names:     []string{"Manual Tag", "Overrides", "Go Here"},
		},
		Performers: GroupConfig{
			Favourite: true,
			Names:     []string{"Manual Performer", "Overrides", "Go Here"},
		},
	}
}
