// Package initialize writes the sample configuration file behind
// `tagfarm init`.
package initialize

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/tagfarm/pkg/config"
	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/filesystem"
	"github.com/arthur-debert/tagfarm/pkg/logging"
	"github.com/arthur-debert/tagfarm/pkg/types"
)

const header = `# tagfarm configuration.
# stash_url and farm_path are required; everything else is optional.
# api_key: set it if your Stash server requires authentication.
# path_map: rewrite server-side path prefixes to local mounts, e.g.
#   path_map:
#     /server/media: /mnt/media
`

// sampleFile mirrors config.Config with yaml tags for emission.
type sampleFile struct {
	StashURL   string      `yaml:"stash_url"`
	APIKey     *string     `yaml:"api_key"`
	FarmPath   string      `yaml:"farm_path"`
	UseTitle   bool        `yaml:"use_title"`
	Tags       sampleGroup `yaml:"tags"`
	Performers sampleGroup `yaml:"performers"`
}

type sampleGroup struct {
	Favourite bool     `yaml:"favourite"`
	Names     []string `yaml:"names"`
}

// WriteSampleConfig writes a commented sample configuration to path.
// An existing file is never overwritten unless force is set.
func WriteSampleConfig(fsys types.FS, path string, force bool) error {
	logger := logging.GetLogger("commands.init")

	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	if _, err := fsys.Lstat(path); err == nil && !force {
		return errors.Newf(errors.ErrFileExists,
			"%s already exists; pass --force to overwrite", path)
	} else if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileStat, "cannot inspect %s", path)
	}

	sample := config.Sample()
	out := sampleFile{
		StashURL: sample.StashURL,
		FarmPath: sample.FarmPath,
		UseTitle: sample.UseTitle,
		Tags:     sampleGroup{Favourite: sample.Tags.Favourite, Names: sample.Tags.Names},
		Performers: sampleGroup{
			Favourite: sample.Performers.Favourite,
			Names:     sample.Performers.Names,
		},
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode sample config")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode sample config")
	}

	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}

	logger.Info().Str("path", path).Msg("sample configuration written")
	return nil
}
