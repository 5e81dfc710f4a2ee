package farm

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/logging"
	"github.com/arthur-debert/tagfarm/pkg/types"
)

// LinkState is the on-disk reality of one symlink.
type LinkState struct {
	// Target is the link's destination as written, resolved to an
	// absolute path when the link is relative.
	Target string
	// Broken is set when the target does not exist.
	Broken bool
}

// State is a read-only snapshot of every symlink under the farm root,
// keyed by absolute link path. It is taken once per run; the filesystem
// is externally mutable, so plans built from it can go stale — re-running
// is the recovery mechanism.
type State struct {
	Links map[string]LinkState
}

// Lookup returns the state of the link at path, if any.
func (s *State) Lookup(path string) (LinkState, bool) {
	ls, ok := s.Links[filepath.Clean(path)]
	return ls, ok
}

// ReadState walks the farm tree and records every symlink it finds.
// A missing farm root yields an empty state, not an error.
func ReadState(fsys types.FS, root string) (*State, error) {
	state := &State{Links: make(map[string]LinkState)}

	err := walkLinks(fsys, root, func(linkPath string, target string) {
		resolved := resolveTarget(filepath.Dir(linkPath), target)
		broken := false
		if _, err := fsys.Stat(resolved); err != nil {
			if os.IsNotExist(err) {
				broken = true
			}
		}
		state.Links[linkPath] = LinkState{Target: resolved, Broken: broken}
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// walkLinks visits every symlink under root in sorted order. Readlink
// failures on individual entries are logged and skipped; directory read
// failures abort the walk.
func walkLinks(fsys types.FS, root string, visit func(linkPath, target string)) error {
	logger := logging.GetLogger("farm.state")
	root = filepath.Clean(root)
	if _, err := fsys.Lstat(root); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFarmScan, "cannot access farm root %s", root)
	}

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFarmScan, "cannot read directory %s", dir)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.Type()&fs.ModeSymlink != 0:
				target, err := fsys.Readlink(path)
				if err != nil {
					logger.Debug().Err(err).Str("path", path).Msg("readlink failed, entry skipped")
					continue
				}
				visit(path, target)
			case entry.IsDir():
				if err := walk(path); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(root)
}

// resolveTarget makes a link target absolute relative to the link's
// directory.
func resolveTarget(dir, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(dir, target)
}
