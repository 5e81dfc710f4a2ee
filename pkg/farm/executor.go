package farm

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/logging"
	"github.com/arthur-debert/tagfarm/pkg/types"
)

const (
	dirPerm = 0755
	// tmpSuffix names the sibling link used for atomic replacement.
	tmpSuffix = ".tagfarm-tmp"
)

// Executor applies plans to the filesystem. It is the only component
// that mutates; with dryRun set it records intended actions and touches
// nothing.
type Executor struct {
	fs        types.FS
	dryRun    bool
	pruneRoot string
	logger    zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPruneRoot enables best-effort removal of group directories left
// empty by remove operations, recursively up to but not including root.
func WithPruneRoot(root string) ExecutorOption {
	return func(e *Executor) { e.pruneRoot = filepath.Clean(root) }
}

// NewExecutor creates an executor over the given filesystem.
func NewExecutor(fsys types.FS, dryRun bool, opts ...ExecutorOption) *Executor {
	e := &Executor{
		fs:     fsys,
		dryRun: dryRun,
		logger: logging.GetLogger("farm.executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies the plan and returns the run report. Per-entry
// failures are aggregated, never raised: a directory failure aborts the
// operations under that directory but unrelated subtrees proceed.
func (e *Executor) Execute(plan *Plan) *Report {
	report := &Report{DryRun: e.dryRun}
	report.Warnings = append(report.Warnings, plan.Warnings...)

	var failedDirs []string
	underFailed := func(path string) bool {
		for _, dir := range failedDirs {
			if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	for _, dir := range plan.Dirs {
		if underFailed(dir) {
			continue
		}
		if e.dryRun {
			continue
		}
		if err := e.ensureDir(dir); err != nil {
			e.logger.Warn().Err(err).Str("dir", dir).Msg("directory creation failed")
			report.addFailure(dir, err)
			failedDirs = append(failedDirs, dir)
		}
	}

	var prune []string
	for _, op := range plan.Ops {
		if op.Kind != OpNoop && underFailed(op.LinkPath) {
			report.addFailure(op.LinkPath, errors.Newf(errors.ErrDirCreate,
				"skipped: parent directory unavailable"))
			continue
		}
		switch op.Kind {
		case OpNoop:
			report.Skipped++
		case OpCreate:
			e.createLink(op, report)
		case OpReplace:
			e.replaceLink(op, report)
		case OpRemove:
			if e.removeLink(op, report) {
				prune = append(prune, filepath.Dir(op.LinkPath))
			}
		}
	}

	if !e.dryRun && e.pruneRoot != "" {
		e.pruneEmptyDirs(prune)
	}

	e.logger.Info().
		Bool("dryRun", e.dryRun).
		Int("created", report.Created).
		Int("replaced", report.Replaced).
		Int("removed", report.Removed).
		Int("skipped", report.Skipped).
		Int("failures", len(report.Failures)).
		Msg("plan executed")
	return report
}

// ensureDir is idempotent: an existing directory is fine, anything else
// occupying the path is not.
func (e *Executor) ensureDir(dir string) error {
	if info, err := e.fs.Lstat(dir); err == nil {
		if info.IsDir() {
			return nil
		}
		return errors.Newf(errors.ErrDirCreate, "%s exists and is not a directory", dir)
	}
	if err := e.fs.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}
	return nil
}

func (e *Executor) createLink(op Operation, report *Report) {
	if e.dryRun {
		report.Created++
		report.Actions = append(report.Actions, fmt.Sprintf("create %s -> %s", op.LinkPath, op.Target))
		return
	}

	info, err := e.fs.Lstat(op.LinkPath)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink != 0:
		// Appeared since the state snapshot; replace atomically.
		e.replaceLink(op, report)
		return
	case err == nil:
		report.addFailure(op.LinkPath, errors.Newf(errors.ErrFileExists,
			"path is occupied by a non-link entry"))
		return
	case !os.IsNotExist(err):
		report.addFailure(op.LinkPath, errors.Wrap(err, errors.ErrFileStat, "cannot inspect link path"))
		return
	}

	if err := e.fs.Symlink(op.Target, op.LinkPath); err != nil {
		report.addFailure(op.LinkPath, errors.Wrap(err, errors.ErrSymlinkCreate, "cannot create link"))
		return
	}
	report.Created++
	report.Actions = append(report.Actions, fmt.Sprintf("create %s -> %s", op.LinkPath, op.Target))
}

// replaceLink swaps the link atomically: a temporary sibling is created
// and renamed over the old link, so a concurrent observer never sees the
// name missing.
func (e *Executor) replaceLink(op Operation, report *Report) {
	if e.dryRun {
		report.Replaced++
		report.Actions = append(report.Actions, fmt.Sprintf("replace %s -> %s", op.LinkPath, op.Target))
		return
	}

	tmp := op.LinkPath + tmpSuffix
	_ = e.fs.Remove(tmp)
	if err := e.fs.Symlink(op.Target, tmp); err != nil {
		report.addFailure(op.LinkPath, errors.Wrap(err, errors.ErrSymlinkCreate, "cannot stage replacement link"))
		return
	}
	if err := e.fs.Rename(tmp, op.LinkPath); err != nil {
		_ = e.fs.Remove(tmp)
		report.addFailure(op.LinkPath, errors.Wrap(err, errors.ErrSymlinkCreate, "cannot swap replacement link"))
		return
	}
	report.Replaced++
	report.Actions = append(report.Actions, fmt.Sprintf("replace %s -> %s", op.LinkPath, op.Target))
}

func (e *Executor) removeLink(op Operation, report *Report) bool {
	if e.dryRun {
		report.Removed++
		report.Actions = append(report.Actions, fmt.Sprintf("remove %s", op.LinkPath))
		return false
	}
	if err := e.fs.Remove(op.LinkPath); err != nil {
		report.addFailure(op.LinkPath, errors.Wrap(err, errors.ErrSymlinkRemove, "cannot remove link"))
		return false
	}
	report.Removed++
	report.Actions = append(report.Actions, fmt.Sprintf("remove %s", op.LinkPath))
	return true
}

// pruneEmptyDirs removes directories emptied by link removal,
// best-effort, walking up to but never including the prune root.
func (e *Executor) pruneEmptyDirs(dirs []string) {
	seen := make(map[string]bool)
	var candidates []string
	for _, dir := range dirs {
		for d := filepath.Clean(dir); d != e.pruneRoot && strings.HasPrefix(d, e.pruneRoot+string(filepath.Separator)); d = filepath.Dir(d) {
			if !seen[d] {
				seen[d] = true
				candidates = append(candidates, d)
			}
		}
	}
	// Deepest first so children empty out before their parents.
	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) > len(candidates[j]) })

	for _, dir := range candidates {
		// The two category directories are part of the persisted layout.
		if filepath.Dir(dir) == e.pruneRoot {
			continue
		}
		entries, err := e.fs.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := e.fs.Remove(dir); err == nil {
			e.logger.Debug().Str("dir", dir).Msg("pruned empty directory")
		}
	}
}
