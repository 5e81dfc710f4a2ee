// Package clean removes dangling symlinks from the farm tree; the
// library entry point behind `tagfarm clean`.
package clean

import (
	"github.com/arthur-debert/tagfarm/pkg/config"
	"github.com/arthur-debert/tagfarm/pkg/farm"
	"github.com/arthur-debert/tagfarm/pkg/filesystem"
	"github.com/arthur-debert/tagfarm/pkg/logging"
	"github.com/arthur-debert/tagfarm/pkg/types"
)

// Options defines the options for the Clean command.
type Options struct {
	// Config is the resolved configuration. Required.
	Config *config.Config
	// FileSystem is the filesystem to use (optional, defaults to OS
	// filesystem).
	FileSystem types.FS
	// DryRun reports what would be removed without removing it.
	DryRun bool
	// PruneDirs also removes group directories left empty by the
	// removals, up to but not including the farm root.
	PruneDirs bool
}

// Clean scans the farm tree for symlinks whose targets are gone and
// removes them through the same executor path as build, honoring
// dry-run identically. Links whose targets cannot be inspected (e.g.
// permission errors) are reported, never removed.
func Clean(opts Options) (*farm.Report, error) {
	logger := logging.GetLogger("commands.clean")
	done := logging.LogOperationStart(logger, "clean")
	defer done()

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}

	dangling, err := farm.ScanDangling(fs, opts.Config.FarmPath)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("dangling", len(dangling)).Msg("scan finished")

	plan := farm.RemovalPlan(dangling)

	var executorOpts []farm.ExecutorOption
	if opts.PruneDirs {
		executorOpts = append(executorOpts, farm.WithPruneRoot(opts.Config.FarmPath))
	}
	executor := farm.NewExecutor(fs, opts.DryRun, executorOpts...)
	return executor.Execute(plan), nil
}
