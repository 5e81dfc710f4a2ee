// Package build wires the catalog selection, planner, and executor into
// the library entry point behind `tagfarm build`.
package build

import (
	"context"

	"github.com/arthur-debert/tagfarm/pkg/catalog"
	"github.com/arthur-debert/tagfarm/pkg/config"
	"github.com/arthur-debert/tagfarm/pkg/farm"
	"github.com/arthur-debert/tagfarm/pkg/filesystem"
	"github.com/arthur-debert/tagfarm/pkg/logging"
	"github.com/arthur-debert/tagfarm/pkg/types"
)

// Options defines the options for the Build command.
type Options struct {
	// Config is the resolved configuration. Required.
	Config *config.Config
	// Client is the catalog client (optional, defaults to an HTTP
	// client for Config.StashURL).
	Client catalog.Client
	// FileSystem is the filesystem to use (optional, defaults to OS
	// filesystem).
	FileSystem types.FS
	// DryRun reports the plan without mutating the filesystem.
	DryRun bool
}

// Build fetches the selected catalog subset, reconciles it against the
// farm tree, and applies the resulting plan. A catalog error is fatal
// and returns before anything touches disk; per-entry filesystem
// failures aggregate into the report instead.
func Build(ctx context.Context, opts Options) (*farm.Report, error) {
	logger := logging.GetLogger("commands.build")
	done := logging.LogOperationStart(logger, "build")
	defer done()

	cfg := opts.Config
	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	client := opts.Client
	if client == nil {
		client = catalog.New(cfg.StashURL, cfg.APIKey)
	}

	var groups []farm.Group
	var warnings []string

	tags, tagWarnings, err := catalog.SelectTags(ctx, client, cfg.Tags.Favourite, cfg.Tags.Names)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, tagWarnings...)
	for _, tag := range tags {
		scenes, err := client.ScenesByTag(ctx, tag.ID)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("tag", tag.Name).Int("scenes", len(scenes)).Msg("fetched scenes")
		groups = append(groups, farm.Group{Category: farm.CategoryTag, Name: tag.Name, Scenes: scenes})
	}

	performers, performerWarnings, err := catalog.SelectPerformers(ctx, client, cfg.Performers.Favourite, cfg.Performers.Names)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, performerWarnings...)
	for _, performer := range performers {
		scenes, err := client.ScenesByPerformer(ctx, performer.ID)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("performer", performer.Name).Int("scenes", len(scenes)).Msg("fetched scenes")
		groups = append(groups, farm.Group{Category: farm.CategoryPerformer, Name: performer.Name, Scenes: scenes})
	}

	state, err := farm.ReadState(fs, cfg.FarmPath)
	if err != nil {
		return nil, err
	}

	plan := farm.BuildPlan(groups, state, farm.PlanOptions{
		FarmRoot: cfg.FarmPath,
		UseTitle: cfg.UseTitle,
		PathMap:  cfg.PathMap,
	})
	plan.Warnings = append(warnings, plan.Warnings...)

	executor := farm.NewExecutor(fs, opts.DryRun)
	return executor.Execute(plan), nil
}
