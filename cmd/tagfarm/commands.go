package tagfarm

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tagfarm/internal/version"
	"github.com/arthur-debert/tagfarm/pkg/commands/build"
	"github.com/arthur-debert/tagfarm/pkg/commands/clean"
	"github.com/arthur-debert/tagfarm/pkg/commands/initialize"
	"github.com/arthur-debert/tagfarm/pkg/config"
	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/farm"
	"github.com/arthur-debert/tagfarm/pkg/logging"
	"github.com/arthur-debert/tagfarm/pkg/paths"
	"github.com/arthur-debert/tagfarm/pkg/ui"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		configPath string
		verbosity  int
		dryRun     bool
		formatName string
	)

	rootCmd := &cobra.Command{
		Use:     "tagfarm",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "auto", MsgFlagFormat)

	rootCmd.AddCommand(newBuildCmd(&configPath, &dryRun, &formatName))
	rootCmd.AddCommand(newCleanCmd(&configPath, &dryRun, &formatName))
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newBuildCmd(configPath *string, dryRun *bool, formatName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: MsgBuildShort,
		Long:  MsgBuildLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			report, err := build.Build(cmd.Context(), build.Options{
				Config: cfg,
				DryRun: *dryRun,
			})
			if err != nil {
				return err
			}
			return renderAndStatus(report, *formatName)
		},
	}
}

func newCleanCmd(configPath *string, dryRun *bool, formatName *string) *cobra.Command {
	var pruneDirs bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: MsgCleanShort,
		Long:  MsgCleanLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			report, err := clean.Clean(clean.Options{
				Config:    cfg,
				DryRun:    *dryRun,
				PruneDirs: pruneDirs,
			})
			if err != nil {
				return err
			}
			return renderAndStatus(report, *formatName)
		},
	}
	cmd.Flags().BoolVar(&pruneDirs, "prune-dirs", true, MsgFlagPrune)
	return cmd
}

func newInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		Long:  MsgInitLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				path = paths.DefaultConfigPath()
			}
			if err := initialize.WriteSampleConfig(nil, path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration created at %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tagfarm version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func loadConfig(explicit string) (*config.Config, error) {
	path, err := paths.FindConfig(explicit)
	if err != nil {
		if errors.IsCode(err, errors.ErrConfigLoad) && explicit == "" {
			return nil, fmt.Errorf("%w\nrun 'tagfarm init' to create a sample configuration file", err)
		}
		return nil, err
	}
	return config.Load(path)
}

// renderAndStatus writes the report and turns recorded failures into a
// non-zero exit status at this boundary only.
func renderAndStatus(report *farm.Report, formatName string) error {
	format, err := ui.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if err := ui.RenderReport(os.Stdout, report, format.Resolve(os.Stdout)); err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("completed with %d failures", len(report.Failures))
	}
	return nil
}
