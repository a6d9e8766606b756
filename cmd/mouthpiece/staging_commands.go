package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mouthpiece/internal/logging"
	"mouthpiece/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Inspect and clean run workspaces",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List run workspaces left in the staging directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stagingDir := cfg.Paths.StagingDir
			dirs, err := staging.ListDirectories(stagingDir)
			if err != nil {
				return fmt.Errorf("list staging directories: %w", err)
			}

			var totalSize int64
			for _, dir := range dirs {
				totalSize += dir.Size
			}
			if ctx.JSONMode() {
				if dirs == nil {
					dirs = []staging.DirInfo{}
				}
				return writeJSON(cmd, map[string]any{
					"staging_dir":      stagingDir,
					"directories":      dirs,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No workspaces found")
				return nil
			}
			fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				age := time.Since(dir.ModTime).Truncate(time.Second)
				rows = append(rows, []string{dir.Name, age.String(), logging.FormatBytes(dir.Size)})
			}
			fmt.Fprint(out, renderTable([]column{
				{Header: "Workspace"}, {Header: "Age", Right: true}, {Header: "Size", Right: true},
			}, rows))
			fmt.Fprintf(out, "\nTotal: %d workspaces, %s\n", len(dirs), logging.FormatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var cleanAll bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale run workspaces",
		Long: `Remove run workspaces left behind by interrupted runs.

By default only workspaces older than pipeline.stale_workspace_hours are
removed. Use --older-than to pick another age or --all to remove every
workspace, including those of runs still in progress.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			age := cfg.StaleWorkspaceAge()
			if olderThan > 0 {
				age = olderThan
			}
			if cleanAll {
				// Every workspace is older than a nanosecond.
				age = time.Nanosecond
			}
			if age <= 0 {
				return fmt.Errorf("no age given: set pipeline.stale_workspace_hours, --older-than or --all")
			}

			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, age, logger)
			if ctx.JSONMode() {
				errs := make([]map[string]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, map[string]string{"path": e.Path, "error": e.Error.Error()})
				}
				return writeJSON(cmd, map[string]any{"removed": result.Removed, "errors": errs})
			}
			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 && len(result.Errors) == 0 {
				fmt.Fprintln(out, "No workspaces to remove")
				return nil
			}
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			for _, e := range result.Errors {
				fmt.Fprintf(out, "Failed to remove %s: %v\n", e.Path, e.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d workspaces could not be removed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove workspaces older than this (e.g. 2h)")
	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove every workspace regardless of age")
	return cmd
}
