package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mouthpiece/internal/config"
	"mouthpiece/internal/deps"
	"mouthpiece/internal/logging"
	"mouthpiece/internal/preflight"
	"mouthpiece/internal/staging"
)

type statusCheck struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Warning bool   `json:"warning,omitempty"`
	Detail  string `json:"detail"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check tools, directories and the avatar runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			checks := dependencyChecks(preflight.CheckSystemDeps(cfg))
			for _, dir := range []struct{ name, path string }{
				{"Staging directory", cfg.Paths.StagingDir},
				{"State directory", cfg.Paths.StateDir},
				{"Log directory", cfg.Paths.LogDir},
			} {
				r := preflight.CheckDirectoryAccess(dir.name, dir.path)
				checks = append(checks, statusCheck{Section: "Directories", Name: r.Name, Passed: r.Passed, Detail: r.Detail})
			}
			checks = append(checks, workspaceCheck(cfg))
			if offline {
				checks = append(checks, statusCheck{Section: "Services", Name: "Avatar runtime", Warning: true, Detail: "skipped (--offline)"})
			} else {
				r := preflight.CheckRuntime(cmd.Context(), ctx.deliveryClient(cfg, logger))
				checks = append(checks, statusCheck{Section: "Services", Name: r.Name, Passed: r.Passed, Detail: r.Detail})
			}
			checks = append(checks, ttsCheck(cfg))

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"config_path":   ctx.configPath,
					"config_exists": ctx.configExists,
					"checks":        checks,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Config: %s", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprint(out, " (not found, using defaults)")
			}
			fmt.Fprintln(out)
			section := ""
			for _, c := range checks {
				if c.Section != section {
					section = c.Section
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader(section, colorize) {
						fmt.Fprintln(out, line)
					}
				}
				fmt.Fprintln(out, renderStatusLine(c.Name, c.kind(), c.Detail, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the avatar runtime reachability check")
	return cmd
}

func (c statusCheck) kind() statusKind {
	switch {
	case c.Passed:
		return statusOK
	case c.Warning:
		return statusWarn
	default:
		return statusError
	}
}

func dependencyChecks(statuses []deps.Status) []statusCheck {
	checks := make([]statusCheck, 0, len(statuses))
	for _, s := range statuses {
		detail := s.Command
		if !s.Available {
			detail = strings.TrimSpace(s.Detail)
		}
		checks = append(checks, statusCheck{
			Section: "Dependencies",
			Name:    s.Name,
			Passed:  s.Available,
			Warning: s.Optional,
			Detail:  detail,
		})
	}
	return checks
}

func workspaceCheck(cfg *config.Config) statusCheck {
	check := statusCheck{Section: "Directories", Name: "Workspaces", Passed: true}
	dirs, err := staging.ListDirectories(cfg.Paths.StagingDir)
	if err != nil {
		check.Passed = false
		check.Detail = err.Error()
		return check
	}
	if len(dirs) == 0 {
		check.Detail = "none left behind"
		return check
	}
	var total int64
	for _, d := range dirs {
		total += d.Size
	}
	check.Passed = false
	check.Warning = true
	check.Detail = fmt.Sprintf("%d left behind (%s); run `mouthpiece staging clean`", len(dirs), logging.FormatBytes(total))
	return check
}

func ttsCheck(cfg *config.Config) statusCheck {
	check := statusCheck{Section: "Services", Name: "Speech synthesis"}
	switch {
	case strings.TrimSpace(cfg.TTS.APIKey) == "":
		check.Warning = true
		check.Detail = "no API key (speak and voices unavailable)"
	case strings.TrimSpace(cfg.TTS.VoiceID) == "":
		check.Warning = true
		check.Detail = "API key set, no default voice (pass --voice)"
	default:
		check.Passed = true
		check.Detail = fmt.Sprintf("%s voice %s", cfg.TTS.ModelID, cfg.TTS.VoiceID)
	}
	return check
}
