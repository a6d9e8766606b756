package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mouthpiece/internal/config"
	"mouthpiece/internal/delivery"
	"mouthpiece/internal/history"
	"mouthpiece/internal/logging"
	"mouthpiece/internal/pipeline"
	"mouthpiece/internal/preflight"
	"mouthpiece/internal/rhubarb"
	"mouthpiece/internal/textutil"
	"mouthpiece/internal/timeline/parse"
)

// runOptions holds the flags shared by run and speak.
type runOptions struct {
	output         string
	outputDir      string
	format         string
	rhubarbPath    string
	dialog         string
	extendedShapes string
	recognizer     string
	name           string
	upload         bool
	play           bool
	parallel       int
}

func (o *runOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.output, "output", "o", "", "Write <prefix>.<fmt>, <prefix>.lipsync.json and <prefix>.wav (single input only)")
	flags.StringVar(&o.outputDir, "output-dir", "", "Write outputs for every input under this directory, named by logical name")
	flags.StringVarP(&o.format, "format", "f", "", "Analyzer export format: json, xml or tsv")
	flags.StringVar(&o.rhubarbPath, "rhubarb-path", "", "Path to the rhubarb executable")
	flags.StringVarP(&o.dialog, "dialog", "d", "", "Dialog text file to guide recognition")
	flags.StringVar(&o.extendedShapes, "extended-shapes", "", "Extended mouth shapes to use (subset of GHX)")
	flags.StringVarP(&o.recognizer, "recognizer", "r", "", "Recognizer: default or phonetic")
	flags.StringVarP(&o.name, "name", "n", "", "Logical name used for delivery (single input only)")
	flags.BoolVar(&o.upload, "upload", false, "Upload audio and lipsync to the avatar runtime")
	flags.BoolVar(&o.play, "play", false, "Trigger playback after upload (implies --upload)")
	flags.IntVarP(&o.parallel, "parallel", "p", 0, "Maximum concurrent runs (default pipeline.parallel)")
}

// apply copies cfg with the flag overrides applied and validated.
func (o *runOptions) apply(cfg *config.Config) (*config.Config, error) {
	out := *cfg
	if v := strings.TrimSpace(o.rhubarbPath); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return nil, fmt.Errorf("resolve --rhubarb-path: %w", err)
		}
		out.Rhubarb.Path = expanded
	}
	if v := strings.TrimSpace(o.format); v != "" {
		format, err := parse.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		out.Rhubarb.Format = string(format)
	}
	if v := strings.TrimSpace(o.recognizer); v != "" {
		mode, err := rhubarb.ParseMode(v)
		if err != nil {
			return nil, err
		}
		out.Rhubarb.Recognizer = string(mode)
	}
	if strings.TrimSpace(o.extendedShapes) != "" {
		out.Rhubarb.ExtendedShapes = strings.ToUpper(strings.TrimSpace(o.extendedShapes))
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *runOptions) deliver() bool {
	return o.upload || o.play
}

// job builds the pipeline job for one input. Only InputPath or Text is set by
// the caller afterwards.
func (o *runOptions) job(count int) (pipeline.Job, error) {
	if count > 1 && strings.TrimSpace(o.name) != "" {
		return pipeline.Job{}, errors.New("--name applies to a single input")
	}
	if count > 1 && strings.TrimSpace(o.output) != "" {
		return pipeline.Job{}, errors.New("--output applies to a single input; use --output-dir")
	}
	if strings.TrimSpace(o.output) != "" && strings.TrimSpace(o.outputDir) != "" {
		return pipeline.Job{}, errors.New("--output and --output-dir are mutually exclusive")
	}
	job := pipeline.Job{
		Name:         strings.TrimSpace(o.name),
		DialogPath:   strings.TrimSpace(o.dialog),
		OutputPrefix: strings.TrimSpace(o.output),
		Deliver:      o.deliver(),
		Play:         o.play,
	}
	if job.OutputPrefix != "" {
		expanded, err := config.ExpandPath(job.OutputPrefix)
		if err != nil {
			return pipeline.Job{}, err
		}
		job.OutputPrefix = expanded
	}
	return job, nil
}

// prefixFor places an input's outputs under --output-dir.
func (o *runOptions) prefixFor(name string) (string, error) {
	dir := strings.TrimSpace(o.outputDir)
	if dir == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return "", err
	}
	file := textutil.SanitizeFileName(name)
	if file == "" || file == "." || file == ".." {
		return "", fmt.Errorf("name %q is not usable as a file name", name)
	}
	return filepath.Join(expanded, file), nil
}

// newRunner wires a pipeline runner for cfg and returns a cleanup func that
// closes the history store.
func (c *commandContext) newRunner(cmd *cobra.Command, cfg *config.Config, opts *runOptions, withSpeech bool) (*pipeline.Runner, func(), error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
		return nil, nil, fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
	}

	runnerOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	cleanup := func() {}
	if store, err := history.Open(cfg.Paths.StateDir); err == nil {
		runnerOpts = append(runnerOpts, pipeline.WithHistory(store))
		cleanup = func() { _ = store.Close() }
	} else {
		logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
	}
	if opts.deliver() {
		runnerOpts = append(runnerOpts, pipeline.WithDeliverer(c.deliveryClient(cfg, logger)))
	}
	if withSpeech {
		client, err := c.speechClient(cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		runnerOpts = append(runnerOpts, pipeline.WithSynthesizer(client))
	}

	runner, err := pipeline.NewRunner(cmd.Context(), cfg, runnerOpts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return runner, cleanup, nil
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <input>...",
		Short: "Generate lip-sync timelines for audio files",
		Long: `Normalize each input, analyze it with Rhubarb Lip Sync, validate the
resulting mouth-cue timeline and optionally write it to disk or deliver it to
the avatar runtime. Exits non-zero when any input fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := opts.apply(base)
			if err != nil {
				return err
			}
			template, err := opts.job(len(args))
			if err != nil {
				return err
			}

			jobs := make([]pipeline.Job, 0, len(args))
			for _, arg := range args {
				input, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				job := template
				job.InputPath = input
				if job.OutputPrefix == "" {
					name := job.Name
					if name == "" {
						name = delivery.NameFromPath(input)
					}
					if job.OutputPrefix, err = opts.prefixFor(name); err != nil {
						return err
					}
				}
				jobs = append(jobs, job)
			}

			runner, cleanup, err := ctx.newRunner(cmd, cfg, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()

			outcomes, runErr := runner.RunAll(cmd.Context(), jobs, opts.parallel)
			if err := printOutcomes(cmd, ctx.JSONMode(), outcomes); err != nil {
				return err
			}
			return summarizeFailures(outcomes, runErr)
		},
	}
	opts.register(cmd)
	return cmd
}

func summarizeFailures(outcomes []pipeline.Outcome, runErr error) error {
	if runErr == nil {
		return nil
	}
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if len(outcomes) == 1 {
		return errors.New(pipeline.Describe(outcomes[0].Err))
	}
	return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
}
