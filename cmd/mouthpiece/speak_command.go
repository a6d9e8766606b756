package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mouthpiece/internal/pipeline"
)

func newSpeakCommand(ctx *commandContext) *cobra.Command {
	opts := &runOptions{}
	var voiceID string

	cmd := &cobra.Command{
		Use:   "speak <text>...",
		Short: "Synthesize speech and generate its lip-sync timeline",
		Long: `Synthesize the text with the configured TTS service, then run the
synthesized audio through the same pipeline as "run". The words are joined
with spaces; quote the text to keep punctuation intact.`,
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
			job, err := opts.job(1)
			if err != nil {
				return err
			}
			job.Text = strings.Join(args, " ")
			job.VoiceID = strings.TrimSpace(voiceID)
			if job.OutputPrefix == "" && job.Name != "" {
				if job.OutputPrefix, err = opts.prefixFor(job.Name); err != nil {
					return err
				}
			}

			runner, cleanup, err := ctx.newRunner(cmd, cfg, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			res, runErr := runner.Run(cmd.Context(), job)
			outcomes := []pipeline.Outcome{{Job: job, Result: res, Err: runErr}}
			if err := printOutcomes(cmd, ctx.JSONMode(), outcomes); err != nil {
				return err
			}
			return summarizeFailures(outcomes, runErr)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&voiceID, "voice", "", "Voice id (default tts.voice_id)")
	return cmd
}
