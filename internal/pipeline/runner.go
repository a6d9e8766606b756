package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"mouthpiece/internal/audio"
	"mouthpiece/internal/config"
	"mouthpiece/internal/delivery"
	"mouthpiece/internal/history"
	"mouthpiece/internal/logging"
	"mouthpiece/internal/rhubarb"
	"mouthpiece/internal/services"
	"mouthpiece/internal/staging"
	"mouthpiece/internal/textutil"
	"mouthpiece/internal/timeline"
	"mouthpiece/internal/timeline/parse"
	"mouthpiece/internal/tts"
)

// Deliverer pushes a packaged bundle into the avatar runtime.
type Deliverer interface {
	Deliver(ctx context.Context, b delivery.Bundle, play bool) error
}

// Recorder persists the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor routes every external process (ffmpeg, ffprobe, rhubarb)
// through exec.
func WithExecutor(exec services.Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithDeliverer sets the runtime client used by jobs with Deliver set.
func WithDeliverer(d Deliverer) Option {
	return func(r *Runner) {
		r.deliverer = d
	}
}

// WithSynthesizer sets the speech service used by text jobs.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(r *Runner) {
		r.synth = s
	}
}

// WithHistory records every run, successful or not.
func WithHistory(rec Recorder) Option {
	return func(r *Runner) {
		r.history = rec
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "pipeline")
	}
}

// WithIDGenerator replaces uuid.NewString for request IDs.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithAnalyzerCache gives the runner its own analyzer path cache.
func WithAnalyzerCache(cache *rhubarb.PathCache) Option {
	return func(r *Runner) {
		r.cache = cache
	}
}

// Runner executes jobs against one configuration. It is safe for concurrent
// use.
type Runner struct {
	cfg       *config.Config
	exec      services.Executor
	deliverer Deliverer
	synth     tts.Synthesizer
	history   Recorder
	logger    *slog.Logger
	newID     func() string
	cache     *rhubarb.PathCache
	analyzer  *rhubarb.Analyzer
}

// NewRunner prepares the configured directories and clears workspaces left
// behind by earlier runs.
func NewRunner(ctx context.Context, cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new runner", "config required", nil)
	}
	r := &Runner{
		cfg:    cfg,
		exec:   services.CommandExecutor{},
		logger: logging.NewComponentLogger(nil, "pipeline"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "prepare directories", "", err)
	}

	analyzerOpts := []rhubarb.Option{
		rhubarb.WithExecutor(r.exec),
		rhubarb.WithTimeout(cfg.RhubarbTimeout()),
		rhubarb.WithLogger(r.logger),
	}
	if r.cache != nil {
		analyzerOpts = append(analyzerOpts, rhubarb.WithCache(r.cache))
	}
	r.analyzer = rhubarb.New(cfg.Rhubarb.Path, analyzerOpts...)

	if age := cfg.StaleWorkspaceAge(); age > 0 {
		staging.CleanStale(ctx, cfg.Paths.StagingDir, age, r.logger)
	}
	return r, nil
}

// Analyzer exposes the runner's analyzer, mainly for status reporting.
func (r *Runner) Analyzer() *rhubarb.Analyzer {
	return r.analyzer
}

// run carries the state of one job between stages.
type run struct {
	job        Job
	id         string
	name       string
	format     parse.Format
	recognizer rhubarb.Mode
	ws         *staging.Workspace
	source     audio.Asset
	normalized *audio.Normalized
	output     rhubarb.Output
	timeline   timeline.Timeline
	bundle     delivery.Bundle
	outputs    []string
	delivered  bool
}

// Run processes job through every stage. The returned error is a
// *StageError when a stage failed.
func (r *Runner) Run(ctx context.Context, job Job) (result *Result, err error) {
	started := time.Now()
	st := &run{job: job, id: r.newID()}
	ctx = services.WithRequestID(ctx, st.id)
	logger := logging.WithContext(ctx, r.logger)

	var failedStage string
	defer func() {
		r.record(ctx, st, started, failedStage, err)
	}()

	if err := r.prepare(st); err != nil {
		failedStage = StageNormalize
		if job.Text != "" {
			failedStage = StageSynthesize
		}
		logging.ErrorWithContext(logger, "job rejected", "job_rejected", logging.Error(err))
		return nil, stageError(failedStage, err)
	}
	ctx = services.WithLogicalName(ctx, st.name)
	logger = logging.WithContext(ctx, r.logger)

	ws, err := staging.NewWorkspace(r.cfg.Paths.StagingDir, st.id)
	if err != nil {
		failedStage = StageNormalize
		return nil, stageError(failedStage, services.Wrap(services.ErrConfiguration, StageNormalize, "create workspace", "", err))
	}
	st.ws = ws
	defer func() {
		if st.normalized != nil {
			_ = st.normalized.Close()
		}
		if rmErr := ws.Remove(); rmErr != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "workspace cleanup failed", "workspace_cleanup_failed",
				logging.String("workspace", ws.Dir),
				logging.Error(rmErr),
			)
		}
	}()

	stages := []struct {
		name string
		fn   func(context.Context, *run) error
		skip bool
	}{
		{StageSynthesize, r.synthesize, job.Text == ""},
		{StageNormalize, r.normalize, false},
		{StageAnalyze, r.analyze, false},
		{StageParse, r.parseCues, false},
		{StageValidate, r.validate, false},
		{StagePackage, r.pack, false},
		{StageWrite, r.write, strings.TrimSpace(job.OutputPrefix) == ""},
		{StageDeliver, r.deliver, !job.Deliver},
	}
	for _, s := range stages {
		if s.skip {
			continue
		}
		if err := r.runStage(ctx, s.name, st, s.fn); err != nil {
			failedStage = s.name
			return nil, err
		}
	}

	result = &Result{
		RequestID:  st.id,
		Name:       st.name,
		Source:     st.source,
		Normalized: st.normalized.Asset,
		Format:     st.format,
		Recognizer: st.recognizer,
		Raw:        st.output.Data,
		Timeline:   st.timeline,
		Bundle:     st.bundle,
		Outputs:    st.outputs,
		Delivered:  st.delivered,
		Elapsed:    time.Since(started),
	}
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.String("name", st.name),
		logging.Int("cues", st.timeline.Len()),
		logging.Float64("duration_seconds", st.timeline.Duration()),
		logging.Bool("delivered", st.delivered),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (r *Runner) runStage(ctx context.Context, name string, st *run, fn func(context.Context, *run) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, r.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()
	if err := fn(stageCtx, st); err != nil {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.ErrorKind(err),
			logging.Error(err),
		)
		return stageError(name, err)
	}
	logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// prepare resolves the job's name, format, and recognizer before any work
// is done.
func (r *Runner) prepare(st *run) error {
	job := st.job
	text := strings.TrimSpace(job.Text)
	input := strings.TrimSpace(job.InputPath)
	switch {
	case text != "" && input != "":
		return services.Wrap(services.ErrValidation, "pipeline", "job", "input path and text are mutually exclusive", nil)
	case text == "" && input == "":
		return services.Wrap(services.ErrValidation, "pipeline", "job", "input path or text required", nil)
	case text != "" && r.synth == nil:
		return services.Wrap(services.ErrConfiguration, StageSynthesize, "job", "no speech synthesizer configured", nil)
	case job.Deliver && r.deliverer == nil:
		return services.Wrap(services.ErrConfiguration, StageDeliver, "job", "no runtime client configured", nil)
	}

	name := strings.TrimSpace(job.Name)
	if name == "" {
		if input != "" {
			name = delivery.NameFromPath(input)
		} else {
			name = nameFromText(text)
		}
	}
	logical, err := delivery.NormalizeName(name)
	if err != nil {
		return err
	}
	st.name = logical

	st.format = job.Format
	if st.format == "" {
		st.format, err = parse.ParseFormat(r.cfg.Rhubarb.Format)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, StageAnalyze, "cue format", "", err)
		}
	}
	st.recognizer = job.Recognizer
	if st.recognizer == "" {
		st.recognizer, err = rhubarb.ParseMode(r.cfg.Rhubarb.Recognizer)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, StageAnalyze, "recognizer", "", err)
		}
	}
	if input != "" {
		st.source = audio.NewAsset(input)
	}
	return nil
}

func (r *Runner) synthesize(ctx context.Context, st *run) error {
	voiceID := strings.TrimSpace(st.job.VoiceID)
	if voiceID == "" {
		voiceID = r.cfg.TTS.VoiceID
	}
	if voiceID == "" {
		return services.Wrap(services.ErrConfiguration, StageSynthesize, "voice", "no voice id given or configured", nil)
	}
	settings := voiceSettings(r.cfg)
	if st.job.Voice != nil {
		settings = *st.job.Voice
	}
	asset, err := tts.SynthesizeToFile(ctx, r.synth, st.job.Text, voiceID, settings, st.ws.Path("speech"), st.name)
	if err != nil {
		return err
	}
	st.source = asset
	logging.WithContext(ctx, r.logger).Info("speech synthesized",
		logging.String(logging.FieldEventType, "speech_synthesized"),
		logging.String("voice_id", voiceID),
		logging.Int("characters", len([]rune(st.job.Text))),
	)
	return nil
}

func (r *Runner) normalize(ctx context.Context, st *run) error {
	normalizer := audio.NewNormalizer(r.cfg.Audio.FFmpegBinary, r.cfg.Audio.FFprobeBinary,
		audio.WithExecutor(r.exec),
		audio.WithTempRoot(st.ws.Dir),
		audio.WithLogger(r.logger),
	)
	normalized, err := normalizer.Normalize(ctx, st.source, audio.Format{
		SampleRate: r.cfg.Audio.SampleRate,
		Channels:   r.cfg.Audio.Channels,
		Encoding:   r.cfg.Audio.Encoding,
	})
	if err != nil {
		return err
	}
	st.normalized = normalized
	st.source = normalized.Source
	return nil
}

func (r *Runner) analyze(ctx context.Context, st *run) error {
	out, err := r.analyzer.Analyze(ctx, rhubarb.Request{
		Mode:           st.recognizer,
		Format:         st.format,
		DialogPath:     st.job.DialogPath,
		ExtendedShapes: r.cfg.Rhubarb.ExtendedShapes,
		OutputDir:      st.ws.Dir,
	}, st.normalized)
	if err != nil {
		return err
	}
	st.output = out
	return nil
}

func (r *Runner) parseCues(ctx context.Context, st *run) error {
	tl, err := parse.Parse(st.output.Data, st.output.Format, st.output.Duration)
	if err != nil {
		return err
	}
	st.timeline = tl
	logging.WithContext(ctx, r.logger).Debug("cues parsed",
		logging.Int("cues", tl.Len()),
		logging.Float64("duration_seconds", tl.Duration()),
	)
	return nil
}

func (r *Runner) validate(_ context.Context, st *run) error {
	return timeline.Validator{Epsilon: r.cfg.Epsilon()}.Validate(st.timeline).Err()
}

func (r *Runner) pack(_ context.Context, st *run) error {
	bundle, err := delivery.Package(st.normalized.Asset, st.timeline, st.name)
	if err != nil {
		return err
	}
	st.bundle = bundle
	return nil
}

func (r *Runner) write(ctx context.Context, st *run) error {
	paths, err := writeOutputs(ctx, st.job.OutputPrefix, st.output, st.bundle, st.normalized.Path())
	if err != nil {
		return err
	}
	st.outputs = paths
	logging.WithContext(ctx, r.logger).Info("outputs written",
		logging.String(logging.FieldEventType, "outputs_written"),
		logging.Int("files", len(paths)),
		logging.String("prefix", st.job.OutputPrefix),
	)
	return nil
}

func (r *Runner) deliver(ctx context.Context, st *run) error {
	if err := r.deliverer.Deliver(ctx, st.bundle, st.job.Play); err != nil {
		return err
	}
	st.delivered = true
	return nil
}

func (r *Runner) record(ctx context.Context, st *run, started time.Time, failedStage string, runErr error) {
	if r.history == nil {
		return
	}
	entry := history.Entry{
		RequestID:  st.id,
		Name:       st.name,
		InputPath:  strings.TrimSpace(st.job.InputPath),
		Format:     string(st.format),
		Recognizer: string(st.recognizer),
		CueCount:   st.timeline.Len(),
		Duration:   st.timeline.Duration(),
		Outcome:    history.OutcomeSucceeded,
		Delivered:  st.delivered,
		StartedAt:  started,
		Elapsed:    time.Since(started),
	}
	if entry.InputPath == "" {
		entry.InputPath = "text:" + nameFromText(st.job.Text)
	}
	if runErr != nil {
		entry.Outcome = history.OutcomeFailed
		entry.FailedStage = failedStage
		entry.ErrorKind = services.KindOf(runErr)
		entry.ErrorMessage = runErr.Error()
	}
	// The run's own context may already be cancelled.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := r.history.Record(recordCtx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history record failed", "history_record_failed",
			logging.Alert("history_unavailable"),
			logging.Error(err),
		)
	}
}

func voiceSettings(cfg *config.Config) tts.VoiceSettings {
	return tts.VoiceSettings{
		Stability:       cfg.TTS.Stability,
		SimilarityBoost: cfg.TTS.SimilarityBoost,
		Style:           cfg.TTS.Style,
		UseSpeakerBoost: cfg.TTS.UseSpeakerBoost,
		Speed:           cfg.TTS.Speed,
	}
}

const textNameWords = 4

// nameFromText builds a logical name from the first few words of text.
func nameFromText(text string) string {
	words := strings.Fields(text)
	if len(words) > textNameWords {
		words = words[:textNameWords]
	}
	if name := textutil.LogicalName(strings.Join(words, " ")); name != "" {
		return name
	}
	return "speech"
}

// FailedStage returns the stage named by err, or "" when err is not a
// *StageError.
func FailedStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Describe renders a failure for the terminal: stage, kind, and message.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	kind := services.KindOf(err)
	var se *StageError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s failed (%s): %v", se.Stage, kind, se.Err)
	}
	return fmt.Sprintf("%s: %v", kind, err)
}
