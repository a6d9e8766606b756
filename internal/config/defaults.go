package config

const (
	defaultConfigPath          = "~/.config/mouthpiece/config.toml"
	projectConfigFile          = "mouthpiece.toml"
	defaultStagingDir          = "~/.local/share/mouthpiece/staging"
	defaultLogDir              = "~/.local/share/mouthpiece/logs"
	defaultStateDir            = "~/.local/state/mouthpiece"
	defaultSampleRate          = 44100
	defaultChannels            = 1
	defaultEncoding            = "pcm_s16le"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultRhubarbPath         = "./bin/rhubarb/rhubarb"
	defaultRecognizer          = "phonetic"
	defaultCueFormat           = "json"
	defaultExtendedShapes      = "GHX"
	defaultRhubarbTimeout      = 120
	defaultEpsilonMS           = 1.0
	defaultUploadURL           = "http://localhost:8080/avatar/upload"
	defaultSpeakURL            = "http://localhost:8080/avatar/speak"
	defaultRequestTimeout      = 30
	defaultTTSBaseURL          = "https://api.elevenlabs.io"
	defaultTTSModel            = "eleven_multilingual_v2"
	defaultTTSOutputFormat     = "mp3_44100_128"
	defaultTTSStability        = 0.5
	defaultTTSSimilarityBoost  = 0.75
	defaultTTSSpeed            = 1.0
	defaultTTSTimeout          = 60
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultParallel            = 2
	defaultStaleWorkspaceHours = 24
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Audio: Audio{
			SampleRate:    defaultSampleRate,
			Channels:      defaultChannels,
			Encoding:      defaultEncoding,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Rhubarb: Rhubarb{
			Path:           defaultRhubarbPath,
			Recognizer:     defaultRecognizer,
			Format:         defaultCueFormat,
			ExtendedShapes: defaultExtendedShapes,
			TimeoutSeconds: defaultRhubarbTimeout,
		},
		Timeline: Timeline{
			EpsilonMS: defaultEpsilonMS,
		},
		Runtime: Runtime{
			UploadURL:      defaultUploadURL,
			SpeakURL:       defaultSpeakURL,
			RequestTimeout: defaultRequestTimeout,
		},
		TTS: TTS{
			BaseURL:         defaultTTSBaseURL,
			ModelID:         defaultTTSModel,
			OutputFormat:    defaultTTSOutputFormat,
			Stability:       defaultTTSStability,
			SimilarityBoost: defaultTTSSimilarityBoost,
			UseSpeakerBoost: true,
			Speed:           defaultTTSSpeed,
			TimeoutSeconds:  defaultTTSTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Pipeline: Pipeline{
			Parallel:            defaultParallel,
			StaleWorkspaceHours: defaultStaleWorkspaceHours,
		},
	}
}
