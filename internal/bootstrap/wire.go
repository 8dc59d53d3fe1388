package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"voiceguard/internal/audio"
	"voiceguard/internal/config"
	"voiceguard/internal/logging"
	"voiceguard/internal/ports"
	"voiceguard/internal/providers/deepgram"
	"voiceguard/internal/providers/gemini"
	"voiceguard/internal/state"
	"voiceguard/internal/store"
	"voiceguard/internal/trigger"
	"voiceguard/internal/usecase"
)

// Options selects the configuration and event sink for Build.
type Options struct {
	ConfigPath string
	// LogLevel overrides log.level when set.
	LogLevel string
	Events   ports.EventSink
}

// Services is the assembled runtime graph.
type Services struct {
	Config  config.Config
	Logger  *zap.Logger
	State   *state.State
	Catalog *trigger.Catalog
	Monitor *usecase.MonitorController

	backend store.Backend
}

// Close releases the store connection and flushes the logger.
func (s Services) Close() error {
	err := s.backend.Close()
	_ = s.Logger.Sync()
	return err
}

// Build wires all dependencies for the current runtime.
func Build(ctx context.Context, opts Options) (Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return Services{}, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "voiceguard")
	if err != nil {
		return Services{}, fmt.Errorf("building logger: %w", err)
	}

	catalog, err := trigger.NewCatalog(cfg.Phrases.Path)
	if err != nil {
		return Services{}, err
	}

	provider, err := newProvider(cfg.Speech)
	if err != nil {
		return Services{}, err
	}

	backend, err := store.Open(ctx, store.Config{
		Driver:     cfg.Store.Driver,
		SQLitePath: cfg.Store.SQLitePath,
		Redis: store.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			Prefix:   cfg.Store.RedisPrefix,
		},
	})
	if err != nil {
		return Services{}, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}

	appState, err := state.Load(ctx, backend, logger.Named("state"))
	if err != nil {
		_ = backend.Close()
		return Services{}, err
	}

	monitor := usecase.NewMonitorController(
		audio.NewMicrophone(cfg.Audio.RecorderCommand, logger.Named("audio")),
		provider,
		catalog,
		appState,
		appState,
		opts.Events,
		logger.Named("monitor"),
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate: cfg.Audio.SampleRate,
				Channels:   cfg.Audio.Channels,
				Encoding:   "linear16",
			},
			ChunkSize:    cfg.Monitor.ChunkSize,
			DisplayGrace: cfg.Monitor.DisplayGrace,
		},
	)

	logger.Debug("services built",
		zap.String("store", cfg.Store.Driver),
		zap.String("speech_provider", cfg.Speech.Provider),
		zap.Strings("languages", catalog.Languages()),
	)

	return Services{
		Config:  cfg,
		Logger:  logger,
		State:   appState,
		Catalog: catalog,
		Monitor: monitor,
		backend: backend,
	}, nil
}

func newProvider(cfg config.SpeechConfig) (ports.TranscriptionProvider, error) {
	switch cfg.Provider {
	case "", "gemini":
		return gemini.NewProvider(gemini.Config{
			APIKey:     cfg.APIKey,
			APIBaseURL: cfg.APIBaseURL,
			Model:      cfg.Model,
		}), nil
	case "deepgram":
		return deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.APIKey,
			APIBaseURL:  cfg.APIBaseURL,
			Model:       cfg.Model,
			SmartFormat: cfg.SmartFormat,
		}), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Provider)
	}
}
