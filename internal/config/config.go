package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "VOICEGUARD"

// Config stores runtime configuration.
type Config struct {
	Log     LogConfig
	Store   StoreConfig
	Speech  SpeechConfig
	Audio   AudioConfig
	Monitor MonitorConfig
	Phrases PhrasesConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type StoreConfig struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type SpeechConfig struct {
	Provider    string
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type MonitorConfig struct {
	ChunkSize    int
	DisplayGrace time.Duration

	// RecheckInterval is how often a running monitor reloads stored state
	// and re-checks its gating.
	RecheckInterval time.Duration
}

type PhrasesConfig struct {
	Path string
}

// DefaultDir returns ~/.config/voiceguard.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "voiceguard")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := DefaultDir()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", filepath.Join(dir, "state.db"))
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "voiceguard:")
	v.SetDefault("speech.provider", "gemini")
	v.SetDefault("speech.api_key", "")
	v.SetDefault("speech.api_base_url", "")
	v.SetDefault("speech.model", "")
	v.SetDefault("speech.smart_format", true)
	v.SetDefault("audio.recorder_command", "ffmpeg")
	v.SetDefault("audio.input_format", "pulse")
	v.SetDefault("audio.input_device", "default")
	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("monitor.chunk_size", 4096)
	v.SetDefault("monitor.display_grace", "2s")
	v.SetDefault("monitor.recheck_interval", "15s")
	v.SetDefault("phrases.path", filepath.Join(dir, "phrases.txt"))
}

// Load resolves configuration from the YAML file at path (or the default
// location when path is empty), VOICEGUARD_* environment variables and
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Config{
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
			SQLitePath:    expandHome(v.GetString("store.sqlite_path")),
			RedisAddr:     v.GetString("store.redis_addr"),
			RedisPassword: v.GetString("store.redis_password"),
			RedisDB:       v.GetInt("store.redis_db"),
			RedisPrefix:   v.GetString("store.redis_prefix"),
		},
		Speech: SpeechConfig{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("speech.provider"))),
			APIBaseURL:  strings.TrimSpace(v.GetString("speech.api_base_url")),
			Model:       strings.TrimSpace(v.GetString("speech.model")),
			SmartFormat: v.GetBool("speech.smart_format"),
		},
		Audio: AudioConfig{
			RecorderCommand: v.GetString("audio.recorder_command"),
			InputFormat:     v.GetString("audio.input_format"),
			InputDevice:     v.GetString("audio.input_device"),
			SampleRate:      v.GetInt("audio.sample_rate"),
			Channels:        v.GetInt("audio.channels"),
		},
		Monitor: MonitorConfig{
			ChunkSize:    v.GetInt("monitor.chunk_size"),
			DisplayGrace:    v.GetDuration("monitor.display_grace"),
			RecheckInterval: v.GetDuration("monitor.recheck_interval"),
		},
		Phrases: PhrasesConfig{
			Path: expandHome(v.GetString("phrases.path")),
		},
	}

	// Provider-native key variables are honored when no explicit key is set.
	cfg.Speech.APIKey = firstNonEmpty(
		v.GetString("speech.api_key"),
		providerKeyEnv(cfg.Speech.Provider),
		os.Getenv("API_KEY"),
	)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Store.RedisDB < 0 {
		cfg.Store.RedisDB = 0
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Monitor.ChunkSize < 256 {
		cfg.Monitor.ChunkSize = 4096
	}
	if cfg.Monitor.DisplayGrace <= 0 {
		cfg.Monitor.DisplayGrace = 2 * time.Second
	}
	if cfg.Monitor.RecheckInterval <= 0 {
		cfg.Monitor.RecheckInterval = 15 * time.Second
	}

	return cfg, nil
}

func providerKeyEnv(provider string) string {
	switch provider {
	case "deepgram":
		return os.Getenv("DEEPGRAM_API_KEY")
	case "gemini":
		return firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	default:
		return ""
	}
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
