// Package config resolves sketch2story settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBackendURL      = "http://localhost:5000"
	DefaultOutputDir       = "stories"
	DefaultPlayer          = "ffplay"
	DefaultUpdateRepo      = "harmonyvt/sketch2story"
	DefaultAnalyzeTimeout  = 2 * time.Minute
	DefaultGenerateTimeout = 4 * time.Minute
	DefaultCatalogTimeout  = 15 * time.Second
)

// Config stores runtime configuration
type Config struct {
	Backend BackendConfig
	Output  OutputConfig
	Player  PlayerConfig
	Log     LogConfig
	Update  UpdateConfig
}

type BackendConfig struct {
	URL             string
	AnalyzeTimeout  time.Duration
	GenerateTimeout time.Duration
	CatalogTimeout  time.Duration
}

type OutputConfig struct {
	Dir string
}

type PlayerConfig struct {
	Command string
}

type LogConfig struct {
	Debug bool
	File  string
}

type UpdateConfig struct {
	Repo string
}

// Load resolves configuration from environment variables and defaults.
// Call godotenv first if a .env file should contribute.
func Load() Config {
	cfg := Config{
		Backend: BackendConfig{
			URL:             strings.TrimSuffix(envOrDefault("STORY_BACKEND_URL", DefaultBackendURL), "/"),
			AnalyzeTimeout:  envOrDefaultDuration("STORY_ANALYZE_TIMEOUT", DefaultAnalyzeTimeout),
			GenerateTimeout: envOrDefaultDuration("STORY_GENERATE_TIMEOUT", DefaultGenerateTimeout),
			CatalogTimeout:  envOrDefaultDuration("STORY_CATALOG_TIMEOUT", DefaultCatalogTimeout),
		},
		Output: OutputConfig{
			Dir: envOrDefault("STORY_OUTPUT_DIR", DefaultOutputDir),
		},
		Player: PlayerConfig{
			Command: envOrDefault("STORY_FFPLAY", DefaultPlayer),
		},
		Log: LogConfig{
			Debug: envOrDefaultBool("STORY_DEBUG", false),
			File:  envOrDefault("STORY_LOG_FILE", defaultLogFile()),
		},
		Update: UpdateConfig{
			Repo: envOrDefault("STORY_UPDATE_REPO", DefaultUpdateRepo),
		},
	}
	return cfg
}

// defaultLogFile prefers $XDG_STATE_HOME, then ~/.local/state, then the temp dir
func defaultLogFile() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); dir != "" {
		return filepath.Join(dir, "sketch2story", "sketch2story.log")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "sketch2story", "sketch2story.log")
	}
	return filepath.Join(os.TempDir(), "sketch2story.log")
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// envOrDefaultDuration accepts Go durations ("90s") or whole seconds ("90")
func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
