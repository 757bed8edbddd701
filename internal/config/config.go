package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tunearena/gateway/internal/arena"
)

// SystemSpec is one entry of the SYSTEMS list: a registered system key
// with an optional port override.
type SystemSpec struct {
	Key  arena.SystemKey
	Port int
}

// PairWeight is one entry of the WEIGHTS list: an unordered system pair
// and its sampling weight.
type PairWeight struct {
	A, B   arena.SystemKey
	Weight float64
}

// Config holds the application configuration. The gateway is stateless
// apart from the object store; everything here is read once at startup.
type Config struct {
	// Environment
	Environment string
	Host        string
	Port        string

	// Battle generation
	Systems        []SystemSpec
	Weights        []PairWeight
	SystemsBaseURL string
	RouteConfig    string
	NumRetries     int

	// Object store: bucket names, or empty to use the local filesystem
	// adapter rooted at DataDir
	BucketAudio    string
	BucketMetadata string
	PublicBaseURL  string
	DataDir        string

	// Catalog overrides (empty = embedded defaults)
	RegistryPath string
	PrebakedPath string

	// Chaos testing: fraction of generate requests to fail with 500
	Flakiness float64

	// In-memory battle cache bound; 0 = unbounded
	BattleCacheSize int

	// Audio probing
	FFProbePath string

	// LLM API keys
	OpenAIAPIKey string

	// Observability
	SentryDSN         string
	AWSRegion         string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string
	LangfuseEnabled   bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnv("PORT", "8080"),
		SystemsBaseURL:    getEnv("SYSTEMS_BASE_URL", "http://localhost"),
		RouteConfig:       getEnv("ROUTE_CONFIG", "4o-v00"),
		BucketAudio:       getEnv("BUCKET_AUDIO", ""),
		BucketMetadata:    getEnv("BUCKET_METADATA", ""),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", ""),
		DataDir:           getEnv("DATA_DIR", "./data"),
		RegistryPath:      getEnv("REGISTRY_PATH", ""),
		PrebakedPath:      getEnv("PREBAKED_PATH", ""),
		FFProbePath:       getEnv("FFPROBE_PATH", "ffprobe"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
	}

	var err error
	if cfg.Systems, err = ParseSystems(getEnv("SYSTEMS", "")); err != nil {
		return nil, err
	}
	if cfg.Weights, err = ParseWeights(getEnv("WEIGHTS", "")); err != nil {
		return nil, err
	}
	if cfg.Flakiness, err = parseFloat("FLAKINESS", 0.0); err != nil {
		return nil, err
	}
	if cfg.Flakiness < 0 || cfg.Flakiness > 1 {
		return nil, fmt.Errorf("FLAKINESS must be in [0, 1], got %g", cfg.Flakiness)
	}
	if cfg.BattleCacheSize, err = parseInt("BATTLE_CACHE_SIZE", 0); err != nil {
		return nil, err
	}
	if cfg.NumRetries, err = parseInt("NUM_RETRIES", 1); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseSystems parses the comma-separated SYSTEMS value. Entries are
// system_tag:variant_tag or system_tag:variant_tag:port.
func ParseSystems(spec string) ([]SystemSpec, error) {
	var out []SystemSpec
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid system %q, want tag:variant[:port]", entry)
		}
		key, err := arena.NewSystemKey(parts[0], parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid system %q: %w", entry, err)
		}
		s := SystemSpec{Key: key}
		if len(parts) == 3 {
			port, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid port in system %q: %w", entry, err)
			}
			s.Port = port
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseWeights parses the comma-separated WEIGHTS value. Entries are
// a_tag:a_variant/b_tag:b_variant/weight.
func ParseWeights(spec string) ([]PairWeight, error) {
	var out []PairWeight
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "/")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid weight %q, want a:va/b:vb/weight", entry)
		}
		a, err := arena.ParseSystemKey(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", entry, err)
		}
		b, err := arena.ParseSystemKey(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", entry, err)
		}
		w, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", entry, err)
		}
		out = append(out, PairWeight{A: a, B: b, Weight: w})
	}
	return out, nil
}

// IsProduction returns true when the gateway runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func parseFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

func parseInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
