package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tunearena/gateway/internal/api"
	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/audio"
	"github.com/tunearena/gateway/internal/battle"
	"github.com/tunearena/gateway/internal/bucket"
	"github.com/tunearena/gateway/internal/chat"
	"github.com/tunearena/gateway/internal/config"
	"github.com/tunearena/gateway/internal/logger"
	"github.com/tunearena/gateway/internal/metrics"
	"github.com/tunearena/gateway/internal/observability"
	"github.com/tunearena/gateway/internal/registry"
	"github.com/tunearena/gateway/internal/worker"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "arena-gateway@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            !cfg.IsProduction(),
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	ctx := context.Background()

	// Load the system catalog and curated prompts
	catalog, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load system registry:", err)
	}
	prebaked, found, err := registry.LoadPrebaked(cfg.PrebakedPath)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load prebaked prompts:", err)
	}
	if !found {
		logger.Warn("prebaked prompt file not found, health checks will skip synthetic battles", logger.Fields{
			"path": cfg.PrebakedPath,
		})
	}

	// Observability
	cw, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("CloudWatch metrics unavailable: %v", err)
	}
	observability.InitializeLangfuse(ctx, cfg)

	// Object store: S3 buckets, or local filesystem for development
	audioBucket, metadataBucket := buildBuckets(cfg)

	// Chat pipeline
	pipeline, err := chat.NewPipeline(cfg.RouteConfig, cfg.OpenAIAPIKey)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to build chat pipeline:", err)
	}

	// Workers, sampler, generator
	prober := &audio.FFProbe{Path: cfg.FFProbePath}
	workers := make(map[arena.SystemKey]battle.Worker, len(cfg.Systems))
	for _, spec := range cfg.Systems {
		port := spec.Port
		if port == 0 {
			md, err := catalog.Get(spec.Key)
			if err != nil {
				log.Fatal("Unknown system configured:", err)
			}
			port = md.Port
		}
		url := fmt.Sprintf("%s:%d", cfg.SystemsBaseURL, port)
		workers[spec.Key] = worker.New(spec.Key, url, prober, cfg.NumRetries)
	}

	sampler, err := battle.NewSampler(cfg.Systems, cfg.Weights, catalog, 0)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Invalid system or weight configuration:", err)
	}

	store := battle.NewStore(battle.NewCache(cfg.BattleCacheSize), metadataBucket)
	gen := battle.NewGenerator(sampler, workers, pipeline, audioBucket, store, GetVersion())

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(cfg, catalog, prebaked, gen, store, cw)

	// Start server
	addr := cfg.Host + ":" + cfg.Port
	log.Printf("Starting gateway on %s (%d systems)", addr, len(cfg.Systems))
	if err := router.Run(addr); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}

// buildBuckets picks S3 or local storage for each bucket independently,
// so a deployment can keep audio on S3 while metadata stays local.
func buildBuckets(cfg *config.Config) (bucket.Bucket, bucket.Bucket) {
	base := cfg.PublicBaseURL
	if base == "" {
		base = "http://localhost:" + cfg.Port
	}

	var audioBucket bucket.Bucket
	if cfg.BucketAudio != "" {
		audioBucket = bucket.NewS3(cfg.AWSRegion, cfg.BucketAudio, cfg.PublicBaseURL)
	} else {
		log.Printf("Audio bucket not configured, storing audio under %s", cfg.DataDir)
		audioBucket = bucket.NewLocal(filepath.Join(cfg.DataDir, "audio"), base+"/static/audio")
	}

	var metadataBucket bucket.Bucket
	if cfg.BucketMetadata != "" {
		metadataBucket = bucket.NewS3(cfg.AWSRegion, cfg.BucketMetadata, "")
	} else {
		log.Printf("Metadata bucket not configured, storing metadata under %s", cfg.DataDir)
		metadataBucket = bucket.NewLocal(filepath.Join(cfg.DataDir, "metadata"), base+"/static/metadata")
	}
	return audioBucket, metadataBucket
}
