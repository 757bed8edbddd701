package battle

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/bucket"
	"github.com/tunearena/gateway/internal/logger"
	"github.com/tunearena/gateway/internal/worker"
)

// PromptParser is the subset of the chat pipeline the generator needs.
type PromptParser interface {
	Parse(ctx context.Context, prompt arena.SimplePrompt) (arena.DetailedPrompt, error)
	GenerateLyrics(ctx context.Context, prompt arena.DetailedPrompt) (string, error)
}

// Worker is one system's generation endpoint.
type Worker interface {
	Key() arena.SystemKey
	HealthCheck(ctx context.Context, timings *arena.TimingLog) error
	Generate(ctx context.Context, prompt arena.DetailedPrompt, timings *arena.TimingLog) (worker.Generation, error)
}

// Request carries everything a caller supplies to start a battle.
// Exactly one of Prompt and PromptDetailed is set; Prebaked marks a
// detailed prompt resolved from the curated set.
type Request struct {
	Prompt         *arena.SimplePrompt
	PromptDetailed *arena.DetailedPrompt
	User           *arena.User
	Session        *arena.Session
	Prebaked       bool
}

// Generator runs the battle lifecycle: prompt resolution, pair
// sampling, parallel generation, persistence. Either worker failing
// aborts the whole battle; nothing partial is persisted.
type Generator struct {
	sampler *Sampler
	workers map[arena.SystemKey]Worker
	parser  PromptParser
	audio   bucket.Bucket
	store   *Store
	version string
}

func NewGenerator(sampler *Sampler, workers map[arena.SystemKey]Worker, parser PromptParser, audioBucket bucket.Bucket, store *Store, version string) *Generator {
	return &Generator{
		sampler: sampler,
		workers: workers,
		parser:  parser,
		audio:   audioBucket,
		store:   store,
		version: version,
	}
}

// slotResult pairs a generation with the slot it was drawn into.
type slotResult struct {
	gen worker.Generation
	key arena.SystemKey
}

// Generate runs one full battle and returns it persisted.
func (g *Generator) Generate(ctx context.Context, req Request) (arena.Battle, error) {
	timings := arena.NewTimingLog()
	battleUUID := arena.NewBattleUUID()
	timings.Add("parse")
	timings.Add("generate")

	detailed, routed, err := g.resolvePrompt(ctx, req, timings)
	if err != nil {
		return arena.Battle{}, err
	}

	timings.Add("sample_pair")
	keyA, keyB, err := g.sampler.SamplePair(detailed.Instrumental)
	if err != nil {
		return arena.Battle{}, err
	}

	timings.Add("generate_parallel_start")
	var resultA, resultB slotResult
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		gen, err := g.workers[keyA].Generate(egCtx, detailed, timings)
		resultA = slotResult{gen: gen, key: keyA}
		return err
	})
	eg.Go(func() error {
		gen, err := g.workers[keyB].Generate(egCtx, detailed, timings)
		resultB = slotResult{gen: gen, key: keyB}
		return err
	})
	if err := eg.Wait(); err != nil {
		return arena.Battle{}, err
	}
	timings.Add("generate_parallel_end")

	timings.Add("create_battle_obj")
	b := arena.Battle{
		UUID:           battleUUID,
		GatewayVersion: g.version,
		Prompt:         req.Prompt,
		PromptDetailed: &detailed,
		PromptUser:     req.User,
		PromptSession:  req.Session,
		PromptPrebaked: req.Prebaked,
		PromptRouted:   routed,
		AMetadata:      &resultA.gen.Metadata,
		BMetadata:      &resultB.gen.Metadata,
	}

	timings.Add("upload_audio")
	checksum := detailed.Checksum()
	aKey := AudioKey(req.Prebaked, checksum, battleUUID, "a", resultA.gen.Format)
	bKey := AudioKey(req.Prebaked, checksum, battleUUID, "b", resultB.gen.Format)
	if err := g.audio.Put(ctx, aKey, resultA.gen.Audio, audioContentType(resultA.gen.Format), false); err != nil {
		return arena.Battle{}, err
	}
	if err := g.audio.Put(ctx, bKey, resultB.gen.Audio, audioContentType(resultB.gen.Format), false); err != nil {
		return arena.Battle{}, err
	}
	b.AAudioURL = g.audio.PublicURL(aKey)
	b.BAudioURL = g.audio.PublicURL(bKey)

	timings.Add("upload_metadata")
	b.Timings = timings.Sorted()
	if err := g.store.Put(ctx, b); err != nil {
		// The audio is already public and the battle lives in cache, so
		// a metadata write failure does not fail the request.
		logger.Error("battle metadata upload failed", err, logger.Fields{
			"battle_uuid": b.UUID,
		})
		g.store.CachePut(b)
	}
	return b, nil
}

// HealthCheck pings every worker, failing on the first unhealthy one.
func (g *Generator) HealthCheck(ctx context.Context, timings *arena.TimingLog) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, w := range g.workers {
		w := w
		eg.Go(func() error {
			return w.HealthCheck(egCtx, timings)
		})
	}
	return eg.Wait()
}

// resolvePrompt yields the detailed prompt a battle runs on. The route
// label lands on both paths; a supplied detailed prompt just makes the
// routing decision trivial.
func (g *Generator) resolvePrompt(ctx context.Context, req Request, timings *arena.TimingLog) (arena.DetailedPrompt, bool, error) {
	timings.Add("route")
	if req.PromptDetailed != nil {
		detailed := *req.PromptDetailed
		if err := detailed.Validate(); err != nil {
			return arena.DetailedPrompt{}, false, err
		}
		return g.fillLyrics(ctx, detailed, timings), false, nil
	}

	detailed, err := g.parser.Parse(ctx, *req.Prompt)
	if err != nil {
		return arena.DetailedPrompt{}, false, err
	}
	return g.fillLyrics(ctx, detailed, timings), true, nil
}

// fillLyrics synthesizes lyrics for vocal prompts that arrive without
// any. Failure is tolerated: lyric-capable systems write their own and
// the worker's lyrics win regardless.
func (g *Generator) fillLyrics(ctx context.Context, detailed arena.DetailedPrompt, timings *arena.TimingLog) arena.DetailedPrompt {
	if !detailed.NeedsLyrics() {
		return detailed
	}
	timings.Add("generate_lyrics")
	lyrics, err := g.parser.GenerateLyrics(ctx, detailed)
	if err != nil {
		logger.Warn("lyric synthesis failed, systems will write their own", logger.Fields{
			"error": err.Error(),
		})
		return detailed
	}
	detailed.Lyrics = &lyrics
	return detailed
}

func audioContentType(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}
