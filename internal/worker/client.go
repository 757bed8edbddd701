// Package worker talks to the per-system generation workers over HTTP.
// Each registered system variant runs one worker exposing /health and
// /generate.
package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/audio"
	"github.com/tunearena/gateway/internal/logger"
)

const (
	healthTimeout   = 5 * time.Second
	generateTimeout = 5 * time.Minute
	defaultFormat   = "mp3"
)

// generateResponse is the wire response from a worker. The audio comes
// back base64-encoded; claimed stream properties are ignored in favor
// of probing the decoded bytes.
type generateResponse struct {
	AudioB64            string   `json:"audio_b64"`
	AudioFormat         string   `json:"audio_format"`
	Lyrics              *string  `json:"lyrics"`
	SystemGitHash       *string  `json:"git_hash"`
	SystemTimeQueued    *float64 `json:"time_queued"`
	SystemTimeStarted   *float64 `json:"time_started"`
	SystemTimeCompleted *float64 `json:"time_completed"`
}

// Generation is a completed worker generation: the audio bytes, their
// format, and the assembled response metadata.
type Generation struct {
	Audio    []byte
	Format   string
	Metadata arena.ResponseMetadata
}

// Client calls one system's worker.
type Client struct {
	key        arena.SystemKey
	baseURL    string
	prober     audio.Prober
	numRetries int

	healthClient   *http.Client
	generateClient *http.Client
}

// New builds a client for one worker endpoint. numRetries is the number
// of retries after the first attempt.
func New(key arena.SystemKey, baseURL string, prober audio.Prober, numRetries int) *Client {
	return &Client{
		key:            key,
		baseURL:        baseURL,
		prober:         prober,
		numRetries:     numRetries,
		healthClient:   &http.Client{Timeout: healthTimeout},
		generateClient: &http.Client{Timeout: generateTimeout},
	}
}

// Key returns the system this client generates for.
func (c *Client) Key() arena.SystemKey {
	return c.key
}

// HealthCheck pings the worker with a short timeout.
func (c *Client) HealthCheck(ctx context.Context, timings *arena.TimingLog) error {
	tag := c.key.String()
	timings.Add("health_check_" + tag + "_start")
	defer timings.Add("health_check_" + tag + "_end")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return &arena.WorkerUnavailableError{System: c.key, Err: err}
	}
	resp, err := c.healthClient.Do(req)
	if err != nil {
		return &arena.WorkerUnavailableError{System: c.key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &arena.WorkerUnavailableError{
			System: c.key,
			Err:    fmt.Errorf("health check returned %d", resp.StatusCode),
		}
	}
	return nil
}

// Generate asks the worker for audio, retrying failed attempts. The
// worker is health checked once up front, not between retries. The
// returned metadata carries probed stream properties, the audio
// checksum, and the measured gateway time.
func (c *Client) Generate(ctx context.Context, prompt arena.DetailedPrompt, timings *arena.TimingLog) (Generation, error) {
	if err := c.HealthCheck(ctx, timings); err != nil {
		return Generation{}, err
	}

	tag := c.key.String()
	timings.Add("generate_" + tag + "_start")

	start := time.Now()
	attempts := 1 + c.numRetries
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		gen, err := c.generateOnce(ctx, prompt, start, attempt-1)
		if err == nil {
			timings.Add("generate_" + tag + "_end")
			return gen, nil
		}
		lastErr = err
		logger.Warn("worker generation attempt failed", logger.Fields{
			"system":  tag,
			"attempt": attempt,
			"error":   err.Error(),
		})
		if ctx.Err() != nil {
			break
		}
	}

	timings.Add("generate_" + tag + "_failed")
	return Generation{}, &arena.WorkerFailedError{
		System:   c.key,
		Attempts: attempts,
		LastErr:  lastErr,
	}
}

func (c *Client) generateOnce(ctx context.Context, prompt arena.DetailedPrompt, start time.Time, retriesSoFar int) (Generation, error) {
	// The worker parses the request body as the detailed prompt itself.
	body, err := json.Marshal(prompt)
	if err != nil {
		return Generation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return Generation{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.generateClient.Do(req)
	if err != nil {
		return Generation{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Generation{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Generation{}, fmt.Errorf("worker returned %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Generation{}, fmt.Errorf("decoding worker response: %w", err)
	}
	audioBytes, err := base64.StdEncoding.DecodeString(parsed.AudioB64)
	if err != nil {
		return Generation{}, fmt.Errorf("decoding audio: %w", err)
	}
	if len(audioBytes) == 0 {
		return Generation{}, fmt.Errorf("worker returned empty audio")
	}
	completed := float64(time.Now().UnixNano()) / 1e9
	started := float64(start.UnixNano()) / 1e9

	format := parsed.AudioFormat
	if format == "" {
		format = defaultFormat
	}
	info, err := c.prober.Probe(ctx, audioBytes, format)
	if err != nil {
		return Generation{}, fmt.Errorf("probing audio: %w", err)
	}

	key := c.key
	size := len(audioBytes)
	checksum := arena.Checksum(audioBytes)
	md := arena.ResponseMetadata{
		SystemKey:           &key,
		SystemGitHash:       parsed.SystemGitHash,
		SystemTimeQueued:    parsed.SystemTimeQueued,
		SystemTimeStarted:   parsed.SystemTimeStarted,
		SystemTimeCompleted: parsed.SystemTimeCompleted,
		GatewayTimeStarted:  &started,
		GatewayTimeComplete: &completed,
		GatewayNumRetries:   &retriesSoFar,
		SizeBytes:           &size,
		Lyrics:              parsed.Lyrics,
		SampleRate:          &info.SampleRate,
		NumChannels:         &info.NumChannels,
		Duration:            &info.Duration,
		Checksum:            &checksum,
	}
	return Generation{Audio: audioBytes, Format: format, Metadata: md}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
