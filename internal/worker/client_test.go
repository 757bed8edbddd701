package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/audio"
)

type fakeProber struct {
	info audio.Info
	err  error
}

func (f *fakeProber) Probe(context.Context, []byte, string) (audio.Info, error) {
	return f.info, f.err
}

var testKey = arena.SystemKey{SystemTag: "musicgen", VariantTag: "small"}

func testProber() *fakeProber {
	return &fakeProber{info: audio.Info{SampleRate: 44100, NumChannels: 2, Duration: 12.5}}
}

func generateHandler(t *testing.T, audioData []byte) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		// The request body is the detailed prompt itself, not a wrapper.
		var prompt arena.DetailedPrompt
		require.NoError(t, json.NewDecoder(r.Body).Decode(&prompt))
		assert.NotEmpty(t, prompt.OverallPrompt)

		hash := "abc123"
		queued := 100.0
		resp := generateResponse{
			AudioB64:         base64.StdEncoding.EncodeToString(audioData),
			AudioFormat:      "mp3",
			SystemGitHash:    &hash,
			SystemTimeQueued: &queued,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

// workerServer serves a healthy /health and the given /generate handler.
func workerServer(generate http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/generate", generate)
	return httptest.NewServer(mux)
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(testKey, srv.URL, testProber(), 0)
	timings := &arena.TimingLog{}
	require.NoError(t, c.HealthCheck(context.Background(), timings))

	labels := timingLabels(timings)
	assert.Contains(t, labels, "health_check_musicgen:small_start")
	assert.Contains(t, labels, "health_check_musicgen:small_end")
}

func TestHealthCheckDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(testKey, srv.URL, testProber(), 0)
	err := c.HealthCheck(context.Background(), &arena.TimingLog{})

	var unavailable *arena.WorkerUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, testKey, unavailable.System)
}

func TestGenerate(t *testing.T) {
	audioData := []byte("fake mp3 bytes")
	srv := workerServer(generateHandler(t, audioData))
	defer srv.Close()

	c := New(testKey, srv.URL, testProber(), 0)
	timings := &arena.TimingLog{}
	gen, err := c.Generate(context.Background(), arena.DetailedPrompt{
		OverallPrompt: "heavy metal",
		Instrumental:  true,
	}, timings)
	require.NoError(t, err)

	assert.Equal(t, audioData, gen.Audio)
	assert.Equal(t, "mp3", gen.Format)

	md := gen.Metadata
	require.NotNil(t, md.SystemKey)
	assert.Equal(t, testKey, *md.SystemKey)
	assert.Equal(t, "abc123", *md.SystemGitHash)
	assert.Equal(t, len(audioData), *md.SizeBytes)
	assert.Equal(t, arena.Checksum(audioData), *md.Checksum)
	assert.Equal(t, 44100, *md.SampleRate)
	assert.Equal(t, 2, *md.NumChannels)
	assert.Equal(t, 12.5, *md.Duration)
	assert.Equal(t, 0, *md.GatewayNumRetries)
	require.NotNil(t, md.GatewayTimeStarted)
	require.NotNil(t, md.GatewayTimeComplete)
	assert.GreaterOrEqual(t, *md.GatewayTimeComplete, *md.GatewayTimeStarted)

	labels := timingLabels(timings)
	assert.Contains(t, labels, "health_check_musicgen:small_start")
	assert.Contains(t, labels, "health_check_musicgen:small_end")
	assert.Contains(t, labels, "generate_musicgen:small_start")
	assert.Contains(t, labels, "generate_musicgen:small_end")
	assert.NotContains(t, labels, "generate_musicgen:small_failed")
}

func TestGenerateUnhealthyWorker(t *testing.T) {
	var generateCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/generate", func(http.ResponseWriter, *http.Request) {
		generateCalls++
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(testKey, srv.URL, testProber(), 2)
	timings := &arena.TimingLog{}
	_, err := c.Generate(context.Background(), arena.DetailedPrompt{
		OverallPrompt: "x", Instrumental: true,
	}, timings)

	var unavailable *arena.WorkerUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 0, generateCalls)
	assert.NotContains(t, timingLabels(timings), "generate_musicgen:small_start")
}

func TestGenerateRetrySucceeds(t *testing.T) {
	audioData := []byte("audio")
	var calls int
	handler := generateHandler(t, audioData)
	srv := workerServer(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			time.Sleep(30 * time.Millisecond)
			http.Error(w, "transient failure", http.StatusInternalServerError)
			return
		}
		handler(w, r)
	})
	defer srv.Close()

	c := New(testKey, srv.URL, testProber(), 1)
	gen, err := c.Generate(context.Background(), arena.DetailedPrompt{
		OverallPrompt: "x", Instrumental: true,
	}, &arena.TimingLog{})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, *gen.Metadata.GatewayNumRetries)

	// Gateway time is measured across all attempts, so a retried
	// generation includes the failed attempt's wall time.
	elapsed := *gen.Metadata.GatewayTimeComplete - *gen.Metadata.GatewayTimeStarted
	assert.GreaterOrEqual(t, elapsed, 0.03)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	var calls int
	srv := workerServer(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	c := New(testKey, srv.URL, testProber(), 2)
	timings := &arena.TimingLog{}
	_, err := c.Generate(context.Background(), arena.DetailedPrompt{
		OverallPrompt: "x", Instrumental: true,
	}, timings)

	var failed *arena.WorkerFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, testKey, failed.System)
	assert.Equal(t, 3, failed.Attempts)
	assert.Equal(t, 3, calls)
	assert.Contains(t, timingLabels(timings), "generate_musicgen:small_failed")
}

func TestGenerateEmptyAudio(t *testing.T) {
	srv := workerServer(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"audio_b64": ""}`)
	})
	defer srv.Close()

	c := New(testKey, srv.URL, testProber(), 0)
	_, err := c.Generate(context.Background(), arena.DetailedPrompt{
		OverallPrompt: "x", Instrumental: true,
	}, &arena.TimingLog{})

	var failed *arena.WorkerFailedError
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, failed.LastErr.Error(), "empty audio")
}

func timingLabels(timings *arena.TimingLog) []string {
	var labels []string
	for _, entry := range timings.Sorted() {
		labels = append(labels, entry.Label)
	}
	return labels
}
