package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/config"
	"github.com/tunearena/gateway/internal/registry"
)

var (
	keyInstA  = arena.SystemKey{SystemTag: "musicgen", VariantTag: "small"}
	keyInstB  = arena.SystemKey{SystemTag: "sao", VariantTag: "default"}
	keyLyricA = arena.SystemKey{SystemTag: "acestep", VariantTag: "default"}
	keyLyricB = arena.SystemKey{SystemTag: "riffusion", VariantTag: "default"}
)

func testCatalog() registry.Catalog {
	return registry.Catalog{
		keyInstA:  {Key: keyInstA},
		keyInstB:  {Key: keyInstB},
		keyLyricA: {Key: keyLyricA, SupportsLyrics: true},
		keyLyricB: {Key: keyLyricB, SupportsLyrics: true},
	}
}

func specs(keys ...arena.SystemKey) []config.SystemSpec {
	var out []config.SystemSpec
	for _, k := range keys {
		out = append(out, config.SystemSpec{Key: k})
	}
	return out
}

func TestSamplePairVocalNeedsBothLyricCapable(t *testing.T) {
	s, err := NewSampler(specs(keyInstA, keyLyricA, keyLyricB), nil, testCatalog(), 1)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		a, b, err := s.SamplePair(false)
		require.NoError(t, err)
		assert.NotEqual(t, keyInstA, a)
		assert.NotEqual(t, keyInstA, b)
	}
}

func TestSamplePairInstrumentalAvoidsDoubleLyric(t *testing.T) {
	s, err := NewSampler(specs(keyInstA, keyLyricA, keyLyricB), nil, testCatalog(), 1)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		a, b, err := s.SamplePair(true)
		require.NoError(t, err)
		lyricCount := 0
		for _, k := range []arena.SystemKey{a, b} {
			if k == keyLyricA || k == keyLyricB {
				lyricCount++
			}
		}
		assert.LessOrEqual(t, lyricCount, 1)
		assert.NotEqual(t, a, b)
	}
}

func TestSamplePairNoEligible(t *testing.T) {
	s, err := NewSampler(specs(keyInstA, keyInstB), nil, testCatalog(), 1)
	require.NoError(t, err)

	_, _, err = s.SamplePair(false)
	var noPair *arena.NoEligiblePairError
	require.ErrorAs(t, err, &noPair)
	assert.False(t, noPair.Instrumental)
}

func TestSamplePairShufflesSlots(t *testing.T) {
	s, err := NewSampler(specs(keyLyricA, keyLyricB), nil, testCatalog(), 42)
	require.NoError(t, err)

	seen := map[arena.SystemKey]bool{}
	for i := 0; i < 100; i++ {
		a, _, err := s.SamplePair(false)
		require.NoError(t, err)
		seen[a] = true
	}
	assert.True(t, seen[keyLyricA], "slot a should see both systems")
	assert.True(t, seen[keyLyricB], "slot a should see both systems")
}

func TestSamplePairRespectsWeights(t *testing.T) {
	weights := []config.PairWeight{
		{A: keyLyricA, B: keyLyricB, Weight: 99},
		{A: keyLyricA, B: keyInstA, Weight: 1},
	}
	s, err := NewSampler(specs(keyInstA, keyLyricA, keyLyricB), weights, testCatalog(), 7)
	require.NoError(t, err)

	const draws = 200
	for i := 0; i < draws; i++ {
		a, b, err := s.SamplePair(true)
		require.NoError(t, err)
		// Only the 1-weight pair is eligible for instrumental prompts.
		pair := map[arena.SystemKey]bool{a: true, b: true}
		assert.True(t, pair[keyInstA])
	}

	for i := 0; i < draws; i++ {
		a, b, err := s.SamplePair(false)
		require.NoError(t, err)
		pair := map[arena.SystemKey]bool{a: true, b: true}
		require.True(t, pair[keyLyricA] && pair[keyLyricB])
	}
}

func TestNewSamplerValidation(t *testing.T) {
	catalog := testCatalog()

	_, err := NewSampler(specs(keyInstA), nil, catalog, 1)
	assert.Error(t, err, "one system is not enough")

	_, err = NewSampler(specs(keyInstA, keyInstA), nil, catalog, 1)
	assert.Error(t, err, "duplicate system")

	unknown := arena.SystemKey{SystemTag: "ghost", VariantTag: "v"}
	_, err = NewSampler(specs(keyInstA, unknown), nil, catalog, 1)
	assert.Error(t, err, "unregistered system")

	_, err = NewSampler(specs(keyInstA, keyInstB),
		[]config.PairWeight{{A: keyInstA, B: keyInstA, Weight: 1}}, catalog, 1)
	assert.Error(t, err, "self pair")

	_, err = NewSampler(specs(keyInstA, keyInstB),
		[]config.PairWeight{{A: keyInstA, B: keyInstB, Weight: -1}}, catalog, 1)
	assert.Error(t, err, "negative weight")

	_, err = NewSampler(specs(keyInstA, keyInstB),
		[]config.PairWeight{{A: keyInstA, B: keyLyricA, Weight: 1}}, catalog, 1)
	assert.Error(t, err, "weight references unconfigured system")
}
