package arena

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBattle() Battle {
	key := SystemKey{SystemTag: "musicgen", VariantTag: "small"}
	sum := "abc123"
	lyrics := "verse one"
	return Battle{
		UUID:      NewBattleUUID(),
		AAudioURL: "https://cdn.example.com/a.mp3",
		BAudioURL: "https://cdn.example.com/b.mp3",
		AMetadata: &ResponseMetadata{SystemKey: &key, Checksum: &sum, Lyrics: &lyrics},
		BMetadata: &ResponseMetadata{SystemKey: &key, Checksum: &sum},
		Timings:   []Timing{{Label: "parse", At: 1.0}},
	}
}

func TestBattleAnonymize(t *testing.T) {
	b := sampleBattle()
	anon := b.Anonymize()

	assert.Nil(t, anon.AMetadata.SystemKey)
	assert.Nil(t, anon.BMetadata.SystemKey)
	assert.Empty(t, anon.Timings)
	require.NotNil(t, anon.AMetadata.Lyrics)
	assert.Equal(t, "verse one", *anon.AMetadata.Lyrics)
	assert.Equal(t, "abc123", *anon.AMetadata.Checksum)
	assert.Equal(t, b.AAudioURL, anon.AAudioURL)

	// The original is untouched.
	assert.NotNil(t, b.AMetadata.SystemKey)
	assert.NotEmpty(t, b.Timings)
}

func TestBattleWinner(t *testing.T) {
	b := sampleBattle()
	assert.Nil(t, b.Winner())

	ts := 1700000000.0
	b.Vote = &Vote{Preference: PreferenceA, PreferenceTime: &ts}
	require.NotNil(t, b.Winner())
	assert.Equal(t, "musicgen:small", b.Winner().String())

	b.Vote.Preference = PreferenceBothBad
	assert.Nil(t, b.Winner())
}

func TestBattleJSONRoundTrip(t *testing.T) {
	b := sampleBattle()
	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var got Battle
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, b.UUID, got.UUID)
	require.Len(t, got.Timings, 1)
	assert.Equal(t, "parse", got.Timings[0].Label)
}

func TestTimingLogSorted(t *testing.T) {
	log := NewTimingLog()
	log.AddAt("late", 3.0)
	log.AddAt("early", 1.0)
	log.AddAt("mid", 2.0)

	got := log.Sorted()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"early", "mid", "late"},
		[]string{got[0].Label, got[1].Label, got[2].Label})
}
