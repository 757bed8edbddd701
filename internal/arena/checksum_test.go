package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These digests are pinned by historical battle records; they must never
// change.
func TestDetailedPromptChecksumStability(t *testing.T) {
	p := DetailedPrompt{OverallPrompt: "heavy metal", Instrumental: true}
	assert.Equal(t, "f09577079db8a81f475ae94e85ddd3a7", p.Checksum())

	d := 2.0
	p.Duration = &d
	assert.Equal(t, "8fcfd48ccc257fca63355dc236a7ecdc", p.Checksum())
}

func TestChecksumIgnoresNullFields(t *testing.T) {
	base := DetailedPrompt{OverallPrompt: "lo-fi jazz", Instrumental: true}
	withNil := base
	withNil.Duration = nil
	withNil.BPM = nil
	assert.Equal(t, base.Checksum(), withNil.Checksum())

	bpm := 120.0
	withBPM := base
	withBPM.BPM = &bpm
	assert.NotEqual(t, base.Checksum(), withBPM.Checksum())
}

func TestCanonicalFloat(t *testing.T) {
	assert.Equal(t, "2.0", canonicalFloat(2.0))
	assert.Equal(t, "2.5", canonicalFloat(2.5))
	assert.Equal(t, "0.1", canonicalFloat(0.1))
	assert.Equal(t, "-3.0", canonicalFloat(-3.0))
}

func TestCanonicalDictEncoding(t *testing.T) {
	got := canonicalDict(map[string]any{
		"b": true,
		"a": "x",
		"c": nil,
	})
	assert.Equal(t, `{"a": "x", "b": true, "c": null}`, string(got))
}

func TestCanonicalStringEscaping(t *testing.T) {
	// ensure_ascii semantics: non-ASCII becomes \uXXXX escapes.
	got := canonicalDict(map[string]any{"s": "café\n\"q\""})
	assert.Equal(t, `{"s": "caf\u00e9\n\"q\""}`, string(got))
}
