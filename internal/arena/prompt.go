package arena

import (
	"encoding/json"
	"errors"
)

// SimplePrompt is the user's free-form request text.
type SimplePrompt struct {
	Prompt string `json:"prompt"`
}

// Checksum is the content address of the prompt.
func (p SimplePrompt) Checksum() string {
	return dictChecksum(map[string]any{"prompt": p.Prompt})
}

// DetailedPrompt is the structured prompt handed to generation systems,
// either routed from a SimplePrompt or supplied directly (prebaked).
// Invariant: instrumental prompts carry no lyrics.
type DetailedPrompt struct {
	OverallPrompt string   `json:"overall_prompt"`
	Instrumental  bool     `json:"instrumental"`
	Lyrics        *string  `json:"lyrics,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	BPM           *float64 `json:"bpm,omitempty"`
}

var errInstrumentalLyrics = errors.New("lyrics must be null for instrumental music")

func (p DetailedPrompt) Validate() error {
	if p.Instrumental && p.Lyrics != nil {
		return errInstrumentalLyrics
	}
	return nil
}

func (p *DetailedPrompt) UnmarshalJSON(b []byte) error {
	type alias DetailedPrompt
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*p = DetailedPrompt(a)
	return p.Validate()
}

// NeedsLyrics reports whether the gateway should synthesize lyrics before
// dispatch: vocal prompts that don't already carry them.
func (p DetailedPrompt) NeedsLyrics() bool {
	return !p.Instrumental && p.Lyrics == nil
}

// Checksum is the content address of the prompt, stable across processes
// and compatible with historical battle records. Null fields are omitted.
func (p DetailedPrompt) Checksum() string {
	d := map[string]any{
		"overall_prompt": p.OverallPrompt,
		"instrumental":   p.Instrumental,
	}
	if p.Lyrics != nil {
		d["lyrics"] = *p.Lyrics
	}
	if p.Duration != nil {
		d["duration"] = *p.Duration
	}
	if p.BPM != nil {
		d["bpm"] = *p.BPM
	}
	return dictChecksum(d)
}
