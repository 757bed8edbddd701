package arena

import "github.com/google/uuid"

// Battle is the root aggregate: one prompt, two generated clips, at most
// one vote. It is mutated exactly twice after creation -- once when
// generation completes (URLs, metadata, timings) and once when a vote is
// recorded -- and persisted to the metadata bucket after each mutation.
type Battle struct {
	UUID           string            `json:"uuid"`
	GatewayVersion string            `json:"gateway_version,omitempty"`
	Prompt         *SimplePrompt     `json:"prompt,omitempty"`
	PromptDetailed *DetailedPrompt   `json:"prompt_detailed,omitempty"`
	PromptUser     *User             `json:"prompt_user,omitempty"`
	PromptSession  *Session          `json:"prompt_session,omitempty"`
	PromptPrebaked bool              `json:"prompt_prebaked"`
	PromptRouted   bool              `json:"prompt_routed"`
	AAudioURL      string            `json:"a_audio_url,omitempty"`
	AMetadata      *ResponseMetadata `json:"a_metadata,omitempty"`
	BAudioURL      string            `json:"b_audio_url,omitempty"`
	BMetadata      *ResponseMetadata `json:"b_metadata,omitempty"`
	Vote           *Vote             `json:"vote,omitempty"`
	VoteUser       *User             `json:"vote_user,omitempty"`
	VoteSession    *Session          `json:"vote_session,omitempty"`
	Timings        []Timing          `json:"timings"`
}

// NewBattleUUID mints the identifier a battle is addressed by everywhere:
// the in-memory cache, the metadata key and the audio keys.
func NewBattleUUID() string {
	return uuid.New().String()
}

// Anonymize returns a copy safe to hand to the voter before they vote:
// per-slot system identities and internal timings are redacted, audio URLs
// and audible metadata survive.
func (b Battle) Anonymize() Battle {
	out := b
	out.AMetadata = b.AMetadata.Anonymize()
	out.BMetadata = b.BMetadata.Anonymize()
	out.Timings = []Timing{}
	return out
}

// Winner resolves the voted system key, or nil for TIE / BOTH_BAD / no
// vote.
func (b Battle) Winner() *SystemKey {
	if b.Vote == nil {
		return nil
	}
	switch b.Vote.Preference {
	case PreferenceA:
		if b.AMetadata != nil {
			return b.AMetadata.SystemKey
		}
	case PreferenceB:
		if b.BMetadata != nil {
			return b.BMetadata.SystemKey
		}
	}
	return nil
}
