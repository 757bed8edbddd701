package arena

import (
	"encoding/json"
	"fmt"
	"time"
)

// Preference is the voter's verdict on a battle.
type Preference string

const (
	PreferenceA       Preference = "A"
	PreferenceB       Preference = "B"
	PreferenceTie     Preference = "TIE"
	PreferenceBothBad Preference = "BOTH_BAD"
)

func (p Preference) Valid() bool {
	switch p {
	case PreferenceA, PreferenceB, PreferenceTie, PreferenceBothBad:
		return true
	}
	return false
}

// ListenEventKind is a playback event reported by the client.
type ListenEventKind string

const (
	ListenPlay  ListenEventKind = "PLAY"
	ListenPause ListenEventKind = "PAUSE"
	ListenStop  ListenEventKind = "STOP"
	ListenTick  ListenEventKind = "TICK"
)

func (e ListenEventKind) Valid() bool {
	switch e {
	case ListenPlay, ListenPause, ListenStop, ListenTick:
		return true
	}
	return false
}

// ListenRecord is one playback event with its unix timestamp. Wire format
// is a two-element array: ["PLAY", 1712345678.9].
type ListenRecord struct {
	Event ListenEventKind
	At    float64
}

func (r ListenRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{string(r.Event), r.At})
}

func (r *ListenRecord) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("listen event must be a [name, time] pair, got %d elements", len(raw))
	}
	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &r.At); err != nil {
		return err
	}
	r.Event = ListenEventKind(name)
	if !r.Event.Valid() {
		return fmt.Errorf("unknown listen event %q", name)
	}
	return nil
}

// SumListenTime folds playback events into total listened seconds. PLAY
// starts an interval; PAUSE closes it; TICK closes it and immediately
// starts a new one; STOP is ignored. Negative intervals contribute zero.
func SumListenTime(records []ListenRecord) float64 {
	var total float64
	var lastPlay *float64
	for i := range records {
		r := records[i]
		switch r.Event {
		case ListenPlay:
			at := r.At
			lastPlay = &at
		case ListenPause, ListenTick:
			if lastPlay != nil {
				if d := r.At - *lastPlay; d > 0 {
					total += d
				}
				if r.Event == ListenPause {
					lastPlay = nil
				} else {
					at := r.At
					lastPlay = &at
				}
			}
		}
	}
	return total
}

// Vote is built incrementally by the client and persisted once attached to
// a battle. PreferenceTime and FeedbackTime fill in on first assignment.
type Vote struct {
	AListenData    []ListenRecord `json:"a_listen_data"`
	BListenData    []ListenRecord `json:"b_listen_data"`
	Preference     Preference     `json:"preference,omitempty"`
	PreferenceTime *float64       `json:"preference_time,omitempty"`
	Feedback       *string        `json:"feedback,omitempty"`
	AFeedback      *string        `json:"a_feedback,omitempty"`
	BFeedback      *string        `json:"b_feedback,omitempty"`
	FeedbackTime   *float64       `json:"feedback_time,omitempty"`
}

func (v *Vote) SetPreference(p Preference) {
	v.Preference = p
	if v.PreferenceTime == nil {
		now := unixNow()
		v.PreferenceTime = &now
	}
}

func (v *Vote) SetFeedback(slot string, text string) {
	switch slot {
	case "a":
		v.AFeedback = &text
	case "b":
		v.BFeedback = &text
	default:
		v.Feedback = &text
	}
	if v.FeedbackTime == nil {
		now := unixNow()
		v.FeedbackTime = &now
	}
}

func (v *Vote) Play(slot string)  { v.appendListen(slot, ListenPlay) }
func (v *Vote) Pause(slot string) { v.appendListen(slot, ListenPause) }
func (v *Vote) Tick(slot string)  { v.appendListen(slot, ListenTick) }

func (v *Vote) appendListen(slot string, e ListenEventKind) {
	r := ListenRecord{Event: e, At: unixNow()}
	if slot == "a" {
		v.AListenData = append(v.AListenData, r)
	} else {
		v.BListenData = append(v.BListenData, r)
	}
}

// ListenTime returns the total seconds listened for slot "a" or "b".
func (v Vote) ListenTime(slot string) float64 {
	if slot == "a" {
		return SumListenTime(v.AListenData)
	}
	return SumListenTime(v.BListenData)
}

// RequireComplete validates the fields a vote must carry to be recorded.
func (v Vote) RequireComplete() error {
	if v.Preference == "" {
		return &InvalidRequestError{Field: "vote.preference", Reason: "vote is missing required field preference"}
	}
	if !v.Preference.Valid() {
		return &InvalidRequestError{Field: "vote.preference", Reason: fmt.Sprintf("invalid preference %q", v.Preference)}
	}
	if v.PreferenceTime == nil {
		return &InvalidRequestError{Field: "vote.preference_time", Reason: "vote is missing required field preference_time"}
	}
	return nil
}

func unixNow() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
