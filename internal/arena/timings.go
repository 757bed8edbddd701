package arena

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Timing is one labeled instant in a battle's lifecycle. Wire format is a
// two-element array: ["sample_pair", 1712345678.9].
type Timing struct {
	Label string
	At    float64
}

func (t Timing) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.Label, t.At})
}

func (t *Timing) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("timing must be a [label, time] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &t.Label); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &t.At)
}

// TimingLog is an append-only timing collector shared by the concurrent
// parts of battle generation. Sorted() gives an order independent of which
// worker finished first.
type TimingLog struct {
	mu      sync.Mutex
	entries []Timing
}

func NewTimingLog() *TimingLog {
	return &TimingLog{}
}

func (l *TimingLog) Add(label string) {
	l.AddAt(label, unixNow())
}

func (l *TimingLog) AddAt(label string, at float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Timing{Label: label, At: at})
}

// Sorted returns a copy of the entries ordered by timestamp.
func (l *TimingLog) Sorted() []Timing {
	l.mu.Lock()
	out := make([]Timing, len(l.entries))
	copy(out, l.entries)
	l.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}
