package arena

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(events ...any) []ListenRecord {
	var out []ListenRecord
	for i := 0; i < len(events); i += 2 {
		out = append(out, ListenRecord{
			Event: events[i].(ListenEventKind),
			At:    events[i+1].(float64),
		})
	}
	return out
}

func TestSumListenTimePlayPause(t *testing.T) {
	assert.InDelta(t, 3.5, SumListenTime(listen(ListenPlay, 10.0, ListenPause, 13.5)), 1e-9)
}

func TestSumListenTimeNegativeIntervalIsZero(t *testing.T) {
	assert.Zero(t, SumListenTime(listen(ListenPlay, 13.5, ListenPause, 10.0)))
}

func TestSumListenTimeStopIgnored(t *testing.T) {
	base := listen(ListenPlay, 10.0, ListenPause, 13.5)
	withStop := listen(ListenPlay, 10.0, ListenStop, 11.0, ListenPause, 13.5)
	assert.Equal(t, SumListenTime(base), SumListenTime(withStop))
}

func TestSumListenTimeConsecutiveTicks(t *testing.T) {
	// TICK closes the running interval and reopens it, so consecutive
	// ticks accumulate the gaps between them.
	got := SumListenTime(listen(ListenPlay, 10.0, ListenTick, 12.0, ListenTick, 15.0))
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestSumListenTimePauseWithoutPlay(t *testing.T) {
	assert.Zero(t, SumListenTime(listen(ListenPause, 10.0, ListenTick, 12.0)))
}

func TestListenRecordWireFormat(t *testing.T) {
	b, err := json.Marshal(ListenRecord{Event: ListenPlay, At: 12.5})
	require.NoError(t, err)
	assert.JSONEq(t, `["PLAY", 12.5]`, string(b))

	var r ListenRecord
	require.NoError(t, json.Unmarshal([]byte(`["TICK", 99.25]`), &r))
	assert.Equal(t, ListenTick, r.Event)
	assert.Equal(t, 99.25, r.At)

	assert.Error(t, json.Unmarshal([]byte(`["REWIND", 1.0]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`["PLAY"]`), &r))
}

func TestVotePreferenceTimeAutoFill(t *testing.T) {
	var v Vote
	v.SetPreference(PreferenceA)
	require.NotNil(t, v.PreferenceTime)
	first := *v.PreferenceTime

	v.SetPreference(PreferenceB)
	assert.Equal(t, first, *v.PreferenceTime, "preference_time fills only on first assignment")
}

func TestVoteFeedbackTimeAutoFill(t *testing.T) {
	var v Vote
	v.SetFeedback("a", "tinny mix")
	require.NotNil(t, v.AFeedback)
	require.NotNil(t, v.FeedbackTime)
	first := *v.FeedbackTime

	v.SetFeedback("", "overall meh")
	require.NotNil(t, v.Feedback)
	assert.Equal(t, first, *v.FeedbackTime)
}

func TestVoteRequireComplete(t *testing.T) {
	var v Vote
	var badReq *InvalidRequestError
	require.ErrorAs(t, v.RequireComplete(), &badReq)
	assert.Equal(t, "vote.preference", badReq.Field)

	v.Preference = "C"
	require.ErrorAs(t, v.RequireComplete(), &badReq)

	ts := 1700000000.0
	v.Preference = PreferenceTie
	require.ErrorAs(t, v.RequireComplete(), &badReq)
	assert.Equal(t, "vote.preference_time", badReq.Field)

	v.PreferenceTime = &ts
	assert.NoError(t, v.RequireComplete())
}

func TestVoteListenHelpers(t *testing.T) {
	var v Vote
	v.Play("a")
	v.Pause("a")
	v.Tick("b")
	assert.Len(t, v.AListenData, 2)
	assert.Len(t, v.BListenData, 1)
	assert.GreaterOrEqual(t, v.ListenTime("a"), 0.0)
}
