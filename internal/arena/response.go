package arena

// ResponseMetadata describes one worker's generation output. It is mutable
// only until the owning battle is persisted.
type ResponseMetadata struct {
	SystemKey           *SystemKey `json:"system_key,omitempty"`
	SystemGitHash       *string    `json:"system_git_hash,omitempty"`
	SystemTimeQueued    *float64   `json:"system_time_queued,omitempty"`
	SystemTimeStarted   *float64   `json:"system_time_started,omitempty"`
	SystemTimeCompleted *float64   `json:"system_time_completed,omitempty"`
	GatewayTimeStarted  *float64   `json:"gateway_time_started,omitempty"`
	GatewayTimeComplete *float64   `json:"gateway_time_completed,omitempty"`
	GatewayNumRetries   *int       `json:"gateway_num_retries,omitempty"`
	SizeBytes           *int       `json:"size_bytes,omitempty"`
	Lyrics              *string    `json:"lyrics,omitempty"`
	SampleRate          *int       `json:"sample_rate,omitempty"`
	NumChannels         *int       `json:"num_channels,omitempty"`
	Duration            *float64   `json:"duration,omitempty"`
	Checksum            *string    `json:"checksum,omitempty"`
}

// Anonymize strips everything a voter could use to identify the system,
// keeping only what they can already observe: the lyrics they hear and the
// audio content checksum.
func (m *ResponseMetadata) Anonymize() *ResponseMetadata {
	if m == nil {
		return nil
	}
	return &ResponseMetadata{
		Lyrics:   m.Lyrics,
		Checksum: m.Checksum,
	}
}
