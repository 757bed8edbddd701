// Package audio extracts stream properties from generated audio so
// battle metadata carries verified values rather than worker claims.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Info holds the probed properties of an audio object.
type Info struct {
	SampleRate  int
	NumChannels int
	Duration    float64
}

// Prober inspects encoded audio bytes.
type Prober interface {
	Probe(ctx context.Context, data []byte, format string) (Info, error)
}

// FFProbe shells out to ffprobe. The bytes are staged in a temp file
// because ffprobe needs a seekable input for some containers.
type FFProbe struct {
	// Path to the ffprobe binary, "ffprobe" to use PATH.
	Path string
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *FFProbe) Probe(ctx context.Context, data []byte, format string) (Info, error) {
	f, err := os.CreateTemp("", "probe-*."+format)
	if err != nil {
		return Info{}, fmt.Errorf("staging audio: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return Info{}, fmt.Errorf("staging audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return Info{}, fmt.Errorf("staging audio: %w", err)
	}

	bin := p.Path
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		filepath.Clean(path),
	)
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Info{}, fmt.Errorf("ffprobe output: %w", err)
	}

	var info Info
	for _, s := range parsed.Streams {
		if s.CodecType != "audio" {
			continue
		}
		info.NumChannels = s.Channels
		if rate, err := strconv.Atoi(s.SampleRate); err == nil {
			info.SampleRate = rate
		}
		break
	}
	if parsed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}
	if info.SampleRate == 0 {
		return Info{}, fmt.Errorf("ffprobe: no audio stream found")
	}
	return info, nil
}
