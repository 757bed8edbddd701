package arena

import (
	"fmt"
	"strings"
)

// SystemAccess describes whether a generation system's weights are public.
type SystemAccess string

const (
	AccessOpen        SystemAccess = "OPEN"
	AccessProprietary SystemAccess = "PROPRIETARY"
)

// SystemKey identifies one variant of one generation system. Serialized as
// an object in JSON bodies and as "tag:variant" in configuration strings.
type SystemKey struct {
	SystemTag  string `json:"system_tag" yaml:"system_tag"`
	VariantTag string `json:"variant_tag" yaml:"variant_tag"`
}

func NewSystemKey(systemTag, variantTag string) (SystemKey, error) {
	if strings.Contains(systemTag, ":") {
		return SystemKey{}, fmt.Errorf("system tag %q cannot contain ':'", systemTag)
	}
	if strings.Contains(variantTag, ":") {
		return SystemKey{}, fmt.Errorf("variant tag %q cannot contain ':'", variantTag)
	}
	return SystemKey{SystemTag: systemTag, VariantTag: variantTag}, nil
}

// ParseSystemKey parses the "tag:variant" configuration form.
func ParseSystemKey(s string) (SystemKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return SystemKey{}, fmt.Errorf("invalid system key %q, want tag:variant", s)
	}
	return SystemKey{SystemTag: parts[0], VariantTag: parts[1]}, nil
}

func (k SystemKey) String() string {
	return k.SystemTag + ":" + k.VariantTag
}

// SystemMetadata is the static catalog entry for one system variant.
type SystemMetadata struct {
	Key                  SystemKey         `json:"key" yaml:"-"`
	DisplayName          string            `json:"display_name" yaml:"display_name"`
	Description          string            `json:"description" yaml:"description"`
	Organization         string            `json:"organization" yaml:"organization"`
	Access               SystemAccess      `json:"access" yaml:"access"`
	SupportsLyrics       bool              `json:"supports_lyrics" yaml:"supports_lyrics"`
	Private              bool              `json:"private" yaml:"private"`
	ModelType            string            `json:"model_type,omitempty" yaml:"model_type"`
	Citation             string            `json:"citation,omitempty" yaml:"citation"`
	Links                map[string]string `json:"links,omitempty" yaml:"links"`
	ReleaseAudioPublicly bool              `json:"release_audio_publicly" yaml:"release_audio_publicly"`
	Port                 int               `json:"-" yaml:"port"`
}

// PrimaryLink picks the most canonical link for display, preferring home
// page, then paper, then code.
func (m SystemMetadata) PrimaryLink() string {
	for _, kind := range []string{"home", "paper", "code"} {
		if url, ok := m.Links[kind]; ok {
			return url
		}
	}
	for _, url := range m.Links {
		return url
	}
	return ""
}
