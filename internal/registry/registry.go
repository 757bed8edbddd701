// Package registry loads the static system catalog and the prebaked
// prompt set. Both are immutable after startup and safe to share.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/pkg/embedded"
)

// Catalog maps every registered system variant to its metadata.
type Catalog map[arena.SystemKey]arena.SystemMetadata

// Get returns the metadata for key or an error naming the missing system.
func (c Catalog) Get(key arena.SystemKey) (arena.SystemMetadata, error) {
	md, ok := c[key]
	if !ok {
		return arena.SystemMetadata{}, fmt.Errorf("system %s not found in registry", key)
	}
	return md, nil
}

type registryVariant struct {
	DisplayName          string            `yaml:"display_name"`
	Description          string            `yaml:"description"`
	Organization         string            `yaml:"organization"`
	Access               string            `yaml:"access"`
	SupportsLyrics       *bool             `yaml:"supports_lyrics"`
	Private              *bool             `yaml:"private"`
	ModelType            string            `yaml:"model_type"`
	Citation             string            `yaml:"citation"`
	Links                map[string]string `yaml:"links"`
	ReleaseAudioPublicly *bool             `yaml:"release_audio_publicly"`
	Port                 int               `yaml:"port"`
}

type registrySystem struct {
	registryVariant `yaml:",inline"`
	Variants        map[string]registryVariant `yaml:"variants"`
}

// Load parses a registry YAML file; an empty path loads the embedded
// default catalog.
func Load(path string) (Catalog, error) {
	var raw []byte
	if path == "" {
		raw = embedded.RegistryYAML
	} else {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading registry: %w", err)
		}
	}
	return parse(raw)
}

func parse(raw []byte) (Catalog, error) {
	var systems map[string]registrySystem
	if err := yaml.Unmarshal(raw, &systems); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}

	catalog := make(Catalog)
	for systemTag, sys := range systems {
		if len(sys.Variants) == 0 {
			return nil, fmt.Errorf("system %s must have at least one variant", systemTag)
		}
		for variantTag, variant := range sys.Variants {
			key, err := arena.NewSystemKey(systemTag, variantTag)
			if err != nil {
				return nil, err
			}
			md, err := mergeVariant(key, sys.registryVariant, variant)
			if err != nil {
				return nil, fmt.Errorf("system %s variant %s: %w", systemTag, variantTag, err)
			}
			catalog[key] = md
		}
	}
	return catalog, nil
}

// mergeVariant layers variant fields over the system-level defaults.
// Descriptions concatenate rather than override so variants can annotate
// the base description.
func mergeVariant(key arena.SystemKey, base, variant registryVariant) (arena.SystemMetadata, error) {
	md := arena.SystemMetadata{
		Key:                  key,
		DisplayName:          firstNonEmpty(variant.DisplayName, base.DisplayName),
		Organization:         firstNonEmpty(variant.Organization, base.Organization),
		ModelType:            firstNonEmpty(variant.ModelType, base.ModelType),
		Citation:             firstNonEmpty(variant.Citation, base.Citation),
		ReleaseAudioPublicly: true,
		Port:                 variant.Port,
	}
	if md.Port == 0 {
		md.Port = base.Port
	}

	var descriptions []string
	for _, d := range []string{base.Description, variant.Description} {
		if d != "" {
			descriptions = append(descriptions, d)
		}
	}
	md.Description = strings.Join(descriptions, " ")

	access := firstNonEmpty(variant.Access, base.Access)
	switch arena.SystemAccess(access) {
	case arena.AccessOpen, arena.AccessProprietary:
		md.Access = arena.SystemAccess(access)
	default:
		return md, fmt.Errorf("invalid access %q", access)
	}

	if variant.SupportsLyrics != nil {
		md.SupportsLyrics = *variant.SupportsLyrics
	} else if base.SupportsLyrics != nil {
		md.SupportsLyrics = *base.SupportsLyrics
	}
	if variant.Private != nil {
		md.Private = *variant.Private
	} else if base.Private != nil {
		md.Private = *base.Private
	}
	if variant.ReleaseAudioPublicly != nil {
		md.ReleaseAudioPublicly = *variant.ReleaseAudioPublicly
	} else if base.ReleaseAudioPublicly != nil {
		md.ReleaseAudioPublicly = *base.ReleaseAudioPublicly
	}

	md.Links = map[string]string{}
	for k, v := range base.Links {
		md.Links[k] = v
	}
	for k, v := range variant.Links {
		md.Links[k] = v
	}
	return md, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// LoadPrebaked parses the curated prompt file into a checksum-keyed map.
// A missing file is not an error; the caller gets an empty map and should
// warn. An empty path loads the embedded default set.
func LoadPrebaked(path string) (map[string]arena.DetailedPrompt, bool, error) {
	var raw []byte
	if path == "" {
		raw = embedded.PrebakedJSON
	} else {
		var err error
		raw, err = os.ReadFile(path)
		if os.IsNotExist(err) {
			return map[string]arena.DetailedPrompt{}, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("reading prebaked prompts: %w", err)
		}
	}

	var prompts []arena.DetailedPrompt
	if err := json.Unmarshal(raw, &prompts); err != nil {
		return nil, false, fmt.Errorf("parsing prebaked prompts: %w", err)
	}
	result := make(map[string]arena.DetailedPrompt, len(prompts))
	for _, p := range prompts {
		sum := p.Checksum()
		if _, dup := result[sum]; dup {
			return nil, false, fmt.Errorf("duplicate prebaked prompt checksum %s", sum)
		}
		result[sum] = p
	}
	return result, true, nil
}
