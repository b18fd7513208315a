// Package devseed loads fixture files used to pre-populate the mock
// ThingSpeak service. Files are YAML; JSON documents parse as well since JSON
// is a subset of YAML.
package devseed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the top-level document of a seed file.
type File struct {
	Channels []ChannelSeed `yaml:"channels" json:"channels"`
}

// ChannelSeed describes one channel and its initial feed.
type ChannelSeed struct {
	ID       uint64      `yaml:"id" json:"id"`
	Name     string      `yaml:"name" json:"name"`
	WriteKey string      `yaml:"write_key" json:"write_key"`
	ReadKey  string      `yaml:"read_key" json:"read_key"` // empty for public channels
	Entries  []EntrySeed `yaml:"entries" json:"entries"`
}

// EntrySeed is a feed entry. Fields are keyed "field1".."field8".
type EntrySeed struct {
	Fields    map[string]string `yaml:"fields" json:"fields"`
	Status    string            `yaml:"status" json:"status"`
	CreatedAt string            `yaml:"created_at" json:"created_at"`
}

// LoadChannelSeed reads and validates the seed file at path.
func LoadChannelSeed(path string) ([]ChannelSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}
	return ParseChannelSeed(data)
}

// ParseChannelSeed decodes and validates a seed document.
func ParseChannelSeed(data []byte) ([]ChannelSeed, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("devseed: decode: %w", err)
	}
	if err := validate(f.Channels); err != nil {
		return nil, err
	}
	return f.Channels, nil
}

func validate(channels []ChannelSeed) error {
	ids := make(map[uint64]struct{}, len(channels))
	keys := make(map[string]uint64, len(channels))
	for i, ch := range channels {
		if ch.ID == 0 {
			return fmt.Errorf("devseed: channel[%d]: id is required", i)
		}
		if _, dup := ids[ch.ID]; dup {
			return fmt.Errorf("devseed: channel %d: duplicate id", ch.ID)
		}
		ids[ch.ID] = struct{}{}

		if strings.TrimSpace(ch.WriteKey) == "" {
			return fmt.Errorf("devseed: channel %d: write_key is required", ch.ID)
		}
		if other, dup := keys[ch.WriteKey]; dup {
			return fmt.Errorf("devseed: channel %d: write_key already used by channel %d", ch.ID, other)
		}
		keys[ch.WriteKey] = ch.ID

		for j, e := range ch.Entries {
			for name := range e.Fields {
				if !isFieldName(name) {
					return fmt.Errorf("devseed: channel %d entry[%d]: unknown field %q", ch.ID, j, name)
				}
			}
		}
	}
	return nil
}

func isFieldName(name string) bool {
	if len(name) != len("field1") || !strings.HasPrefix(name, "field") {
		return false
	}
	d := name[len(name)-1]
	return d >= '1' && d <= '8'
}
