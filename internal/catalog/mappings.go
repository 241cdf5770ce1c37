package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed mappings.yaml
var mappingsYAML []byte

// Mapping lists the interest and skill keywords that point at a career.
// Keywords are stored lower-cased.
type Mapping struct {
	Career    string   `yaml:"career"`
	Interests []string `yaml:"interests"`
	Skills    []string `yaml:"skills"`
	Reasoning string   `yaml:"reasoning"`
}

// ParseMappings decodes the keyword table. Entries are kept in file order,
// which is also the tie-break order of the match scorer.
func ParseMappings(data []byte) ([]Mapping, error) {
	var mappings []Mapping
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&mappings); err != nil {
		return nil, fmt.Errorf("parse career mappings: %w", err)
	}

	for i := range mappings {
		m := &mappings[i]
		m.Career = strings.TrimSpace(m.Career)
		if m.Career == "" {
			return nil, fmt.Errorf("career mapping #%d: career is required", i)
		}
		m.Interests = lowerAll(m.Interests)
		m.Skills = lowerAll(m.Skills)
	}

	return mappings, nil
}

var (
	mappingsOnce    sync.Once
	defaultMappings []Mapping
	mappingsErr     error
)

// DefaultMappings returns the embedded keyword table.
func DefaultMappings() ([]Mapping, error) {
	mappingsOnce.Do(func() {
		defaultMappings, mappingsErr = ParseMappings(mappingsYAML)
	})
	if mappingsErr != nil {
		return nil, mappingsErr
	}
	out := make([]Mapping, len(defaultMappings))
	copy(out, defaultMappings)
	return out, nil
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
