// Package catalog holds the fixed set of career paths offered by the navigator
// together with the keyword table used by the match scorer. Both are parsed
// once from embedded YAML and never modified afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed careers.yaml
var careersYAML []byte

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Track groups careers by the education background that earns a bonus for them.
type Track string

const (
	TrackTechnical  Track = "technical"
	TrackBusiness   Track = "business"
	TrackHumanities Track = "humanities"
)

// Phase is one step of a learning roadmap.
type Phase struct {
	Name     string   `yaml:"phase" json:"phase"`
	Duration string   `yaml:"duration" json:"duration"`
	Skills   []string `yaml:"skills" json:"skills"`
	Projects []string `yaml:"projects" json:"projects"`
}

// CareerPath describes a single catalog entry.
type CareerPath struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Skills      []string   `yaml:"skills" json:"skills"`
	Salary      string     `yaml:"salary" json:"avgSalary"`
	Growth      string     `yaml:"growth" json:"jobGrowth"`
	Difficulty  Difficulty `yaml:"difficulty" json:"difficulty"`
	Track       Track      `yaml:"track" json:"track"`
	Roadmap     []Phase    `yaml:"roadmap" json:"roadmap"`
}

// Catalog is an ordered, read-only collection of career paths.
// Returned values share backing arrays with the catalog and must not be modified.
type Catalog struct {
	paths   []CareerPath
	byID    map[string]int
	byTitle map[string]int
}

// New validates the provided paths and builds a catalog preserving their order.
func New(paths []CareerPath) (*Catalog, error) {
	if len(paths) == 0 {
		return nil, errors.New("catalog must contain at least one career path")
	}

	c := &Catalog{
		paths:   make([]CareerPath, 0, len(paths)),
		byID:    make(map[string]int, len(paths)),
		byTitle: make(map[string]int, len(paths)),
	}

	for i, path := range paths {
		path.ID = strings.TrimSpace(path.ID)
		path.Title = strings.TrimSpace(path.Title)

		if path.ID == "" || path.Title == "" {
			return nil, fmt.Errorf("career path #%d: id and title are required", i)
		}
		if _, ok := c.byID[path.ID]; ok {
			return nil, fmt.Errorf("duplicate career path id %q", path.ID)
		}
		if _, ok := c.byTitle[path.Title]; ok {
			return nil, fmt.Errorf("duplicate career path title %q", path.Title)
		}

		switch path.Difficulty {
		case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		default:
			return nil, fmt.Errorf("career path %q: unknown difficulty %q", path.ID, path.Difficulty)
		}

		switch path.Track {
		case TrackTechnical, TrackBusiness, TrackHumanities:
		default:
			return nil, fmt.Errorf("career path %q: unknown track %q", path.ID, path.Track)
		}

		c.byID[path.ID] = len(c.paths)
		c.byTitle[path.Title] = len(c.paths)
		c.paths = append(c.paths, path)
	}

	return c, nil
}

// Parse decodes a YAML list of career paths.
func Parse(data []byte) (*Catalog, error) {
	var paths []CareerPath
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&paths); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(paths)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog. It is parsed on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(careersYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot proceed without the catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.paths)
}

// Paths returns the career paths in catalog order.
func (c *Catalog) Paths() []CareerPath {
	out := make([]CareerPath, len(c.paths))
	copy(out, c.paths)
	return out
}

func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.paths))
	for _, path := range c.paths {
		ids = append(ids, path.ID)
	}
	return ids
}

func (c *Catalog) Titles() []string {
	titles := make([]string, 0, len(c.paths))
	for _, path := range c.paths {
		titles = append(titles, path.Title)
	}
	return titles
}

func (c *Catalog) ByID(id string) (CareerPath, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return CareerPath{}, false
	}
	return c.paths[idx], true
}

// ByTitle looks up a career by its exact display title.
func (c *Catalog) ByTitle(title string) (CareerPath, bool) {
	idx, ok := c.byTitle[title]
	if !ok {
		return CareerPath{}, false
	}
	return c.paths[idx], true
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDForTitle maps an exact display title to its catalog id.
func (c *Catalog) IDForTitle(title string) (string, bool) {
	idx, ok := c.byTitle[title]
	if !ok {
		return "", false
	}
	return c.paths[idx].ID, true
}
