// Package profile describes a user's skills, interests and background, and
// loads profiles from loosely typed documents and YAML or JSON files.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Level is a self-assessed proficiency for a single skill.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
	Expert       Level = "expert"
)

// DefaultAvailability is used when a profile does not state weekly learning hours.
const DefaultAvailability = 10

// ParseLevel normalizes the provided value. Unknown or empty values resolve to Beginner.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case Intermediate:
		return Intermediate
	case Advanced:
		return Advanced
	case Expert:
		return Expert
	default:
		return Beginner
	}
}

// UserProfile is the read-only input of every recommender.
type UserProfile struct {
	ID                       string           `json:"id,omitempty" mapstructure:"id"`
	Name                     string           `json:"name" mapstructure:"name"`
	Age                      int              `json:"age" mapstructure:"age"`
	EducationField           string           `json:"education_field" mapstructure:"education_field"`
	StudyYear                int              `json:"study_year" mapstructure:"study_year"`
	Skills                   []string         `json:"skills" mapstructure:"skills"`
	SkillExpertise           map[string]Level `json:"skill_expertise" mapstructure:"skill_expertise"`
	Interests                string           `json:"interests" mapstructure:"interests"`
	CareerGoals              string           `json:"career_goals" mapstructure:"career_goals"`
	ExperienceLevel          string           `json:"experience_level" mapstructure:"experience_level"`
	AvailabilityHoursPerWeek int              `json:"availability_hours_per_week" mapstructure:"availability_hours_per_week"`
}

// Expertise returns the proficiency recorded for skill. Skills missing from the
// expertise map are treated as Beginner.
func (p *UserProfile) Expertise(skill string) Level {
	if p == nil || p.SkillExpertise == nil {
		return Beginner
	}
	if level, ok := p.SkillExpertise[skill]; ok {
		return ParseLevel(string(level))
	}
	return Beginner
}

// LowerSkills returns the trimmed, lower-cased skill list without empty entries.
func (p *UserProfile) LowerSkills() []string {
	if p == nil {
		return nil
	}
	skills := make([]string, 0, len(p.Skills))
	for _, skill := range p.Skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		skills = append(skills, skill)
	}
	return skills
}

func (p *UserProfile) LowerInterests() string {
	if p == nil {
		return ""
	}
	return strings.ToLower(p.Interests)
}

func (p *UserProfile) LowerEducation() string {
	if p == nil {
		return ""
	}
	return strings.ToLower(p.EducationField)
}

// Availability returns weekly learning hours, falling back to DefaultAvailability.
func (p *UserProfile) Availability() int {
	if p == nil || p.AvailabilityHoursPerWeek <= 0 {
		return DefaultAvailability
	}
	return p.AvailabilityHoursPerWeek
}

// Decode builds a profile from a loosely typed document, accepting numbers
// encoded as strings and similar shapes produced by hand-written files.
func Decode(raw map[string]any) (*UserProfile, error) {
	var p UserProfile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Load reads a profile from a YAML or JSON file. The format is picked by extension.
func Load(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file %q: %w", path, err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse profile json %q: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse profile yaml %q: %w", path, err)
		}
	}

	return Decode(raw)
}
