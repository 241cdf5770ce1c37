// Package matching scores careers by keyword overlap between a profile and the
// career mapping table. It is the deterministic fallback behind the model.
package matching

import (
	"sort"
	"strings"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/profile"
)

const (
	// MaxResults caps the scorer output.
	MaxResults = 2

	interestWeight   = 10
	interestCap      = 30
	skillWeight      = 10
	skillCap         = 50
	educationBonus   = 15
	minimumScore     = 40
	displayBase      = 60
	displayCeiling   = 95
	strongSkillMatch = 2
)

var educationTracks = []struct {
	keywords []string
	track    catalog.Track
}{
	{keywords: []string{"computer", "information"}, track: catalog.TrackTechnical},
	{keywords: []string{"commerce", "business"}, track: catalog.TrackBusiness},
	{keywords: []string{"arts", "humanities"}, track: catalog.TrackHumanities},
}

// Scorer ranks catalog careers for a profile.
type Scorer struct {
	catalog  *catalog.Catalog
	mappings []catalog.Mapping
}

func New(c *catalog.Catalog, mappings []catalog.Mapping) *Scorer {
	return &Scorer{catalog: c, mappings: mappings}
}

type candidate struct {
	score int
	rec   ai.Recommendation
}

// Score returns up to MaxResults recommendations ordered by descending raw score.
// Careers listed in exclude and mappings for careers missing from the catalog are skipped.
func (s *Scorer) Score(p *profile.UserProfile, exclude []string) []ai.Recommendation {
	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	interests := p.LowerInterests()
	education := p.LowerEducation()
	skills := p.LowerSkills()

	var candidates []candidate
	for _, m := range s.mappings {
		if _, skip := excluded[m.Career]; skip {
			continue
		}
		path, ok := s.catalog.ByID(m.Career)
		if !ok {
			continue
		}

		interestMatches := matchInterests(interests, m.Interests)
		skillMatches, missing := matchSkills(skills, m.Skills)

		score := 0
		if len(interestMatches) > 0 {
			score += min(interestCap, interestWeight*len(interestMatches))
		}
		if len(skillMatches) > 0 {
			score += min(skillCap, skillWeight*len(skillMatches))
		}
		if educationTrack(education, path.Track) {
			score += educationBonus
		}

		if len(interestMatches) == 0 || len(skillMatches) == 0 || score < minimumScore {
			continue
		}

		candidates = append(candidates, candidate{
			score: score,
			rec:   build(path, m, interestMatches, skillMatches, missing, score),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > MaxResults {
		candidates = candidates[:MaxResults]
	}

	out := make([]ai.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.rec)
	}
	return out
}

func build(path catalog.CareerPath, m catalog.Mapping, interestMatches, skillMatches, missing []string, score int) ai.Recommendation {
	var strengths []string
	if len(interestMatches) > 0 {
		strengths = append(strengths, "Strong interest alignment")
	}
	switch {
	case len(skillMatches) >= strongSkillMatch:
		strengths = append(strengths, "Relevant technical skills")
	case len(skillMatches) == 1:
		strengths = append(strengths, "Some relevant skills")
	}
	if len(strengths) == 0 {
		strengths = []string{"Interest in the field"}
	}

	gaps := missing
	if len(gaps) > 3 {
		gaps = gaps[:3]
	}
	if len(gaps) == 0 {
		gaps = []string{"Industry-specific experience"}
	} else {
		gaps = append([]string(nil), gaps...)
	}

	timeline := "6-12 months to develop required skills"
	if len(skillMatches) >= strongSkillMatch {
		timeline = "3-6 months to build proficiency"
	}

	return ai.Recommendation{
		CareerPath: path.Title,
		Reasoning:  m.Reasoning,
		MatchScore: DisplayScore(score),
		NextSteps: []string{
			"Research the field thoroughly",
			"Build projects using " + strings.Join(skillMatches[:min(2, len(skillMatches))], " and "),
			"Connect with professionals in the field",
		},
		TimelineEstimate: timeline,
		SkillGaps:        gaps,
		StrengthAreas:    strengths,
	}
}

// DisplayScore compresses a raw score into the range shown to users.
func DisplayScore(raw int) int {
	return min(displayCeiling, displayBase+raw/2)
}

func matchInterests(interests string, keywords []string) []string {
	if interests == "" {
		return nil
	}
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(interests, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// matchSkills splits keywords into those matched by some user skill and the
// rest. A keyword matches when either string contains the other.
func matchSkills(skills, keywords []string) (matched, missing []string) {
	for _, kw := range keywords {
		if skillMatches(skills, kw) {
			matched = append(matched, kw)
			continue
		}
		missing = append(missing, kw)
	}
	return matched, missing
}

func skillMatches(skills []string, keyword string) bool {
	for _, skill := range skills {
		if strings.Contains(skill, keyword) || strings.Contains(keyword, skill) {
			return true
		}
	}
	return false
}

func educationTrack(education string, track catalog.Track) bool {
	if education == "" {
		return false
	}
	for _, et := range educationTracks {
		if et.track != track {
			continue
		}
		for _, kw := range et.keywords {
			if strings.Contains(education, kw) {
				return true
			}
		}
	}
	return false
}
