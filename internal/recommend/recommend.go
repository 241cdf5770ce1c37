// Package recommend implements the rule-based career recommender. It maps a
// profile onto catalog ids by substring and membership rules and never ranks.
package recommend

import (
	"slices"
	"strings"

	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/profile"
)

// MinResults is the smallest set Recommend ever returns for a catalog of at least that size.
const MinResults = 3

var (
	businessGroup = []string{
		"accounting",
		"corporate-finance",
		"investment-banking",
		"marketing-strategies",
		"e-commerce",
		"supply-chain-management",
		"business-analytics",
	}
	humanitiesGroup = []string{
		"content-creator",
		"social-researcher",
		"cultural-analyst",
		"public-relations",
		"policy-development",
		"community-engagement",
	}
)

type rule struct {
	match []string
	ids   []string
}

// Evaluated in order against the lower-cased interests text.
var interestRules = []rule{
	{match: []string{"web development", "ui/ux"}, ids: []string{"frontend"}},
	{match: []string{"data science", "machine learning", "artificial intelligence"}, ids: []string{"datascience"}},
	{match: []string{"cybersecurity"}, ids: []string{"cybersecurity"}},
	{match: []string{"mobile"}, ids: []string{"mobile"}},
	{match: []string{"devops", "cloud"}, ids: []string{"devops"}},
	{
		match: []string{
			"accounting", "finance", "business", "corporate finance", "investment banking",
			"marketing strategies", "e-commerce", "supply chain management", "business analytics",
		},
		ids: businessGroup,
	},
	{
		match: []string{
			"content creation", "writing", "media", "social research", "cultural analysis",
			"public relations", "policy development", "community engagement",
		},
		ids: humanitiesGroup,
	},
}

// Evaluated in order against the lower-cased education field.
var educationRules = []rule{
	{match: []string{"computer", "information"}, ids: []string{"frontend", "backend"}},
	{match: []string{"commerce", "business"}, ids: businessGroup},
	{match: []string{"arts", "humanities"}, ids: humanitiesGroup},
}

// Evaluated in order; a rule fires when the skill list contains one of the tokens exactly.
var skillRules = []rule{
	{match: []string{"html", "css", "javascript", "react"}, ids: []string{"frontend"}},
	{match: []string{"python", "java", "sql", "node.js"}, ids: []string{"backend", "datascience"}},
	{match: []string{"cybersecurity", "linux"}, ids: []string{"cybersecurity"}},
	{match: []string{"mobile", "android", "ios"}, ids: []string{"mobile"}},
	{match: []string{"cloud", "devops", "docker"}, ids: []string{"devops"}},
	{match: []string{"data analysis", "machine learning", "statistics"}, ids: []string{"datascience"}},
	{match: []string{"accounting", "finance"}, ids: []string{"accounting", "corporate-finance"}},
	{match: []string{"marketing", "advertising"}, ids: []string{"marketing", "marketing-strategies"}},
	{match: []string{"investment banking"}, ids: []string{"investment-banking"}},
	{match: []string{"e-commerce"}, ids: []string{"e-commerce"}},
	{match: []string{"supply chain management"}, ids: []string{"supply-chain-management"}},
	{match: []string{"business analytics"}, ids: []string{"business-analytics"}},
	{match: []string{"social research"}, ids: []string{"social-researcher"}},
	{match: []string{"cultural analysis"}, ids: []string{"cultural-analyst"}},
	{match: []string{"public relations"}, ids: []string{"public-relations"}},
	{match: []string{"policy development"}, ids: []string{"policy-development"}},
	{match: []string{"community engagement"}, ids: []string{"community-engagement"}},
}

// orderedSet keeps insertion order and silently rejects duplicates.
type orderedSet struct {
	ids  []string
	seen map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(ids ...string) {
	for _, id := range ids {
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

func (s *orderedSet) len() int {
	return len(s.ids)
}

// Recommend returns suggested career ids for p in rule evaluation order,
// backfilled from the head of the catalog up to MinResults entries.
// Rule groups may name ids the catalog lacks (accounting, marketing); they are
// kept and count toward MinResults, and Split never matches them.
func Recommend(p *profile.UserProfile, c *catalog.Catalog) []string {
	set := newOrderedSet()

	interests := p.LowerInterests()
	for _, r := range interestRules {
		if containsAny(interests, r.match) {
			set.add(r.ids...)
		}
	}

	education := p.LowerEducation()
	for _, r := range educationRules {
		if containsAny(education, r.match) {
			set.add(r.ids...)
		}
	}

	skills := p.LowerSkills()
	for _, r := range skillRules {
		if hasAnySkill(skills, r.match) {
			set.add(r.ids...)
		}
	}

	for _, id := range c.IDs() {
		if set.len() >= MinResults {
			break
		}
		set.add(id)
	}

	return set.ids
}

// Partition splits the catalog into recommended and other careers. Both halves keep catalog order.
type Partition struct {
	Recommended []catalog.CareerPath `json:"recommended"`
	Other       []catalog.CareerPath `json:"other"`
}

// Split partitions the catalog by the provided ids.
func Split(c *catalog.Catalog, ids []string) Partition {
	result := Partition{
		Recommended: make([]catalog.CareerPath, 0, len(ids)),
		Other:       make([]catalog.CareerPath, 0, c.Len()),
	}
	for _, path := range c.Paths() {
		if slices.Contains(ids, path.ID) {
			result.Recommended = append(result.Recommended, path)
			continue
		}
		result.Other = append(result.Other, path)
	}
	return result
}

func containsAny(text string, phrases []string) bool {
	if text == "" {
		return false
	}
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func hasAnySkill(skills, tokens []string) bool {
	for _, skill := range skills {
		if slices.Contains(tokens, skill) {
			return true
		}
	}
	return false
}
