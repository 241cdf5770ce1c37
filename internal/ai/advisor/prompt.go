package advisor

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/spigell/career-navigator/internal/profile"
)

//go:embed prompt.md
var promptTemplate string

const notSpecified = "not specified"

func buildPrompt(p *profile.UserProfile, titles []string) string {
	if p == nil {
		p = &profile.UserProfile{}
	}

	replacer := strings.NewReplacer(
		"{{NAME}}", orNotSpecified(p.Name),
		"{{AGE}}", intOrNotSpecified(p.Age),
		"{{EDUCATION}}", orNotSpecified(p.EducationField),
		"{{STUDY_YEAR}}", intOrNotSpecified(p.StudyYear),
		"{{SKILLS}}", skillsWithExpertise(p),
		"{{INTERESTS}}", orNotSpecified(p.Interests),
		"{{CAREER_GOALS}}", orNotSpecified(p.CareerGoals),
		"{{EXPERIENCE_LEVEL}}", orNotSpecified(p.ExperienceLevel),
		"{{AVAILABILITY}}", strconv.Itoa(p.Availability()),
		"{{CAREER_PATHS}}", bulletList(titles),
	)

	return replacer.Replace(promptTemplate)
}

// skillsWithExpertise renders "React (intermediate), Python (beginner)".
func skillsWithExpertise(p *profile.UserProfile) string {
	parts := make([]string, 0, len(p.Skills))
	for _, skill := range p.Skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		parts = append(parts, skill+" ("+string(p.Expertise(skill))+")")
	}
	if len(parts) == 0 {
		return "none listed"
	}
	return strings.Join(parts, ", ")
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

func orNotSpecified(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return notSpecified
	}
	return s
}

func intOrNotSpecified(v int) string {
	if v <= 0 {
		return notSpecified
	}
	return strconv.Itoa(v)
}
