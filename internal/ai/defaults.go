package ai

// StaticDefaults returns the last-resort list used when nothing better is available.
// A fresh copy is returned on every call.
func StaticDefaults() []Recommendation {
	out := make([]Recommendation, 0, len(staticDefaults))
	for _, rec := range staticDefaults {
		out = append(out, rec.Clone())
	}
	return out
}

var staticDefaults = []Recommendation{
	{
		CareerPath:       "Frontend Developer",
		Reasoning:        "Based on your profile, frontend development offers a great entry point into tech with visual results and growing demand.",
		MatchScore:       75,
		NextSteps:        []string{"Learn HTML/CSS basics", "Master JavaScript fundamentals", "Build portfolio projects"},
		TimelineEstimate: "6-9 months to job readiness",
		SkillGaps:        []string{"React", "TypeScript"},
		StrengthAreas:    []string{"HTML/CSS", "JavaScript"},
	},
	{
		CareerPath:       "Backend Developer",
		Reasoning:        "Your analytical skills and interest in problem-solving make backend development a strong fit for building robust systems.",
		MatchScore:       70,
		NextSteps:        []string{"Choose a programming language", "Learn database fundamentals", "Build API projects"},
		TimelineEstimate: "8-12 months to job readiness",
		SkillGaps:        []string{"Node.js", "Databases"},
		StrengthAreas:    []string{"Programming Logic", "Problem Solving"},
	},
	{
		CareerPath:       "Data Scientist",
		Reasoning:        "With the growing importance of data-driven decisions, this field offers excellent growth opportunities.",
		MatchScore:       65,
		NextSteps:        []string{"Learn Python and statistics", "Practice with real datasets", "Build data visualization projects"},
		TimelineEstimate: "10-15 months to job readiness",
		SkillGaps:        []string{"Python", "Statistics", "Machine Learning"},
		StrengthAreas:    []string{"Analytical Thinking", "Mathematics"},
	},
}
