package advisor

import (
	"strings"
	"testing"

	"github.com/spigell/career-navigator/internal/profile"
)

func TestBuildPrompt(t *testing.T) {
	p := &profile.UserProfile{
		Name:           "Ada",
		Age:            20,
		EducationField: "BSc Computer Science",
		StudyYear:      2,
		Skills:         []string{"React", "Python", " "},
		SkillExpertise: map[string]profile.Level{"React": profile.Intermediate, "Go": profile.Expert},
		Interests:      "web development",
	}

	prompt := buildPrompt(p, []string{"Frontend Developer", "Data Scientist"})

	expected := []string{
		"- Name: Ada",
		"- Age: 20",
		"- Education: BSc Computer Science (Year 2)",
		"- Current Skills with Expertise: React (intermediate), Python (beginner)",
		"- Interests: web development",
		"- Career Goals: not specified",
		"- Available Learning Time: 10 hours/week",
		"- Frontend Developer\n- Data Scientist",
	}
	for _, want := range expected {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q\n%s", want, prompt)
		}
	}

	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt has unreplaced placeholders:\n%s", prompt)
	}
}

func TestBuildPromptWithoutSkills(t *testing.T) {
	prompt := buildPrompt(nil, []string{"Data Scientist"})
	if !strings.Contains(prompt, "- Current Skills with Expertise: none listed") {
		t.Fatalf("expected placeholder for missing skills")
	}
}
