package ai

import (
	"context"
	"errors"
	"slices"
)

// ErrEmptyResponse is returned by generators when the model produced no text.
var ErrEmptyResponse = errors.New("model returned empty response")

// Recommendation is a single career suggestion shown to the user.
type Recommendation struct {
	CareerPath       string   `json:"careerPath"`
	Reasoning        string   `json:"reasoning"`
	MatchScore       int      `json:"matchScore"`
	NextSteps        []string `json:"nextSteps"`
	TimelineEstimate string   `json:"timelineEstimate"`
	SkillGaps        []string `json:"skillGaps"`
	StrengthAreas    []string `json:"strengthAreas"`
}

// Clone returns a deep copy so collections can be reordered without sharing slices.
func (r Recommendation) Clone() Recommendation {
	r.NextSteps = slices.Clone(r.NextSteps)
	r.SkillGaps = slices.Clone(r.SkillGaps)
	r.StrengthAreas = slices.Clone(r.StrengthAreas)
	return r
}

// Generator produces free-form text for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Outcome describes how a reconciliation produced its result.
type Outcome string

const (
	// OutcomeModel means the model output was parsed and used, possibly topped up.
	OutcomeModel Outcome = "model"
	// OutcomeEmpty means the model returned an array with no usable entries.
	OutcomeEmpty Outcome = "empty"
	// OutcomeTransportFailure means the generator call itself failed.
	OutcomeTransportFailure Outcome = "transport_failure"
	// OutcomeParseFailure means no valid array could be read from the model output.
	OutcomeParseFailure Outcome = "parse_failure"
	// OutcomeDisabled means no generator is configured.
	OutcomeDisabled Outcome = "disabled"
)
