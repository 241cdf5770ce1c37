package advisor

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/career-navigator/internal/ai"
)

//go:embed schema.json
var schemaJSON []byte

var (
	responseSchema = mustSchema(schemaJSON)
	// Greedy on purpose: spans from the first '[' to the last ']'.
	arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

	errNoArray = errors.New("no JSON array found in model response")
)

type parseStatus int

const (
	parseOK parseStatus = iota
	parseEmpty
	parseFailed
)

func (s parseStatus) String() string {
	switch s {
	case parseOK:
		return "ok"
	case parseEmpty:
		return "empty"
	default:
		return "failed"
	}
}

type parseResult struct {
	status parseStatus
	recs   []ai.Recommendation
	err    error
}

type wireRecommendation struct {
	CareerPath       string   `json:"careerPath"`
	Reasoning        string   `json:"reasoning"`
	MatchScore       float64  `json:"matchScore"`
	NextSteps        []string `json:"nextSteps"`
	TimelineEstimate string   `json:"timelineEstimate"`
	SkillGaps        []string `json:"skillGaps"`
	StrengthAreas    []string `json:"strengthAreas"`
}

// parseResponse reads the first array-shaped substring of raw. Any failure
// discards the whole response; entries are never repaired one by one.
func parseResponse(raw string) parseResult {
	array := extractArray(extractJSON(raw))
	if array == "" {
		return parseResult{status: parseFailed, err: errNoArray}
	}

	if !json.Valid([]byte(array)) {
		return parseResult{status: parseFailed, err: errors.New("model response contains invalid JSON")}
	}

	validation, err := responseSchema.Validate(gojsonschema.NewStringLoader(array))
	if err != nil {
		return parseResult{status: parseFailed, err: fmt.Errorf("validate model response: %w", err)}
	}
	if !validation.Valid() {
		return parseResult{status: parseFailed, err: schemaError(validation.Errors())}
	}

	var wire []wireRecommendation
	if err := json.Unmarshal([]byte(array), &wire); err != nil {
		return parseResult{status: parseFailed, err: fmt.Errorf("decode model response: %w", err)}
	}

	if len(wire) == 0 {
		return parseResult{status: parseEmpty}
	}

	recs := make([]ai.Recommendation, 0, len(wire))
	for _, w := range wire {
		recs = append(recs, ai.Recommendation{
			CareerPath:       strings.TrimSpace(w.CareerPath),
			Reasoning:        strings.TrimSpace(w.Reasoning),
			MatchScore:       int(math.Round(w.MatchScore)),
			NextSteps:        nonNil(w.NextSteps),
			TimelineEstimate: strings.TrimSpace(w.TimelineEstimate),
			SkillGaps:        nonNil(w.SkillGaps),
			StrengthAreas:    nonNil(w.StrengthAreas),
		})
	}

	return parseResult{status: parseOK, recs: recs}
}

func extractArray(raw string) string {
	return arrayPattern.FindString(raw)
}

// extractJSON strips markdown code fences around the payload.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

func schemaError(errs []gojsonschema.ResultError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("model response does not match schema: %s", strings.Join(msgs, "; "))
}

func nonNil(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func mustSchema(data []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("compile recommendation schema: %v", err))
	}
	return schema
}
