package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qaca/surakshapath/internal/safety"
)

// decodeJSON tolerates code fences and prose around a single JSON object.
func decodeJSON(text string, out any) error {
	s := strings.TrimSpace(text)
	if s == "" {
		return ErrEmptyResponse
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

type wireVerdict struct {
	Verdict         *string   `json:"verdict"`
	Score           *float64  `json:"score"`
	Reasoning       *string   `json:"reasoning"`
	RiskFactors     *[]string `json:"riskFactors"`
	Recommendations *[]string `json:"recommendations"`
}

// decodeVerdict parses a model answer. Every schema field must be present; the
// score is clamped into [0,100].
func decodeVerdict(text string) (safety.Verdict, error) {
	var w wireVerdict
	if err := decodeJSON(text, &w); err != nil {
		return safety.Verdict{}, err
	}

	var missing []string
	if w.Verdict == nil {
		missing = append(missing, fieldVerdict)
	}
	if w.Score == nil {
		missing = append(missing, fieldScore)
	}
	if w.Reasoning == nil {
		missing = append(missing, fieldReasoning)
	}
	if w.RiskFactors == nil {
		missing = append(missing, fieldRiskFactors)
	}
	if w.Recommendations == nil {
		missing = append(missing, fieldRecommendations)
	}
	if len(missing) > 0 {
		return safety.Verdict{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}

	outcome, err := safety.ParseOutcome(*w.Verdict)
	if err != nil {
		return safety.Verdict{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return safety.Verdict{
		Verdict:         outcome,
		Score:           safety.ClampScore(*w.Score),
		Reasoning:       strings.TrimSpace(*w.Reasoning),
		RiskFactors:     nonEmpty(*w.RiskFactors),
		Recommendations: nonEmpty(*w.Recommendations),
	}, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
