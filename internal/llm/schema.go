package llm

import "github.com/qaca/surakshapath/internal/safety"

// Response field names shared by every provider.
const (
	fieldVerdict         = "verdict"
	fieldScore           = "score"
	fieldReasoning       = "reasoning"
	fieldRiskFactors     = "riskFactors"
	fieldRecommendations = "recommendations"
)

var requiredFields = []string{fieldVerdict, fieldScore, fieldReasoning, fieldRiskFactors, fieldRecommendations}

func outcomeEnum() []string {
	out := make([]string, 0, 3)
	for _, o := range safety.Outcomes() {
		out = append(out, string(o))
	}
	return out
}

// VerdictJSONSchema is the response schema in JSON Schema form.
func VerdictJSONSchema() map[string]any {
	str := func(desc string) map[string]any {
		return map[string]any{"type": "string", "description": desc}
	}
	list := func(desc string) map[string]any {
		return map[string]any{"type": "array", "description": desc, "items": map[string]any{"type": "string"}}
	}
	verdict := str("SAFE, UNSAFE, or CAUTION")
	verdict["enum"] = outcomeEnum()
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			fieldVerdict:         verdict,
			fieldScore:           map[string]any{"type": "number", "description": "Safety score from 0 to 100"},
			fieldReasoning:       str("Explanation of the verdict"),
			fieldRiskFactors:     list("Identified risk factors, most severe first"),
			fieldRecommendations: list("Actions the staff member should take"),
		},
		"required":             append([]string(nil), requiredFields...),
		"additionalProperties": false,
	}
}
