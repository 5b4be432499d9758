package safety

import (
	"fmt"
	"math"
	"strings"
)

// Outcome is the closed set of clearance decisions.
type Outcome string

const (
	OutcomeSafe    Outcome = "SAFE"
	OutcomeUnsafe  Outcome = "UNSAFE"
	OutcomeCaution Outcome = "CAUTION"
)

// Outcomes lists the legal values in schema order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeSafe, OutcomeUnsafe, OutcomeCaution}
}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSafe, OutcomeUnsafe, OutcomeCaution:
		return true
	}
	return false
}

// ParseOutcome accepts the enum value case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("safety: unknown verdict %q", s)
	}
	return o, nil
}

// Verdict is the risk assessment returned for one checklist.
type Verdict struct {
	Verdict         Outcome  `json:"verdict"`
	Score           float64  `json:"score"`
	Reasoning       string   `json:"reasoning"`
	RiskFactors     []string `json:"riskFactors"`
	Recommendations []string `json:"recommendations"`
}

// RequiresEmergencyContact is true only for UNSAFE clearances.
func (v Verdict) RequiresEmergencyContact() bool { return v.Verdict == OutcomeUnsafe }

// ScoreLabel renders the score as a percentage: whole scores print without
// decimals ("35%"), others with one decimal place ("72.5%").
func (v Verdict) ScoreLabel() string {
	return fmt.Sprintf("%s%%", formatScore(v.Score))
}

func formatScore(s float64) string {
	if s == math.Trunc(s) {
		return fmt.Sprintf("%d", int(s))
	}
	return fmt.Sprintf("%.1f", s)
}

// ClampScore bounds s to [0,100].
func ClampScore(s float64) float64 {
	switch {
	case math.IsNaN(s):
		return 0
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
