package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/qaca/surakshapath/internal/safety"
)

// RulesProvider is an offline, deterministic judge that applies the same
// criteria the model prompt lists. It needs no network or API key.
type RulesProvider struct{}

func NewRulesProvider() *RulesProvider { return &RulesProvider{} }

func (r *RulesProvider) Name() string { return "rules" }

type finding struct {
	risk      string
	advice    string
	penalty   float64
	unsafe    bool
	attention bool
}

func (r *RulesProvider) Analyze(ctx context.Context, c safety.Checklist) (safety.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return safety.Verdict{}, err
	}

	findings := evaluate(c)
	score := 100.0
	unsafe, caution := false, false
	v := safety.Verdict{RiskFactors: []string{}, Recommendations: []string{}}
	for _, f := range findings {
		score -= f.penalty
		unsafe = unsafe || f.unsafe
		caution = caution || f.attention
		v.RiskFactors = append(v.RiskFactors, f.risk)
		if f.advice != "" {
			v.Recommendations = append(v.Recommendations, f.advice)
		}
	}
	v.Score = safety.ClampScore(score)

	switch {
	case unsafe:
		v.Verdict = safety.OutcomeUnsafe
	case caution || v.Score < 80:
		v.Verdict = safety.OutcomeCaution
	default:
		v.Verdict = safety.OutcomeSafe
	}
	v.Reasoning = reasoning(v.Verdict, c, len(findings))
	if len(v.Recommendations) == 0 {
		v.Recommendations = append(v.Recommendations, "Proceed with standard precautions and keep your supervisor informed")
	}
	return v, nil
}

func evaluate(c safety.Checklist) []finding {
	var out []finding
	bike := c.Mode.IsTwoWheeler()
	motor := bike || c.Mode == safety.ModeFourWheeler || c.Mode == safety.ModeAutoRickshaw
	selfDriven := bike || c.Mode == safety.ModeFourWheeler

	if bike && c.Time.IsDark() {
		out = append(out, finding{
			risk: "Night travel on two-wheeler", advice: "Avoid night travel",
			penalty: 40, unsafe: true,
		})
		if c.Distance > 50 {
			out = append(out, finding{
				risk: "Long distance at night", advice: "Use four-wheeler if possible",
				penalty: 15, unsafe: true,
			})
		}
	}
	if selfDriven && !c.HasValidLicense {
		out = append(out, finding{
			risk: "No valid driving license", advice: "Do not drive; arrange a licensed driver or public transport",
			penalty: 40, unsafe: true,
		})
	}

	switch classifyWeather(c.WeatherCondition) {
	case weatherRain:
		if bike {
			out = append(out, finding{
				risk: "Heavy rain on two-wheeler", advice: "Postpone the trip or switch to a covered vehicle",
				penalty: 25, unsafe: true,
			})
		} else {
			out = append(out, finding{
				risk: "Wet roads and waterlogging", advice: "Reduce speed and allow extra travel time",
				penalty: 10, attention: true,
			})
		}
	case weatherFog:
		out = append(out, finding{
			risk: "Low visibility", advice: "Use fog lights and keep a safe following distance",
			penalty: 15, attention: true,
		})
	case weatherHeat:
		out = append(out, finding{
			risk: "Extreme heat exposure", advice: "Carry water and take shaded breaks",
			penalty: 5, attention: bike || c.Mode == safety.ModeWalking,
		})
	case weatherWind:
		out = append(out, finding{
			risk: "High winds", advice: "Hold a steady speed and avoid exposed stretches",
			penalty: 10, attention: bike,
		})
	}

	if bike && !c.HasPPE(safety.PPEHelmet) {
		out = append(out, finding{
			risk: "Helmet not worn on two-wheeler", advice: "Wear a certified helmet before departure",
			penalty: 30, unsafe: true,
		})
	}
	if c.Mode == safety.ModeFourWheeler && !c.HasPPE(safety.PPESeatbelt) {
		out = append(out, finding{
			risk: "Seatbelt not declared", advice: "Fasten seatbelt for the entire journey",
			penalty: 30, unsafe: true,
		})
	}
	if motor && !c.PerformedVehicleCheck {
		out = append(out, finding{
			risk: "No pre-travel vehicle check", advice: "Check brakes, tyres, lights and fuel before leaving",
			penalty: 20, unsafe: true,
		})
	}
	if c.IsFatigued {
		out = append(out, finding{
			risk: "Staff reports fatigue", advice: "Rest before travelling or hand over driving",
			penalty: 20, attention: true, unsafe: selfDriven && c.Time.IsDark(),
		})
	}
	if bike && (c.Time == safety.TimeEarlyMorning || c.Time == safety.TimeEvening) {
		out = append(out, finding{
			risk: "Reduced light on two-wheeler", advice: "Wear a reflective vest and use headlights",
			penalty: 5,
		})
	}
	return out
}

func reasoning(o safety.Outcome, c safety.Checklist, n int) string {
	switch o {
	case safety.OutcomeUnsafe:
		return fmt.Sprintf("Travel by %s during %s breaches one or more mandatory safety criteria (%d issue(s) found).", c.Mode, c.Time, n)
	case safety.OutcomeCaution:
		return fmt.Sprintf("Travel by %s during %s is permitted with care; %d risk factor(s) need attention.", c.Mode, c.Time, n)
	default:
		return fmt.Sprintf("Travel by %s during %s meets the checklist criteria.", c.Mode, c.Time)
	}
}

type weatherKind int

const (
	weatherUnknown weatherKind = iota
	weatherRain
	weatherFog
	weatherHeat
	weatherWind
)

var weatherKeywords = map[weatherKind][]string{
	weatherRain: {"rain", "rainy", "monsoon", "storm", "drizzle", "shower", "thunderstorm", "flood"},
	weatherFog:  {"fog", "foggy", "mist", "misty", "haze", "hazy", "smog", "visibility"},
	weatherHeat: {"hot", "heat", "heatwave", "scorching"},
	weatherWind: {"wind", "windy", "gale", "gusty", "cyclone"},
}

// classifyWeather maps free-form weather text onto a kind, tolerating small
// misspellings ("monsoom", "foggyy").
func classifyWeather(text string) weatherKind {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == '/' || r == ',' || r == '-' || r == '.'
	})
	for _, kind := range []weatherKind{weatherRain, weatherFog, weatherWind, weatherHeat} {
		for _, w := range words {
			for _, kw := range weatherKeywords[kind] {
				if w == kw {
					return kind
				}
				if len(w) >= 5 && len(kw) >= 5 && levenshtein.ComputeDistance(w, kw) <= 1 {
					return kind
				}
			}
		}
	}
	return weatherUnknown
}
