package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qaca/surakshapath/internal/safety"
)

func TestRulesDefaultChecklistIsSafe(t *testing.T) {
	v, err := NewRulesProvider().Analyze(context.Background(), safety.DefaultChecklist())
	require.NoError(t, err)
	require.Equal(t, safety.OutcomeSafe, v.Verdict)
	require.Equal(t, 100.0, v.Score)
	require.Empty(t, v.RiskFactors)
	require.NotEmpty(t, v.Recommendations)
}

func TestRulesNightRide(t *testing.T) {
	v, err := NewRulesProvider().Analyze(context.Background(), nightRide())
	require.NoError(t, err)
	require.Equal(t, safety.OutcomeUnsafe, v.Verdict)
	require.Equal(t, 45.0, v.Score)
	require.Equal(t, []string{"Night travel on two-wheeler", "Long distance at night"}, v.RiskFactors)
	require.Equal(t, []string{"Avoid night travel", "Use four-wheeler if possible"}, v.Recommendations)
}

func TestRulesCriteria(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*safety.Checklist)
		want   safety.Outcome
		risk   string
	}{
		{"no license", func(c *safety.Checklist) { c.HasValidLicense = false }, safety.OutcomeUnsafe, "No valid driving license"},
		{"rain on bike", func(c *safety.Checklist) { c.WeatherCondition = "Rainy" }, safety.OutcomeUnsafe, "Heavy rain on two-wheeler"},
		{"misspelt monsoon", func(c *safety.Checklist) { c.WeatherCondition = "heavy monsoom" }, safety.OutcomeUnsafe, "Heavy rain on two-wheeler"},
		{"rain in car", func(c *safety.Checklist) {
			c.Mode = safety.ModeFourWheeler
			c.TogglePPE(safety.PPESeatbelt)
			c.WeatherCondition = "Rainy"
		}, safety.OutcomeCaution, "Wet roads and waterlogging"},
		{"no helmet", func(c *safety.Checklist) { c.TogglePPE(safety.PPEHelmet) }, safety.OutcomeUnsafe, "Helmet not worn on two-wheeler"},
		{"no seatbelt", func(c *safety.Checklist) { c.Mode = safety.ModeFourWheeler }, safety.OutcomeUnsafe, "Seatbelt not declared"},
		{"no vehicle check", func(c *safety.Checklist) { c.PerformedVehicleCheck = false }, safety.OutcomeUnsafe, "No pre-travel vehicle check"},
		{"fog", func(c *safety.Checklist) { c.WeatherCondition = "Foggy" }, safety.OutcomeCaution, "Low visibility"},
		{"fatigue by day", func(c *safety.Checklist) { c.IsFatigued = true }, safety.OutcomeCaution, "Staff reports fatigue"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := safety.DefaultChecklist()
			tc.mutate(&c)
			v, err := NewRulesProvider().Analyze(context.Background(), c)
			require.NoError(t, err)
			require.Equal(t, tc.want, v.Verdict)
			require.Contains(t, v.RiskFactors, tc.risk)
			require.GreaterOrEqual(t, v.Score, 0.0)
			require.LessOrEqual(t, v.Score, 100.0)
		})
	}
}

func TestRulesWalkingSkipsVehicleChecks(t *testing.T) {
	c := safety.DefaultChecklist()
	c.Mode = safety.ModeWalking
	c.HasValidLicense = false
	c.PerformedVehicleCheck = false
	c.TogglePPE(safety.PPEHelmet)

	v, err := NewRulesProvider().Analyze(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, safety.OutcomeSafe, v.Verdict)
}

func TestRulesHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRulesProvider().Analyze(ctx, safety.DefaultChecklist())
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassifyWeather(t *testing.T) {
	require.Equal(t, weatherUnknown, classifyWeather("Clear"))
	require.Equal(t, weatherRain, classifyWeather("Rainy / Monsoon"))
	require.Equal(t, weatherFog, classifyWeather("foggyy"))
	require.Equal(t, weatherWind, classifyWeather("High Winds"))
	require.Equal(t, weatherHeat, classifyWeather("Extreme Heat"))
	require.Equal(t, weatherUnknown, classifyWeather(""))
}
