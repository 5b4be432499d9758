package safety

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTravelModeCycleCoversEveryMode(t *testing.T) {
	seen := map[TravelMode]bool{}
	m := ModeTwoWheeler
	for range TravelModes() {
		seen[m] = true
		m = m.Next()
	}
	require.Equal(t, ModeTwoWheeler, m)
	require.Len(t, seen, len(TravelModes()))
	require.Equal(t, ModeWalking, ModeTwoWheeler.Prev())
}

func TestTimeOfDayLabelsRoundTrip(t *testing.T) {
	for _, tod := range TimesOfDay() {
		got, err := ParseTimeOfDay(tod.String())
		require.NoError(t, err)
		require.Equal(t, tod, got)
	}
	require.True(t, TimeNight.IsDark())
	require.True(t, TimeLateNight.IsDark())
	require.False(t, TimeEvening.IsDark())
}

func TestInvalidEnumsRefuseToMarshal(t *testing.T) {
	_, err := TravelMode(42).MarshalText()
	require.Error(t, err)
	_, err = TimeOfDay(-1).MarshalText()
	require.Error(t, err)
	require.Equal(t, "TravelMode(42)", TravelMode(42).String())
}

func TestNextWeather(t *testing.T) {
	require.Equal(t, "Rainy", NextWeather("Clear", 1))
	require.Equal(t, "Windy", NextWeather("Clear", -1))
	require.Equal(t, "Clear", NextWeather("Windy", 1))
	require.Equal(t, "Clear", NextWeather("drizzle", 1))
	require.Equal(t, "Rainy / Monsoon", WeatherLabel("Rainy"))
	require.Equal(t, "drizzle", WeatherLabel("drizzle"))
}

func TestOutcome(t *testing.T) {
	o, err := ParseOutcome(" unsafe ")
	require.NoError(t, err)
	require.Equal(t, OutcomeUnsafe, o)
	_, err = ParseOutcome("MAYBE")
	require.Error(t, err)

	for _, o := range Outcomes() {
		v := Verdict{Verdict: o}
		require.Equal(t, o == OutcomeUnsafe, v.RequiresEmergencyContact(), "outcome %s", o)
	}
}

func TestScoreLabelAndClamp(t *testing.T) {
	require.Equal(t, "35%", Verdict{Score: 35}.ScoreLabel())
	require.Equal(t, "72.5%", Verdict{Score: 72.5}.ScoreLabel())
	require.Equal(t, "35.5%", Verdict{Score: 35.5}.ScoreLabel())
	require.Equal(t, "100%", Verdict{Score: 100}.ScoreLabel())
	require.Equal(t, 0.0, ClampScore(-4))
	require.Equal(t, 100.0, ClampScore(140))
	require.Equal(t, 55.0, ClampScore(55))
}
