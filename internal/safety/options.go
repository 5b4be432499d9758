package safety

import "fmt"

// TravelMode is the closed set of transport modes a field worker can declare.
type TravelMode int

const (
	ModeTwoWheeler TravelMode = iota
	ModeFourWheeler
	ModeAutoRickshaw
	ModePublicTransport
	ModeWalking
	travelModeCount
)

var travelModeLabels = [travelModeCount]string{
	ModeTwoWheeler:      "Two Wheeler (Bike/Scooter)",
	ModeFourWheeler:     "Four Wheeler (Car/Jeep)",
	ModeAutoRickshaw:    "Auto-Rickshaw",
	ModePublicTransport: "Public Transport (Bus/Train)",
	ModeWalking:         "Walking/On Foot",
}

// TravelModes lists every mode in form order.
func TravelModes() []TravelMode {
	out := make([]TravelMode, 0, travelModeCount)
	for m := TravelMode(0); m < travelModeCount; m++ {
		out = append(out, m)
	}
	return out
}

func (m TravelMode) Valid() bool { return m >= 0 && m < travelModeCount }

func (m TravelMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("TravelMode(%d)", int(m))
	}
	return travelModeLabels[m]
}

// Next cycles forward through the modes, wrapping at the end.
func (m TravelMode) Next() TravelMode { return (m + 1) % travelModeCount }

// Prev cycles backward through the modes, wrapping at the start.
func (m TravelMode) Prev() TravelMode { return (m + travelModeCount - 1) % travelModeCount }

// IsTwoWheeler reports whether the mode exposes the rider (bike or scooter).
func (m TravelMode) IsTwoWheeler() bool { return m == ModeTwoWheeler }

func (m TravelMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("safety: invalid travel mode %d", int(m))
	}
	return []byte(travelModeLabels[m]), nil
}

func (m *TravelMode) UnmarshalText(b []byte) error {
	v, err := ParseTravelMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseTravelMode maps a display label back to its mode.
func ParseTravelMode(label string) (TravelMode, error) {
	for i, l := range travelModeLabels {
		if l == label {
			return TravelMode(i), nil
		}
	}
	return 0, fmt.Errorf("safety: unknown travel mode %q", label)
}

// TimeOfDay is the closed set of travel time buckets.
type TimeOfDay int

const (
	TimeEarlyMorning TimeOfDay = iota
	TimeDaytime
	TimeEvening
	TimeNight
	TimeLateNight
	timeOfDayCount
)

var timeOfDayLabels = [timeOfDayCount]string{
	TimeEarlyMorning: "Early Morning (4 AM - 7 AM)",
	TimeDaytime:      "Daytime (7 AM - 6 PM)",
	TimeEvening:      "Evening (6 PM - 9 PM)",
	TimeNight:        "Night (9 PM - 12 AM)",
	TimeLateNight:    "Late Night (12 AM - 4 AM)",
}

// TimesOfDay lists every bucket in form order.
func TimesOfDay() []TimeOfDay {
	out := make([]TimeOfDay, 0, timeOfDayCount)
	for t := TimeOfDay(0); t < timeOfDayCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t TimeOfDay) Valid() bool { return t >= 0 && t < timeOfDayCount }

func (t TimeOfDay) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TimeOfDay(%d)", int(t))
	}
	return timeOfDayLabels[t]
}

func (t TimeOfDay) Next() TimeOfDay { return (t + 1) % timeOfDayCount }

func (t TimeOfDay) Prev() TimeOfDay { return (t + timeOfDayCount - 1) % timeOfDayCount }

// IsDark reports whether the bucket falls between 9 PM and 4 AM.
func (t TimeOfDay) IsDark() bool { return t == TimeNight || t == TimeLateNight }

func (t TimeOfDay) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("safety: invalid time of day %d", int(t))
	}
	return []byte(timeOfDayLabels[t]), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTimeOfDay maps a display label back to its bucket.
func ParseTimeOfDay(label string) (TimeOfDay, error) {
	for i, l := range timeOfDayLabels {
		if l == label {
			return TimeOfDay(i), nil
		}
	}
	return 0, fmt.Errorf("safety: unknown time of day %q", label)
}

// WeatherOption is a preset offered by the form. The checklist itself keeps the
// weather as free text.
type WeatherOption struct {
	Value string
	Label string
}

var weatherOptions = []WeatherOption{
	{Value: "Clear", Label: "Clear Sky"},
	{Value: "Rainy", Label: "Rainy / Monsoon"},
	{Value: "Foggy", Label: "Foggy / Low Visibility"},
	{Value: "Hot", Label: "Extreme Heat"},
	{Value: "Windy", Label: "High Winds"},
}

// WeatherLabel returns the preset label for value, or value itself when it is
// not a preset.
func WeatherLabel(value string) string {
	for _, o := range weatherOptions {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// NextWeather cycles through presets; a non-preset value restarts at the first.
func NextWeather(value string, step int) string {
	idx := -1
	for i, o := range weatherOptions {
		if o.Value == value {
			idx = i
			break
		}
	}
	n := len(weatherOptions)
	if idx < 0 {
		return weatherOptions[0].Value
	}
	return weatherOptions[((idx+step)%n+n)%n].Value
}

// PPE catalogue shown on the form.
const (
	PPEHelmet         = "Helmet"
	PPESeatbelt       = "Seatbelt"
	PPESafetyBoots    = "Safety Boots"
	PPEReflectiveVest = "Reflective Vest"
	PPEGloves         = "Gloves"
)

func PPECatalogue() []string {
	return []string{PPEHelmet, PPESeatbelt, PPESafetyBoots, PPEReflectiveVest, PPEGloves}
}
