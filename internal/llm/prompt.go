package llm

import (
	"strconv"
	"strings"

	"github.com/qaca/surakshapath/internal/safety"
)

const systemInstruction = "You are a travel safety officer for field staff. Judge only the checklist provided and answer with JSON that matches the declared schema."

// BuildPrompt renders the checklist into the analysis instruction. Identity
// fields, the photo and coordinates are never included.
func BuildPrompt(c safety.Checklist) string {
	var b strings.Builder
	b.WriteString("Analyze the following travel safety checklist for a field staff member in India.\n")
	b.WriteString("Consider Indian road conditions (potholes, traffic density, local risks), weather, and specific hazards.\n\n")

	b.WriteString("Checklist Data:\n")
	line(&b, "Mode", c.Mode.String())
	line(&b, "Distance", formatDistance(c.Distance)+" km")
	line(&b, "Time", c.Time.String())
	line(&b, "Valid License", yesNo(c.HasValidLicense))
	line(&b, "Wearing PPE", yesNo(c.IsWearingPPE))
	line(&b, "PPE Used", strings.Join(c.PPEDetails, ", "))
	line(&b, "Vehicle Check Done", yesNo(c.PerformedVehicleCheck))
	line(&b, "Weather", c.WeatherCondition)
	line(&b, "Staff Fatigue", yesNo(c.IsFatigued))

	b.WriteString("\nCriteria for \"UNSAFE\":\n")
	for _, crit := range unsafeCriteria {
		b.WriteString("- ")
		b.WriteString(crit)
		b.WriteByte('\n')
	}
	b.WriteString("\nReturn verdict (SAFE, UNSAFE or CAUTION), score (0-100, higher is safer), reasoning, riskFactors and recommendations.\n")
	b.WriteString("Response must be in JSON.\n")
	return b.String()
}

var unsafeCriteria = []string{
	"Night driving (9 PM - 4 AM) on Two Wheeler in India is extremely high risk.",
	"Missing valid license.",
	"Long distance (>50km) on bike at night.",
	"Heavy rain/Monsoon conditions for two-wheelers.",
	"Lack of mandatory PPE (Helmet for bikes, Seatbelts for cars).",
	"No pre-vehicle check.",
}

func line(b *strings.Builder, label, value string) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatDistance(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}
