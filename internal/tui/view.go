package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/qaca/surakshapath/internal/capture"
	"github.com/qaca/surakshapath/internal/safety"
)

const (
	emergencyTitle = "Emergency Protocol"
	emergencyBody  = "Please contact your site supervisor immediately. Do not proceed until you receive formal clearance."
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	switch a.phase {
	case phaseLoading:
		b.WriteString("\n" + a.spinner.View() + " Analyzing Risks...\n")
	case phaseResult:
		b.WriteString(a.renderResult())
	default:
		b.WriteString(a.renderForm())
	}
	b.WriteString("\n" + a.help.View(a.helpBindings()))
	return b.String()
}

func (a *App) renderHeader() string {
	badge := "Identity verification: optional"
	if a.policy.RequirePhoto {
		badge = "Identity verification: required"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("SurakshaPath · Pre-Travel Safety Check"),
		headerBadgeStyle.Render(badge),
	)
}

func (a *App) row(f field, label, value string) string {
	prefix, style := "  ", labelStyle
	if a.focus == f {
		prefix, style = cursorStyle.Render("› "), focusedLabelStyle
	}
	return prefix + style.Render(label) + value + "\n"
}

func (a *App) renderForm() string {
	c := a.checklist
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Staff identity") + "\n")
	b.WriteString(a.row(fieldName, "Staff name", a.name.View()))
	b.WriteString(a.row(fieldPhone, "Phone", a.phone.View()))
	photoLabel := "Identity photo"
	if !a.policy.RequirePhoto {
		photoLabel += " (opt)"
	}
	b.WriteString(a.row(fieldPhoto, photoLabel, a.renderPhoto()))
	b.WriteString(a.row(fieldLocation, "Location", a.renderLocation()))

	b.WriteString(sectionStyle.Render("Journey") + "\n")
	b.WriteString(a.row(fieldMode, "Mode of travel", cycleValue(c.Mode.String())))
	b.WriteString(a.row(fieldDistance, "Distance (km)", a.distance.View()))
	b.WriteString(a.row(fieldTime, "Time of travel", cycleValue(c.Time.String())))
	b.WriteString(a.row(fieldLicense, "Valid license", checkbox(c.HasValidLicense)))

	b.WriteString(sectionStyle.Render("Protection & condition") + "\n")
	b.WriteString(a.row(fieldPPE, "PPE in use", a.renderPPE()))
	b.WriteString(a.row(fieldVehicleCheck, "Vehicle checked", checkbox(c.PerformedVehicleCheck)))
	b.WriteString(a.row(fieldWeather, "Weather", cycleValue(safety.WeatherLabel(c.WeatherCondition))))
	b.WriteString(a.row(fieldFatigue, "Feeling fatigued", checkbox(c.IsFatigued)))

	b.WriteString("\n  ")
	if a.focus == fieldSubmit {
		b.WriteString(buttonFocusStyle.Render("Analyze Safety Risks"))
	} else {
		b.WriteString(buttonStyle.Render("Analyze Safety Risks"))
	}
	b.WriteString("\n")

	if a.formErr != "" {
		b.WriteString("\n" + bannerErrorStyle.Render(a.formErr) + "\n")
	}
	return b.String()
}

func cycleValue(s string) string {
	return mutedStyle.Render("‹ ") + valueStyle.Render(s) + mutedStyle.Render(" ›")
}

func checkbox(on bool) string {
	if on {
		return okStyle.Render("[x] Yes")
	}
	return mutedStyle.Render("[ ] No")
}

func (a *App) renderPPE() string {
	items := safety.PPECatalogue()
	chips := make([]string, 0, len(items))
	for i, item := range items {
		style := chipStyle
		if a.checklist.HasPPE(item) {
			style = chipOnStyle
		}
		if a.focus == fieldPPE && i == a.ppeCursor {
			style = style.Inherit(chipCursorStyle)
		}
		chips = append(chips, style.Render(item))
	}
	return strings.Join(chips, " ")
}

func (a *App) renderPhoto() string {
	switch a.photo.Status {
	case capture.StatusInProgress:
		switch {
		case a.photoLive && a.photoBusy:
			return warnStyle.Render("Capturing...")
		case a.photoLive:
			return warnStyle.Render("Camera live · p to capture, esc to cancel")
		default:
			return warnStyle.Render("Starting camera...")
		}
	case capture.StatusSucceeded:
		return okStyle.Render("✓ Photo captured") + mutedStyle.Render(" (p to retake)")
	case capture.StatusFailed:
		return errorStyle.Render("Camera unavailable: " + capabilityMessage(a.photo.Err))
	}
	if a.policy.RequirePhoto {
		return mutedStyle.Render("Not taken (p to open camera) · required")
	}
	return mutedStyle.Render("Not taken (p to open camera)")
}

func capabilityMessage(err error) string {
	switch {
	case errors.Is(err, capture.ErrPermissionDenied):
		return "permission denied"
	case errors.Is(err, capture.ErrUnsupported):
		return "no camera found"
	case errors.Is(err, capture.ErrBusy):
		return "camera in use"
	case errors.Is(err, capture.ErrInvalidImage):
		return "frame could not be read"
	}
	return "capture failed"
}

func (a *App) renderLocation() string {
	switch a.location.Status {
	case capture.StatusInProgress:
		return warnStyle.Render("Locating...")
	case capture.StatusSucceeded:
		return okStyle.Render(a.location.Value.String())
	case capture.StatusFailed:
		return errorStyle.Render("Unable to read location")
	}
	return mutedStyle.Render("Not shared (l to locate)")
}

func (a *App) renderResult() string {
	if a.verdict == nil {
		return ""
	}
	v := *a.verdict
	var b strings.Builder

	b.WriteString("\n" + outcomeBannerStyle(v.Verdict).Render(string(v.Verdict)) + "\n\n")

	bar := progress.New(
		progress.WithSolidFill(string(outcomeColor(v.Verdict))),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)
	b.WriteString(fmt.Sprintf("Safety score  %s %s\n",
		bar.ViewAs(v.Score/100), valueStyle.Bold(true).Render(v.ScoreLabel())))

	body := []string{valueStyle.Render(v.Reasoning)}
	body = append(body, sectionStyle.Render(fmt.Sprintf("Risk factors (%d)", len(v.RiskFactors))))
	body = append(body, bulletList(v.RiskFactors, errorStyle)...)
	body = append(body, sectionStyle.Render(fmt.Sprintf("Recommendations (%d)", len(v.Recommendations))))
	body = append(body, bulletList(v.Recommendations, okStyle)...)
	b.WriteString(resultBoxStyle.Render(strings.Join(body, "\n")) + "\n")

	if v.RequiresEmergencyContact() {
		b.WriteString("\n" + emergencyStyle.Render(
			errorStyle.Bold(true).Render(emergencyTitle)+"\n"+emergencyBody) + "\n")
	}
	return b.String()
}

func bulletList(items []string, marker lipgloss.Style) []string {
	if len(items) == 0 {
		return []string{mutedStyle.Render("  none")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, marker.Render("  • ")+valueStyle.Render(it))
	}
	return out
}
