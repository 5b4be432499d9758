// Package tui is the terminal front end: a single checklist form that hands a
// completed declaration to the clearance service and presents the verdict.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/qaca/surakshapath/internal/capture"
	"github.com/qaca/surakshapath/internal/safety"
)

const genericFailure = "Unable to process safety check. Please ensure you have a valid internet connection."

// Submitter runs one clearance. *service.Clearance satisfies it.
type Submitter interface {
	Submit(ctx context.Context, checklist safety.Checklist) (safety.Verdict, error)
	Policy() safety.Policy
}

// Camera is the photo flow the form drives. *capture.PhotoSession satisfies it.
type Camera interface {
	Start(ctx context.Context) error
	Capture(ctx context.Context) (string, error)
	Abandon() error
}

// Deps wires the form to its collaborators. Camera and Locator may be nil, in
// which case the matching capture fails as unsupported.
type Deps struct {
	Clearance Submitter
	Camera    Camera
	Locator   capture.Locator
	Logger    *zap.Logger
}

type phase int

const (
	phaseForm phase = iota
	phaseLoading
	phaseResult
)

type field int

const (
	fieldName field = iota
	fieldPhone
	fieldPhoto
	fieldLocation
	fieldMode
	fieldDistance
	fieldTime
	fieldLicense
	fieldPPE
	fieldVehicleCheck
	fieldWeather
	fieldFatigue
	fieldSubmit
	fieldCount
)

// App is the bubbletea model.
type App struct {
	ctx       context.Context
	clearance Submitter
	camera    Camera
	locator   capture.Locator
	logger    *zap.Logger
	policy    safety.Policy

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int

	phase     phase
	focus     field
	ppeCursor int
	checklist safety.Checklist
	name      textinput.Model
	phone     textinput.Model
	distance  textinput.Model

	// session changes on reset and photoSeq on every camera operation, so
	// late results from a reset form or a cancelled capture are dropped.
	session   int
	photoSeq  int
	photo     capture.Result[string]
	photoLive bool
	photoBusy bool
	location  capture.Result[safety.Location]

	formErr string
	verdict *safety.Verdict
}

func New(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle

	a := &App{
		ctx:       ctx,
		clearance: deps.Clearance,
		camera:    deps.Camera,
		locator:   deps.Locator,
		logger:    logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		name:      newInput("Full name", 60),
		phone:     newInput("+91 98xxx xxxxx", 20),
		distance:  newInput("km", 7),
	}
	if deps.Clearance != nil {
		a.policy = deps.Clearance.Policy()
	}
	a.reset()
	return a
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
		return a, nil
	case spinner.TickMsg:
		if a.phase != phaseLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	case analysisDoneMsg:
		if a.phase != phaseLoading {
			return a, nil
		}
		v := m.verdict
		a.verdict = &v
		a.phase = phaseResult
		return a, nil
	case analysisFailedMsg:
		if a.phase != phaseLoading {
			return a, nil
		}
		a.phase = phaseForm
		a.formErr = a.failureMessage(m.err)
		a.setFocus(fieldSubmit)
		return a, nil
	case photoStartedMsg:
		a.handlePhotoStarted(m)
		return a, nil
	case photoCapturedMsg:
		a.handlePhotoCaptured(m)
		return a, nil
	case locationMsg:
		a.handleLocation(m)
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(m)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	if key.Matches(m, a.keys.ForceQ) {
		return a.quit()
	}
	switch a.phase {
	case phaseLoading:
		return nil
	case phaseResult:
		switch {
		case key.Matches(m, a.keys.Reset):
			a.reset()
		case key.Matches(m, a.keys.Quit):
			return a.quit()
		}
		return nil
	}
	return a.handleFormKey(m)
}

func (a *App) handleFormKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Submit):
		return a.submit()
	case key.Matches(m, a.keys.Next):
		a.setFocus((a.focus + 1) % fieldCount)
		return nil
	case key.Matches(m, a.keys.Prev):
		a.setFocus((a.focus + fieldCount - 1) % fieldCount)
		return nil
	case key.Matches(m, a.keys.Abandon):
		a.abandonPhoto()
		return nil
	}

	if input := a.focusedInput(); input != nil {
		if key.Matches(m, a.keys.Activate) {
			a.setFocus(a.focus + 1)
			return nil
		}
		if a.focus == fieldDistance && !numericKey(m) {
			return nil
		}
		var cmd tea.Cmd
		*input, cmd = input.Update(m)
		return cmd
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		return a.quit()
	case key.Matches(m, a.keys.Photo):
		return a.photoCmd()
	case key.Matches(m, a.keys.Locate):
		return a.locateCmd()
	case key.Matches(m, a.keys.Left):
		a.cycle(-1)
	case key.Matches(m, a.keys.Right):
		a.cycle(1)
	case key.Matches(m, a.keys.Toggle), key.Matches(m, a.keys.Activate):
		return a.activate()
	}
	return nil
}

func numericKey(m tea.KeyMsg) bool {
	if m.Type != tea.KeyRunes {
		return true
	}
	for _, r := range m.Runes {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func (a *App) focusedInput() *textinput.Model {
	switch a.focus {
	case fieldName:
		return &a.name
	case fieldPhone:
		return &a.phone
	case fieldDistance:
		return &a.distance
	}
	return nil
}

func (a *App) setFocus(f field) {
	a.name.Blur()
	a.phone.Blur()
	a.distance.Blur()
	a.focus = f
	if input := a.focusedInput(); input != nil {
		input.Focus()
	}
}

func (a *App) cycle(step int) {
	c := &a.checklist
	switch a.focus {
	case fieldMode:
		if step > 0 {
			c.Mode = c.Mode.Next()
		} else {
			c.Mode = c.Mode.Prev()
		}
	case fieldTime:
		if step > 0 {
			c.Time = c.Time.Next()
		} else {
			c.Time = c.Time.Prev()
		}
	case fieldWeather:
		c.WeatherCondition = safety.NextWeather(c.WeatherCondition, step)
	case fieldPPE:
		n := len(safety.PPECatalogue())
		a.ppeCursor = ((a.ppeCursor+step)%n + n) % n
	case fieldLicense:
		c.HasValidLicense = !c.HasValidLicense
	case fieldVehicleCheck:
		c.PerformedVehicleCheck = !c.PerformedVehicleCheck
	case fieldFatigue:
		c.IsFatigued = !c.IsFatigued
	}
}

func (a *App) activate() tea.Cmd {
	c := &a.checklist
	switch a.focus {
	case fieldPhoto:
		return a.photoCmd()
	case fieldLocation:
		return a.locateCmd()
	case fieldPPE:
		c.TogglePPE(safety.PPECatalogue()[a.ppeCursor])
	case fieldLicense, fieldVehicleCheck, fieldFatigue, fieldMode, fieldTime, fieldWeather:
		a.cycle(1)
	case fieldSubmit:
		return a.submit()
	}
	return nil
}

// collect snapshots the form into a checklist.
func (a *App) collect() safety.Checklist {
	c := a.checklist.Clone()
	c.StaffName = a.name.Value()
	c.StaffPhone = a.phone.Value()
	c.Distance = parseDistance(a.distance.Value())
	return c
}

func parseDistance(s string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func formatDistance(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

func (a *App) submit() tea.Cmd {
	if a.phase != phaseForm || a.clearance == nil {
		return nil
	}
	c := a.collect()
	if err := c.Validate(a.policy); err != nil {
		a.formErr = err.Error()
		return nil
	}
	a.formErr = ""
	a.abandonPhoto()
	a.phase = phaseLoading
	a.setFocus(fieldSubmit)
	return tea.Batch(a.spinner.Tick, a.analyzeCmd(c))
}

func (a *App) failureMessage(err error) string {
	if errors.Is(err, safety.ErrValidation) {
		return err.Error()
	}
	a.logger.Warn("clearance failed", zap.Error(err))
	return genericFailure
}

// reset discards the verdict and every capture, returning to a default form.
func (a *App) reset() {
	a.abandonPhoto()
	a.session++
	a.checklist = safety.DefaultChecklist()
	a.name.Reset()
	a.phone.Reset()
	a.distance.SetValue(formatDistance(a.checklist.Distance))
	a.photo = capture.Result[string]{}
	a.location = capture.Result[safety.Location]{}
	a.verdict = nil
	a.formErr = ""
	a.ppeCursor = 0
	a.phase = phaseForm
	a.setFocus(fieldName)
}

func (a *App) quit() tea.Cmd {
	if a.camera != nil {
		a.photoSeq++
		a.releaseCamera()
	}
	a.photoLive = false
	return tea.Quit
}
