package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qaca/surakshapath/internal/capture"
	"github.com/qaca/surakshapath/internal/llm"
	"github.com/qaca/surakshapath/internal/safety"
	"github.com/qaca/surakshapath/internal/service"
)

type stubSubmitter struct {
	mu      sync.Mutex
	policy  safety.Policy
	verdict safety.Verdict
	err     error
	calls   []safety.Checklist
}

func (s *stubSubmitter) Submit(_ context.Context, c safety.Checklist) (safety.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.verdict, s.err
}

func (s *stubSubmitter) Policy() safety.Policy { return s.policy }

type stubCamera struct {
	live       bool
	startErr   error
	abandonErr error
	photo     string
	abandoned int
}

func (c *stubCamera) Start(context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.live = true
	return nil
}

func (c *stubCamera) Capture(context.Context) (string, error) {
	if !c.live {
		return "", capture.ErrNotLive
	}
	c.live = false
	return c.photo, nil
}

func (c *stubCamera) Abandon() error {
	if c.live {
		c.abandoned++
	}
	c.live = false
	return c.abandonErr
}

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		a.Update(keyMsg(string(r)))
	}
}

func press(a *App, msg tea.KeyMsg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

// run executes cmd and feeds capture and analysis messages back into the model.
func run(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(a, c)
		}
		return
	}
	switch msg.(type) {
	case analysisDoneMsg, analysisFailedMsg, photoStartedMsg, photoCapturedMsg, locationMsg:
		a.Update(msg)
	}
}

func nightRide() safety.Verdict {
	return safety.Verdict{
		Verdict:         safety.OutcomeUnsafe,
		Score:           35,
		Reasoning:       "Two-wheeler travel at night over 80 km.",
		RiskFactors:     []string{"Night travel on two-wheeler", "Long distance at night"},
		Recommendations: []string{"Use a company cab", "Postpone to daylight hours"},
	}
}

func newTestApp(sub *stubSubmitter, cam Camera, loc capture.Locator) *App {
	return New(context.Background(), Deps{Clearance: sub, Camera: cam, Locator: loc})
}

func fillIdentity(t *testing.T, a *App) {
	t.Helper()
	a.setFocus(fieldName)
	typeText(t, a, "Ravi Kumar")
	press(a, tea.KeyMsg{Type: tea.KeyTab})
	typeText(t, a, "9845000000")
}

func TestNewStartsOnDefaultForm(t *testing.T) {
	a := newTestApp(&stubSubmitter{}, nil, nil)
	require.Equal(t, phaseForm, a.phase)
	require.Equal(t, fieldName, a.focus)
	require.Equal(t, safety.DefaultChecklist(), a.collect())
	require.Contains(t, a.View(), "Identity verification: optional")
}

func TestSubmitBlockedWithoutIdentity(t *testing.T) {
	sub := &stubSubmitter{policy: safety.Policy{RequirePhoto: true}, verdict: nightRide()}
	a := newTestApp(sub, nil, nil)

	cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Nil(t, cmd)
	require.Equal(t, phaseForm, a.phase)
	require.Equal(t, "Please provide: Staff name, Phone, Identity photo", a.formErr)
	require.Empty(t, sub.calls)

	fillIdentity(t, a)
	cmd = press(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Nil(t, cmd)
	require.Equal(t, "Please provide: Identity photo", a.formErr)
	require.Empty(t, sub.calls)
	require.Contains(t, a.View(), "Please provide: Identity photo")
}

func TestNightRideScenario(t *testing.T) {
	sub := &stubSubmitter{verdict: nightRide()}
	a := newTestApp(sub, nil, nil)
	fillIdentity(t, a)

	a.setFocus(fieldTime)
	press(a, tea.KeyMsg{Type: tea.KeyRight})
	press(a, tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, safety.TimeNight, a.checklist.Time)

	a.setFocus(fieldDistance)
	a.distance.SetValue("")
	typeText(t, a, "8x0")

	cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	require.Equal(t, phaseLoading, a.phase)
	require.Contains(t, a.View(), "Analyzing Risks...")

	// a second submit while loading does nothing
	require.Nil(t, press(a, tea.KeyMsg{Type: tea.KeyCtrlS}))

	run(a, cmd)
	require.Len(t, sub.calls, 1)
	sent := sub.calls[0]
	require.Equal(t, "Ravi Kumar", sent.StaffName)
	require.Equal(t, safety.ModeTwoWheeler, sent.Mode)
	require.Equal(t, safety.TimeNight, sent.Time)
	require.Equal(t, 80.0, sent.Distance)
	require.Equal(t, []string{safety.PPEHelmet}, sent.PPEDetails)
	require.Equal(t, "Clear", sent.WeatherCondition)
	require.False(t, sent.IsFatigued)

	require.Equal(t, phaseResult, a.phase)
	view := a.View()
	require.Contains(t, view, "35%")
	require.Contains(t, view, "UNSAFE")
	require.Contains(t, view, "Risk factors (2)")
	require.Contains(t, view, "Recommendations (2)")
	require.Contains(t, view, "Night travel on two-wheeler")
	require.Contains(t, view, "Postpone to daylight hours")
	require.Contains(t, view, emergencyTitle)
	require.Contains(t, view, emergencyBody)
}

func TestEmergencyOnlyForUnsafe(t *testing.T) {
	for _, o := range safety.Outcomes() {
		t.Run(string(o), func(t *testing.T) {
			v := nightRide()
			v.Verdict = o
			a := newTestApp(&stubSubmitter{verdict: v}, nil, nil)
			fillIdentity(t, a)
			run(a, press(a, tea.KeyMsg{Type: tea.KeyCtrlS}))
			require.Equal(t, phaseResult, a.phase)
			require.Equal(t, o == safety.OutcomeUnsafe, strings.Contains(a.View(), emergencyTitle))
		})
	}
}

func TestFailureKeepsForm(t *testing.T) {
	sub := &stubSubmitter{err: errors.Join(service.ErrAnalysisUnavailable, llm.ErrNoAPIKey)}
	a := newTestApp(sub, nil, nil)
	fillIdentity(t, a)
	a.checklist.TogglePPE(safety.PPEGloves)
	a.checklist.IsFatigued = true

	run(a, press(a, tea.KeyMsg{Type: tea.KeyCtrlS}))
	require.Len(t, sub.calls, 1)
	require.Equal(t, phaseForm, a.phase)
	require.Equal(t, genericFailure, a.formErr)
	require.Contains(t, a.View(), genericFailure)

	c := a.collect()
	require.Equal(t, "Ravi Kumar", c.StaffName)
	require.Equal(t, "9845000000", c.StaffPhone)
	require.Equal(t, []string{safety.PPEHelmet, safety.PPEGloves}, c.PPEDetails)
	require.True(t, c.IsFatigued)

	// a retry goes through again
	sub.err = nil
	sub.verdict = nightRide()
	run(a, press(a, tea.KeyMsg{Type: tea.KeyCtrlS}))
	require.Len(t, sub.calls, 2)
	require.Equal(t, phaseResult, a.phase)
	require.Empty(t, a.formErr)
}

func TestResetRestoresDefaults(t *testing.T) {
	v := nightRide()
	v.Verdict = safety.OutcomeSafe
	a := newTestApp(&stubSubmitter{verdict: v}, nil, capture.StaticLocator{Location: safety.Location{Latitude: 19.07, Longitude: 72.87}})
	fillIdentity(t, a)
	a.setFocus(fieldLocation)
	run(a, press(a, keyMsg("l")))
	require.NotNil(t, a.checklist.Location)
	a.setFocus(fieldMode)
	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, safety.ModeWalking, a.checklist.Mode)

	run(a, press(a, tea.KeyMsg{Type: tea.KeyCtrlS}))
	require.Equal(t, phaseResult, a.phase)

	// form keys are inert on the result screen
	press(a, keyMsg("l"))
	require.Equal(t, phaseResult, a.phase)

	press(a, keyMsg("r"))
	require.Equal(t, phaseForm, a.phase)
	require.Nil(t, a.verdict)
	require.Equal(t, safety.DefaultChecklist(), a.collect())
	require.Equal(t, capture.StatusNotRequested, a.location.Status)
	require.Equal(t, fieldName, a.focus)
}

func TestPPEChipsToggle(t *testing.T) {
	a := newTestApp(&stubSubmitter{}, nil, nil)
	a.setFocus(fieldPPE)

	press(a, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.Empty(t, a.checklist.PPEDetails)
	require.False(t, a.checklist.IsWearingPPE)

	press(a, tea.KeyMsg{Type: tea.KeyRight})
	press(a, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.Equal(t, []string{safety.PPESeatbelt}, a.checklist.PPEDetails)
	require.True(t, a.checklist.IsWearingPPE)

	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	press(a, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	press(a, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.Equal(t, []string{safety.PPESeatbelt}, a.checklist.PPEDetails)
}

func TestPhotoCaptureFlow(t *testing.T) {
	cam := &stubCamera{photo: "data:image/jpeg;base64,/9j/AAAA"}
	sub := &stubSubmitter{policy: safety.Policy{RequirePhoto: true}, verdict: nightRide()}
	a := newTestApp(sub, cam, nil)
	fillIdentity(t, a)
	a.setFocus(fieldPhoto)

	run(a, press(a, keyMsg("p")))
	require.True(t, a.photoLive)
	require.Contains(t, a.View(), "Camera live")

	run(a, press(a, keyMsg("p")))
	require.False(t, a.photoLive)
	require.False(t, cam.live)
	require.Equal(t, capture.StatusSucceeded, a.photo.Status)
	require.True(t, a.checklist.HasPhoto())

	run(a, press(a, tea.KeyMsg{Type: tea.KeyCtrlS}))
	require.Len(t, sub.calls, 1)
	require.Equal(t, cam.photo, sub.calls[0].Selfie)
}

func TestPhotoAbandonAndQuitReleaseCamera(t *testing.T) {
	cam := &stubCamera{photo: "data:image/png;base64,iVBORw0K"}
	a := newTestApp(&stubSubmitter{}, cam, nil)
	a.setFocus(fieldPhoto)

	run(a, press(a, keyMsg("p")))
	require.True(t, cam.live)
	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, cam.live)
	require.Equal(t, 1, cam.abandoned)
	require.Equal(t, capture.StatusNotRequested, a.photo.Status)

	run(a, press(a, keyMsg("p")))
	require.True(t, cam.live)
	cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.False(t, cam.live)
	require.Equal(t, 2, cam.abandoned)
}

func TestSubmitReleasesLiveCamera(t *testing.T) {
	cam := &stubCamera{photo: "data:image/png;base64,iVBORw0K"}
	sub := &stubSubmitter{policy: safety.Policy{RequirePhoto: false}, verdict: nightRide()}
	a := newTestApp(sub, cam, nil)
	fillIdentity(t, a)
	a.setFocus(fieldPhoto)

	run(a, press(a, keyMsg("p")))
	require.True(t, cam.live)

	cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Equal(t, phaseLoading, a.phase)
	require.False(t, cam.live)
	require.Equal(t, 1, cam.abandoned)

	run(a, cmd)
	require.Equal(t, phaseResult, a.phase)
	require.Len(t, sub.calls, 1)
	require.Empty(t, sub.calls[0].Selfie)
	require.False(t, a.photoLive)
	require.False(t, cam.live)
}

func TestAbandonWhileCameraStarting(t *testing.T) {
	cam := &stubCamera{photo: "data:image/png;base64,iVBORw0K"}
	a := newTestApp(&stubSubmitter{}, cam, nil)
	a.setFocus(fieldPhoto)

	start := press(a, keyMsg("p"))
	require.NotNil(t, start)
	require.Equal(t, capture.StatusInProgress, a.photo.Status)

	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, capture.StatusNotRequested, a.photo.Status)
	require.Nil(t, press(a, keyMsg("p")), "no second start while the first is outstanding")

	run(a, start)
	require.False(t, cam.live)
	require.Equal(t, 1, cam.abandoned)
	require.False(t, a.photoLive)
	require.False(t, a.photoBusy)
	require.Equal(t, capture.StatusNotRequested, a.photo.Status)

	run(a, press(a, keyMsg("p")))
	require.True(t, a.photoLive)
	require.True(t, cam.live)
}

func TestLateCameraReleaseFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cam := &stubCamera{abandonErr: errors.New("device busy")}
	a := New(context.Background(), Deps{Clearance: &stubSubmitter{}, Camera: cam, Logger: zap.New(core)})
	a.setFocus(fieldPhoto)

	start := press(a, keyMsg("p"))
	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	run(a, start)

	require.Equal(t, 1, cam.abandoned)
	entries := logs.FilterMessage("camera release failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "device busy", entries[0].ContextMap()["error"])
}

func TestCaptureFailuresAreNonFatal(t *testing.T) {
	cam := &stubCamera{startErr: capture.ErrPermissionDenied}
	a := newTestApp(&stubSubmitter{}, cam, capture.DisabledLocator{})
	a.setFocus(fieldPhoto)

	run(a, press(a, keyMsg("p")))
	require.Equal(t, capture.StatusFailed, a.photo.Status)
	require.False(t, a.photoLive)
	require.Contains(t, a.View(), "permission denied")

	a.setFocus(fieldLocation)
	run(a, press(a, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, capture.StatusFailed, a.location.Status)
	require.Nil(t, a.checklist.Location)
	require.Contains(t, a.View(), "Unable to read location")
	require.Equal(t, phaseForm, a.phase)

	noCam := newTestApp(&stubSubmitter{}, nil, nil)
	noCam.setFocus(fieldPhoto)
	require.Nil(t, press(noCam, keyMsg("p")))
	require.ErrorIs(t, noCam.photo.Err, capture.ErrUnsupported)
}

func TestStaleCaptureResultsDropped(t *testing.T) {
	a := newTestApp(&stubSubmitter{}, nil, capture.StaticLocator{Location: safety.Location{Latitude: 1, Longitude: 2}})
	a.setFocus(fieldLocation)
	cmd := press(a, keyMsg("l"))
	require.Equal(t, capture.StatusInProgress, a.location.Status)

	a.reset()
	run(a, cmd)
	require.Equal(t, capture.StatusNotRequested, a.location.Status)
	require.Nil(t, a.checklist.Location)
}

func TestFocusCyclesAndTextFieldsSwallowShortcuts(t *testing.T) {
	a := newTestApp(&stubSubmitter{}, nil, nil)
	typeText(t, a, "lp q")
	require.Equal(t, "lp q", a.name.Value())
	require.Equal(t, capture.StatusNotRequested, a.location.Status)

	press(a, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, fieldSubmit, a.focus)
	press(a, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, fieldName, a.focus)
}
