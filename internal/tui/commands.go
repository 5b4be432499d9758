package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/qaca/surakshapath/internal/capture"
	"github.com/qaca/surakshapath/internal/safety"
)

type analysisDoneMsg struct{ verdict safety.Verdict }

type analysisFailedMsg struct{ err error }

type photoStartedMsg struct {
	seq int
	err error
}

type photoCapturedMsg struct {
	seq    int
	result capture.Result[string]
}

type locationMsg struct {
	session int
	result  capture.Result[safety.Location]
}

func (a *App) analyzeCmd(c safety.Checklist) tea.Cmd {
	svc, ctx := a.clearance, a.ctx
	return func() tea.Msg {
		v, err := svc.Submit(ctx, c)
		if err != nil {
			return analysisFailedMsg{err: err}
		}
		return analysisDoneMsg{verdict: v}
	}
}

// photoCmd starts the camera, or snapshots it when it is already live. Only
// one camera operation is outstanding at a time.
func (a *App) photoCmd() tea.Cmd {
	if a.photoBusy {
		return nil
	}
	if a.camera == nil {
		a.photo = capture.Failed[string](capture.ErrUnsupported)
		return nil
	}
	a.photoSeq++
	cam, ctx, seq := a.camera, a.ctx, a.photoSeq
	a.photoBusy = true
	a.photo = capture.InProgress[string]()
	if a.photoLive {
		return func() tea.Msg {
			return photoCapturedMsg{seq: seq, result: capture.Run(ctx, cam.Capture)}
		}
	}
	a.checklist.Selfie = ""
	return func() tea.Msg {
		res := capture.Run(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, cam.Start(ctx)
		})
		return photoStartedMsg{seq: seq, err: res.Err}
	}
}

func (a *App) handlePhotoStarted(m photoStartedMsg) {
	a.photoBusy = false
	if m.seq != a.photoSeq {
		// Cancelled while opening: the stream is no longer wanted.
		if m.err == nil {
			a.releaseCamera()
		}
		return
	}
	if m.err != nil {
		a.logger.Info("camera unavailable", zap.Error(m.err))
		a.photoLive = false
		a.photo = capture.Failed[string](m.err)
		return
	}
	a.photoLive = true
}

func (a *App) handlePhotoCaptured(m photoCapturedMsg) {
	a.photoBusy = false
	if m.seq != a.photoSeq {
		return
	}
	a.photoLive = false
	a.photo = m.result
	if m.result.Status == capture.StatusSucceeded {
		a.checklist.Selfie = m.result.Value
		return
	}
	a.logger.Info("photo capture failed", zap.Error(m.result.Err))
}

// abandonPhoto releases a live camera and cancels any capture still in
// flight. photoBusy stays set until the cancelled operation reports back.
func (a *App) abandonPhoto() {
	if !a.photoLive && !a.photoBusy {
		return
	}
	a.photoSeq++
	if a.photoLive {
		a.releaseCamera()
	}
	a.photoLive = false
	if a.photo.Status == capture.StatusInProgress {
		a.photo = capture.Result[string]{}
	}
}

func (a *App) releaseCamera() {
	if err := a.camera.Abandon(); err != nil {
		a.logger.Warn("camera release failed", zap.Error(err))
	}
}

func (a *App) locateCmd() tea.Cmd {
	if a.location.Status == capture.StatusInProgress {
		return nil
	}
	if a.locator == nil {
		a.location = capture.Failed[safety.Location](capture.ErrUnsupported)
		return nil
	}
	loc, ctx, session := a.locator, a.ctx, a.session
	a.location = capture.InProgress[safety.Location]()
	return func() tea.Msg {
		return locationMsg{session: session, result: capture.Run(ctx, loc.Locate)}
	}
}

func (a *App) handleLocation(m locationMsg) {
	if m.session != a.session {
		return
	}
	a.location = m.result
	if m.result.Status != capture.StatusSucceeded {
		a.logger.Info("location unavailable", zap.Error(m.result.Err))
		a.checklist.Location = nil
		return
	}
	loc := m.result.Value
	a.checklist.Location = &loc
}
