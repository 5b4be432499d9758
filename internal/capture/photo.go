package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
)

// PhotoSession drives the start → snapshot → release cycle for the identity
// photo. The stream is released on every exit path.
type PhotoSession struct {
	camera Camera

	mu     sync.Mutex
	stream Stream
}

func NewPhotoSession(cam Camera) *PhotoSession {
	return &PhotoSession{camera: cam}
}

// Live reports whether a camera stream is currently held.
func (s *PhotoSession) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Start acquires the camera. Calling it again after Capture retakes the photo.
func (s *PhotoSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return ErrBusy
	}
	if s.camera == nil {
		return ErrUnsupported
	}
	st, err := s.camera.Open(ctx)
	if err != nil {
		return err
	}
	s.stream = st
	return nil
}

// Capture snapshots the live feed, releases the camera and returns the frame as
// a base64 data URL.
func (s *PhotoSession) Capture(ctx context.Context) (string, error) {
	s.mu.Lock()
	st := s.stream
	s.stream = nil
	s.mu.Unlock()
	if st == nil {
		return "", ErrNotLive
	}
	defer st.Close()

	frame, err := st.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return EncodePhoto(frame)
}

// Abandon releases a live camera without taking a photo.
func (s *PhotoSession) Abandon() error {
	s.mu.Lock()
	st := s.stream
	s.stream = nil
	s.mu.Unlock()
	if st == nil {
		return nil
	}
	return st.Close()
}

// EncodePhoto checks that frame is a JPEG or PNG and wraps it as a data URL.
func EncodePhoto(frame []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(frame), nil
}
