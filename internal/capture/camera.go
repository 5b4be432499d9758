package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/qaca/surakshapath/internal/config"
)

// Camera hands out a live feed. Only one stream may be open at a time.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an acquired camera. Close releases the device and is idempotent.
type Stream interface {
	Snapshot(ctx context.Context) ([]byte, error)
	Close() error
}

// CommandCamera grabs frames by running an external tool such as ffmpeg.
// The literal "{device}" in Args is replaced by Device.
type CommandCamera struct {
	Command string
	Args    []string
	Device  string

	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)

	mu    sync.Mutex
	inUse bool
}

func NewCommandCamera(cfg config.CameraConfig) *CommandCamera {
	return &CommandCamera{
		Command:  cfg.Command,
		Args:     append([]string(nil), cfg.Args...),
		Device:   cfg.Device,
		lookPath: exec.LookPath,
		stat:     os.Stat,
	}
}

func (c *CommandCamera) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Command) == "" {
		return nil, fmt.Errorf("%w: no camera command configured", ErrUnsupported)
	}
	bin, err := c.lookPath(c.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnsupported, c.Command)
	}
	if c.Device != "" {
		if _, err := c.stat(c.Device); err != nil {
			switch {
			case errors.Is(err, fs.ErrPermission):
				return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, c.Device)
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.Device)
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inUse {
		return nil, ErrBusy
	}
	c.inUse = true

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = strings.ReplaceAll(a, "{device}", c.Device)
	}
	return &commandStream{cam: c, bin: bin, args: args}, nil
}

func (c *CommandCamera) release() {
	c.mu.Lock()
	c.inUse = false
	c.mu.Unlock()
}

type commandStream struct {
	cam  *CommandCamera
	bin  string
	args []string

	once   sync.Once
	closed bool
	mu     sync.Mutex
}

func (s *commandStream) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrNotLive
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.bin, s.args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(strings.ToLower(msg), "permission denied") {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
		}
		return nil, fmt.Errorf("capture frame: %w: %s", err, msg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrInvalidImage)
	}
	return out, nil
}

func (s *commandStream) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cam.release()
	})
	return nil
}
