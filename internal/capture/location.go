package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qaca/surakshapath/internal/config"
	"github.com/qaca/surakshapath/internal/safety"
)

// Locator performs a one-shot coordinate read.
type Locator interface {
	Locate(ctx context.Context) (safety.Location, error)
}

// NewLocator builds the locator selected in cfg.
func NewLocator(cfg config.LocationConfig) Locator {
	switch cfg.Provider {
	case config.LocationStatic:
		return StaticLocator{Location: safety.Location{Latitude: cfg.Latitude, Longitude: cfg.Longitude}}
	case config.LocationIP:
		return &HTTPLocator{Endpoint: cfg.Endpoint, Timeout: cfg.Timeout}
	default:
		return DisabledLocator{}
	}
}

// StaticLocator always reports the configured site coordinates.
type StaticLocator struct {
	Location safety.Location
}

func (s StaticLocator) Locate(ctx context.Context) (safety.Location, error) {
	if err := ctx.Err(); err != nil {
		return safety.Location{}, err
	}
	return s.Location, nil
}

// DisabledLocator is used where the deployment has no location source.
type DisabledLocator struct{}

func (DisabledLocator) Locate(context.Context) (safety.Location, error) {
	return safety.Location{}, ErrUnsupported
}

// HTTPLocator resolves coordinates from an IP geolocation endpoint. It accepts
// ip-api style {"status","lat","lon"} and plain {"latitude","longitude"} bodies.
type HTTPLocator struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

type geoResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *HTTPLocator) Locate(ctx context.Context) (safety.Location, error) {
	if h.Endpoint == "" {
		return safety.Location{}, ErrUnsupported
	}
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.Endpoint, nil)
	if err != nil {
		return safety.Location{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return safety.Location{}, fmt.Errorf("locate: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return safety.Location{}, fmt.Errorf("%w: http %d", ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode >= 400:
		return safety.Location{}, fmt.Errorf("locate: http %d", resp.StatusCode)
	}

	var g geoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&g); err != nil {
		return safety.Location{}, fmt.Errorf("locate: decode: %w", err)
	}
	if g.Status != "" && g.Status != "success" {
		return safety.Location{}, fmt.Errorf("locate: %s %s", g.Status, g.Message)
	}
	lat, lon := pick(g.Lat, g.Latitude), pick(g.Lon, g.Longitude)
	if lat == nil || lon == nil {
		return safety.Location{}, fmt.Errorf("locate: response has no coordinates")
	}
	return safety.Location{Latitude: *lat, Longitude: *lon}, nil
}

func pick(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}
