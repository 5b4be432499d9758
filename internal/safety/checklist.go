// Package safety holds the travel clearance domain: the checklist a field worker
// declares before a trip and the verdict returned for it.
package safety

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Location is a single device coordinate read.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) String() string {
	return fmt.Sprintf("%.5f, %.5f", l.Latitude, l.Longitude)
}

// Checklist is the safety declaration submitted once per trip.
type Checklist struct {
	StaffName             string     `json:"staffName"`
	StaffPhone            string     `json:"staffPhone"`
	Selfie                string     `json:"selfie,omitempty"`
	Location              *Location  `json:"location,omitempty"`
	Mode                  TravelMode `json:"mode"`
	Distance              float64    `json:"distance"`
	Time                  TimeOfDay  `json:"time"`
	HasValidLicense       bool       `json:"hasValidLicense"`
	IsWearingPPE          bool       `json:"isWearingPPE"`
	PPEDetails            []string   `json:"ppeDetails"`
	PerformedVehicleCheck bool       `json:"performedVehicleCheck"`
	WeatherCondition      string     `json:"weatherCondition"`
	IsFatigued            bool       `json:"isFatigued"`
}

// DefaultChecklist returns the values a fresh form starts with.
func DefaultChecklist() Checklist {
	return Checklist{
		Mode:                  ModeTwoWheeler,
		Distance:              10,
		Time:                  TimeDaytime,
		HasValidLicense:       true,
		IsWearingPPE:          true,
		PPEDetails:            []string{PPEHelmet},
		PerformedVehicleCheck: true,
		WeatherCondition:      "Clear",
		IsFatigued:            false,
	}
}

// HasPPE reports whether item is currently declared.
func (c Checklist) HasPPE(item string) bool {
	return slices.Contains(c.PPEDetails, item)
}

// TogglePPE removes item when declared and appends it otherwise.
func (c *Checklist) TogglePPE(item string) {
	if i := slices.Index(c.PPEDetails, item); i >= 0 {
		c.PPEDetails = slices.Delete(slices.Clone(c.PPEDetails), i, i+1)
	} else {
		c.PPEDetails = append(slices.Clone(c.PPEDetails), item)
	}
	c.IsWearingPPE = len(c.PPEDetails) > 0
}

// HasPhoto reports whether an identity photo was captured.
func (c Checklist) HasPhoto() bool { return strings.TrimSpace(c.Selfie) != "" }

// Clone returns a deep copy so callers can hand the checklist to another goroutine.
func (c Checklist) Clone() Checklist {
	out := c
	out.PPEDetails = slices.Clone(c.PPEDetails)
	if c.Location != nil {
		loc := *c.Location
		out.Location = &loc
	}
	return out
}

// Policy controls which checklist fields are mandatory for a deployment.
type Policy struct {
	// RequirePhoto enables the identity-verification flow.
	RequirePhoto bool
}

// Field names reported by validation.
const (
	FieldStaffName  = "staffName"
	FieldStaffPhone = "staffPhone"
	FieldSelfie     = "selfie"
)

var fieldLabels = map[string]string{
	FieldStaffName:  "Staff name",
	FieldStaffPhone: "Phone",
	FieldSelfie:     "Identity photo",
}

var ErrValidation = errors.New("checklist incomplete")

// ValidationError lists every missing mandatory field.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	labels := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		labels = append(labels, fieldLabels[f])
	}
	return "Please provide: " + strings.Join(labels, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validate checks identity fields and, under an identity-verification policy,
// the photo. Nothing else is validated here.
func (c Checklist) Validate(p Policy) error {
	var missing []string
	if strings.TrimSpace(c.StaffName) == "" {
		missing = append(missing, FieldStaffName)
	}
	if strings.TrimSpace(c.StaffPhone) == "" {
		missing = append(missing, FieldStaffPhone)
	}
	if p.RequirePhoto && !c.HasPhoto() {
		missing = append(missing, FieldSelfie)
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
