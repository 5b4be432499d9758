package repository

import "time"

// Clearance represents a clearances row: one analysed checklist and its verdict.
// The photo itself is never stored, only whether one was supplied.
type Clearance struct {
	ID              string
	StaffName       string
	StaffPhone      string
	HasPhoto        bool
	Latitude        *float64
	Longitude       *float64
	Mode            string
	TimeOfDay       string
	DistanceKm      float64
	Weather         string
	PPE             []string
	Verdict         string
	Score           float64
	Reasoning       string
	RiskFactors     []string
	Recommendations []string
	Provider        string
	CreatedAt       time.Time
}
