package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qaca/surakshapath/internal/safety"
)

var ErrNotFound = errors.New("clearance not found")

// ClearanceFilters defines list filters.
type ClearanceFilters struct {
	Verdict string // empty = any
	Limit   int    // <= 0 = 50
}

// ClearanceRepo handles the clearance journal.
type ClearanceRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewClearanceRepo(db *sql.DB) *ClearanceRepo {
	return &ClearanceRepo{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

// NewClearance builds a journal row for an analysed checklist.
func NewClearance(c safety.Checklist, v safety.Verdict, provider string) Clearance {
	row := Clearance{
		ID:              uuid.NewString(),
		StaffName:       strings.TrimSpace(c.StaffName),
		StaffPhone:      strings.TrimSpace(c.StaffPhone),
		HasPhoto:        c.HasPhoto(),
		Mode:            c.Mode.String(),
		TimeOfDay:       c.Time.String(),
		DistanceKm:      c.Distance,
		Weather:         c.WeatherCondition,
		PPE:             append([]string{}, c.PPEDetails...),
		Verdict:         string(v.Verdict),
		Score:           v.Score,
		Reasoning:       v.Reasoning,
		RiskFactors:     append([]string{}, v.RiskFactors...),
		Recommendations: append([]string{}, v.Recommendations...),
		Provider:        provider,
	}
	if c.Location != nil {
		lat, lon := c.Location.Latitude, c.Location.Longitude
		row.Latitude, row.Longitude = &lat, &lon
	}
	return row
}

// Record inserts c, assigning an id and timestamp when missing.
func (r *ClearanceRepo) Record(ctx context.Context, c Clearance) (Clearance, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now()
	}
	ppe, err := encodeList(c.PPE)
	if err != nil {
		return Clearance{}, err
	}
	risks, err := encodeList(c.RiskFactors)
	if err != nil {
		return Clearance{}, err
	}
	recs, err := encodeList(c.Recommendations)
	if err != nil {
		return Clearance{}, err
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO clearances(
	 id, staff_name, staff_phone, has_photo, latitude, longitude, mode, time_of_day,
	 distance_km, weather, ppe, verdict, score, reasoning, risk_factors, recommendations,
	 provider, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		c.ID, c.StaffName, c.StaffPhone, c.HasPhoto, c.Latitude, c.Longitude, c.Mode, c.TimeOfDay,
		c.DistanceKm, c.Weather, ppe, c.Verdict, c.Score, c.Reasoning, risks, recs,
		c.Provider, c.CreatedAt)
	if err != nil {
		return Clearance{}, fmt.Errorf("insert clearance: %w", err)
	}
	return c, nil
}

const clearanceColumns = `id, staff_name, staff_phone, has_photo, latitude, longitude, mode, time_of_day,
	 distance_km, weather, ppe, verdict, score, reasoning, risk_factors, recommendations,
	 provider, created_at`

func (r *ClearanceRepo) Get(ctx context.Context, id string) (Clearance, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clearanceColumns+` FROM clearances WHERE id = ?`, id)
	c, err := scanClearance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Clearance{}, ErrNotFound
	}
	return c, err
}

// List returns the newest clearances first.
func (r *ClearanceRepo) List(ctx context.Context, f ClearanceFilters) ([]Clearance, error) {
	var where []string
	var args []interface{}
	if f.Verdict != "" {
		where = append(where, "verdict = ?")
		args = append(args, strings.ToUpper(f.Verdict))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	q := `SELECT ` + clearanceColumns + ` FROM clearances`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Clearance
	for rows.Next() {
		c, err := scanClearance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClearance(s scanner) (Clearance, error) {
	var c Clearance
	var lat, lon sql.NullFloat64
	var ppe, risks, recs string
	if err := s.Scan(&c.ID, &c.StaffName, &c.StaffPhone, &c.HasPhoto, &lat, &lon, &c.Mode, &c.TimeOfDay,
		&c.DistanceKm, &c.Weather, &ppe, &c.Verdict, &c.Score, &c.Reasoning, &risks, &recs,
		&c.Provider, &c.CreatedAt); err != nil {
		return Clearance{}, err
	}
	if lat.Valid && lon.Valid {
		c.Latitude, c.Longitude = &lat.Float64, &lon.Float64
	}
	var err error
	if c.PPE, err = decodeList(ppe); err != nil {
		return Clearance{}, err
	}
	if c.RiskFactors, err = decodeList(risks); err != nil {
		return Clearance{}, err
	}
	if c.Recommendations, err = decodeList(recs); err != nil {
		return Clearance{}, err
	}
	return c, nil
}

func encodeList(in []string) (string, error) {
	if in == nil {
		in = []string{}
	}
	b, err := json.Marshal(in)
	return string(b), err
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}
