package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qaca/surakshapath/internal/database/repository"
)

type reportRow struct {
	ID              string    `json:"id" yaml:"id"`
	At              time.Time `json:"at" yaml:"at"`
	Staff           string    `json:"staff" yaml:"staff"`
	Phone           string    `json:"phone" yaml:"phone"`
	Photo           bool      `json:"photo" yaml:"photo"`
	Location        string    `json:"location,omitempty" yaml:"location,omitempty"`
	Mode            string    `json:"mode" yaml:"mode"`
	Time            string    `json:"time" yaml:"time"`
	DistanceKm      float64   `json:"distanceKm" yaml:"distance_km"`
	Weather         string    `json:"weather" yaml:"weather"`
	PPE             []string  `json:"ppe" yaml:"ppe"`
	Verdict         string    `json:"verdict" yaml:"verdict"`
	Score           float64   `json:"score" yaml:"score"`
	Reasoning       string    `json:"reasoning" yaml:"reasoning"`
	RiskFactors     []string  `json:"riskFactors" yaml:"risk_factors"`
	Recommendations []string  `json:"recommendations" yaml:"recommendations"`
	Provider        string    `json:"provider" yaml:"provider"`
}

func toReportRow(c repository.Clearance) reportRow {
	r := reportRow{
		ID:              c.ID,
		At:              c.CreatedAt,
		Staff:           c.StaffName,
		Phone:           c.StaffPhone,
		Photo:           c.HasPhoto,
		Mode:            c.Mode,
		Time:            c.TimeOfDay,
		DistanceKm:      c.DistanceKm,
		Weather:         c.Weather,
		PPE:             c.PPE,
		Verdict:         c.Verdict,
		Score:           c.Score,
		Reasoning:       c.Reasoning,
		RiskFactors:     c.RiskFactors,
		Recommendations: c.Recommendations,
		Provider:        c.Provider,
	}
	if c.Latitude != nil && c.Longitude != nil {
		r.Location = fmt.Sprintf("%.5f, %.5f", *c.Latitude, *c.Longitude)
	}
	return r
}

func reportCmd() *cobra.Command {
	var (
		f      repository.ClearanceFilters
		format string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "List recorded clearances from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openJournal()
			if err != nil {
				return err
			}
			defer db.Close()
			list, err := repository.NewClearanceRepo(db).List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), list, format)
		},
	}
	cmd.Flags().IntVar(&f.Limit, "limit", 50, "maximum rows")
	cmd.Flags().StringVar(&f.Verdict, "verdict", "", "verdict filter: SAFE, CAUTION or UNSAFE")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or yaml")
	return cmd
}

func renderReport(w io.Writer, list []repository.Clearance, format string) error {
	rows := make([]reportRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, toReportRow(c))
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"When", "Staff", "Mode", "Time", "Km", "Verdict", "Score", "Risks", "Provider"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.At.Local().Format("2006-01-02 15:04"),
			r.Staff,
			r.Mode,
			r.Time,
			r.DistanceKm,
			r.Verdict,
			fmt.Sprintf("%g%%", r.Score),
			len(r.RiskFactors),
			r.Provider,
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "", "", "Total", len(rows)})
	tw.Render()
	return nil
}
