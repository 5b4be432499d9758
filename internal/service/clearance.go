package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qaca/surakshapath/internal/database/repository"
	"github.com/qaca/surakshapath/internal/safety"
)

// ErrAnalysisUnavailable wraps every failure of the analysis call.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// Analyzer turns a checklist into a verdict. llm.LLMProvider satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, checklist safety.Checklist) (safety.Verdict, error)
	Name() string
}

// Journal persists analysed clearances.
type Journal interface {
	Record(ctx context.Context, c repository.Clearance) (repository.Clearance, error)
}

// Clearance runs one submission: validate, analyse once, journal.
type Clearance struct {
	analyzer Analyzer
	journal  Journal
	policy   safety.Policy
	logger   *zap.Logger
}

type Option func(*Clearance)

// WithJournal records every successful analysis. Nil disables the journal.
func WithJournal(j Journal) Option {
	return func(c *Clearance) { c.journal = j }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Clearance) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClearance(analyzer Analyzer, policy safety.Policy, opts ...Option) (*Clearance, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	c := &Clearance{analyzer: analyzer, policy: policy, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Policy reports the identity requirements submissions are checked against.
func (s *Clearance) Policy() safety.Policy { return s.policy }

// Submit validates checklist and asks the analyzer for a verdict. Validation
// failures return *safety.ValidationError without contacting the analyzer.
func (s *Clearance) Submit(ctx context.Context, checklist safety.Checklist) (safety.Verdict, error) {
	if err := checklist.Validate(s.policy); err != nil {
		return safety.Verdict{}, err
	}

	provider := s.analyzer.Name()
	s.logger.Info("analysis started",
		zap.String("provider", provider),
		zap.String("mode", checklist.Mode.String()),
		zap.String("time", checklist.Time.String()),
		zap.Float64("distance_km", checklist.Distance),
	)

	verdict, err := s.analyzer.Analyze(ctx, checklist)
	if err != nil {
		s.logger.Warn("analysis failed", zap.String("provider", provider), zap.Error(err))
		return safety.Verdict{}, fmt.Errorf("%w: %w", ErrAnalysisUnavailable, err)
	}
	s.logger.Info("analysis complete",
		zap.String("provider", provider),
		zap.String("verdict", string(verdict.Verdict)),
		zap.Float64("score", verdict.Score),
		zap.Int("risk_factors", len(verdict.RiskFactors)),
	)

	if s.journal != nil {
		row, err := s.journal.Record(ctx, repository.NewClearance(checklist, verdict, provider))
		if err != nil {
			s.logger.Error("journal record failed", zap.Error(err))
		} else {
			s.logger.Debug("journal recorded", zap.String("id", row.ID))
		}
	}
	return verdict, nil
}
