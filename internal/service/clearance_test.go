package service

//go:generate mockgen -source=clearance.go -destination=mocks/mocks.go -package=mocks Analyzer,Journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/qaca/surakshapath/internal/database/repository"
	"github.com/qaca/surakshapath/internal/llm"
	"github.com/qaca/surakshapath/internal/safety"
	"github.com/qaca/surakshapath/internal/service/mocks"
)

type ClearanceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	analyzer *mocks.MockAnalyzer
	journal  *mocks.MockJournal
	service  *Clearance
}

func TestClearanceSuite(t *testing.T) {
	suite.Run(t, new(ClearanceSuite))
}

func (s *ClearanceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.analyzer = mocks.NewMockAnalyzer(s.ctrl)
	s.journal = mocks.NewMockJournal(s.ctrl)
	s.analyzer.EXPECT().Name().Return("gemini").AnyTimes()

	var err error
	s.service, err = NewClearance(s.analyzer, safety.Policy{RequirePhoto: true},
		WithJournal(s.journal), WithLogger(zap.NewNop()))
	s.Require().NoError(err)
}

func (s *ClearanceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func completeChecklist() safety.Checklist {
	c := safety.DefaultChecklist()
	c.StaffName = "Ravi Kumar"
	c.StaffPhone = "+91 98450 00000"
	c.Selfie = "data:image/jpeg;base64,/9j/AAAA"
	return c
}

func nightRideVerdict() safety.Verdict {
	return safety.Verdict{
		Verdict:         safety.OutcomeUnsafe,
		Score:           35,
		Reasoning:       "Two-wheeler travel at night over a long distance.",
		RiskFactors:     []string{"Night travel on two-wheeler", "Long distance at night"},
		Recommendations: []string{"Use a four-wheeler", "Postpone until daylight"},
	}
}

func (s *ClearanceSuite) TestNew() {
	s.Run("nil analyzer returns error", func() {
		_, err := NewClearance(nil, safety.Policy{})
		s.Error(err)
		s.Contains(err.Error(), "analyzer is required")
	})

	s.Run("policy is kept", func() {
		svc, err := NewClearance(s.analyzer, safety.Policy{RequirePhoto: false})
		s.NoError(err)
		s.False(svc.Policy().RequirePhoto)
	})
}

func (s *ClearanceSuite) TestSubmitValidation() {
	ctx := context.Background()

	s.Run("missing identity makes no analysis call", func() {
		s.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Times(0)
		s.journal.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)

		c := completeChecklist()
		c.StaffName = "   "
		c.StaffPhone = ""
		_, err := s.service.Submit(ctx, c)
		s.ErrorIs(err, safety.ErrValidation)
		var verr *safety.ValidationError
		s.Require().ErrorAs(err, &verr)
		s.Equal([]string{safety.FieldStaffName, safety.FieldStaffPhone}, verr.Missing)
	})

	s.Run("missing photo blocks when identity verification is on", func() {
		s.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Times(0)

		c := completeChecklist()
		c.Selfie = ""
		_, err := s.service.Submit(ctx, c)
		s.ErrorIs(err, safety.ErrValidation)
		s.Equal("Please provide: Identity photo", err.Error())
	})

	s.Run("missing photo is fine when identity verification is off", func() {
		svc, err := NewClearance(s.analyzer, safety.Policy{RequirePhoto: false})
		s.Require().NoError(err)
		c := completeChecklist()
		c.Selfie = ""
		s.analyzer.EXPECT().Analyze(gomock.Any(), c).Return(nightRideVerdict(), nil).Times(1)

		v, err := svc.Submit(ctx, c)
		s.NoError(err)
		s.Equal(safety.OutcomeUnsafe, v.Verdict)
	})
}

func (s *ClearanceSuite) TestSubmitAnalysis() {
	ctx := context.Background()

	s.Run("success returns verdict and journals it", func() {
		c := completeChecklist()
		want := nightRideVerdict()
		s.analyzer.EXPECT().Analyze(gomock.Any(), c).Return(want, nil).Times(1)
		s.journal.EXPECT().Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, row repository.Clearance) (repository.Clearance, error) {
				s.Equal("Ravi Kumar", row.StaffName)
				s.Equal("UNSAFE", row.Verdict)
				s.Equal("gemini", row.Provider)
				s.True(row.HasPhoto)
				return row, nil
			}).Times(1)

		got, err := s.service.Submit(ctx, c)
		s.NoError(err)
		s.Equal(want, got)
	})

	s.Run("analyzer failure is wrapped and not journaled", func() {
		s.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(safety.Verdict{}, llm.ErrNoAPIKey).Times(1)
		s.journal.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.Submit(ctx, completeChecklist())
		s.ErrorIs(err, ErrAnalysisUnavailable)
		s.ErrorIs(err, llm.ErrNoAPIKey)
	})

	s.Run("malformed response is unavailable", func() {
		s.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(safety.Verdict{}, llm.ErrMalformedResponse).Times(1)

		_, err := s.service.Submit(ctx, completeChecklist())
		s.ErrorIs(err, ErrAnalysisUnavailable)
	})

	s.Run("journal failure does not fail the submission", func() {
		s.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nightRideVerdict(), nil).Times(1)
		s.journal.EXPECT().Record(gomock.Any(), gomock.Any()).Return(repository.Clearance{}, errors.New("disk full")).Times(1)

		v, err := s.service.Submit(ctx, completeChecklist())
		s.NoError(err)
		s.Equal(35.0, v.Score)
	})

	s.Run("no journal configured", func() {
		svc, err := NewClearance(s.analyzer, safety.Policy{RequirePhoto: true}, WithJournal(nil))
		s.Require().NoError(err)
		s.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nightRideVerdict(), nil).Times(1)

		_, err = svc.Submit(ctx, completeChecklist())
		s.NoError(err)
	})
}
