package services

import (
	"testing"

	"kpi-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatusCountsSevenBuckets(t *testing.T) {
	raw := map[string]int64{
		models.StatusDraft:         2,
		models.StatusSubmitted:     3,
		models.StatusNeedsRevision: 1,
		models.StatusHodApproved:   4,
		models.StatusDeanApproved:  5,
		models.StatusRejected:      1,
	}

	counts := normalizeStatusCounts(raw)

	assert.Equal(t, int64(2), counts.Draft)
	assert.Equal(t, int64(3), counts.Submitted)
	assert.Equal(t, int64(1), counts.NeedsRevision)
	assert.Equal(t, int64(1), counts.Rejected)
	assert.Equal(t, int64(4), counts.HodApproved)
	assert.Equal(t, int64(5), counts.DeanApproved)

	// Approved is the composite of both approval stages.
	assert.Equal(t, int64(9), counts.Approved)
}

func TestNormalizeStatusCountsEmptyInput(t *testing.T) {
	counts := normalizeStatusCounts(map[string]int64{})

	assert.Zero(t, counts.Draft)
	assert.Zero(t, counts.Submitted)
	assert.Zero(t, counts.NeedsRevision)
	assert.Zero(t, counts.Approved)
	assert.Zero(t, counts.Rejected)
	assert.Zero(t, counts.HodApproved)
	assert.Zero(t, counts.DeanApproved)
}

func TestNormalizeStatusCountsIgnoresUnknownStatuses(t *testing.T) {
	counts := normalizeStatusCounts(map[string]int64{
		"ARCHIVED":         7,
		models.StatusDraft: 1,
	})

	assert.Equal(t, int64(1), counts.Draft)
	assert.Zero(t, counts.Approved)
}

func scoringFixture() []models.Submission {
	research := &models.MainParameter{MainParameterID: 1, Name: "Research", Weightage: 0.4}
	teaching := &models.MainParameter{MainParameterID: 2, Name: "Teaching", Weightage: 0.6}

	return []models.Submission{
		{
			SubmissionID:  1,
			AwardedPoints: 6,
			Status:        models.StatusDeanApproved,
			SubParameter:  &models.SubParameter{SubParameterID: 10, MaxPoints: 10, MainParameter: research},
		},
		{
			SubmissionID:  2,
			AwardedPoints: 3,
			Status:        models.StatusHodApproved,
			SubParameter:  &models.SubParameter{SubParameterID: 11, MaxPoints: 5, MainParameter: research},
		},
		{
			SubmissionID:  3,
			AwardedPoints: 8,
			Status:        models.StatusDeanApproved,
			SubParameter:  &models.SubParameter{SubParameterID: 12, MaxPoints: 10, MainParameter: teaching},
		},
	}
}

func TestBuildScoreSummaryRawPoints(t *testing.T) {
	summary, err := buildScoreSummary(scoringFixture(), nil)
	require.NoError(t, err)

	research := summary.Scores["Research"]
	require.NotNil(t, research)
	assert.Equal(t, 9.0, research.AwardedPoints)
	assert.Equal(t, 15, research.MaxPoints)
	assert.InDelta(t, 3.6, research.WeightedScore, 1e-9)
	assert.Len(t, research.Submissions, 2)

	teaching := summary.Scores["Teaching"]
	require.NotNil(t, teaching)
	assert.InDelta(t, 4.8, teaching.WeightedScore, 1e-9)

	assert.Equal(t, 17.0, summary.TotalAwardedPoints)
	assert.Equal(t, 25, summary.TotalMaxPoints)
	assert.InDelta(t, 8.4, summary.TotalWeightedScore, 1e-9)
}

func TestBuildScoreSummaryAdjustHook(t *testing.T) {
	// Mirrors the team average rule: replace raw points with a capped sum.
	adjust := func(sub *models.Submission) (float64, error) {
		return capTeamAverage(sub.AwardedPoints, 4, sub.SubParameter.MaxPoints), nil
	}

	summary, err := buildScoreSummary(scoringFixture(), adjust)
	require.NoError(t, err)

	// 6+4=10 and 3+4 clipped to 5.
	research := summary.Scores["Research"]
	require.NotNil(t, research)
	assert.Equal(t, 15.0, research.AwardedPoints)

	// 8+4 clipped to 10.
	teaching := summary.Scores["Teaching"]
	require.NotNil(t, teaching)
	assert.Equal(t, 10.0, teaching.AwardedPoints)
}

func TestBuildScoreSummaryAdjustErrorStopsAggregation(t *testing.T) {
	adjust := func(*models.Submission) (float64, error) {
		return 0, assert.AnError
	}

	summary, err := buildScoreSummary(scoringFixture(), adjust)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCapTeamAverage(t *testing.T) {
	// Under the ceiling: sum passes through.
	assert.Equal(t, 7.5, capTeamAverage(5, 2.5, 10))

	// Exactly at the ceiling.
	assert.Equal(t, 10.0, capTeamAverage(6, 4, 10))

	// Over the ceiling: clipped.
	assert.Equal(t, 10.0, capTeamAverage(8, 6, 10))

	// No team contribution.
	assert.Equal(t, 4.0, capTeamAverage(4, 0, 10))
}
