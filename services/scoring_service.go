package services

import (
	"sort"

	"kpi-management-api/config"
	"kpi-management-api/models"

	"gorm.io/gorm"
)

// ScoringService aggregates approved submissions into dashboard figures.
// Only HOD_APPROVED and DEAN_APPROVED submissions count toward any score;
// missing data aggregates to zero, never to an error.
type ScoringService struct {
	db *gorm.DB
}

func NewScoringService(db *gorm.DB) *ScoringService {
	if db == nil {
		db = config.DB
	}
	return &ScoringService{db: db}
}

// ParameterScore is the per-main-parameter slice of a score summary.
type ParameterScore struct {
	MainParameter models.MainParameter `json:"main_parameter"`
	AwardedPoints float64              `json:"awarded_points"`
	MaxPoints     int                  `json:"max_points"`
	WeightedScore float64              `json:"weighted_score"`
	Submissions   []models.Submission  `json:"submissions"`
}

// ScoreSummary is one user's score for one period.
type ScoreSummary struct {
	Scores             map[string]*ParameterScore `json:"scores"`
	TotalWeightedScore float64                    `json:"total_weighted_score"`
	TotalAwardedPoints float64                    `json:"total_awarded_points"`
	TotalMaxPoints     int                        `json:"total_max_points"`
}

// DepartmentScore is one row of the department comparison.
type DepartmentScore struct {
	Department    models.Department `json:"department"`
	TotalPoints   float64           `json:"total_points"`
	FacultyCount  int64             `json:"faculty_count"`
	AveragePoints float64           `json:"average_points"`
}

// ParameterTotal is one row of the main parameter breakdown.
type ParameterTotal struct {
	MainParameter models.MainParameter `json:"main_parameter"`
	TotalPoints   float64              `json:"total_points"`
}

// LeaderboardEntry is one row of the faculty leaderboard.
type LeaderboardEntry struct {
	UserID          int     `gorm:"column:user_id" json:"user_id"`
	FullName        string  `gorm:"column:full_name" json:"full_name"`
	DepartmentName  string  `gorm:"column:department_name" json:"department_name"`
	TotalPoints     float64 `gorm:"column:total_points" json:"total_points"`
	SubmissionCount int64   `gorm:"column:submission_count" json:"submission_count"`
}

// StatusCounts always exposes all seven buckets, zero when absent. APPROVED
// folds HOD_APPROVED and DEAN_APPROVED together while both originals stay
// visible.
type StatusCounts struct {
	Draft         int64 `json:"DRAFT"`
	Submitted     int64 `json:"SUBMITTED"`
	NeedsRevision int64 `json:"NEEDS_REVISION"`
	Approved      int64 `json:"APPROVED"`
	Rejected      int64 `json:"REJECTED"`
	HodApproved   int64 `json:"HOD_APPROVED"`
	DeanApproved  int64 `json:"DEAN_APPROVED"`
}

// normalizeStatusCounts folds raw per-status counts into the fixed seven
// bucket contract.
func normalizeStatusCounts(raw map[string]int64) StatusCounts {
	return StatusCounts{
		Draft:         raw[models.StatusDraft],
		Submitted:     raw[models.StatusSubmitted],
		NeedsRevision: raw[models.StatusNeedsRevision],
		Approved:      raw[models.StatusHodApproved] + raw[models.StatusDeanApproved],
		Rejected:      raw[models.StatusRejected],
		HodApproved:   raw[models.StatusHodApproved],
		DeanApproved:  raw[models.StatusDeanApproved],
	}
}

// capTeamAverage adds the department average to the HoD's own points, capped
// at the sub-parameter ceiling.
func capTeamAverage(ownPoints, departmentAverage float64, maxPoints int) float64 {
	total := ownPoints + departmentAverage
	if total > float64(maxPoints) {
		return float64(maxPoints)
	}
	return total
}

// FacultyScores groups a faculty member's counted submissions by main
// parameter and applies the parameter weightage.
func (s *ScoringService) FacultyScores(userID, month, year int) (*ScoreSummary, error) {
	submissions, err := s.countedSubmissions(userID, month, year)
	if err != nil {
		return nil, err
	}
	return buildScoreSummary(submissions, nil)
}

// HodScores mirrors FacultyScores but applies the team average rule: an HoD
// submission whose sub-parameter has an active mapping gains the
// department-wide faculty average of the mapped sub-parameter, capped at the
// ceiling. Only the first active mapping per sub-parameter is consulted.
func (s *ScoringService) HodScores(hod *models.User, month, year int) (*ScoreSummary, error) {
	submissions, err := s.countedSubmissions(hod.UserID, month, year)
	if err != nil {
		return nil, err
	}

	adjust := func(sub *models.Submission) (float64, error) {
		if sub.SubParameter == nil {
			return sub.AwardedPoints, nil
		}
		mapping, err := s.firstActiveMapping(sub.SubParameterID)
		if err != nil {
			return 0, err
		}
		if mapping == nil || hod.DepartmentID == nil {
			return sub.AwardedPoints, nil
		}
		avg, err := s.DepartmentAverageForSubParam(*hod.DepartmentID, mapping.FacultySubParamID, month, year)
		if err != nil {
			return 0, err
		}
		return capTeamAverage(sub.AwardedPoints, avg, sub.SubParameter.MaxPoints), nil
	}

	return buildScoreSummary(submissions, adjust)
}

// DepartmentAverageForSubParam averages counted FACULTY awarded points for
// one sub-parameter within a department and period.
func (s *ScoringService) DepartmentAverageForSubParam(departmentID, subParameterID, month, year int) (float64, error) {
	var avg *float64
	err := s.db.Model(&models.Submission{}).
		Select("AVG(submissions.awarded_points)").
		Joins("JOIN users owner ON owner.user_id = submissions.user_id").
		Where("owner.department_id = ? AND owner.role = ?", departmentID, models.RoleFaculty).
		Where("submissions.sub_parameter_id = ? AND submissions.month = ? AND submissions.year = ?", subParameterID, month, year).
		Where("submissions.status IN ?", models.CountedStatuses).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// DepartmentComparison sums counted faculty points per active department,
// sorted by total descending. Departments without faculty average to zero.
func (s *ScoringService) DepartmentComparison(month, year int) ([]DepartmentScore, error) {
	var departments []models.Department
	if err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, err
	}

	comparison := make([]DepartmentScore, 0, len(departments))
	for _, dept := range departments {
		var total *float64
		err := s.db.Model(&models.Submission{}).
			Select("SUM(submissions.awarded_points)").
			Joins("JOIN users owner ON owner.user_id = submissions.user_id").
			Where("owner.department_id = ? AND owner.role = ?", dept.DepartmentID, models.RoleFaculty).
			Where("submissions.month = ? AND submissions.year = ?", month, year).
			Where("submissions.status IN ?", models.CountedStatuses).
			Scan(&total).Error
		if err != nil {
			return nil, err
		}

		var facultyCount int64
		err = s.db.Model(&models.User{}).
			Where("department_id = ? AND role = ? AND is_active = ?", dept.DepartmentID, models.RoleFaculty, true).
			Count(&facultyCount).Error
		if err != nil {
			return nil, err
		}

		totalPoints := 0.0
		if total != nil {
			totalPoints = *total
		}
		average := 0.0
		if facultyCount > 0 {
			average = totalPoints / float64(facultyCount)
		}

		comparison = append(comparison, DepartmentScore{
			Department:    dept,
			TotalPoints:   totalPoints,
			FacultyCount:  facultyCount,
			AveragePoints: average,
		})
	}

	sort.SliceStable(comparison, func(i, j int) bool {
		return comparison[i].TotalPoints > comparison[j].TotalPoints
	})
	return comparison, nil
}

// MainParameterBreakdown totals counted points per active main parameter for
// one department and period.
func (s *ScoringService) MainParameterBreakdown(departmentID, month, year int) ([]ParameterTotal, error) {
	var mainParams []models.MainParameter
	if err := s.db.Where("is_active = ?", true).Order("display_order ASC, name ASC").Find(&mainParams).Error; err != nil {
		return nil, err
	}

	breakdown := make([]ParameterTotal, 0, len(mainParams))
	for _, param := range mainParams {
		var total *float64
		err := s.db.Model(&models.Submission{}).
			Select("SUM(submissions.awarded_points)").
			Joins("JOIN users owner ON owner.user_id = submissions.user_id").
			Joins("JOIN sub_parameters sp ON sp.sub_parameter_id = submissions.sub_parameter_id").
			Where("owner.department_id = ?", departmentID).
			Where("sp.main_parameter_id = ?", param.MainParameterID).
			Where("submissions.month = ? AND submissions.year = ?", month, year).
			Where("submissions.status IN ?", models.CountedStatuses).
			Scan(&total).Error
		if err != nil {
			return nil, err
		}
		totalPoints := 0.0
		if total != nil {
			totalPoints = *total
		}
		breakdown = append(breakdown, ParameterTotal{MainParameter: param, TotalPoints: totalPoints})
	}
	return breakdown, nil
}

// StatusCountFilter narrows the status count query; zero values are ignored.
type StatusCountFilter struct {
	UserID       int
	DepartmentID int
	Month        int
	Year         int
}

// StatusCounts groups submissions by status and normalizes the result to the
// seven bucket contract regardless of which rows exist.
func (s *ScoringService) StatusCounts(filter StatusCountFilter) (StatusCounts, error) {
	type statusRow struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	query := s.db.Model(&models.Submission{}).
		Select("submissions.status AS status, COUNT(*) AS count").
		Group("submissions.status")

	if filter.UserID > 0 {
		query = query.Where("submissions.user_id = ?", filter.UserID)
	}
	if filter.DepartmentID > 0 {
		query = query.
			Joins("JOIN users owner ON owner.user_id = submissions.user_id").
			Where("owner.department_id = ?", filter.DepartmentID)
	}
	if filter.Month > 0 {
		query = query.Where("submissions.month = ?", filter.Month)
	}
	if filter.Year > 0 {
		query = query.Where("submissions.year = ?", filter.Year)
	}

	var rows []statusRow
	if err := query.Scan(&rows).Error; err != nil {
		return StatusCounts{}, err
	}

	raw := make(map[string]int64, len(rows))
	for _, row := range rows {
		raw[row.Status] = row.Count
	}
	return normalizeStatusCounts(raw), nil
}

// Leaderboard ranks faculty by total counted points. Zero-valued filters are
// ignored; limit defaults to 10.
func (s *ScoringService) Leaderboard(departmentID, month, year, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := s.db.Model(&models.Submission{}).
		Select("owner.user_id AS user_id, owner.full_name AS full_name, dept.name AS department_name, SUM(submissions.awarded_points) AS total_points, COUNT(*) AS submission_count").
		Joins("JOIN users owner ON owner.user_id = submissions.user_id").
		Joins("LEFT JOIN departments dept ON dept.department_id = owner.department_id").
		Where("owner.role = ?", models.RoleFaculty).
		Where("submissions.status IN ?", models.CountedStatuses).
		Group("owner.user_id, owner.full_name, dept.name").
		Order("total_points DESC").
		Limit(limit)

	if departmentID > 0 {
		query = query.Where("owner.department_id = ?", departmentID)
	}
	if month > 0 {
		query = query.Where("submissions.month = ?", month)
	}
	if year > 0 {
		query = query.Where("submissions.year = ?", year)
	}

	var entries []LeaderboardEntry
	err := query.Scan(&entries).Error
	return entries, err
}

func (s *ScoringService) countedSubmissions(userID, month, year int) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.
		Preload("SubParameter.MainParameter").
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Where("status IN ?", models.CountedStatuses).
		Order("submission_id ASC").
		Find(&submissions).Error
	return submissions, err
}

// firstActiveMapping returns the lowest-id active mapping for an HoD
// sub-parameter; additional mappings are intentionally ignored.
func (s *ScoringService) firstActiveMapping(hodSubParamID int) (*models.HodSubParamMapping, error) {
	var mapping models.HodSubParamMapping
	err := s.db.
		Where("hod_subparam_id = ? AND aggregation = ? AND is_active = ?", hodSubParamID, models.AggregationAverage, true).
		Order("mapping_id ASC").
		First(&mapping).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// buildScoreSummary groups submissions by main parameter. The optional adjust
// hook replaces the raw awarded points per submission before accumulation.
func buildScoreSummary(submissions []models.Submission, adjust func(*models.Submission) (float64, error)) (*ScoreSummary, error) {
	summary := &ScoreSummary{Scores: make(map[string]*ParameterScore)}
	for i := range submissions {
		sub := &submissions[i]
		points := sub.AwardedPoints
		if adjust != nil {
			var err error
			points, err = adjust(sub)
			if err != nil {
				return nil, err
			}
		}
		accumulateScore(summary, sub, points)
	}
	finalizeSummary(summary)
	return summary, nil
}

func accumulateScore(summary *ScoreSummary, sub *models.Submission, points float64) {
	if sub.SubParameter == nil || sub.SubParameter.MainParameter == nil {
		return
	}
	mainParam := sub.SubParameter.MainParameter

	entry, ok := summary.Scores[mainParam.Name]
	if !ok {
		entry = &ParameterScore{MainParameter: *mainParam}
		summary.Scores[mainParam.Name] = entry
	}
	entry.AwardedPoints += points
	entry.MaxPoints += sub.SubParameter.MaxPoints
	entry.Submissions = append(entry.Submissions, *sub)
}

func finalizeSummary(summary *ScoreSummary) {
	for _, entry := range summary.Scores {
		entry.WeightedScore = entry.AwardedPoints * entry.MainParameter.Weightage
		summary.TotalWeightedScore += entry.WeightedScore
		summary.TotalAwardedPoints += entry.AwardedPoints
		summary.TotalMaxPoints += entry.MaxPoints
	}
}
