package services

import (
	"fmt"
	"time"

	"kpi-management-api/config"
	"kpi-management-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewService sequences the approval chain: HoD (or OTHER approver) first,
// then the Dean's bulk sign-off. Every transition writes the submission
// mutation and its audit records in one transaction.
type ReviewService struct {
	db            *gorm.DB
	cutoffs       *CutoffService
	notifications *NotificationService
}

func NewReviewService(db *gorm.DB) *ReviewService {
	if db == nil {
		db = config.DB
	}
	return &ReviewService{
		db:            db,
		cutoffs:       NewCutoffService(db),
		notifications: NewNotificationService(db),
	}
}

// PendingReviews resolves what is waiting on the given reviewer. HoDs see
// SUBMITTED entries from their own department routed to HOD; Deans see
// HOD_APPROVED entries from departments they manage; an OTHER-routed approver
// sees SUBMITTED entries whose approver email matches theirs.
func (s *ReviewService) PendingReviews(reviewer *models.User) ([]models.Submission, error) {
	var submissions []models.Submission

	switch reviewer.Role {
	case models.RoleHOD:
		if reviewer.DepartmentID == nil {
			return submissions, nil
		}
		err := s.db.
			Preload("User").
			Preload("SubParameter.MainParameter").
			Joins("JOIN users owner ON owner.user_id = submissions.user_id").
			Joins("JOIN sub_parameters sp ON sp.sub_parameter_id = submissions.sub_parameter_id").
			Where("submissions.status = ?", models.StatusSubmitted).
			Where("owner.department_id = ?", *reviewer.DepartmentID).
			Where("sp.approval_routing = ?", models.RoutingHOD).
			Order("submissions.submitted_at DESC").
			Find(&submissions).Error
		return submissions, err

	case models.RoleDean:
		err := s.db.
			Preload("User").
			Preload("SubParameter.MainParameter").
			Joins("JOIN users owner ON owner.user_id = submissions.user_id").
			Joins("JOIN dean_departments dd ON dd.department_id = owner.department_id").
			Where("submissions.status = ?", models.StatusHodApproved).
			Where("dd.user_id = ?", reviewer.UserID).
			Order("submissions.reviewed_at DESC").
			Find(&submissions).Error
		return submissions, err

	default:
		err := s.db.
			Preload("User").
			Preload("SubParameter.MainParameter").
			Joins("JOIN sub_parameters sp ON sp.sub_parameter_id = submissions.sub_parameter_id").
			Where("submissions.status = ?", models.StatusSubmitted).
			Where("sp.approval_routing = ?", models.RoutingOther).
			Where("sp.other_approver_email = ?", reviewer.Email).
			Order("submissions.submitted_at DESC").
			Find(&submissions).Error
		return submissions, err
	}
}

// validateAwardedPoints enforces 0 <= points <= maxPoints. The ceiling itself
// is a valid award.
func validateAwardedPoints(points float64, maxPoints int) error {
	if points < 0 {
		return guardViolation("Awarded points cannot be negative")
	}
	if points > float64(maxPoints) {
		return guardViolation(fmt.Sprintf("Awarded points cannot exceed %d", maxPoints))
	}
	return nil
}

// canFirstLineReview checks that the reviewer is the right first-line approver
// for this submission's routing.
func canFirstLineReview(reviewer *models.User, owner *models.User, subParam *models.SubParameter) error {
	if reviewer.IsAdmin() {
		return nil
	}
	switch subParam.ApprovalRouting {
	case models.RoutingHOD:
		if !reviewer.IsHOD() {
			return guardViolation("Only the department HoD can review this submission")
		}
		if reviewer.DepartmentID == nil || owner.DepartmentID == nil || *reviewer.DepartmentID != *owner.DepartmentID {
			return guardViolation("Reviewer and submitter must belong to the same department")
		}
	case models.RoutingOther:
		if subParam.OtherApproverEmail == nil || *subParam.OtherApproverEmail != reviewer.Email {
			return guardViolation("You are not the designated approver for this submission")
		}
	}
	return nil
}

// Approve awards points and moves a SUBMITTED entry to HOD_APPROVED, gated by
// the reviewer's approval deadline unless they may override it. A concurrent
// approval loses the status guard rather than overwriting.
func (s *ReviewService) Approve(submissionID int, reviewer *models.User, awardedPoints float64, comment string, client *ClientMeta) (*models.Submission, error) {
	submission, owner, subParam, err := s.loadForReview(submissionID)
	if err != nil {
		return nil, err
	}
	if !submission.CanReview() {
		return nil, guardViolation("Only submitted submissions can be approved")
	}
	if err := canFirstLineReview(reviewer, owner, subParam); err != nil {
		return nil, err
	}
	if err := validateAwardedPoints(awardedPoints, subParam.MaxPoints); err != nil {
		return nil, err
	}

	window, err := s.cutoffs.ResolveWindow(submission.Month, submission.Year, owner.DepartmentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if deadlinePassed(window, reviewer, now) {
		return nil, guardViolation("Approval deadline has passed")
	}

	updates := map[string]interface{}{
		"status":         models.StatusHodApproved,
		"awarded_points": awardedPoints,
		"reviewer_id":    reviewer.UserID,
		"review_comment": comment,
		"reviewed_at":    now,
		"updated_at":     now,
	}
	description := fmt.Sprintf("Approved with %g points", awardedPoints)
	if err := s.applyReview(submission, reviewer, models.ActionApproved, awardedPoints, comment, updates, models.StatusHodApproved, description, client); err != nil {
		return nil, err
	}

	submission.Status = models.StatusHodApproved
	submission.AwardedPoints = awardedPoints
	submission.ReviewComment = comment
	s.notifications.NotifyTransition(submission, models.StatusHodApproved)
	return submission, nil
}

// Reject moves a SUBMITTED entry to the terminal REJECTED state.
func (s *ReviewService) Reject(submissionID int, reviewer *models.User, comment string, client *ClientMeta) (*models.Submission, error) {
	submission, owner, subParam, err := s.loadForReview(submissionID)
	if err != nil {
		return nil, err
	}
	if !submission.CanReview() {
		return nil, guardViolation("Only submitted submissions can be rejected")
	}
	if err := canFirstLineReview(reviewer, owner, subParam); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.StatusRejected,
		"awarded_points": 0,
		"reviewer_id":    reviewer.UserID,
		"review_comment": comment,
		"reviewed_at":    now,
		"updated_at":     now,
	}
	if err := s.applyReview(submission, reviewer, models.ActionRejected, 0, comment, updates, models.StatusRejected, "Rejected submission", client); err != nil {
		return nil, err
	}

	submission.Status = models.StatusRejected
	submission.ReviewComment = comment
	s.notifications.NotifyTransition(submission, models.StatusRejected)
	return submission, nil
}

// RequestRevision sends a SUBMITTED entry back to its owner. Awarded points
// reset to zero across revision cycles.
func (s *ReviewService) RequestRevision(submissionID int, reviewer *models.User, comment string, client *ClientMeta) (*models.Submission, error) {
	submission, owner, subParam, err := s.loadForReview(submissionID)
	if err != nil {
		return nil, err
	}
	if !submission.CanReview() {
		return nil, guardViolation("Only submitted submissions can be sent for revision")
	}
	if err := canFirstLineReview(reviewer, owner, subParam); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.StatusNeedsRevision,
		"awarded_points": 0,
		"reviewer_id":    reviewer.UserID,
		"review_comment": comment,
		"reviewed_at":    now,
		"updated_at":     now,
	}
	if err := s.applyReview(submission, reviewer, models.ActionNeedsRevision, 0, comment, updates, models.StatusNeedsRevision, "Requested revision", client); err != nil {
		return nil, err
	}

	submission.Status = models.StatusNeedsRevision
	submission.AwardedPoints = 0
	submission.ReviewComment = comment
	s.notifications.NotifyTransition(submission, models.StatusNeedsRevision)
	return submission, nil
}

// applyReview performs one first-line transition: guarded submission update,
// append-only review record and audit entry, committed atomically.
func (s *ReviewService) applyReview(submission *models.Submission, reviewer *models.User, action string, awardedPoints float64, comment string, updates map[string]interface{}, newStatus, description string, client *ClientMeta) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Model(&models.Submission{}).
		Where("submission_id = ? AND status = ?", submission.SubmissionID, models.StatusSubmitted).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Another reviewer acted first; the guard fails instead of overwriting.
		tx.Rollback()
		return guardViolation("Only submitted submissions can be reviewed")
	}

	review := models.Review{
		SubmissionID:   submission.SubmissionID,
		ReviewerID:     reviewer.UserID,
		Action:         action,
		AwardedPoints:  awardedPoints,
		Comment:        comment,
		PreviousStatus: submission.Status,
		NewStatus:      newStatus,
	}
	if err := tx.Create(&review).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := logActivity(tx, reviewer.UserID, action, "Submission", submission.SubmissionID, description, comment, nil, client); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// DeanBulkApprove flips every HOD_APPROVED submission of one faculty and
// period to DEAN_APPROVED and upserts the DeanApproval snapshot with the
// summed points. The batch is all-or-nothing.
func (s *ReviewService) DeanBulkApprove(facultyID, month, year int, dean *models.User, comment string, client *ClientMeta) (*models.DeanApproval, error) {
	var faculty models.User
	if err := s.db.Where("user_id = ? AND is_active = ?", facultyID, true).First(&faculty).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, guardViolation("Faculty member not found")
		}
		return nil, err
	}

	if !dean.IsAdmin() {
		if faculty.DepartmentID == nil || !s.deanManagesDepartment(dean, *faculty.DepartmentID) {
			return nil, guardViolation("You do not manage this faculty member's department")
		}
	}

	var submissions []models.Submission
	err := s.db.
		Where("user_id = ? AND month = ? AND year = ? AND status = ?", facultyID, month, year, models.StatusHodApproved).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	if len(submissions) == 0 {
		return nil, guardViolation("No HoD-approved submissions for this faculty and period")
	}

	totalPoints := 0.0
	for _, sub := range submissions {
		totalPoints += sub.AwardedPoints
	}

	now := time.Now()
	approval := models.DeanApproval{
		FacultyID:   facultyID,
		Month:       month,
		Year:        year,
		DeanID:      dean.UserID,
		TotalPoints: totalPoints,
		Comment:     comment,
		IsApproved:  true,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "faculty_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"dean_id", "total_points", "comment", "is_approved", "updated_at"}),
	}).Create(&approval).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	result := tx.Model(&models.Submission{}).
		Where("user_id = ? AND month = ? AND year = ? AND status = ?", facultyID, month, year, models.StatusHodApproved).
		Updates(map[string]interface{}{
			"status":           models.StatusDeanApproved,
			"dean_approved":    true,
			"dean_approver_id": dean.UserID,
			"dean_approved_at": now,
			"updated_at":       now,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected != int64(len(submissions)) {
		// A concurrent actor changed part of the batch; nothing is applied.
		tx.Rollback()
		return nil, guardViolation("Submissions changed during approval, please retry")
	}

	description := fmt.Sprintf("Dean approved faculty for %d/%d with %g points", month, year, totalPoints)
	if err := logActivity(tx, dean.UserID, models.ActionApproved, "DeanApproval", approval.DeanApprovalID, description, comment, nil, client); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	for i := range submissions {
		submissions[i].Status = models.StatusDeanApproved
		s.notifications.NotifyTransition(&submissions[i], models.StatusDeanApproved)
	}
	return &approval, nil
}

// ReviewHistory returns the append-only audit trail for one submission.
func (s *ReviewService) ReviewHistory(submissionID int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.
		Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *ReviewService) deanManagesDepartment(dean *models.User, departmentID int) bool {
	var count int64
	s.db.Table("dean_departments").
		Where("user_id = ? AND department_id = ?", dean.UserID, departmentID).
		Count(&count)
	return count > 0
}

func (s *ReviewService) loadForReview(submissionID int) (*models.Submission, *models.User, *models.SubParameter, error) {
	var submission models.Submission
	err := s.db.
		Preload("User").
		Preload("SubParameter").
		Where("submission_id = ?", submissionID).
		First(&submission).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, nil, guardViolation("Submission not found")
		}
		return nil, nil, nil, err
	}
	if submission.User == nil || submission.SubParameter == nil {
		return nil, nil, nil, fmt.Errorf("submission %d is missing its owner or sub-parameter", submissionID)
	}
	return &submission, submission.User, submission.SubParameter, nil
}
