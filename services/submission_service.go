package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"kpi-management-api/config"
	"kpi-management-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionService owns the submission lifecycle up to the review stage:
// idempotent creation, draft data persistence and the submit transition.
type SubmissionService struct {
	db            *gorm.DB
	forms         *FormService
	cutoffs       *CutoffService
	notifications *NotificationService
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	if db == nil {
		db = config.DB
	}
	return &SubmissionService{
		db:            db,
		forms:         NewFormService(db),
		cutoffs:       NewCutoffService(db),
		notifications: NewNotificationService(db),
	}
}

// CreateOrGet returns the submission identified by (user, sub_parameter,
// month, year), creating it in DRAFT when absent. Never creates a duplicate.
func (s *SubmissionService) CreateOrGet(user *models.User, subParameterID, month, year int, client *ClientMeta) (*models.Submission, error) {
	if month < 1 || month > 12 {
		return nil, guardViolation(fmt.Sprintf("Invalid month %d", month))
	}

	var subParam models.SubParameter
	if err := s.db.Preload("MainParameter").
		Where("sub_parameter_id = ? AND is_active = ?", subParameterID, true).
		First(&subParam).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, guardViolation("Sub-parameter not found or inactive")
		}
		return nil, err
	}

	// The main parameter's role owner decides who may submit against it.
	if subParam.MainParameter != nil && subParam.MainParameter.RoleOwner != user.Role {
		return nil, guardViolation(fmt.Sprintf("Only %s users can submit against %s", subParam.MainParameter.RoleOwner, subParam.Name))
	}

	var submission models.Submission
	err := s.db.
		Where("user_id = ? AND sub_parameter_id = ? AND month = ? AND year = ?", user.UserID, subParameterID, month, year).
		First(&submission).Error
	if err == nil {
		return &submission, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	submission = models.Submission{
		UserID:         user.UserID,
		SubParameterID: subParameterID,
		Month:          month,
		Year:           year,
		Status:         models.StatusDraft,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&submission).Error; err != nil {
		tx.Rollback()
		// A concurrent create may have won the race on the unique key.
		var existing models.Submission
		if lookupErr := s.db.
			Where("user_id = ? AND sub_parameter_id = ? AND month = ? AND year = ?", user.UserID, subParameterID, month, year).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}

	description := fmt.Sprintf("Created submission for %s", subParam.Name)
	if err := logActivity(tx, user.UserID, models.ActionCreated, "Submission", submission.SubmissionID, description, "", nil, client); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// SaveDraft validates and upserts field values for an editable submission.
// The status never changes here.
func (s *SubmissionService) SaveDraft(submissionID int, actor *models.User, values map[string]string, client *ClientMeta) (*models.Submission, error) {
	submission, err := s.loadOwned(submissionID, actor)
	if err != nil {
		return nil, err
	}
	if !submission.CanEdit() {
		return nil, guardViolation("Only draft or revision submissions can be edited")
	}

	template, err := s.forms.RequireTemplate(submission.SubParameterID)
	if err != nil {
		return nil, err
	}

	// Validate every value before persisting anything.
	var problems []string
	for i := range template.Fields {
		field := &template.Fields[i]
		if field.IsFileKind() {
			continue
		}
		valid, message, err := ValidateFieldValue(field, values[field.Name])
		if err != nil {
			return nil, err
		}
		if !valid {
			problems = append(problems, message)
		}
	}
	if len(problems) > 0 {
		return nil, guardViolation(strings.Join(problems, "; "))
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for i := range template.Fields {
		field := &template.Fields[i]
		if field.IsFileKind() {
			continue
		}
		value := models.SubmissionFieldValue{
			SubmissionID: submission.SubmissionID,
			FieldID:      field.FieldID,
			FieldName:    field.Name,
			Value:        values[field.Name],
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}, {Name: "field_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "field_name", "updated_at"}),
		}).Create(&value).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := logActivity(tx, actor.UserID, models.ActionUpdated, "Submission", submission.SubmissionID, "Updated submission data", "", nil, client); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return submission, nil
}

// Submit moves a draft (or a revision being resubmitted) to SUBMITTED,
// gated by the faculty submit deadline unless the actor may override it.
func (s *SubmissionService) Submit(submissionID int, actor *models.User, client *ClientMeta) (*models.Submission, error) {
	submission, err := s.loadOwned(submissionID, actor)
	if err != nil {
		return nil, err
	}
	if !submission.CanSubmit() {
		return nil, guardViolation("Only draft or revision submissions can be submitted")
	}

	var subParam models.SubParameter
	if err := s.db.Where("sub_parameter_id = ?", submission.SubParameterID).First(&subParam).Error; err != nil {
		return nil, err
	}
	if subParam.ApprovalRouting == models.RoutingOther &&
		(subParam.OtherApproverEmail == nil || strings.TrimSpace(*subParam.OtherApproverEmail) == "") {
		return nil, configurationError(fmt.Sprintf("sub-parameter %s routes to OTHER but has no approver email", subParam.Name))
	}

	window, err := s.cutoffs.ResolveWindow(submission.Month, submission.Year, actor.DepartmentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if deadlinePassed(window, actor, now) {
		return nil, guardViolation("Submission deadline has passed")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Model(&models.Submission{}).
		Where("submission_id = ? AND status IN ?", submission.SubmissionID, []string{models.StatusDraft, models.StatusNeedsRevision}).
		Updates(map[string]interface{}{
			"status":       models.StatusSubmitted,
			"submitted_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, guardViolation("Only draft or revision submissions can be submitted")
	}

	if err := logActivity(tx, actor.UserID, models.ActionSubmitted, "Submission", submission.SubmissionID, "Submitted for review", "", nil, client); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	submission.Status = models.StatusSubmitted
	submission.SubmittedAt = &now
	s.notifications.NotifyTransition(submission, models.StatusSubmitted)
	return submission, nil
}

// DeleteSubmission removes a draft entirely: field values, attachment rows
// and the submission itself go in one transaction, and the stored files are
// removed once it commits. Only the owner may delete, and only while the
// submission is still a draft.
func (s *SubmissionService) DeleteSubmission(submissionID int, actor *models.User, client *ClientMeta) error {
	submission, err := s.loadOwned(submissionID, actor)
	if err != nil {
		return err
	}
	if submission.Status != models.StatusDraft {
		return guardViolation("Only draft submissions can be deleted")
	}

	var attachments []models.Attachment
	if err := s.db.Where("submission_id = ?", submissionID).Find(&attachments).Error; err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("submission_id = ?", submissionID).Delete(&models.SubmissionFieldValue{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("submission_id = ?", submissionID).Delete(&models.Attachment{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	result := tx.Where("submission_id = ? AND status = ?", submissionID, models.StatusDraft).Delete(&models.Submission{})
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		// The draft was submitted between load and delete.
		tx.Rollback()
		return guardViolation("Only draft submissions can be deleted")
	}

	if err := logActivity(tx, actor.UserID, models.ActionDeleted, "Submission", submissionID, "Deleted draft submission", "", nil, client); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	for _, attachment := range attachments {
		removeStoredFile(attachment.StoredPath)
	}
	return nil
}

// AddAttachment records attachment metadata for an editable submission.
// Multifile fields are bounded by their max_files setting.
func (s *SubmissionService) AddAttachment(submissionID int, actor *models.User, fieldID *int, originalName, storedPath string, fileSize int64, contentType string) (*models.Attachment, error) {
	submission, err := s.loadOwned(submissionID, actor)
	if err != nil {
		return nil, err
	}
	if !submission.CanEdit() {
		return nil, guardViolation("Only draft or revision submissions can be edited")
	}

	if fieldID != nil {
		var field models.DynamicField
		if err := s.db.Where("field_id = ?", *fieldID).First(&field).Error; err != nil {
			return nil, err
		}
		if !field.IsFileKind() {
			return nil, guardViolation(fmt.Sprintf("%s does not accept file uploads", field.Label))
		}
		maxFiles := field.MaxFiles
		if field.FieldType == models.FieldFile {
			maxFiles = 1
		}
		var existing int64
		if err := s.db.Model(&models.Attachment{}).
			Where("submission_id = ? AND field_id = ?", submissionID, *fieldID).
			Count(&existing).Error; err != nil {
			return nil, err
		}
		if maxFiles > 0 && existing >= int64(maxFiles) {
			return nil, guardViolation(fmt.Sprintf("%s accepts at most %d files", field.Label, maxFiles))
		}
	}

	attachment := models.Attachment{
		SubmissionID: submissionID,
		FieldID:      fieldID,
		OriginalName: originalName,
		StoredPath:   storedPath,
		FileSize:     fileSize,
		ContentType:  contentType,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// DeleteAttachment removes the metadata row and the physical file together so
// neither outlives the other. A file already gone on disk is not an error.
func (s *SubmissionService) DeleteAttachment(attachmentID int, actor *models.User) error {
	var attachment models.Attachment
	if err := s.db.Where("attachment_id = ?", attachmentID).First(&attachment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return guardViolation("Attachment not found")
		}
		return err
	}

	submission, err := s.loadOwned(attachment.SubmissionID, actor)
	if err != nil {
		return err
	}
	if !submission.CanEdit() {
		return guardViolation("Only draft or revision submissions can be edited")
	}

	if err := s.db.Delete(&models.Attachment{}, attachment.AttachmentID).Error; err != nil {
		return err
	}
	removeStoredFile(attachment.StoredPath)
	return nil
}

// MissingRequiredFiles lists required file fields without any attachment.
// Callers use it as the presence check the schema engine leaves to them.
func (s *SubmissionService) MissingRequiredFiles(submission *models.Submission) ([]string, error) {
	template, err := s.forms.GetTemplate(submission.SubParameterID)
	if err != nil || template == nil {
		return nil, err
	}

	var missing []string
	for i := range template.Fields {
		field := &template.Fields[i]
		if !field.IsFileKind() || !field.IsRequired {
			continue
		}
		var count int64
		if err := s.db.Model(&models.Attachment{}).
			Where("submission_id = ? AND field_id = ?", submission.SubmissionID, field.FieldID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			missing = append(missing, field.Label)
		}
	}
	return missing, nil
}

// GetForUser loads one submission with its details, restricted to the owner
// unless the actor has a reviewing role.
func (s *SubmissionService) GetForUser(submissionID int, actor *models.User) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.
		Preload("SubParameter.MainParameter").
		Preload("FieldValues").
		Preload("Attachments").
		Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		First(&submission).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, guardViolation("Submission not found")
		}
		return nil, err
	}
	if submission.UserID != actor.UserID && actor.Role == models.RoleFaculty {
		return nil, guardViolation("You do not have access to this submission")
	}
	return &submission, nil
}

// ListForUser returns the actor's own submissions with optional filters.
func (s *SubmissionService) ListForUser(actor *models.User, status string, month, year, mainParameterID int) ([]models.Submission, error) {
	query := s.db.
		Preload("SubParameter.MainParameter").
		Preload("Reviewer").
		Where("user_id = ?", actor.UserID).
		Order("created_at DESC")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if month > 0 {
		query = query.Where("month = ?", month)
	}
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	if mainParameterID > 0 {
		query = query.
			Joins("JOIN sub_parameters sp ON sp.sub_parameter_id = submissions.sub_parameter_id").
			Where("sp.main_parameter_id = ?", mainParameterID)
	}

	var submissions []models.Submission
	err := query.Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionService) loadOwned(submissionID int, actor *models.User) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, guardViolation("Submission not found")
		}
		return nil, err
	}
	if submission.UserID != actor.UserID {
		return nil, guardViolation("Only the submission owner can modify it")
	}
	return &submission, nil
}

func removeStoredFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(config.LogWriter, "failed to remove stored file %s: %v\n", path, err)
	}
}
