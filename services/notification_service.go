package services

import (
	"fmt"
	"log"

	"kpi-management-api/config"
	"kpi-management-api/models"

	"gorm.io/gorm"
)

// NotificationService maps committed state transitions to notification
// recipients. It is invoked by the workflow services after their transaction
// commits, never before, so a transition that fails validation never notifies.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db}
}

type pendingNotification struct {
	recipient models.User
	title     string
	message   string
	link      string
	kind      string
}

// NotifyTransition fires the notifications for one committed transition.
// Delivery is best effort: failures are logged, never propagated, since the
// state change has already committed.
func (s *NotificationService) NotifyTransition(submission *models.Submission, newStatus string) {
	notifications, err := s.resolveTransition(submission, newStatus)
	if err != nil {
		log.Printf("notification resolution failed for submission %d: %v", submission.SubmissionID, err)
		return
	}

	for _, n := range notifications {
		row := models.Notification{
			RecipientID:         n.recipient.UserID,
			Title:               n.title,
			Message:             n.message,
			Link:                n.link,
			Type:                n.kind,
			RelatedSubmissionID: &submission.SubmissionID,
		}
		if err := s.db.Create(&row).Error; err != nil {
			log.Printf("failed to store notification for user %d: %v", n.recipient.UserID, err)
			continue
		}
		sendMailSafe([]string{n.recipient.Email}, n.title, buildNotificationEmailHTML(n.recipient.FullName, n.title, n.message))
	}
}

// resolveTransition builds the recipient set for a transition. A missing
// recipient (no HoD in the department, no user behind the approver email) is
// not an error: the transition simply produces no notification.
func (s *NotificationService) resolveTransition(submission *models.Submission, newStatus string) ([]pendingNotification, error) {
	owner, err := s.loadUser(submission.UserID)
	if err != nil {
		return nil, err
	}
	subParam, err := s.loadSubParameter(submission.SubParameterID)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("/submissions/%d", submission.SubmissionID)
	period := fmt.Sprintf("%s %d", models.MonthName(submission.Month), submission.Year)

	switch newStatus {
	case models.StatusSubmitted:
		reviewer, err := s.resolveFirstLineReviewer(owner, subParam)
		if err != nil || reviewer == nil {
			return nil, err
		}
		return []pendingNotification{{
			recipient: *reviewer,
			title:     "New Submission for Review",
			message:   fmt.Sprintf("%s submitted a KPI entry for %s (%s)", owner.FullName, subParam.Name, period),
			link:      fmt.Sprintf("/reviews/%d", submission.SubmissionID),
			kind:      "info",
		}}, nil

	case models.StatusNeedsRevision:
		return []pendingNotification{{
			recipient: *owner,
			title:     "Revision Requested",
			message:   fmt.Sprintf("Your submission for %s needs revision. Comment: %s", subParam.Name, submission.ReviewComment),
			link:      link,
			kind:      "warning",
		}}, nil

	case models.StatusHodApproved:
		if owner.DepartmentID == nil {
			return nil, nil
		}
		deans, err := s.departmentDeans(*owner.DepartmentID)
		if err != nil {
			return nil, err
		}
		notifications := make([]pendingNotification, 0, len(deans))
		for _, dean := range deans {
			notifications = append(notifications, pendingNotification{
				recipient: dean,
				title:     "Submission Approved by HoD",
				message:   fmt.Sprintf("%s's submission for %s (%s) has been approved by HoD with %g points", owner.FullName, subParam.Name, period, submission.AwardedPoints),
				link:      "/dean/pending",
				kind:      "info",
			})
		}
		return notifications, nil

	case models.StatusDeanApproved:
		notifications := []pendingNotification{{
			recipient: *owner,
			title:     "Final Approval Received",
			message:   fmt.Sprintf("Your submission for %s has been given final approval by Dean", subParam.Name),
			link:      link,
			kind:      "success",
		}}
		if owner.DepartmentID != nil {
			if hod, err := s.departmentHOD(*owner.DepartmentID); err == nil && hod != nil && hod.UserID != owner.UserID {
				notifications = append(notifications, pendingNotification{
					recipient: *hod,
					title:     "Final Approval Received",
					message:   fmt.Sprintf("%s's submission for %s has been given final approval", owner.FullName, subParam.Name),
					link:      link,
					kind:      "success",
				})
			}
		}
		return notifications, nil

	case models.StatusRejected:
		return []pendingNotification{{
			recipient: *owner,
			title:     "Submission Rejected",
			message:   fmt.Sprintf("Your submission for %s has been rejected. Comment: %s", subParam.Name, submission.ReviewComment),
			link:      link,
			kind:      "error",
		}}, nil
	}

	// DRAFT and unknown statuses never notify.
	return nil, nil
}

// resolveFirstLineReviewer finds who reviews a freshly submitted entry based
// on the sub-parameter's routing.
func (s *NotificationService) resolveFirstLineReviewer(owner *models.User, subParam *models.SubParameter) (*models.User, error) {
	switch subParam.ApprovalRouting {
	case models.RoutingHOD:
		if owner.DepartmentID == nil {
			return nil, nil
		}
		return s.departmentHOD(*owner.DepartmentID)
	case models.RoutingOther:
		if subParam.OtherApproverEmail == nil || *subParam.OtherApproverEmail == "" {
			return nil, nil
		}
		var approver models.User
		err := s.db.Where("email = ? AND is_active = ?", *subParam.OtherApproverEmail, true).First(&approver).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, err
		}
		return &approver, nil
	}
	return nil, nil
}

// departmentHOD returns the department's current active HoD, or nil.
func (s *NotificationService) departmentHOD(departmentID int) (*models.User, error) {
	var hod models.User
	err := s.db.
		Where("department_id = ? AND role = ? AND is_active = ?", departmentID, models.RoleHOD, true).
		Order("user_id ASC").
		First(&hod).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &hod, nil
}

// departmentDeans returns every active Dean whose managed-department set
// includes the given department.
func (s *NotificationService) departmentDeans(departmentID int) ([]models.User, error) {
	var deans []models.User
	err := s.db.
		Joins("JOIN dean_departments dd ON dd.user_id = users.user_id").
		Where("dd.department_id = ? AND users.role = ? AND users.is_active = ?", departmentID, models.RoleDean, true).
		Order("users.user_id ASC").
		Find(&deans).Error
	return deans, err
}

func (s *NotificationService) loadUser(userID int) (*models.User, error) {
	var user models.User
	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *NotificationService) loadSubParameter(subParameterID int) (*models.SubParameter, error) {
	var subParam models.SubParameter
	if err := s.db.Where("sub_parameter_id = ?", subParameterID).First(&subParam).Error; err != nil {
		return nil, err
	}
	return &subParam, nil
}

// ListForUser returns the recipient's notifications, newest first.
func (s *NotificationService) ListForUser(userID int, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.db.Where("recipient_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the recipient.
func (s *NotificationService) UnreadCount(userID int) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification as read. Only the recipient may do so.
func (s *NotificationService) MarkRead(notificationID, userID int) error {
	result := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND recipient_id = ?", notificationID, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return guardViolation("Notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification for the recipient as read.
func (s *NotificationService) MarkAllRead(userID int) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

// sendMailSafe attempts email delivery without ever failing the caller.
func sendMailSafe(to []string, subject, html string) {
	if err := config.SendMail(to, subject, html); err != nil {
		log.Printf("email delivery skipped (%s): %v", subject, err)
	}
}

func buildNotificationEmailHTML(recipientName, subject, message string) string {
	return fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p><strong>%s</strong></p>
<p>%s</p>
<p>This is an automated message from the KPI Management System.</p>
</body></html>`, recipientName, subject, message)
}
