package controllers

import (
	"net/http"
	"strconv"

	"kpi-management-api/config"
	"kpi-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetPendingReviews lists submissions waiting on the caller. What "waiting"
// means depends on role: SUBMITTED for first-line reviewers, HOD_APPROVED for
// deans.
func GetPendingReviews(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	svc := services.NewReviewService(config.DB)
	submissions, err := svc.PendingReviews(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// ApproveSubmission awards points and advances the submission to HOD_APPROVED.
func ApproveSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req struct {
		AwardedPoints *float64 `json:"awarded_points" binding:"required"`
		Comment       string   `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "awarded_points is required"})
		return
	}

	svc := services.NewReviewService(config.DB)
	submission, err := svc.Approve(submissionID, user, *req.AwardedPoints, req.Comment, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission approved",
		"submission": submission,
	})
}

// RejectSubmission moves the submission to REJECTED and resets its points.
func RejectSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A comment is required when rejecting"})
		return
	}

	svc := services.NewReviewService(config.DB)
	submission, err := svc.Reject(submissionID, user, req.Comment, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission rejected",
		"submission": submission,
	})
}

// RequestRevision sends the submission back to its owner for changes.
func RequestRevision(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A comment is required when requesting revision"})
		return
	}

	svc := services.NewReviewService(config.DB)
	submission, err := svc.RequestRevision(submissionID, user, req.Comment, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Revision requested",
		"submission": submission,
	})
}

// GetReviewHistory returns the append-only review trail for one submission.
func GetReviewHistory(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewReviewService(config.DB)
	reviews, err := svc.ReviewHistory(submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
	})
}
