package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"kpi-management-api/config"
	"kpi-management-api/services"
	"kpi-management-api/utils"

	"github.com/gin-gonic/gin"
)

// CreateSubmission returns the submission for (user, sub_parameter, month,
// year), creating a draft when none exists yet.
func CreateSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		SubParameterID int `json:"sub_parameter_id" binding:"required"`
		Month          int `json:"month" binding:"required"`
		Year           int `json:"year" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	submission, err := svc.CreateOrGet(user, req.SubParameterID, req.Month, req.Year, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// SaveDraft validates and stores field values for an editable submission.
func SaveDraft(c *gin.Context) {
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
		Values map[string]string `json:"values" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	submission, err := svc.SaveDraft(submissionID, user, req.Values, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// SubmitSubmission moves a draft into the review queue.
func SubmitSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewSubmissionService(config.DB)

	// Required file fields must be satisfied before entering review.
	existing, err := svc.GetForUser(submissionID, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	missing, err := svc.MissingRequiredFiles(existing)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if len(missing) > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Missing required attachments", "fields": missing})
		return
	}

	submission, err := svc.Submit(submissionID, user, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission sent for review",
		"submission": submission,
	})
}

// DeleteSubmission removes a draft along with its field values, attachment
// rows and stored files.
func DeleteSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	if err := svc.DeleteSubmission(submissionID, user, clientMeta(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission deleted",
	})
}

// GetSubmissions lists the caller's own submissions with optional filters.
func GetSubmissions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	mainParameterID, _ := strconv.Atoi(c.Query("main_parameter_id"))

	svc := services.NewSubmissionService(config.DB)
	submissions, err := svc.ListForUser(user, c.Query("status"), month, year, mainParameterID)
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

// GetSubmission returns one submission with its field values and attachments.
func GetSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	submission, err := svc.GetForUser(submissionID, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// UploadAttachment stores one uploaded file and its metadata row together.
func UploadAttachment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	if !utils.ValidateFileExtension(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type is not allowed"})
		return
	}
	if !utils.ValidateFileSize(header.Size) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 10MB limit"})
		return
	}

	var fieldID *int
	if raw := c.PostForm("field_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field ID"})
			return
		}
		fieldID = &parsed
	}

	svc := services.NewSubmissionService(config.DB)
	submission, err := svc.GetForUser(submissionID, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	uploadBase := os.Getenv("UPLOAD_PATH")
	if uploadBase == "" {
		uploadBase = "./uploads"
	}
	storedName := utils.StoredFilename(header.Filename)
	storedPath := utils.UploadPath(uploadBase, submission.Year, submission.Month, user.UserID, storedName)

	if err := os.MkdirAll(filepath.Dir(storedPath), os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}
	if err := c.SaveUploadedFile(header, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	attachment, err := svc.AddAttachment(submissionID, user, fieldID,
		utils.SanitizeFilename(header.Filename), storedPath, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		// Metadata row failed: remove the stored file so neither side orphans.
		os.Remove(storedPath)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attachment": attachment,
	})
}

// DeleteAttachment removes the metadata row and the physical file together.
func DeleteAttachment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	attachmentID, err := strconv.Atoi(c.Param("attachment_id"))
	if err != nil || attachmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attachment ID"})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	if err := svc.DeleteAttachment(attachmentID, user); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Attachment deleted",
	})
}
