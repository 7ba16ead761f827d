package controllers

import (
	"net/http"
	"strconv"

	"kpi-management-api/config"
	"kpi-management-api/models"
	"kpi-management-api/services"

	"github.com/gin-gonic/gin"
)

// DeanBulkApprove finalizes every HOD_APPROVED submission for one faculty
// member in one period as a single atomic batch.
func DeanBulkApprove(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		FacultyID int    `json:"faculty_id" binding:"required"`
		Month     int    `json:"month" binding:"required"`
		Year      int    `json:"year" binding:"required"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "faculty_id, month and year are required"})
		return
	}

	svc := services.NewReviewService(config.DB)
	approval, err := svc.DeanBulkApprove(req.FacultyID, req.Month, req.Year, user, req.Comment, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "All eligible submissions approved",
		"approval": approval,
	})
}

// GetDeanPendingFaculty groups the dean's HOD_APPROVED queue by faculty
// member so the UI can offer one bulk approval per person per period.
func GetDeanPendingFaculty(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))

	svc := services.NewReviewService(config.DB)
	submissions, err := svc.PendingReviews(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type facultyGroup struct {
		Faculty     *models.User        `json:"faculty"`
		Month       int                 `json:"month"`
		Year        int                 `json:"year"`
		Count       int                 `json:"count"`
		TotalPoints float64             `json:"total_points"`
		Submissions []models.Submission `json:"submissions"`
	}

	groups := make(map[string]*facultyGroup)
	order := []string{}
	for _, sub := range submissions {
		if month > 0 && sub.Month != month {
			continue
		}
		if year > 0 && sub.Year != year {
			continue
		}
		key := strconv.Itoa(sub.UserID) + "/" + strconv.Itoa(sub.Month) + "/" + strconv.Itoa(sub.Year)
		group, exists := groups[key]
		if !exists {
			group = &facultyGroup{Faculty: sub.User, Month: sub.Month, Year: sub.Year}
			groups[key] = group
			order = append(order, key)
		}
		group.Count++
		group.TotalPoints += sub.AwardedPoints
		group.Submissions = append(group.Submissions, sub)
	}

	result := make([]*facultyGroup, 0, len(order))
	for _, key := range order {
		result = append(result, groups[key])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pending": result,
		"total":   len(result),
	})
}
