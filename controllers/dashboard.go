package controllers

import (
	"net/http"
	"strconv"
	"time"

	"kpi-management-api/config"
	"kpi-management-api/models"
	"kpi-management-api/services"

	"github.com/gin-gonic/gin"
)

// periodFromQuery reads month/year query params, defaulting to the current
// period.
func periodFromQuery(c *gin.Context) (int, int) {
	now := time.Now()
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	return month, year
}

// GetFacultyScores returns the caller's per-parameter scores for one period.
// Only HOD_APPROVED and DEAN_APPROVED submissions count.
func GetFacultyScores(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	month, year := periodFromQuery(c)

	svc := services.NewScoringService(config.DB)
	summary, err := svc.FacultyScores(user.UserID, month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"month":   month,
		"year":    year,
		"summary": summary,
	})
}

// GetHodScores returns the caller's HoD scorecard: own HOD-owned KPIs plus
// capped team averages for mapped faculty KPIs.
func GetHodScores(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !user.IsHOD() && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Head of department access required"})
		return
	}
	month, year := periodFromQuery(c)

	svc := services.NewScoringService(config.DB)
	summary, err := svc.HodScores(user, month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"month":   month,
		"year":    year,
		"summary": summary,
	})
}

// GetDepartmentComparison ranks departments by average approved points.
func GetDepartmentComparison(c *gin.Context) {
	month, year := periodFromQuery(c)

	svc := services.NewScoringService(config.DB)
	departments, err := svc.DepartmentComparison(month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"month":       month,
		"year":        year,
		"departments": departments,
	})
}

// GetMainParameterBreakdown totals approved points per main parameter for one
// department and period.
func GetMainParameterBreakdown(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	month, year := periodFromQuery(c)

	departmentID, _ := strconv.Atoi(c.Query("department_id"))
	if departmentID <= 0 {
		if user.DepartmentID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "department_id is required"})
			return
		}
		departmentID = *user.DepartmentID
	}

	svc := services.NewScoringService(config.DB)
	breakdown, err := svc.MainParameterBreakdown(departmentID, month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"month":     month,
		"year":      year,
		"breakdown": breakdown,
	})
}

// GetStatusCounts returns submission counts across the seven status buckets.
// Faculty see their own counts; HoDs see their department; admins may filter
// by any user or department.
func GetStatusCounts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter := services.StatusCountFilter{}
	filter.Month, _ = strconv.Atoi(c.Query("month"))
	filter.Year, _ = strconv.Atoi(c.Query("year"))

	switch user.Role {
	case models.RoleAdmin, models.RoleDean:
		filter.UserID, _ = strconv.Atoi(c.Query("user_id"))
		filter.DepartmentID, _ = strconv.Atoi(c.Query("department_id"))
	case models.RoleHOD:
		if user.DepartmentID != nil {
			filter.DepartmentID = *user.DepartmentID
		}
	default:
		filter.UserID = user.UserID
	}

	svc := services.NewScoringService(config.DB)
	counts, err := svc.StatusCounts(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"counts":  counts,
	})
}

// GetLeaderboard ranks faculty by total approved points within a department.
func GetLeaderboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	month, year := periodFromQuery(c)

	departmentID, _ := strconv.Atoi(c.Query("department_id"))
	if departmentID <= 0 && user.DepartmentID != nil {
		departmentID = *user.DepartmentID
	}
	if departmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "department_id is required"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	svc := services.NewScoringService(config.DB)
	entries, err := svc.Leaderboard(departmentID, month, year, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"month":       month,
		"year":        year,
		"leaderboard": entries,
	})
}
