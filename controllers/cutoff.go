package controllers

import (
	"net/http"
	"strconv"
	"time"

	"kpi-management-api/config"
	"kpi-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetCurrentWindow resolves the cutoff window for the requested period and
// reports whether the caller's role deadline has passed.
func GetCurrentWindow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	now := time.Now()
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))

	svc := services.NewCutoffService(config.DB)
	window, err := svc.ResolveWindow(month, year, user.DepartmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	within, deadlineField := services.CheckDeadline(window, user.Role, now)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"month":           month,
		"year":            year,
		"window":          window,
		"within_deadline": within || user.CanOverrideDeadlines,
		"deadline_field":  deadlineField,
		"can_override":    user.CanOverrideDeadlines,
	})
}
