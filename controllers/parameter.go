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

// GetMainParameters lists active main parameters for the caller's role,
// with their sub-parameters.
func GetMainParameters(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	roleOwner := models.RoleOwnerFaculty
	if user.IsHOD() {
		roleOwner = models.RoleOwnerHOD
	}
	if override := c.Query("role_owner"); override != "" && user.IsAdmin() {
		roleOwner = override
	}

	svc := services.NewKPIService(config.DB)
	parameters, err := svc.ListMainParameters(roleOwner)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"parameters": parameters,
	})
}

// GetEnabledSubParameters lists the sub-parameters open for entry in the
// requested period, honoring per-window enablement.
func GetEnabledSubParameters(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	now := time.Now()
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))

	roleOwner := models.RoleOwnerFaculty
	if user.IsHOD() {
		roleOwner = models.RoleOwnerHOD
	}

	svc := services.NewKPIService(config.DB)
	subParams, err := svc.EnabledSubParameters(month, year, user.DepartmentID, roleOwner)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"month":          month,
		"year":           year,
		"sub_parameters": subParams,
	})
}

// GetFormDefinition returns the dynamic form template for one sub-parameter
// so clients can render its fields.
func GetFormDefinition(c *gin.Context) {
	subParameterID, err := strconv.Atoi(c.Param("id"))
	if err != nil || subParameterID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sub-parameter ID"})
		return
	}

	svc := services.NewFormService(config.DB)
	template, err := svc.GetTemplate(subParameterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if template == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No form is defined for this sub-parameter"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"template": template,
	})
}
