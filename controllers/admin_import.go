package controllers

import (
	"net/http"
	"os"
	"strings"

	"kpi-management-api/config"
	"kpi-management-api/services"

	"github.com/gin-gonic/gin"
)

// ImportUsers bulk-creates users from an uploaded CSV. Bad rows are skipped
// and reported; they never abort the rest of the file.
func ImportUsers(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A CSV file is required"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV files are accepted"})
		return
	}

	defaultPassword := c.PostForm("default_password")
	if defaultPassword == "" {
		defaultPassword = os.Getenv("IMPORT_DEFAULT_PASSWORD")
	}
	if len(defaultPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A default password of at least 8 characters is required"})
		return
	}

	svc := services.NewImportService(config.DB)
	result, err := svc.ImportUsersCSV(file, defaultPassword)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}
