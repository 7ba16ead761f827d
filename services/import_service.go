package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"kpi-management-api/config"
	"kpi-management-api/models"
	"kpi-management-api/utils"

	"gorm.io/gorm"
)

// ImportService handles bulk user imports. A bad row is skipped and counted,
// never aborts the batch, and the result reports both created and error
// counts so a partial run cannot masquerade as a clean one.
type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	if db == nil {
		db = config.DB
	}
	return &ImportService{db: db}
}

// ImportResult summarizes one bulk run.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

var userImportColumns = []string{"email", "full_name", "role"}

// ImportUsersCSV reads rows of (email, full_name, role, department_code,
// can_override_deadlines) and creates the missing users. Existing emails are
// skipped. Each created user gets the provided default password, hashed.
func (s *ImportService) ImportUsersCSV(r io.Reader, defaultPassword string) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read import header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range userImportColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("import file is missing the %s column", required)
		}
	}

	hashed, err := utils.HashPassword(defaultPassword)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		if err := s.importUserRow(row, columns, hashed); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

func (s *ImportService) importUserRow(row []string, columns map[string]int, hashedPassword string) error {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return utils.SanitizeInput(row[idx])
	}

	email := cell("email")
	if email == "" || !utils.ValidateEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}

	role := strings.ToUpper(cell("role"))
	switch role {
	case models.RoleAdmin, models.RoleFaculty, models.RoleHOD, models.RoleDean:
	default:
		return fmt.Errorf("unknown role %q", cell("role"))
	}

	fullName := cell("full_name")
	if fullName == "" {
		return fmt.Errorf("full_name is required")
	}

	var existing int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("email %s already exists", email)
	}

	user := models.User{
		Email:                email,
		FullName:             fullName,
		Role:                 role,
		Password:             hashedPassword,
		IsActive:             true,
		CanOverrideDeadlines: strings.EqualFold(cell("can_override_deadlines"), "true"),
	}

	if code := cell("department_code"); code != "" {
		var dept models.Department
		if err := s.db.Where("code = ?", code).First(&dept).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("unknown department code %q", code)
			}
			return err
		}
		user.DepartmentID = &dept.DepartmentID
	}

	return s.db.Create(&user).Error
}
