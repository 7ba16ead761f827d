package models

import (
	"time"
)

type User struct {
	UserID               int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email                string     `gorm:"column:email;unique" json:"email"`
	Password             string     `gorm:"column:password" json:"-"`
	FullName             string     `gorm:"column:full_name" json:"full_name"`
	Role                 string     `gorm:"column:role" json:"role"`
	DepartmentID         *int       `gorm:"column:department_id" json:"department_id,omitempty"`
	Phone                string     `gorm:"column:phone" json:"phone,omitempty"`
	CanOverrideDeadlines bool       `gorm:"column:can_override_deadlines" json:"can_override_deadlines"`
	IsActive             bool       `gorm:"column:is_active" json:"is_active"`
	LastLogin            *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Department      *Department  `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	DeanDepartments []Department `gorm:"many2many:dean_departments;foreignKey:UserID;joinForeignKey:user_id;references:DepartmentID;joinReferences:department_id" json:"dean_departments,omitempty"`
}

type Department struct {
	DepartmentID int       `gorm:"primaryKey;column:department_id" json:"department_id"`
	Name         string    `gorm:"column:name;unique" json:"name"`
	Code         string    `gorm:"column:code;unique" json:"code"`
	Description  string    `gorm:"column:description" json:"description,omitempty"`
	IsActive     bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Department) TableName() string {
	return "departments"
}

func (u *User) IsHOD() bool {
	return u.Role == RoleHOD
}

func (u *User) IsDean() bool {
	return u.Role == RoleDean
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
