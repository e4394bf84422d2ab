package model

import (
	"time"
)

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

type UserStatus string

const (
	StatusPending   UserStatus = "pending"
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
)

// swagger:model User
type User struct {
	BaseModel
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:120;unique;not null" json:"email"`
	Password     string     `gorm:"size:255;not null" json:"-"`
	Role         UserRole   `gorm:"type:enum('student','instructor','admin');default:'student'" json:"role"`
	DepartmentID uint       `gorm:"index;type:bigint unsigned;not null" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Status       UserStatus `gorm:"type:enum('pending','active','suspended');default:'pending'" json:"status"`
	LastLogin    time.Time  `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen     time.Time  `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
