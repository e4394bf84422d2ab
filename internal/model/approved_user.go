package model

import "time"

// ApprovedUser 管理员预先批准的注册名单，自助注册必须命中该表
// swagger:model ApprovedUser
type ApprovedUser struct {
	BaseModel
	Name         string      `gorm:"size:100;not null" json:"name"`
	Email        string      `gorm:"size:120;unique;not null" json:"email"`
	Role         string      `gorm:"size:20;not null" json:"role"` // student, instructor
	DepartmentID uint        `gorm:"index;type:bigint unsigned;not null" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	ApprovedBy   *uint       `gorm:"type:bigint unsigned" json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time  `json:"approvedAt,omitempty"`
}

func (ApprovedUser) TableName() string {
	return "approved_users"
}
