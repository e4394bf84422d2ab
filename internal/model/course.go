package model

// swagger:model Course
type Course struct {
	BaseModel
	Title        string      `gorm:"size:200;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	DepartmentID uint        `gorm:"index;type:bigint unsigned;not null" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	CreatedBy    uint        `gorm:"index;type:bigint unsigned;not null" json:"createdBy"`
	Creator      *User       `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`

	Resources []Resource `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
	Quizzes   []Quiz     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"quizzes,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
