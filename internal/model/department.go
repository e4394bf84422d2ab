package model

// swagger:model Department
type Department struct {
	BaseModel
	Name        string `gorm:"size:100;unique;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Department) TableName() string {
	return "departments"
}
