package model

import "time"

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// Progress 每个学生针对单个资源的完成情况
// swagger:model Progress
type Progress struct {
	BaseModel
	UserID               uint           `gorm:"uniqueIndex:idx_progress_user_resource;type:bigint unsigned;not null" json:"userId"`
	ResourceID           uint           `gorm:"uniqueIndex:idx_progress_user_resource;type:bigint unsigned;not null" json:"resourceId"`
	Status               ProgressStatus `gorm:"type:enum('not_started','in_progress','completed');default:'not_started'" json:"status"`
	CompletionPercentage float64        `gorm:"default:0" json:"completionPercentage"`
	LastAccessedAt       *time.Time     `json:"lastAccessedAt,omitempty"`
}

func (Progress) TableName() string {
	return "progress"
}
