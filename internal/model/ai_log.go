package model

import "encoding/json"

// AiCallLog 记录每一次AI调用（无论成败），仅作审计用途
// swagger:model AiCallLog
type AiCallLog struct {
	BaseModel
	UserID         uint            `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Endpoint       string          `gorm:"size:100;not null" json:"endpoint"` // ask, generate-questions, evaluate-answer
	RequestData    json.RawMessage `gorm:"type:json" json:"requestData,omitempty"`
	ResponseData   json.RawMessage `gorm:"type:json" json:"responseData,omitempty"`
	Success        bool            `gorm:"default:true" json:"success"`
	ErrorMessage   string          `gorm:"type:text" json:"errorMessage,omitempty"`
	ProcessingTime float64         `json:"processingTime"` // 秒
}

func (AiCallLog) TableName() string {
	return "ai_call_logs"
}
