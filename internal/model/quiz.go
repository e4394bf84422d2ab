package model

import (
	"encoding/json"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title       string  `gorm:"size:200;not null" json:"title"`
	CourseID    uint    `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Course      *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Topic       string  `gorm:"size:200;not null" json:"topic"`
	Description string  `gorm:"type:text" json:"description"`

	Questions   []QuizQuestion   `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Submissions []QuizSubmission `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID       uint            `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	QuestionType QuestionType    `gorm:"type:enum('multiple_choice','short_answer');not null" json:"questionType"`
	Question     string          `gorm:"type:text;not null" json:"question"`
	Options      json.RawMessage `gorm:"type:json" json:"options,omitempty"` // 仅选择题使用
	Answer       string          `gorm:"type:text;not null" json:"answer"`
	Explanation  string          `gorm:"type:text" json:"explanation"`
	Points       float64         `gorm:"default:1" json:"points"`
	Order        int             `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizSubmission 每个学生对同一测验只允许一次提交，
// (quiz_id, user_id) 唯一索引在存储层兜住并发重复提交
// swagger:model QuizSubmission
type QuizSubmission struct {
	BaseModel
	QuizID      uint            `gorm:"uniqueIndex:idx_submission_quiz_user;type:bigint unsigned;not null" json:"quizId"`
	UserID      uint            `gorm:"uniqueIndex:idx_submission_quiz_user;type:bigint unsigned;not null" json:"userId"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Score       float64         `gorm:"not null" json:"score"`
	MaxScore    float64         `gorm:"not null" json:"maxScore"`
	Answers     json.RawMessage `gorm:"type:json" json:"answers"` // question id -> answer text
	SubmittedAt time.Time       `json:"submittedAt"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}

// Percentage 换算成百分比得分，满分为0时返回0
func (s *QuizSubmission) Percentage() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.Score / s.MaxScore * 100
}
