package model

type ResourceType string

const (
	ResourcePDF   ResourceType = "pdf"
	ResourceText  ResourceType = "text"
	ResourceLink  ResourceType = "link"
	ResourceVideo ResourceType = "video"
)

// Resource 课程下的学习资源（文件、文本、外链）
// swagger:model Resource
type Resource struct {
	BaseModel
	Title         string       `gorm:"size:200;not null" json:"title"`
	Type          ResourceType `gorm:"type:enum('pdf','text','link','video');not null" json:"type"`
	CourseID      uint         `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Course        *Course      `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	FilePathOrURL string       `gorm:"size:500" json:"filePathOrUrl"`
	TextContent   string       `gorm:"type:text" json:"textContent,omitempty"`
	Description   string       `gorm:"type:text" json:"description"`
	UploaderID    uint         `gorm:"index;type:bigint unsigned" json:"uploaderId"`
	Duration      float64      `gorm:"column:duration;default:0" json:"duration"` // 视频时长（秒）
	Size          int64        `gorm:"column:size;default:0" json:"size"`         // 文件大小（字节）
	Format        string       `gorm:"size:50" json:"format"`
}

func (Resource) TableName() string {
	return "resources"
}
