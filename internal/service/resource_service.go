package service

import (
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/util"
	"aru_academy_backend/pkg/logger"
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ResourceService struct {
	ResourceRepo *repository.ResourceRepository
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	Storage      *StorageService
}

func NewResourceService(
	resourceRepo *repository.ResourceRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	storage *StorageService,
) *ResourceService {
	return &ResourceService{
		ResourceRepo: resourceRepo,
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		Storage:      storage,
	}
}

func (s *ResourceService) GetResourcesForUser(user *model.User) ([]model.Resource, error) {
	switch user.Role {
	case model.Admin:
		var resources []model.Resource
		err := s.ResourceRepo.DB.Order("created_at desc").Find(&resources).Error
		return resources, err
	case model.Instructor:
		var resources []model.Resource
		err := s.ResourceRepo.DB.
			Joins("JOIN courses ON courses.id = resources.course_id").
			Where("courses.created_by = ?", user.ID).
			Order("resources.created_at desc").
			Find(&resources).Error
		return resources, err
	default:
		var resources []model.Resource
		err := s.ResourceRepo.DB.
			Joins("JOIN courses ON courses.id = resources.course_id").
			Where("courses.department_id = ?", user.DepartmentID).
			Order("resources.created_at desc").
			Find(&resources).Error
		return resources, err
	}
}

func (s *ResourceService) GetResourcesByCourse(user *model.User, courseID uint) ([]model.Resource, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if err := checkCourseAccess(user, course); err != nil {
		return nil, err
	}
	return s.ResourceRepo.ListByCourse(courseID)
}

func (s *ResourceService) GetResourceByID(user *model.User, resourceID uint) (*model.Resource, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		return nil, util.ErrResourceNotFound
	}
	course, err := s.CourseRepo.FindByID(resource.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if err := checkCourseAccess(user, course); err != nil {
		return nil, err
	}
	return resource, nil
}

type CreateResourceRequest struct {
	Title         string `json:"title" binding:"required"`
	Type          string `json:"type" binding:"required"`
	CourseID      uint   `json:"courseId" binding:"required"`
	FilePathOrURL string `json:"filePathOrUrl"`
	TextContent   string `json:"textContent"`
	Description   string `json:"description"`
}

func (s *ResourceService) CreateResource(user *model.User, req *CreateResourceRequest) (*model.Resource, error) {
	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot create resources")
	}

	course, err := s.CourseRepo.FindByID(req.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.AccessDeniedError("access denied to this course")
	}

	resourceType := model.ResourceType(req.Type)
	switch resourceType {
	case model.ResourcePDF, model.ResourceText, model.ResourceLink, model.ResourceVideo:
	default:
		return nil, util.ValidationErrorf("invalid resource type: %s", req.Type)
	}

	resource := &model.Resource{
		Title:         req.Title,
		Type:          resourceType,
		CourseID:      req.CourseID,
		FilePathOrURL: req.FilePathOrURL,
		TextContent:   req.TextContent,
		Description:   req.Description,
		UploaderID:    user.ID,
	}
	if err := s.ResourceRepo.Create(resource); err != nil {
		return nil, err
	}
	return resource, nil
}

// UploadResourceFile 上传文件并创建资源，视频另外探测时长和格式
func (s *ResourceService) UploadResourceFile(ctx context.Context, user *model.User, req *CreateResourceRequest, fileHeader *multipart.FileHeader) (*model.Resource, error) {
	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot upload resources")
	}

	course, err := s.CourseRepo.FindByID(req.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.AccessDeniedError("access denied to this course")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	resourceType := model.ResourceType(req.Type)
	if resourceType == model.ResourcePDF && ext != ".pdf" {
		return nil, util.ValidationError("only PDF files are accepted for pdf resources")
	}
	if resourceType == model.ResourceVideo && !allowedVideoExt(ext) {
		return nil, util.ValidationErrorf("unsupported video format: %s", ext)
	}

	// 按文件内容嗅探类型，扩展名改名绕不过去
	var allowed []string
	switch resourceType {
	case model.ResourcePDF:
		allowed = []string{util.MimePDF}
	case model.ResourceVideo:
		allowed = []string{util.MimeVideo, "application/octet-stream"}
	}
	var detectedType string
	if len(allowed) > 0 {
		detectedType, err = util.ValidateMimeType(file, allowed)
		if err != nil {
			return nil, util.ValidationErrorf("file content does not match resource type: %v", err)
		}
		// 嗅探消耗了开头512字节，上传前回到文件开头
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	objectName := ObjectKey(req.CourseID, util.GenerateRandomString(16)+ext)

	url, err := s.Storage.Upload(ctx, objectName, file, fileHeader.Size, contentType)
	if err != nil {
		return nil, err
	}

	resource := &model.Resource{
		Title:         req.Title,
		Type:          resourceType,
		CourseID:      req.CourseID,
		FilePathOrURL: url,
		Description:   req.Description,
		UploaderID:    user.ID,
		Size:          fileHeader.Size,
		Format:        strings.TrimPrefix(ext, "."),
	}

	// 本地存储的视频探测元数据，失败不阻塞上传
	if resourceType == model.ResourceVideo || util.IsVideo(detectedType) {
		if local, ok := s.Storage.Provider.(*LocalStorageProvider); ok {
			localPath := filepath.Join(local.Config.LocalPath, objectName)
			if info, probeErr := util.GetVideoInfo(localPath); probeErr == nil {
				resource.Duration = info.Duration
				resource.Format = info.Format
				resource.Size = info.Size
			} else {
				logger.Log.Warn("Failed to probe video metadata",
					zap.String("path", localPath), zap.Error(probeErr))
			}
		}
	}

	if err := s.ResourceRepo.Create(resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func allowedVideoExt(ext string) bool {
	for _, allowed := range util.AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

type UpdateResourceRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	TextContent *string `json:"textContent"`
}

func (s *ResourceService) UpdateResource(user *model.User, resourceID uint, req *UpdateResourceRequest) (*model.Resource, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		return nil, util.ErrResourceNotFound
	}
	course, err := s.CourseRepo.FindByID(resource.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot modify resources")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.ErrAccessDenied
	}

	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.Description != nil {
		resource.Description = *req.Description
	}
	// 仅文本资源允许改写正文
	if req.TextContent != nil && resource.Type == model.ResourceText {
		resource.TextContent = *req.TextContent
	}

	if err := s.ResourceRepo.Update(resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *ResourceService) DeleteResource(ctx context.Context, user *model.User, resourceID uint) error {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		return util.ErrResourceNotFound
	}
	course, err := s.CourseRepo.FindByID(resource.CourseID)
	if err != nil {
		return util.ErrCourseNotFound
	}

	if user.Role == model.Student {
		return util.AccessDeniedError("students cannot delete resources")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return util.ErrAccessDenied
	}

	if err := s.ResourceRepo.Delete(resourceID); err != nil {
		return err
	}

	// 尽力清理存储中的文件，对象名按存储类型从访问地址还原
	if resource.Type != model.ResourceLink && resource.FilePathOrURL != "" {
		if delErr := s.Storage.Delete(ctx, s.Storage.KeyFromURL(resource.FilePathOrURL)); delErr != nil {
			logger.Log.Warn("Failed to delete resource file",
				zap.String("path", resource.FilePathOrURL), zap.Error(delErr))
		}
	}
	return nil
}

type UpdateProgressRequest struct {
	Status               string   `json:"status"`
	CompletionPercentage *float64 `json:"completionPercentage"`
}

// UpdateProgress 学生更新自己的资源进度，记录不存在时创建
func (s *ResourceService) UpdateProgress(user *model.User, resourceID uint, req *UpdateProgressRequest) (*model.Progress, error) {
	if _, err := s.GetResourceByID(user, resourceID); err != nil {
		return nil, err
	}

	progress, err := s.ProgressRepo.FindByUserAndResource(user.ID, resourceID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		progress = &model.Progress{
			UserID:     user.ID,
			ResourceID: resourceID,
			Status:     model.ProgressInProgress,
		}
	}

	if req.Status != "" {
		switch model.ProgressStatus(req.Status) {
		case model.ProgressNotStarted, model.ProgressInProgress, model.ProgressCompleted:
			progress.Status = model.ProgressStatus(req.Status)
		default:
			return nil, util.ValidationErrorf("invalid progress status: %s", req.Status)
		}
	}
	if req.CompletionPercentage != nil {
		if *req.CompletionPercentage < 0 || *req.CompletionPercentage > 100 {
			return nil, util.ValidationError("completion percentage must be between 0 and 100")
		}
		progress.CompletionPercentage = *req.CompletionPercentage
	}

	now := time.Now().UTC()
	progress.LastAccessedAt = &now

	if err := s.ProgressRepo.Upsert(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ResourceService) GetUserProgress(userID uint) ([]model.Progress, error) {
	return s.ProgressRepo.ListByUser(userID)
}

// GetResourceProgress 教师/管理员查看单个资源的全员进度
func (s *ResourceService) GetResourceProgress(user *model.User, resourceID uint) ([]model.Progress, error) {
	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot view other progress records")
	}
	if _, err := s.GetResourceByID(user, resourceID); err != nil {
		return nil, err
	}

	var ps []model.Progress
	err := s.ProgressRepo.DB.Where("resource_id = ?", resourceID).Find(&ps).Error
	return ps, err
}
