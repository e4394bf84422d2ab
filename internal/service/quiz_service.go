package service

import (
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/util"
	"aru_academy_backend/pkg/logger"
	"aru_academy_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizStore 测验及提交的存储接口，由 repository.QuizRepository 实现
type QuizStore interface {
	Create(quiz *model.Quiz) error
	FindByID(id uint) (*model.Quiz, error)
	ListAll() ([]model.Quiz, error)
	ListByCourse(courseID uint) ([]model.Quiz, error)
	ListByCreator(creatorID uint) ([]model.Quiz, error)
	ListByDepartment(departmentID uint) ([]model.Quiz, error)
	Update(quiz *model.Quiz) error
	Delete(id uint) error
	CreateSubmission(s *model.QuizSubmission) error
	FindSubmissionByUserAndQuiz(userID, quizID uint) (*model.QuizSubmission, error)
	ListSubmissionsByQuiz(quizID uint) ([]model.QuizSubmission, error)
	ListSubmissionsByScore(quizID uint) ([]model.QuizSubmission, error)
	ListSubmissionsByUser(userID uint) ([]model.QuizSubmission, error)
}

// CourseFinder 课程查询接口，由 repository.CourseRepository 实现
type CourseFinder interface {
	FindByID(id uint) (*model.Course, error)
}

type QuizService struct {
	QuizRepo   QuizStore
	CourseRepo CourseFinder
	Redis      *redis.Client
}

func NewQuizService(quizRepo QuizStore, courseRepo CourseFinder, rdb *redis.Client) *QuizService {
	return &QuizService{
		QuizRepo:   quizRepo,
		CourseRepo: courseRepo,
		Redis:      rdb,
	}
}

// GetQuizzesForUser 按角色收敛可见范围：
// 管理员看全部，教师看自建课程，学生看本院系
func (s *QuizService) GetQuizzesForUser(user *model.User) ([]model.Quiz, error) {
	switch user.Role {
	case model.Admin:
		return s.QuizRepo.ListAll()
	case model.Instructor:
		return s.QuizRepo.ListByCreator(user.ID)
	default:
		return s.QuizRepo.ListByDepartment(user.DepartmentID)
	}
}

func (s *QuizService) GetQuizzesByCourse(user *model.User, courseID uint) ([]model.Quiz, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if err := checkCourseAccess(user, course); err != nil {
		return nil, err
	}
	return s.QuizRepo.ListByCourse(courseID)
}

func (s *QuizService) GetQuizByID(user *model.User, quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	course, err := s.CourseRepo.FindByID(quiz.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if err := checkCourseAccess(user, course); err != nil {
		return nil, err
	}
	return quiz, nil
}

// QuizQuestionView 学生答题视图，不含答案和解析
type QuizQuestionView struct {
	ID           uint               `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Question     string             `json:"question"`
	Options      json.RawMessage    `json:"options,omitempty"`
	Points       float64            `json:"points"`
	Order        int                `json:"order"`
}

// QuizView 外层 Questions 覆盖嵌入结构的同名字段
type QuizView struct {
	*model.Quiz
	Questions []QuizQuestionView `json:"questions"`
}

// StudentQuizView 学生提交前拿到的测验详情，答案和解析被剥离
func StudentQuizView(quiz *model.Quiz) *QuizView {
	view := &QuizView{
		Quiz:      quiz,
		Questions: make([]QuizQuestionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, QuizQuestionView{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Question:     q.Question,
			Options:      q.Options,
			Points:       q.Points,
			Order:        q.Order,
		})
	}
	return view
}

// checkCourseAccess 学生限本院系，教师限自建课程，管理员放行
func checkCourseAccess(user *model.User, course *model.Course) error {
	if user.Role == model.Student && course.DepartmentID != user.DepartmentID {
		return util.AccessDeniedError("access denied to this course")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return util.AccessDeniedError("access denied to this course")
	}
	return nil
}

type QuizQuestionInput struct {
	Type        string   `json:"type" binding:"required"`
	Question    string   `json:"question" binding:"required"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer" binding:"required"`
	Explanation string   `json:"explanation"`
	Points      float64  `json:"points"`
}

type CreateQuizServiceRequest struct {
	Title       string              `json:"title" binding:"required"`
	CourseID    uint                `json:"courseId" binding:"required"`
	Topic       string              `json:"topic" binding:"required"`
	Description string              `json:"description"`
	Questions   []QuizQuestionInput `json:"questions" binding:"required,min=1"`
}

func (s *QuizService) CreateQuiz(user *model.User, req *CreateQuizServiceRequest) (*model.Quiz, error) {
	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot create quizzes")
	}

	course, err := s.CourseRepo.FindByID(req.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.AccessDeniedError("access denied to this course")
	}

	quiz := &model.Quiz{
		Title:       req.Title,
		CourseID:    req.CourseID,
		Topic:       req.Topic,
		Description: req.Description,
	}

	for i, q := range req.Questions {
		if q.Type != string(model.MultipleChoice) && q.Type != string(model.ShortAnswer) {
			return nil, util.ValidationErrorf("invalid question type: %s", q.Type)
		}
		points := q.Points
		if points <= 0 {
			points = 1
		}
		var options json.RawMessage
		if len(q.Options) > 0 {
			options, _ = json.Marshal(q.Options)
		}
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			QuestionType: model.QuestionType(q.Type),
			Question:     q.Question,
			Options:      options,
			Answer:       q.Answer,
			Explanation:  q.Explanation,
			Points:       points,
			Order:        i,
		})
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Topic       *string `json:"topic"`
	Description *string `json:"description"`
}

func (s *QuizService) UpdateQuiz(user *model.User, quizID uint, req *UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	course, err := s.CourseRepo.FindByID(quiz.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot modify quizzes")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.ErrAccessDenied
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Topic != nil {
		quiz.Topic = *req.Topic
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(user *model.User, quizID uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return util.ErrQuizNotFound
	}
	course, err := s.CourseRepo.FindByID(quiz.CourseID)
	if err != nil {
		return util.ErrCourseNotFound
	}
	if user.Role == model.Student {
		return util.AccessDeniedError("students cannot delete quizzes")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return util.ErrAccessDenied
	}
	return s.QuizRepo.Delete(quizID)
}

// SubmitQuiz 评分并落库，(quiz,user)唯一索引兜住并发重复提交
// 仅学生可以提交，教师和管理员的测试提交会污染成绩统计
func (s *QuizService) SubmitQuiz(user *model.User, quizID uint, answers map[string]string) (*model.QuizSubmission, error) {
	if user.Role != model.Student {
		return nil, util.AccessDeniedError("only students can submit quizzes")
	}

	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}

	course, err := s.CourseRepo.FindByID(quiz.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if course.DepartmentID != user.DepartmentID {
		return nil, util.AccessDeniedError("access denied to this quiz")
	}

	if _, err := s.QuizRepo.FindSubmissionByUserAndQuiz(user.ID, quizID); err == nil {
		monitoring.QuizSubmissionCounter.WithLabelValues("duplicate").Inc()
		return nil, util.ErrQuizAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	score, maxScore := ScoreQuiz(quiz.Questions, answers)

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	submission := &model.QuizSubmission{
		QuizID:      quizID,
		UserID:      user.ID,
		Score:       score,
		MaxScore:    maxScore,
		Answers:     answersJSON,
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.QuizRepo.CreateSubmission(submission); err != nil {
		// 并发下先查后插仍可能撞唯一索引
		if strings.Contains(err.Error(), "Duplicate entry") {
			monitoring.QuizSubmissionCounter.WithLabelValues("duplicate").Inc()
			return nil, util.ErrQuizAlreadySubmitted
		}
		return nil, err
	}

	monitoring.QuizSubmissionCounter.WithLabelValues("accepted").Inc()
	s.invalidateStatistics(quizID)

	return submission, nil
}

// ScoreQuiz 逐题评分：
// 选择题精确匹配；简答题忽略大小写和首尾空白精确匹配得满分，
// 词集相似度大于0.7得一半分；未作答不得分但计入满分
func ScoreQuiz(questions []model.QuizQuestion, answers map[string]string) (score, maxScore float64) {
	for _, question := range questions {
		maxScore += question.Points

		userAnswer, ok := answers[fmt.Sprintf("%d", question.ID)]
		if !ok {
			continue
		}

		switch question.QuestionType {
		case model.MultipleChoice:
			if userAnswer == question.Answer {
				score += question.Points
			}
		case model.ShortAnswer:
			if strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.Answer)) {
				score += question.Points
			} else if TextSimilarity(userAnswer, question.Answer) > 0.7 {
				score += question.Points * 0.5
			}
		}
	}
	return score, maxScore
}

// TextSimilarity 词集Jaccard相似度，两边都为空视为完全相同
func TextSimilarity(text1, text2 string) float64 {
	words1 := wordSet(text1)
	words2 := wordSet(text2)

	if len(words1) == 0 && len(words2) == 0 {
		return 1.0
	}
	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range words1 {
		if words2[w] {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection

	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

func (s *QuizService) GetUserQuizHistory(userID uint) ([]model.QuizSubmission, error) {
	return s.QuizRepo.ListSubmissionsByUser(userID)
}

// GetQuizResults 教师/管理员查看测验全部提交，按得分降序
func (s *QuizService) GetQuizResults(user *model.User, quizID uint) ([]model.QuizSubmission, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	course, err := s.CourseRepo.FindByID(quiz.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot view quiz results")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.ErrAccessDenied
	}

	return s.QuizRepo.ListSubmissionsByScore(quizID)
}

type QuizStatistics struct {
	TotalSubmissions int     `json:"totalSubmissions"`
	AverageScore     float64 `json:"averageScore"`
	HighestScore     float64 `json:"highestScore"`
	LowestScore      float64 `json:"lowestScore"`
}

const statisticsCacheTTL = 5 * time.Minute

// GetQuizStatistics 统计结果缓存在Redis，新提交时失效
func (s *QuizService) GetQuizStatistics(user *model.User, quizID uint) (*QuizStatistics, error) {
	if _, err := s.GetQuizResults(user, quizID); err != nil {
		return nil, err
	}

	ctx := context.Background()
	cacheKey := statisticsCacheKey(quizID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats QuizStatistics
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	submissions, err := s.QuizRepo.ListSubmissionsByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	stats := computeStatistics(submissions)

	if s.Redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, statisticsCacheTTL).Err(); err != nil {
				logger.Log.Warn("Failed to cache quiz statistics", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func computeStatistics(submissions []model.QuizSubmission) *QuizStatistics {
	stats := &QuizStatistics{TotalSubmissions: len(submissions)}
	if len(submissions) == 0 {
		return stats
	}

	total := 0.0
	stats.HighestScore = submissions[0].Score
	stats.LowestScore = submissions[0].Score
	for _, sub := range submissions {
		total += sub.Score
		if sub.Score > stats.HighestScore {
			stats.HighestScore = sub.Score
		}
		if sub.Score < stats.LowestScore {
			stats.LowestScore = sub.Score
		}
	}
	stats.AverageScore = total / float64(len(submissions))
	return stats
}

func statisticsCacheKey(quizID uint) string {
	return fmt.Sprintf("quiz:stats:%d", quizID)
}

func (s *QuizService) invalidateStatistics(quizID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), statisticsCacheKey(quizID)).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate quiz statistics cache",
			zap.Uint("quiz_id", quizID), zap.Error(err))
	}
}
