package repository

import (
	"aru_academy_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Course").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.`order` asc, quiz_questions.id asc")
		}).
		First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) ListByCourse(courseID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("course_id = ?", courseID).Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListByCreator(creatorID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.
		Joins("JOIN courses ON courses.id = quizzes.course_id").
		Where("courses.created_by = ?", creatorID).
		Order("quizzes.created_at desc").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListByDepartment(departmentID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.
		Joins("JOIN courses ON courses.id = quizzes.course_id").
		Where("courses.department_id = ?", departmentID).
		Order("quizzes.created_at desc").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Quiz{}, id).Error
}

func (r *QuizRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Quiz{}).Count(&count).Error
	return count, err
}

// Submission related methods

func (r *QuizRepository) CreateSubmission(s *model.QuizSubmission) error {
	return r.DB.Create(s).Error
}

func (r *QuizRepository) FindSubmissionByUserAndQuiz(userID, quizID uint) (*model.QuizSubmission, error) {
	var s model.QuizSubmission
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *QuizRepository) ListSubmissionsByQuiz(quizID uint) ([]model.QuizSubmission, error) {
	var ss []model.QuizSubmission
	err := r.DB.Preload("User").Where("quiz_id = ?", quizID).
		Order("submitted_at desc").Find(&ss).Error
	return ss, err
}

// ListSubmissionsByScore 教师查看成绩单用，按得分降序
func (r *QuizRepository) ListSubmissionsByScore(quizID uint) ([]model.QuizSubmission, error) {
	var ss []model.QuizSubmission
	err := r.DB.Preload("User").Where("quiz_id = ?", quizID).
		Order("score desc").Find(&ss).Error
	return ss, err
}

func (r *QuizRepository) ListSubmissionsByUser(userID uint) ([]model.QuizSubmission, error) {
	var ss []model.QuizSubmission
	err := r.DB.Where("user_id = ?", userID).Order("submitted_at desc").Find(&ss).Error
	return ss, err
}

func (r *QuizRepository) CountSubmissions() (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizSubmission{}).Count(&count).Error
	return count, err
}

func (r *QuizRepository) AverageScorePercent() (float64, error) {
	type row struct {
		Avg float64
	}
	var rw row
	err := r.DB.Model(&model.QuizSubmission{}).
		Select("COALESCE(AVG(score / NULLIF(max_score, 0) * 100), 0) as avg").
		Scan(&rw).Error
	return rw.Avg, err
}
