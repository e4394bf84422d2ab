package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockQuizStore 实现 QuizStore
type MockQuizStore struct {
	mock.Mock
}

func (m *MockQuizStore) Create(quiz *model.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizStore) FindByID(id uint) (*model.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

func (m *MockQuizStore) ListAll() ([]model.Quiz, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Quiz), args.Error(1)
}

func (m *MockQuizStore) ListByCourse(courseID uint) ([]model.Quiz, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Quiz), args.Error(1)
}

func (m *MockQuizStore) ListByCreator(creatorID uint) ([]model.Quiz, error) {
	args := m.Called(creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Quiz), args.Error(1)
}

func (m *MockQuizStore) ListByDepartment(departmentID uint) ([]model.Quiz, error) {
	args := m.Called(departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Quiz), args.Error(1)
}

func (m *MockQuizStore) Update(quiz *model.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizStore) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuizStore) CreateSubmission(s *model.QuizSubmission) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockQuizStore) FindSubmissionByUserAndQuiz(userID, quizID uint) (*model.QuizSubmission, error) {
	args := m.Called(userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizSubmission), args.Error(1)
}

func (m *MockQuizStore) ListSubmissionsByQuiz(quizID uint) ([]model.QuizSubmission, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuizSubmission), args.Error(1)
}

func (m *MockQuizStore) ListSubmissionsByScore(quizID uint) ([]model.QuizSubmission, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuizSubmission), args.Error(1)
}

func (m *MockQuizStore) ListSubmissionsByUser(userID uint) ([]model.QuizSubmission, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuizSubmission), args.Error(1)
}

// MockCourseFinder 实现 CourseFinder
type MockCourseFinder struct {
	mock.Mock
}

func (m *MockCourseFinder) FindByID(id uint) (*model.Course, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func mcQuestion(id uint, answer string, points float64) model.QuizQuestion {
	q := model.QuizQuestion{
		QuestionType: model.MultipleChoice,
		Answer:       answer,
		Points:       points,
	}
	q.ID = id
	return q
}

func saQuestion(id uint, answer string, points float64) model.QuizQuestion {
	q := model.QuizQuestion{
		QuestionType: model.ShortAnswer,
		Answer:       answer,
		Points:       points,
	}
	q.ID = id
	return q
}

func TestScoreQuiz_MultipleChoiceExactMatch(t *testing.T) {
	questions := []model.QuizQuestion{
		mcQuestion(1, "Paris", 2),
		mcQuestion(2, "Berlin", 3),
	}

	score, maxScore := ScoreQuiz(questions, map[string]string{
		"1": "Paris",
		"2": "London",
	})

	assert.Equal(t, 2.0, score)
	assert.Equal(t, 5.0, maxScore)
}

func TestScoreQuiz_MultipleChoiceCaseSensitive(t *testing.T) {
	questions := []model.QuizQuestion{mcQuestion(1, "Paris", 1)}

	// 选择题按选项文本精确匹配，大小写不同视为错误
	score, _ := ScoreQuiz(questions, map[string]string{"1": "paris"})

	assert.Equal(t, 0.0, score)
}

func TestScoreQuiz_ShortAnswerIgnoresCaseAndSpace(t *testing.T) {
	questions := []model.QuizQuestion{saQuestion(1, "Photosynthesis", 4)}

	score, maxScore := ScoreQuiz(questions, map[string]string{"1": "  photosynthesis  "})

	assert.Equal(t, 4.0, score)
	assert.Equal(t, 4.0, maxScore)
}

func TestScoreQuiz_ShortAnswerPartialCredit(t *testing.T) {
	questions := []model.QuizQuestion{saQuestion(1, "Paris is the capital of France", 2)}

	// 词集交集5并集7，相似度约0.714，超过0.7得一半分
	score, _ := ScoreQuiz(questions, map[string]string{"1": "Paris is the capital of france!"})

	assert.Equal(t, 1.0, score)
}

func TestScoreQuiz_ShortAnswerNoCredit(t *testing.T) {
	questions := []model.QuizQuestion{saQuestion(1, "Paris is the capital of France", 2)}

	score, _ := ScoreQuiz(questions, map[string]string{"1": "I do not know"})

	assert.Equal(t, 0.0, score)
}

func TestScoreQuiz_UnansweredCountsInMaxScore(t *testing.T) {
	questions := []model.QuizQuestion{
		mcQuestion(1, "A", 1),
		saQuestion(2, "mitochondria", 2),
		mcQuestion(3, "C", 3),
	}

	score, maxScore := ScoreQuiz(questions, map[string]string{"1": "A"})

	assert.Equal(t, 1.0, score)
	assert.Equal(t, 6.0, maxScore)
}

func TestScoreQuiz_EmptyQuiz(t *testing.T) {
	score, maxScore := ScoreQuiz(nil, map[string]string{})

	assert.Equal(t, 0.0, score)
	assert.Equal(t, 0.0, maxScore)
}

func TestTextSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("the quick brown fox", "the quick brown fox"))
}

func TestTextSimilarity_IgnoresCaseAndOrder(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("Brown Fox Quick The", "the quick brown fox"))
}

func TestTextSimilarity_Disjoint(t *testing.T) {
	assert.Equal(t, 0.0, TextSimilarity("alpha beta", "gamma delta"))
}

func TestTextSimilarity_BothEmpty(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("", ""))
}

func TestTextSimilarity_OneEmpty(t *testing.T) {
	assert.Equal(t, 0.0, TextSimilarity("hello", ""))
	assert.Equal(t, 0.0, TextSimilarity("", "hello"))
}

func TestTextSimilarity_PartialOverlap(t *testing.T) {
	// 交集2个词，并集4个词
	sim := TextSimilarity("cell membrane structure", "cell membrane function")
	assert.InDelta(t, 0.5, sim, 0.0001)
}

func TestComputeStatistics(t *testing.T) {
	submissions := []model.QuizSubmission{
		{Score: 8, MaxScore: 10},
		{Score: 4, MaxScore: 10},
		{Score: 6, MaxScore: 10},
	}

	stats := computeStatistics(submissions)

	assert.Equal(t, 3, stats.TotalSubmissions)
	assert.InDelta(t, 6.0, stats.AverageScore, 0.0001)
	assert.Equal(t, 8.0, stats.HighestScore)
	assert.Equal(t, 4.0, stats.LowestScore)
}

func TestComputeStatistics_NoSubmissions(t *testing.T) {
	stats := computeStatistics(nil)

	assert.Equal(t, 0, stats.TotalSubmissions)
	assert.Equal(t, 0.0, stats.AverageScore)
}

func TestCheckCourseAccess(t *testing.T) {
	course := &model.Course{DepartmentID: 1, CreatedBy: 10}

	student := &model.User{Role: model.Student, DepartmentID: 1}
	assert.NoError(t, checkCourseAccess(student, course))

	otherDeptStudent := &model.User{Role: model.Student, DepartmentID: 2}
	assert.Error(t, checkCourseAccess(otherDeptStudent, course))

	owner := &model.User{Role: model.Instructor}
	owner.ID = 10
	assert.NoError(t, checkCourseAccess(owner, course))

	otherInstructor := &model.User{Role: model.Instructor}
	otherInstructor.ID = 11
	assert.Error(t, checkCourseAccess(otherInstructor, course))

	admin := &model.User{Role: model.Admin, DepartmentID: 99}
	assert.NoError(t, checkCourseAccess(admin, course))
}

func submitFixtures() (*MockQuizStore, *MockCourseFinder, *QuizService, *model.User, *model.Quiz) {
	quizStore := new(MockQuizStore)
	courseFinder := new(MockCourseFinder)
	svc := NewQuizService(quizStore, courseFinder, nil)

	student := &model.User{Role: model.Student, DepartmentID: 1}
	student.ID = 7

	quiz := &model.Quiz{
		CourseID: 3,
		Questions: []model.QuizQuestion{
			mcQuestion(1, "Paris", 2),
			saQuestion(2, "Photosynthesis", 3),
		},
	}
	quiz.ID = 5

	return quizStore, courseFinder, svc, student, quiz
}

func TestSubmitQuiz_OnlyStudentsCanSubmit(t *testing.T) {
	quizStore, _, svc, _, _ := submitFixtures()

	instructor := &model.User{Role: model.Instructor, DepartmentID: 1}
	instructor.ID = 20

	_, err := svc.SubmitQuiz(instructor, 5, map[string]string{"1": "Paris"})

	require.Error(t, err)
	assert.Equal(t, util.KindAccessDenied, util.KindOf(err))
	quizStore.AssertNotCalled(t, "FindByID", mock.Anything)
	quizStore.AssertNotCalled(t, "CreateSubmission", mock.Anything)
}

func TestSubmitQuiz_AdminCannotSubmit(t *testing.T) {
	_, _, svc, _, _ := submitFixtures()

	admin := &model.User{Role: model.Admin, DepartmentID: 1}
	admin.ID = 1

	_, err := svc.SubmitQuiz(admin, 5, nil)

	require.Error(t, err)
	assert.Equal(t, util.KindAccessDenied, util.KindOf(err))
}

func TestSubmitQuiz_RejectsOtherDepartment(t *testing.T) {
	quizStore, courseFinder, svc, student, quiz := submitFixtures()
	quizStore.On("FindByID", uint(5)).Return(quiz, nil)
	courseFinder.On("FindByID", uint(3)).Return(&model.Course{DepartmentID: 2}, nil)

	_, err := svc.SubmitQuiz(student, 5, map[string]string{"1": "Paris"})

	require.Error(t, err)
	assert.Equal(t, util.KindAccessDenied, util.KindOf(err))
	quizStore.AssertNotCalled(t, "CreateSubmission", mock.Anything)
}

func TestSubmitQuiz_DuplicateRejected(t *testing.T) {
	quizStore, courseFinder, svc, student, quiz := submitFixtures()
	existing := &model.QuizSubmission{QuizID: 5, UserID: 7, Score: 2, MaxScore: 5}
	quizStore.On("FindByID", uint(5)).Return(quiz, nil)
	courseFinder.On("FindByID", uint(3)).Return(&model.Course{DepartmentID: 1}, nil)
	quizStore.On("FindSubmissionByUserAndQuiz", uint(7), uint(5)).Return(existing, nil)

	_, err := svc.SubmitQuiz(student, 5, map[string]string{"1": "Paris"})

	assert.ErrorIs(t, err, util.ErrQuizAlreadySubmitted)
	// 重复提交不落库，首次成绩保持不变
	quizStore.AssertNotCalled(t, "CreateSubmission", mock.Anything)
	assert.Equal(t, 2.0, existing.Score)
}

func TestSubmitQuiz_ConcurrentDuplicateHitsUniqueIndex(t *testing.T) {
	quizStore, courseFinder, svc, student, quiz := submitFixtures()
	quizStore.On("FindByID", uint(5)).Return(quiz, nil)
	courseFinder.On("FindByID", uint(3)).Return(&model.Course{DepartmentID: 1}, nil)
	quizStore.On("FindSubmissionByUserAndQuiz", uint(7), uint(5)).Return(nil, gorm.ErrRecordNotFound)
	quizStore.On("CreateSubmission", mock.Anything).
		Return(errors.New("Error 1062: Duplicate entry '5-7' for key 'idx_submission_quiz_user'"))

	_, err := svc.SubmitQuiz(student, 5, map[string]string{"1": "Paris"})

	assert.ErrorIs(t, err, util.ErrQuizAlreadySubmitted)
}

func TestSubmitQuiz_ScoresAndStoresSubmission(t *testing.T) {
	quizStore, courseFinder, svc, student, quiz := submitFixtures()
	quizStore.On("FindByID", uint(5)).Return(quiz, nil)
	courseFinder.On("FindByID", uint(3)).Return(&model.Course{DepartmentID: 1}, nil)
	quizStore.On("FindSubmissionByUserAndQuiz", uint(7), uint(5)).Return(nil, gorm.ErrRecordNotFound)
	quizStore.On("CreateSubmission", mock.Anything).Return(nil)

	submission, err := svc.SubmitQuiz(student, 5, map[string]string{
		"1": "Paris",
		"2": "photosynthesis",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(5), submission.QuizID)
	assert.Equal(t, uint(7), submission.UserID)
	assert.Equal(t, 5.0, submission.Score)
	assert.Equal(t, 5.0, submission.MaxScore)
	assert.WithinDuration(t, time.Now().UTC(), submission.SubmittedAt, time.Minute)
	quizStore.AssertExpectations(t)
}

func TestStudentQuizView_StripsAnswersAndExplanations(t *testing.T) {
	options, _ := json.Marshal([]string{"Paris", "London"})
	quiz := &model.Quiz{
		Title: "Capitals",
		Questions: []model.QuizQuestion{
			{
				QuestionType: model.MultipleChoice,
				Question:     "Capital of France?",
				Options:      options,
				Answer:       "Paris",
				Explanation:  "Paris is the capital of France.",
				Points:       2,
				Order:        0,
			},
		},
	}
	quiz.ID = 9

	body, err := json.Marshal(StudentQuizView(quiz))
	require.NoError(t, err)

	payload := string(body)
	assert.False(t, strings.Contains(payload, "answer"), payload)
	assert.False(t, strings.Contains(payload, "Paris is the capital"), payload)
	assert.Contains(t, payload, "Capital of France?")
	assert.Contains(t, payload, "London")
}
