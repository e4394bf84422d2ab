package service

import (
	"aru_academy_backend/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackQuizQuestions_Count(t *testing.T) {
	questions := FallbackQuizQuestions("Thermodynamics", 3)

	require.Len(t, questions, 3)
	assert.Equal(t, string(model.MultipleChoice), questions[0].Type)
	assert.Equal(t, string(model.ShortAnswer), questions[1].Type)
	assert.Equal(t, string(model.MultipleChoice), questions[2].Type)
}

func TestFallbackQuizQuestions_TopicSubstitution(t *testing.T) {
	questions := FallbackQuizQuestions("Thermodynamics", 1)

	require.Len(t, questions, 1)
	assert.Equal(t, "What is the primary purpose of Thermodynamics?", questions[0].Question)
	require.Len(t, questions[0].Options, 4)
	// 选择题Answer为正确选项原文
	assert.Equal(t, questions[0].Options[0], questions[0].Answer)
}

func TestFallbackQuizQuestions_CyclesBeyondTemplates(t *testing.T) {
	// 模板共11道，超出部分循环并加序号前缀
	questions := FallbackQuizQuestions("Biology", 13)

	require.Len(t, questions, 13)
	assert.Equal(t, questions[0].Type, questions[11].Type)
	assert.True(t, strings.HasPrefix(questions[11].Question, "Question 12: "))
	assert.True(t, strings.HasPrefix(questions[12].Question, "Question 13: "))
	assert.False(t, strings.HasPrefix(questions[10].Question, "Question"))
}

func TestFallbackQuizQuestions_AllValid(t *testing.T) {
	for _, q := range FallbackQuizQuestions("Chemistry", 11) {
		copied := q
		assert.True(t, validateQuestion(&copied), "template question should be valid: %s", q.Question)
	}
}

func TestFallbackResponse_WithContext(t *testing.T) {
	resp := FallbackResponse("anything at all", "chapter one text")

	assert.Contains(t, resp, "course material")
}

func TestFallbackResponse_KeywordBuckets(t *testing.T) {
	assert.Contains(t, FallbackResponse("Can you explain recursion?", ""), "explain that concept")
	assert.Contains(t, FallbackResponse("show me an example", ""), "find examples")
	assert.Contains(t, FallbackResponse("how to balance an equation", ""), "Step-by-Step")
	assert.Contains(t, FallbackResponse("I am stuck on this", ""), "feeling stuck")
	assert.Contains(t, FallbackResponse("calculate the derivative", ""), "Math")
}

func TestFallbackResponse_Generic(t *testing.T) {
	resp := FallbackResponse("tell me about the weather", "")

	assert.Contains(t, resp, "interesting question")
}

func TestExtractQuestionsJSON_Valid(t *testing.T) {
	text := `Here are your questions:
{"questions": [
  {"question": "What is water?", "type": "short_answer", "answer": "H2O"},
  {"question": "Pick one", "type": "multiple_choice", "options": ["A", "B"], "answer": "A"}
]}
Done.`

	questions, ok := ExtractQuestionsJSON(text)

	require.True(t, ok)
	require.Len(t, questions, 2)
	assert.Equal(t, "What is water?", questions[0].Question)
	assert.Equal(t, []string{"A", "B"}, questions[1].Options)
}

func TestExtractQuestionsJSON_FiltersInvalid(t *testing.T) {
	text := `{"questions": [
  {"question": "Valid", "type": "short_answer", "answer": "yes"},
  {"question": "Missing answer", "type": "short_answer", "answer": ""},
  {"question": "Too few options", "type": "multiple_choice", "options": ["A"], "answer": "A"},
  {"question": "Bad type", "type": "essay", "answer": "x"}
]}`

	questions, ok := ExtractQuestionsJSON(text)

	require.True(t, ok)
	require.Len(t, questions, 1)
	assert.Equal(t, "Valid", questions[0].Question)
}

func TestExtractQuestionsJSON_NoJSON(t *testing.T) {
	_, ok := ExtractQuestionsJSON("the model produced no structured output")
	assert.False(t, ok)
}

func TestExtractQuestionsJSON_MalformedJSON(t *testing.T) {
	_, ok := ExtractQuestionsJSON(`{"questions": [{"question": "broken"`)
	assert.False(t, ok)
}

func TestValidateQuestion(t *testing.T) {
	valid := &GeneratedQuestion{Question: "Q", Type: "short_answer", Answer: "A"}
	assert.True(t, validateQuestion(valid))

	mc := &GeneratedQuestion{Question: "Q", Type: "multiple_choice", Options: []string{"A", "B"}, Answer: "A"}
	assert.True(t, validateQuestion(mc))

	noOptions := &GeneratedQuestion{Question: "Q", Type: "multiple_choice", Answer: "A"}
	assert.False(t, validateQuestion(noOptions))

	noQuestion := &GeneratedQuestion{Type: "short_answer", Answer: "A"}
	assert.False(t, validateQuestion(noQuestion))
}

func TestEvaluateAnswerFallback_GoodAnswer(t *testing.T) {
	correct := "Photosynthesis converts sunlight into chemical energy in plants"
	student := "Photosynthesis is the process where plants convert sunlight into chemical energy"

	eval := EvaluateAnswerFallback(student, correct)

	assert.True(t, eval.IsCorrect)
	assert.GreaterOrEqual(t, eval.Score, 60)
	assert.Contains(t, eval.Feedback, "Good answer")
}

func TestEvaluateAnswerFallback_PoorAnswer(t *testing.T) {
	correct := "Photosynthesis converts sunlight into chemical energy in plants"
	student := "no idea"

	eval := EvaluateAnswerFallback(student, correct)

	assert.False(t, eval.IsCorrect)
	assert.Less(t, eval.Score, 60)
	assert.Contains(t, eval.Suggestions, "key concepts")
}

func TestEvaluateAnswerFallback_ScoreCappedAt100(t *testing.T) {
	correct := "gravity pulls objects together"
	student := strings.Repeat("gravity pulls objects together and keeps planets in orbit ", 10)

	eval := EvaluateAnswerFallback(student, correct)

	assert.LessOrEqual(t, eval.Score, 100)
	assert.True(t, eval.IsCorrect)
}

func TestEvaluateAnswerFallback_EmptyAnswer(t *testing.T) {
	eval := EvaluateAnswerFallback("", "mitochondria is the powerhouse of the cell")

	assert.False(t, eval.IsCorrect)
	assert.Equal(t, 0, eval.Score)
}

func TestExtractJSONObject(t *testing.T) {
	raw := extractJSONObject(`prefix {"a": 1} suffix`)
	assert.Equal(t, `{"a": 1}`, string(raw))

	assert.Nil(t, extractJSONObject("no braces here"))
	assert.Nil(t, extractJSONObject("} reversed {"))
}
