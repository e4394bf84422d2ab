package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuizSubmission_Percentage(t *testing.T) {
	s := &QuizSubmission{Score: 7, MaxScore: 10}
	assert.InDelta(t, 70.0, s.Percentage(), 0.0001)

	perfect := &QuizSubmission{Score: 5, MaxScore: 5}
	assert.Equal(t, 100.0, perfect.Percentage())

	// 满分为0时不除零
	empty := &QuizSubmission{Score: 0, MaxScore: 0}
	assert.Equal(t, 0.0, empty.Percentage())
}
