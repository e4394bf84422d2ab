package util

import (
	"aru_academy_backend/internal/model"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Email:        "student@aru.ac.uk",
		Role:         model.Student,
		DepartmentID: 3,
	}
	user.ID = 42

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
	assert.Equal(t, "student@aru.ac.uk", claims.Email)
	assert.Equal(t, uint(3), claims.DepartmentID)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	user := &model.User{Role: model.Admin}
	user.ID = 1

	token, err := GenerateJWT(user, "secret-a", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	user := &model.User{Role: model.Student}
	user.ID = 1

	token, err := GenerateJWT(user, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "test-secret")
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrQuizNotFound))
	assert.Equal(t, KindAccessDenied, KindOf(ErrAccessDenied))
	assert.Equal(t, KindValidation, KindOf(ErrQuizAlreadySubmitted))
	assert.Equal(t, KindUpstream, KindOf(ErrAIUnavailable))
	assert.Equal(t, KindInternal, KindOf(errors.New("database gone")))
}

func TestKindOf_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("loading quiz: %w", ErrQuizNotFound)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestValidationErrorf(t *testing.T) {
	err := ValidationErrorf("invalid question type: %s", "essay")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "invalid question type: essay", err.Error())
}

func TestMustParseUint(t *testing.T) {
	assert.Equal(t, uint(15), MustParseUint("15"))
	assert.Equal(t, uint(0), MustParseUint("not-a-number"))
	assert.Equal(t, uint(0), MustParseUint(""))
	assert.Equal(t, uint(0), MustParseUint("-5"))
}

func TestParsePagination(t *testing.T) {
	page, limit := ParsePagination("2", "50")
	assert.Equal(t, 2, page)
	assert.Equal(t, 50, limit)

	page, limit = ParsePagination("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	page, limit = ParsePagination("0", "500")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	page, limit = ParsePagination("-3", "abc")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}
