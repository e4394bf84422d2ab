package util

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类，控制层据此映射HTTP状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindAccessDenied
	KindValidation
	KindUpstream
)

// AppError 业务错误，携带分类和面向调用方的消息
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func AccessDeniedError(message string) *AppError {
	return &AppError{Kind: KindAccessDenied, Message: message}
}

func ValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func UpstreamError(message string) *AppError {
	return &AppError{Kind: KindUpstream, Message: message}
}

func ValidationErrorf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf 提取错误分类，非AppError一律按内部错误处理
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound         = NotFoundError("user not found")
	ErrDepartmentNotFound   = NotFoundError("department not found")
	ErrCourseNotFound       = NotFoundError("course not found")
	ErrResourceNotFound     = NotFoundError("resource not found")
	ErrQuizNotFound         = NotFoundError("quiz not found")
	ErrApprovalNotFound     = NotFoundError("approved user record not found")
	ErrAccessDenied         = AccessDeniedError("access denied")
	ErrEmailRegistered      = ValidationError("user with this email already exists")
	ErrNotApproved          = AccessDeniedError("registration has not been approved by the administration")
	ErrAlreadyApproved      = ValidationError("user already approved")
	ErrQuizAlreadySubmitted = ValidationError("quiz already submitted")
	ErrInvalidCredentials   = ValidationError("invalid credentials")
	ErrDepartmentInUse      = ValidationError("department still has users or courses")
	ErrAIUnavailable        = UpstreamError("AI temporarily unavailable")
)
