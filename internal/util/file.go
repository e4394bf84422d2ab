package util

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	MimePDF   = "application/pdf"
	MimeVideo = "video/"
	MimeText  = "text/plain"
)

var AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}

// ValidateMimeType 深度校验文件 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "video/", "application/pdf"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// GenerateRandomString 生成文件名用的随机串
func GenerateRandomString(length int) string {
	s := strings.ReplaceAll(uuid.New().String(), "-", "")
	if length > len(s) {
		length = len(s)
	}
	return s[:length]
}

// IsVideo 检测是否为视频
func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/") || mimeType == "application/x-mpegURL"
}
