package service

import (
	"testing"

	"aru_academy_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLocalKeyFromURL(t *testing.T) {
	p := &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: "./uploads"}}

	url := p.GetURL("courses/3/lecture.pdf")

	assert.Equal(t, "/uploads/courses/3/lecture.pdf", url)
	assert.Equal(t, "courses/3/lecture.pdf", p.KeyFromURL(url))
}

func TestMinioKeyFromURL(t *testing.T) {
	p := &MinioStorageProvider{Config: &config.StorageConfig{MinioBucket: "academy"}}

	url := p.GetURL("courses/3/lecture.pdf")

	assert.Equal(t, "/academy/courses/3/lecture.pdf", url)
	assert.Equal(t, "courses/3/lecture.pdf", p.KeyFromURL(url))
}

func TestOSSKeyFromURL(t *testing.T) {
	p := &OSSStorageProvider{Config: &config.StorageConfig{
		OSSBucket:   "academy",
		OSSEndpoint: "oss-cn-hangzhou.aliyuncs.com",
	}}

	url := p.GetURL("courses/3/lecture.mp4")

	assert.Equal(t, "https://academy.oss-cn-hangzhou.aliyuncs.com/courses/3/lecture.mp4", url)
	assert.Equal(t, "courses/3/lecture.mp4", p.KeyFromURL(url))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "courses/12/notes.pdf", ObjectKey(12, "notes.pdf"))
}
