package service

import (
	"os"
	"testing"

	"aru_academy_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	// 测试进程不经过InitLogger，注入空logger避免空指针
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}
