package controller

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Cfg       *config.Config
	startedAt time.Time
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Cfg: cfg, startedAt: time.Now()}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{
		"database": "up",
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx.Request.Context()).Err(); err != nil {
			components["redis"] = "down"
		} else {
			components["redis"] = "up"
		}
	}

	// AI未配置Token时走降级回复，状态单独标出
	if c.Cfg.AI.APIToken != "" {
		components["ai"] = "configured"
	} else {
		components["ai"] = "fallback"
	}

	util.Success(ctx, gin.H{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(c.startedAt).Seconds()),
		"components":    components,
	})
}
