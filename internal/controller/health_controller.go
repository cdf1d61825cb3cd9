package controller

import (
	"context"
	"net/http"
	"questionnaire_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 数据库与 Redis 的连通性检查
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthController struct {
	Components map[string]Pinger
}

func NewHealthController(components map[string]Pinger) *HealthController {
	return &HealthController{Components: components}
}

// @Summary 健康检查
// @Description 检查数据库与 Redis 状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for name, p := range c.Components {
		if err := p.PingContext(pingCtx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "Service unavailable", gin.H{"components": status})
		return
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": status,
	})
}
