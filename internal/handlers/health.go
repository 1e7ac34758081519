package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/itwoqa/bugtracker/internal/services"
)

// HealthHandler reports the state of the tracker's subsystems.
type HealthHandler struct {
	hub *services.EventHub
}

func NewHealthHandler(hub *services.EventHub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var openCount int64
	models.GetDB().Model(&models.Bug{}).
		Where("status != ?", models.StatusResolved).
		Count(&openCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "bugtracker",
		"components": gin.H{
			"database":    dbStatus,
			"queue_mode":  queueMode,
			"sse_clients": h.hub.ClientCount(),
			"open_bugs":   openCount,
		},
	})
}
