package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progress/internal/service"
)

// TaskHandler gère les routes des objectifs quotidiens
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler crée un nouveau handler de tâches
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// GetToday retourne les tâches du jour, en les générant si nécessaire
func (h *TaskHandler) GetToday(c *gin.Context) {
	tasks, err := h.taskService.EnsureTodaysTasks()
	if err != nil {
		logrus.WithError(err).Error("Failed to ensure today's tasks")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to load daily tasks",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}
