package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progress/internal/models"
	"progress/internal/monitoring"
	"progress/internal/service"
)

// EventHandler reçoit les événements de gameplay des minijeux et les
// distribue aux trois moteurs. Les effets distants sont accusés en 202 :
// la manche en cours ne bloque jamais sur une synchronisation.
type EventHandler struct {
	taskService        *service.TaskService
	statsService       *service.StatsService
	achievementService *service.AchievementService
}

// NewEventHandler crée un nouveau handler d'événements
func NewEventHandler(
	taskService *service.TaskService,
	statsService *service.StatsService,
	achievementService *service.AchievementService,
) *EventHandler {
	return &EventHandler{
		taskService:        taskService,
		statsService:       statsService,
		achievementService: achievementService,
	}
}

// RoundStarted traite un début de manche
func (h *EventHandler) RoundStarted(c *gin.Context) {
	var req models.RoundStartedRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request data",
			"details":    err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	monitoring.GameplayEventsTotal.WithLabelValues("round_started", req.Game).Inc()

	if err := h.taskService.OnRoundStarted(req.Game); err != nil {
		logrus.WithError(err).WithField("game", req.Game).Error("Round started event failed")

		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PointsScored traite un score en cours de manche
func (h *EventHandler) PointsScored(c *gin.Context) {
	var req models.PointsScoredRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request data",
			"details":    err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	monitoring.GameplayEventsTotal.WithLabelValues("points_scored", req.Game).Inc()

	if err := h.taskService.OnPointsScored(req.Game, req.Points); err != nil {
		logrus.WithError(err).WithField("game", req.Game).Error("Points scored event failed")

		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RoundPlayed traite une manche jouée jusqu'au bout : comptage, expérience
// et succès liés aux manches, sans attendre l'issue distante
func (h *EventHandler) RoundPlayed(c *gin.Context) {
	var req models.RoundPlayedRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request data",
			"details":    err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	if !models.ValidGame(req.Game) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "unknown game: " + req.Game,
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	monitoring.GameplayEventsTotal.WithLabelValues("round_played", req.Game).Inc()

	go drainRoundPlayed(req.Game, h.statsService.RecordRoundPlayed(req.Game))
	go drainAchievement(models.MilestoneFirstWorkout.ID, h.achievementService.NotifyFirstWorkout())
	go drainAchievement(models.MilestoneHundredRounds.ID, h.achievementService.NotifyHundredRounds())

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// Score traite un score final de manche
func (h *EventHandler) Score(c *gin.Context) {
	var req models.ScoreRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request data",
			"details":    err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	if !models.ValidGame(req.Game) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "unknown game: " + req.Game,
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	monitoring.GameplayEventsTotal.WithLabelValues("score", req.Game).Inc()

	go drainScore(req.Game, h.statsService.RecordScore(req.Game, req.Score))

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// Milestone déclenche un succès nommé
func (h *EventHandler) Milestone(c *gin.Context) {
	id := c.Param("id")

	milestone, ok := models.MilestoneByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "unknown milestone: " + id,
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	monitoring.GameplayEventsTotal.WithLabelValues("milestone", id).Inc()

	// Le premier entraînement passe directement à débloqué, les autres
	// succès nommés avancent d'un pas
	switch milestone.ID {
	case models.MilestoneFirstWorkout.ID:
		go drainAchievement(milestone.ID, h.achievementService.NotifyFirstWorkout())
	case models.MilestoneHundredRounds.ID:
		go drainAchievement(milestone.ID, h.achievementService.NotifyHundredRounds())
	case models.MilestoneAllCategories.ID:
		go drainAchievement(milestone.ID, h.achievementService.NotifyAllCategories())
	default:
		go drainAchievement(milestone.ID, h.achievementService.Notify(milestone))
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// drainRoundPlayed journalise l'issue d'un comptage de manche
func drainRoundPlayed(game string, results <-chan models.RoundPlayedResult) {
	for result := range results {
		if result.Err != nil {
			logrus.WithError(result.Err).WithField("game", game).Warn("Round played reconciliation failed")
		}
	}
}

// drainScore journalise l'issue d'une réconciliation de score
func drainScore(game string, results <-chan models.ScoreResult) {
	for result := range results {
		if result.Err != nil {
			logrus.WithError(result.Err).WithField("game", game).Warn("Score reconciliation failed")
		}
	}
}

// drainAchievement journalise l'issue d'une progression de succès
func drainAchievement(id string, results <-chan models.AchievementResult) {
	for result := range results {
		if result.Err != nil {
			logrus.WithError(result.Err).WithField("achievement", id).Warn("Achievement update failed")
		}
	}
}
