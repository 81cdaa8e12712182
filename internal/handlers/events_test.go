package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"progress/internal/config"
	"progress/internal/models"
	"progress/internal/remote"
	"progress/internal/service"
)

// stubTaskRepo est un repository de tâches vide : les événements de
// gameplay ne trouvent aucune tâche et restent des no-op
type stubTaskRepo struct{}

func (r *stubTaskRepo) GetByDate(date time.Time) ([]*models.Task, error)     { return nil, nil }
func (r *stubTaskRepo) Create(task *models.Task) error                       { return nil }
func (r *stubTaskRepo) DeleteAll() error                                     { return nil }
func (r *stubTaskRepo) UpdateProgress(task *models.Task) error               { return nil }
func (r *stubTaskRepo) UpdateEntry(entry *models.TaskProgressEntry) error    { return nil }
func (r *stubTaskRepo) GetLastGenerated() (time.Time, bool, error)           { return time.Time{}, false, nil }
func (r *stubTaskRepo) SetLastGenerated(date time.Time) error                { return nil }

// stubProfileRepo sert un profil anonyme : aucune synchronisation distante
type stubProfileRepo struct{}

func (r *stubProfileRepo) GetOrCreate() (*models.Profile, error) {
	return &models.Profile{ID: uuid.New(), DisplayName: "Player"}, nil
}
func (r *stubProfileRepo) Update(profile *models.Profile) error            { return nil }
func (r *stubProfileRepo) AddExperience(id uuid.UUID, amount int) (int, error) { return amount, nil }
func (r *stubProfileRepo) ClearIdentity(id uuid.UUID) error                { return nil }

type stubStatsClient struct{}

func (c *stubStatsClient) GetGameStat(userID, gameID string) (*models.GameStat, error) {
	return &models.GameStat{GameID: gameID}, nil
}
func (c *stubStatsClient) PatchGameStat(userID, gameID string, patch models.GameStatPatch) (*models.GameStat, error) {
	return &models.GameStat{GameID: gameID}, nil
}
func (c *stubStatsClient) GetAchievementProgress(userID, achievementID string) (*models.AchievementProgress, error) {
	return &models.AchievementProgress{AchievementID: achievementID}, nil
}
func (c *stubStatsClient) PatchAchievementProgress(userID, achievementID string, patch models.AchievementPatch) (*models.AchievementProgress, error) {
	return &models.AchievementProgress{AchievementID: achievementID}, nil
}
func (c *stubStatsClient) PatchProfile(userID string, patch models.ProfilePatch) (*remote.RemoteProfile, error) {
	return &remote.RemoteProfile{ID: userID}, nil
}

func newTestEventRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Game: config.GameConfig{
			DailyTaskCount:    3,
			RoundsTargetMin:   10,
			RoundsTargetMax:   30,
			PointsTargetMin:   1000,
			PointsTargetMax:   2500,
			ExperiencePerGame: 50,
		},
	}

	taskService := service.NewTaskService(&stubTaskRepo{}, cfg, nil)
	statsService := service.NewStatsService(&stubProfileRepo{}, &stubStatsClient{}, cfg)
	achievementService := service.NewAchievementService(&stubProfileRepo{}, &stubStatsClient{})

	handler := NewEventHandler(taskService, statsService, achievementService)

	router := gin.New()
	router.POST("/events/round-started", handler.RoundStarted)
	router.POST("/events/points", handler.PointsScored)
	router.POST("/events/score", handler.Score)
	router.POST("/events/milestone/:id", handler.Milestone)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestScoreAcceptsZero(t *testing.T) {
	router := newTestEventRouter()

	// Un score de 0 est une valeur légitime, pas un champ manquant
	res := postJSON(router, "/events/score", `{"game":"StroopGame","score":0}`)
	if res.Code != http.StatusAccepted {
		t.Errorf("score 0 rejected: status %d, body %s", res.Code, res.Body.String())
	}
}

func TestPointsScoredAcceptsZero(t *testing.T) {
	router := newTestEventRouter()

	res := postJSON(router, "/events/points", `{"game":"StroopGame","points":0}`)
	if res.Code != http.StatusOK {
		t.Errorf("points 0 rejected: status %d, body %s", res.Code, res.Body.String())
	}
}

func TestScoreRejectsMissingGame(t *testing.T) {
	router := newTestEventRouter()

	res := postJSON(router, "/events/score", `{"score":250}`)
	if res.Code != http.StatusBadRequest {
		t.Errorf("missing game accepted: status %d", res.Code)
	}
}

func TestScoreRejectsUnknownGame(t *testing.T) {
	router := newTestEventRouter()

	res := postJSON(router, "/events/score", `{"game":"Tetris","score":100}`)
	if res.Code != http.StatusBadRequest {
		t.Errorf("unknown game accepted: status %d", res.Code)
	}
}

func TestMilestoneUnknownID(t *testing.T) {
	router := newTestEventRouter()

	res := postJSON(router, "/events/milestone/wrong_id", `{}`)
	if res.Code != http.StatusNotFound {
		t.Errorf("unknown milestone accepted: status %d", res.Code)
	}
}

func TestMilestoneNamed(t *testing.T) {
	router := newTestEventRouter()

	for _, id := range []string{"first_workout", "hundred_rounds", "week_of_tasks", "all_categories"} {
		res := postJSON(router, "/events/milestone/"+id, `{}`)
		if res.Code != http.StatusAccepted {
			t.Errorf("milestone %s: status %d, want 202", id, res.Code)
		}
	}
}
