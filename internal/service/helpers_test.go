package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"progress/internal/config"
	"progress/internal/models"
	"progress/internal/remote"
)

// testConfig retourne une configuration de jeu minimale pour les tests
func testConfig() *config.Config {
	return &config.Config{
		Game: config.GameConfig{
			DailyTaskCount:    3,
			RoundsTargetMin:   10,
			RoundsTargetMax:   30,
			PointsTargetMin:   1000,
			PointsTargetMax:   2500,
			ExperiencePerGame: 50,
		},
	}
}

// fakeTaskRepo est un repository de tâches en mémoire
type fakeTaskRepo struct {
	tasks           []*models.Task
	lastGenerated   time.Time
	hasGenerated    bool
	createCalls     int
	deleteAllCalls  int
	progressUpdates int
	entryUpdates    int
}

func (r *fakeTaskRepo) GetByDate(date time.Time) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range r.tasks {
		if t.CreatedOn.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Create(task *models.Task) error {
	r.createCalls++
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *fakeTaskRepo) DeleteAll() error {
	r.deleteAllCalls++
	r.tasks = nil
	return nil
}

func (r *fakeTaskRepo) UpdateProgress(task *models.Task) error {
	r.progressUpdates++
	return nil
}

func (r *fakeTaskRepo) UpdateEntry(entry *models.TaskProgressEntry) error {
	r.entryUpdates++
	return nil
}

func (r *fakeTaskRepo) GetLastGenerated() (time.Time, bool, error) {
	return r.lastGenerated, r.hasGenerated, nil
}

func (r *fakeTaskRepo) SetLastGenerated(date time.Time) error {
	r.lastGenerated = date
	r.hasGenerated = true
	return nil
}

// fakeProfileRepo est un repository de profil en mémoire
type fakeProfileRepo struct {
	mutex   sync.Mutex
	profile models.Profile
	updates int
}

func newFakeProfileRepo(userID string) *fakeProfileRepo {
	return &fakeProfileRepo{
		profile: models.Profile{
			ID:          uuid.New(),
			UserID:      userID,
			DisplayName: "Player",
		},
	}
}

func (r *fakeProfileRepo) GetOrCreate() (*models.Profile, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := r.profile
	return &out, nil
}

func (r *fakeProfileRepo) Update(profile *models.Profile) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.updates++
	r.profile = *profile
	return nil
}

func (r *fakeProfileRepo) AddExperience(id uuid.UUID, amount int) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.profile.Experience += amount
	return r.profile.Experience, nil
}

func (r *fakeProfileRepo) ClearIdentity(id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.profile.UserID = ""
	r.profile.Email = ""
	return nil
}

func (r *fakeProfileRepo) experience() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.profile.Experience
}

// fakeStatsClient simule le backend de stats en mémoire
type fakeStatsClient struct {
	mutex sync.Mutex

	stats        map[string]*models.GameStat
	achievements map[string]*models.AchievementProgress

	statGets          int
	statPatches       int
	achievementReads  int
	achievementWrites int
	profilePatches    int

	failPatchProfile bool
	failPatchStat    bool
}

var _ remote.StatsClientInterface = (*fakeStatsClient)(nil)

func newFakeStatsClient() *fakeStatsClient {
	return &fakeStatsClient{
		stats:        make(map[string]*models.GameStat),
		achievements: make(map[string]*models.AchievementProgress),
	}
}

func (c *fakeStatsClient) GetGameStat(userID, gameID string) (*models.GameStat, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.statGets++

	stat, ok := c.stats[gameID]
	if !ok {
		stat = &models.GameStat{GameID: gameID}
		c.stats[gameID] = stat
	}
	out := *stat
	return &out, nil
}

func (c *fakeStatsClient) PatchGameStat(userID, gameID string, patch models.GameStatPatch) (*models.GameStat, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.failPatchStat {
		return nil, fmt.Errorf("stats service returned status 502")
	}

	c.statPatches++
	stat, ok := c.stats[gameID]
	if !ok {
		stat = &models.GameStat{GameID: gameID}
		c.stats[gameID] = stat
	}
	if patch.BestScore != nil {
		stat.BestScore = *patch.BestScore
	}
	if patch.GamesPlayed != nil {
		stat.GamesPlayed = *patch.GamesPlayed
	}
	out := *stat
	return &out, nil
}

func (c *fakeStatsClient) GetAchievementProgress(userID, achievementID string) (*models.AchievementProgress, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.achievementReads++

	progress, ok := c.achievements[achievementID]
	if !ok {
		progress = &models.AchievementProgress{AchievementID: achievementID}
		c.achievements[achievementID] = progress
	}
	out := *progress
	return &out, nil
}

func (c *fakeStatsClient) PatchAchievementProgress(userID, achievementID string, patch models.AchievementPatch) (*models.AchievementProgress, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.achievementWrites++

	progress, ok := c.achievements[achievementID]
	if !ok {
		progress = &models.AchievementProgress{AchievementID: achievementID}
		c.achievements[achievementID] = progress
	}
	if patch.Progress != nil {
		progress.Progress = *patch.Progress
	}
	if patch.Achieved != nil {
		progress.Achieved = *patch.Achieved
	}
	out := *progress
	return &out, nil
}

func (c *fakeStatsClient) PatchProfile(userID string, patch models.ProfilePatch) (*remote.RemoteProfile, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.failPatchProfile {
		return nil, fmt.Errorf("stats service returned status 502")
	}

	c.profilePatches++
	profile := &remote.RemoteProfile{ID: userID}
	if patch.Experience != nil {
		profile.Experience = *patch.Experience
	}
	return profile, nil
}

func (c *fakeStatsClient) calls() (gets, patches int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.statGets, c.statPatches
}

func (c *fakeStatsClient) achievementCalls() (reads, writes int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.achievementReads, c.achievementWrites
}
