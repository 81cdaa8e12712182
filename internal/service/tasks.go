package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"progress/internal/config"
	"progress/internal/models"
	"progress/internal/monitoring"
	"progress/internal/repository"
)

// DailySetNotifier reçoit l'événement "toutes les tâches du jour terminées"
type DailySetNotifier interface {
	DailySetCompleted()
}

// TaskService gère le cycle de vie des objectifs quotidiens et traduit les
// événements de gameplay en progression
type TaskService struct {
	taskRepo repository.TaskRepositoryInterface
	config   *config.Config
	notifier DailySetNotifier

	// Section critique de la régénération quotidienne
	genMutex sync.Mutex

	// Horloge injectable pour les tests
	now func() time.Time
}

// NewTaskService crée un nouveau service de tâches. notifier peut être nil.
func NewTaskService(
	taskRepo repository.TaskRepositoryInterface,
	config *config.Config,
	notifier DailySetNotifier,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		config:   config,
		notifier: notifier,
		now:      time.Now,
	}
}

// EnsureTodaysTasks régénère le jeu de tâches si ce n'est pas encore fait
// aujourd'hui, puis retourne les tâches du jour. La régénération supprime
// toutes les tâches existantes : le store ne contient jamais plus d'un jour.
func (s *TaskService) EnsureTodaysTasks() ([]*models.Task, error) {
	s.genMutex.Lock()
	defer s.genMutex.Unlock()

	today := dateOnly(s.now())

	last, ok, err := s.taskRepo.GetLastGenerated()
	if err != nil {
		return nil, fmt.Errorf("failed to check last generation: %w", err)
	}

	// Déjà généré aujourd'hui : no-op
	if ok && sameDay(last, today) {
		return s.taskRepo.GetByDate(today)
	}

	if err := s.taskRepo.DeleteAll(); err != nil {
		return nil, fmt.Errorf("failed to purge stale tasks: %w", err)
	}

	// 3 des 4 types de tâches, sans remise
	kinds := models.AllTaskKinds()
	perm := rand.Perm(len(kinds))

	var tasks []*models.Task
	for _, idx := range perm[:s.config.Game.DailyTaskCount] {
		task := s.generateTask(kinds[idx], today)
		if err := s.taskRepo.Create(task); err != nil {
			return nil, fmt.Errorf("failed to create daily task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := s.taskRepo.SetLastGenerated(today); err != nil {
		return nil, fmt.Errorf("failed to stamp generation date: %w", err)
	}

	monitoring.DailyTaskSetsTotal.Inc()

	logrus.WithFields(logrus.Fields{
		"count":   len(tasks),
		"date":    today.Format("2006-01-02"),
		"service": "progress",
	}).Info("Daily task set generated")

	return tasks, nil
}

// generateTask synthétise une tâche selon les règles propres à son type
func (s *TaskService) generateTask(kind models.TaskKind, today time.Time) *models.Task {
	task := &models.Task{
		ID:        uuid.New(),
		CreatedOn: today,
		Kind:      kind,
	}

	switch kind {
	case models.TaskRoundsInCategory:
		task.TargetValue = randomStep(s.config.Game.RoundsTargetMin, s.config.Game.RoundsTargetMax, 5)
		task.CategoryName = randomChoice(models.AllCategories())

	case models.TaskRoundsInGame:
		task.TargetValue = randomStep(s.config.Game.RoundsTargetMin, s.config.Game.RoundsTargetMax, 5)
		task.GameName = randomChoice(models.AllGames())

	case models.TaskPointsInGame:
		task.TargetValue = randomStep(s.config.Game.PointsTargetMin, s.config.Game.PointsTargetMax, 50)
		task.GameName = randomChoice(models.PointScoringGames())

	case models.TaskPointsInEachGame:
		task.TargetValue = randomStep(s.config.Game.PointsTargetMin, s.config.Game.PointsTargetMax, 50)
		task.CategoryName = randomChoice(pointScoringCategories())

		// Un sous-objectif par jeu de la catégorie
		for _, game := range models.GamesInCategory(task.CategoryName) {
			task.Entries = append(task.Entries, &models.TaskProgressEntry{
				ID:       uuid.New(),
				TaskID:   task.ID,
				GameName: game,
				Points:   0,
			})
		}
	}

	return task
}

// OnRoundStarted incrémente les tâches de manches concernées par ce jeu.
// Un événement par début de manche : le compteur ne bouge qu'une fois.
func (s *TaskService) OnRoundStarted(game string) error {
	category, ok := models.CategoryOf(game)
	if !ok {
		return fmt.Errorf("unknown game: %s", game)
	}

	tasks, err := s.taskRepo.GetByDate(dateOnly(s.now()))
	if err != nil {
		return fmt.Errorf("failed to load today's tasks: %w", err)
	}

	transitioned := false
	for _, task := range tasks {
		// completed est monotone : une tâche terminée ne se réévalue plus
		if task.Completed {
			continue
		}

		match := (task.Kind == models.TaskRoundsInGame && task.GameName == game) ||
			(task.Kind == models.TaskRoundsInCategory && task.CategoryName == category)
		if !match {
			continue
		}

		if task.CurrentValue < task.TargetValue {
			task.CurrentValue++
		}
		if task.CurrentValue >= task.TargetValue {
			task.Completed = true
			transitioned = true
		}

		if err := s.taskRepo.UpdateProgress(task); err != nil {
			return fmt.Errorf("failed to persist task progress: %w", err)
		}
	}

	if transitioned {
		s.checkDailySetComplete(tasks)
	}

	return nil
}

// OnPointsScored applique un score en cours de manche aux tâches de points.
// Le score est un cumul de manche, pas un delta : mise à jour en plus-haut
// niveau atteint, jamais en accumulation.
func (s *TaskService) OnPointsScored(game string, points int) error {
	category, ok := models.CategoryOf(game)
	if !ok {
		return fmt.Errorf("unknown game: %s", game)
	}

	tasks, err := s.taskRepo.GetByDate(dateOnly(s.now()))
	if err != nil {
		return fmt.Errorf("failed to load today's tasks: %w", err)
	}

	transitioned := false
	for _, task := range tasks {
		if task.Completed {
			continue
		}

		switch task.Kind {
		case models.TaskPointsInGame:
			if task.GameName != game {
				continue
			}

			if points > task.CurrentValue {
				task.CurrentValue = points
			}
			if task.CurrentValue >= task.TargetValue {
				task.Completed = true
				transitioned = true
			}

			if err := s.taskRepo.UpdateProgress(task); err != nil {
				return fmt.Errorf("failed to persist task progress: %w", err)
			}

		case models.TaskPointsInEachGame:
			if task.CategoryName != category {
				continue
			}

			for _, entry := range task.Entries {
				if entry.GameName != game {
					continue
				}

				if points > entry.Points {
					entry.Points = points
					if err := s.taskRepo.UpdateEntry(entry); err != nil {
						return fmt.Errorf("failed to persist entry progress: %w", err)
					}
				}
			}

			// Complète ssi chaque sous-objectif a atteint la cible
			if task.EntriesComplete() {
				task.Completed = true
				transitioned = true

				if err := s.taskRepo.UpdateProgress(task); err != nil {
					return fmt.Errorf("failed to persist task progress: %w", err)
				}
			}
		}
	}

	if transitioned {
		s.checkDailySetComplete(tasks)
	}

	return nil
}

// checkDailySetComplete signale la complétion du jeu de tâches du jour
func (s *TaskService) checkDailySetComplete(tasks []*models.Task) {
	if s.notifier == nil || len(tasks) == 0 {
		return
	}

	for _, task := range tasks {
		if !task.Completed {
			return
		}
	}

	logrus.WithField("service", "progress").Info("Daily task set completed")
	s.notifier.DailySetCompleted()
}

// dateOnly tronque un instant à son jour calendaire local
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay compare deux instants par jour calendaire, quel que soit le fuseau
func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// randomStep tire un multiple de step dans [min, max]
func randomStep(min, max, step int) int {
	steps := (max-min)/step + 1
	return min + step*rand.Intn(steps)
}

// randomChoice tire un élément au hasard
func randomChoice(items []string) string {
	return items[rand.Intn(len(items))]
}

// pointScoringCategories retourne les catégories dont tous les jeux
// rapportent des points
func pointScoringCategories() []string {
	var categories []string
	for _, category := range models.AllCategories() {
		all := true
		for _, game := range models.GamesInCategory(category) {
			if models.LowerIsBetter(game) {
				all = false
				break
			}
		}
		if all {
			categories = append(categories, category)
		}
	}
	return categories
}
