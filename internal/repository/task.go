package repository

import (
	"database/sql"
	"fmt"
	"time"

	"progress/internal/database"
	"progress/internal/models"
)

const lastGeneratedKey = "tasks_last_generated"

// dateLayout est le format jour-calendaire utilisé dans sync_meta
const dateLayout = "2006-01-02"

// TaskRepositoryInterface définit les méthodes du repository des tâches
type TaskRepositoryInterface interface {
	GetByDate(date time.Time) ([]*models.Task, error)
	Create(task *models.Task) error
	DeleteAll() error
	UpdateProgress(task *models.Task) error
	UpdateEntry(entry *models.TaskProgressEntry) error
	GetLastGenerated() (time.Time, bool, error)
	SetLastGenerated(date time.Time) error
}

// TaskRepository implémente l'interface TaskRepositoryInterface
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository crée une nouvelle instance du repository des tâches
func NewTaskRepository(db *database.DB) TaskRepositoryInterface {
	return &TaskRepository{db: db}
}

// GetByDate récupère les tâches d'un jour donné, sous-objectifs inclus
func (r *TaskRepository) GetByDate(date time.Time) ([]*models.Task, error) {
	var tasks []*models.Task

	query := `
		SELECT id, created_on, kind, target_value, current_value,
		       game_name, category_name, completed
		FROM tasks
		WHERE created_on = $1::date
		ORDER BY kind`

	if err := r.db.Select(&tasks, query, date.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("failed to get tasks by date: %w", err)
	}

	// Charger les sous-objectifs des tâches groupées
	for _, task := range tasks {
		if task.Kind != models.TaskPointsInEachGame {
			continue
		}

		entriesQuery := `
			SELECT id, task_id, game_name, points
			FROM task_progress
			WHERE task_id = $1
			ORDER BY game_name`

		if err := r.db.Select(&task.Entries, entriesQuery, task.ID); err != nil {
			return nil, fmt.Errorf("failed to get task entries: %w", err)
		}
	}

	return tasks, nil
}

// Create insère une tâche et ses sous-objectifs dans une même transaction
func (r *TaskRepository) Create(task *models.Task) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	taskQuery := `
		INSERT INTO tasks (id, created_on, kind, target_value, current_value,
		                   game_name, category_name, completed)
		VALUES (:id, :created_on, :kind, :target_value, :current_value,
		        :game_name, :category_name, :completed)`

	if _, err := tx.NamedExec(taskQuery, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	entryQuery := `
		INSERT INTO task_progress (id, task_id, game_name, points)
		VALUES (:id, :task_id, :game_name, :points)`

	for _, entry := range task.Entries {
		if _, err := tx.NamedExec(entryQuery, entry); err != nil {
			return fmt.Errorf("failed to create task entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task creation: %w", err)
	}

	return nil
}

// DeleteAll supprime toutes les tâches (les sous-objectifs suivent en cascade)
func (r *TaskRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}

	return nil
}

// UpdateProgress persiste la progression et le flag de complétion d'une tâche
func (r *TaskRepository) UpdateProgress(task *models.Task) error {
	query := `
		UPDATE tasks SET
			current_value = :current_value,
			completed = :completed
		WHERE id = :id`

	if _, err := r.db.NamedExec(query, task); err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}

	return nil
}

// UpdateEntry persiste la progression d'un sous-objectif
func (r *TaskRepository) UpdateEntry(entry *models.TaskProgressEntry) error {
	query := `
		UPDATE task_progress SET
			points = :points
		WHERE id = :id`

	if _, err := r.db.NamedExec(query, entry); err != nil {
		return fmt.Errorf("failed to update task entry: %w", err)
	}

	return nil
}

// GetLastGenerated retourne le jour de la dernière génération de tâches
func (r *TaskRepository) GetLastGenerated() (time.Time, bool, error) {
	var value string

	query := `SELECT value FROM sync_meta WHERE key = $1`

	err := r.db.Get(&value, query, lastGeneratedKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get last generated date: %w", err)
	}

	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse last generated date: %w", err)
	}

	return date, true, nil
}

// SetLastGenerated enregistre le jour de génération des tâches
func (r *TaskRepository) SetLastGenerated(date time.Time) error {
	query := `
		INSERT INTO sync_meta (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.Exec(query, lastGeneratedKey, date.Format(dateLayout)); err != nil {
		return fmt.Errorf("failed to set last generated date: %w", err)
	}

	return nil
}
