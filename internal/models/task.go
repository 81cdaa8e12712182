package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskKind représente le type d'un objectif quotidien
type TaskKind string

const (
	TaskRoundsInCategory TaskKind = "rounds_in_category"
	TaskRoundsInGame     TaskKind = "rounds_in_game"
	TaskPointsInGame     TaskKind = "points_in_game"
	TaskPointsInEachGame TaskKind = "points_in_each_game_in_category"
)

// AllTaskKinds retourne les quatre types d'objectifs existants
func AllTaskKinds() []TaskKind {
	return []TaskKind{
		TaskRoundsInCategory,
		TaskRoundsInGame,
		TaskPointsInGame,
		TaskPointsInEachGame,
	}
}

// Valid vérifie que le type d'objectif est connu
func (k TaskKind) Valid() bool {
	switch k {
	case TaskRoundsInCategory, TaskRoundsInGame, TaskPointsInGame, TaskPointsInEachGame:
		return true
	}
	return false
}

// Task représente un objectif quotidien
type Task struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CreatedOn    time.Time `json:"created_on" db:"created_on"`
	Kind         TaskKind  `json:"kind" db:"kind"`
	TargetValue  int       `json:"target_value" db:"target_value"`
	CurrentValue int       `json:"current_value" db:"current_value"`
	GameName     string    `json:"game_name,omitempty" db:"game_name"`
	CategoryName string    `json:"category_name,omitempty" db:"category_name"`
	Completed    bool      `json:"completed" db:"completed"`

	// Sous-objectifs (chargés avec la tâche, uniquement pour TaskPointsInEachGame)
	Entries []*TaskProgressEntry `json:"entries,omitempty" db:"-"`
}

// TaskProgressEntry représente le sous-objectif d'un jeu dans une tâche groupée
type TaskProgressEntry struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TaskID   uuid.UUID `json:"task_id" db:"task_id"`
	GameName string    `json:"game_name" db:"game_name"`
	Points   int       `json:"points" db:"points"`
}

// EntriesComplete vérifie que chaque sous-objectif a atteint la cible
func (t *Task) EntriesComplete() bool {
	if len(t.Entries) == 0 {
		return false
	}
	for _, e := range t.Entries {
		if e.Points < t.TargetValue {
			return false
		}
	}
	return true
}
