package models

// GameStat représente l'enregistrement distant d'un couple (joueur, jeu).
// BestScore == 0 signifie "jamais renseigné".
type GameStat struct {
	GameID      string `json:"game_id"`
	BestScore   int    `json:"best_score"`
	GamesPlayed int    `json:"games_played"`
}

// GameStatPatch représente une mise à jour partielle d'une statistique
type GameStatPatch struct {
	BestScore   *int `json:"best_score,omitempty"`
	GamesPlayed *int `json:"games_played,omitempty"`
}

// AchievementProgress représente la progression distante d'un succès.
// Achieved est terminal : plus aucune écriture une fois à true.
type AchievementProgress struct {
	AchievementID string `json:"achievement_id"`
	Progress      int    `json:"progress"`
	Achieved      bool   `json:"achieved"`
}

// AchievementPatch représente une mise à jour partielle d'un succès
type AchievementPatch struct {
	Progress *int  `json:"progress,omitempty"`
	Achieved *bool `json:"achieved,omitempty"`
}

// ProfilePatch représente une mise à jour partielle du profil distant
type ProfilePatch struct {
	Experience  *int    `json:"experience,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// Milestone identifie un succès et sa progression maximale
type Milestone struct {
	ID          string
	MaxProgress int
}

// Succès nommés de l'application. FirstWorkout est un cas particulier :
// le premier événement le passe directement à l'état débloqué (max = 1).
var (
	MilestoneFirstWorkout  = Milestone{ID: "first_workout", MaxProgress: 1}
	MilestoneHundredRounds = Milestone{ID: "hundred_rounds", MaxProgress: 100}
	MilestoneWeekOfTasks   = Milestone{ID: "week_of_tasks", MaxProgress: 7}
	MilestoneAllCategories = Milestone{ID: "all_categories", MaxProgress: 4}
)

// MilestoneByID retrouve un succès nommé par son identifiant
func MilestoneByID(id string) (Milestone, bool) {
	for _, m := range []Milestone{
		MilestoneFirstWorkout,
		MilestoneHundredRounds,
		MilestoneWeekOfTasks,
		MilestoneAllCategories,
	} {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// RoundStartedRequest représente un début de manche envoyé par un minijeu
type RoundStartedRequest struct {
	Game string `json:"game" binding:"required"`
}

// PointsScoredRequest représente un score en cours de manche
type PointsScoredRequest struct {
	Game   string `json:"game" binding:"required"`
	Points int    `json:"points" binding:"min=0"`
}

// ScoreRequest représente un score final de manche
type ScoreRequest struct {
	Game  string `json:"game" binding:"required"`
	Score int    `json:"score" binding:"min=0"`
}

// RoundPlayedRequest représente une manche jouée jusqu'au bout
type RoundPlayedRequest struct {
	Game string `json:"game" binding:"required"`
}

// ScoreResult est le résultat asynchrone d'une réconciliation de score
type ScoreResult struct {
	Updated bool
	Best    int
	Err     error
}

// RoundPlayedResult est le résultat asynchrone d'un comptage de manche
type RoundPlayedResult struct {
	GamesPlayed     int
	ExperienceAdded int
	Err             error
}

// AchievementResult est le résultat asynchrone d'une progression de succès
type AchievementResult struct {
	Progress int
	Achieved bool
	Written  bool
	Err      error
}
