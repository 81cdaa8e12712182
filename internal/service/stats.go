package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"progress/internal/config"
	"progress/internal/models"
	"progress/internal/monitoring"
	"progress/internal/remote"
	"progress/internal/repository"
)

// StatsService réconcilie les scores observés localement avec le backend
// de statistiques. Les appels retournent immédiatement ; l'aller-retour
// fetch-compare-write part en arrière-plan et son résultat est observable
// sur le canal retourné. Les écritures sont sérialisées par clé
// (joueur, jeu) pour qu'aucune paire fetch/write ne s'entrelace.
type StatsService struct {
	profileRepo repository.ProfileRepositoryInterface
	client      remote.StatsClientInterface
	config      *config.Config
	locks       *keyedLocks
}

// NewStatsService crée un nouveau service de statistiques
func NewStatsService(
	profileRepo repository.ProfileRepositoryInterface,
	client remote.StatsClientInterface,
	config *config.Config,
) *StatsService {
	return &StatsService{
		profileRepo: profileRepo,
		client:      client,
		config:      config,
		locks:       newKeyedLocks(),
	}
}

// RecordRoundPlayed comptabilise une manche jouée : incrément du compteur
// distant puis attribution d'expérience. L'attribution n'a lieu qu'après
// le succès de l'incrément, mais un échec d'attribution ne fait pas
// reculer le compteur : asymétrie assumée, convergence au prochain sync.
func (s *StatsService) RecordRoundPlayed(gameID string) <-chan models.RoundPlayedResult {
	result := make(chan models.RoundPlayedResult, 1)

	if !models.ValidGame(gameID) {
		result <- models.RoundPlayedResult{Err: fmt.Errorf("unknown game: %s", gameID)}
		close(result)
		return result
	}

	go func() {
		defer close(result)

		profile, err := s.profileRepo.GetOrCreate()
		if err != nil {
			result <- models.RoundPlayedResult{Err: fmt.Errorf("failed to load profile: %w", err)}
			return
		}

		// Joueur anonyme : aucune interaction distante
		if !profile.Authenticated() {
			result <- models.RoundPlayedResult{}
			return
		}

		lock := s.locks.get(profile.UserID + ":" + gameID)
		lock.Lock()
		defer lock.Unlock()

		stat, err := s.client.GetGameStat(profile.UserID, gameID)
		if err != nil {
			monitoring.RemoteWritesTotal.WithLabelValues("games_played", monitoring.OutcomeFailed).Inc()
			result <- models.RoundPlayedResult{Err: fmt.Errorf("failed to fetch game stat: %w", err)}
			return
		}

		played := stat.GamesPlayed + 1
		updated, err := s.client.PatchGameStat(profile.UserID, gameID, models.GameStatPatch{
			GamesPlayed: &played,
		})
		if err != nil {
			monitoring.RemoteWritesTotal.WithLabelValues("games_played", monitoring.OutcomeFailed).Inc()
			result <- models.RoundPlayedResult{Err: fmt.Errorf("failed to update games played: %w", err)}
			return
		}
		monitoring.RemoteWritesTotal.WithLabelValues("games_played", monitoring.OutcomeApplied).Inc()

		// Expérience : local d'abord, distant ensuite. Le compteur de
		// manches n'est pas annulé si l'une des deux écritures échoue.
		award := s.config.Game.ExperiencePerGame
		total, err := s.profileRepo.AddExperience(profile.ID, award)
		if err != nil {
			result <- models.RoundPlayedResult{
				GamesPlayed: updated.GamesPlayed,
				Err:         fmt.Errorf("failed to persist experience: %w", err),
			}
			return
		}

		if _, err := s.client.PatchProfile(profile.UserID, models.ProfilePatch{Experience: &total}); err != nil {
			monitoring.RemoteWritesTotal.WithLabelValues("experience", monitoring.OutcomeFailed).Inc()
			logrus.WithFields(logrus.Fields{
				"user_id": profile.UserID,
				"game":    gameID,
				"error":   err.Error(),
			}).Warn("Experience sync failed, local value retained")

			result <- models.RoundPlayedResult{
				GamesPlayed:     updated.GamesPlayed,
				ExperienceAdded: award,
				Err:             fmt.Errorf("failed to sync experience: %w", err),
			}
			return
		}
		monitoring.RemoteWritesTotal.WithLabelValues("experience", monitoring.OutcomeApplied).Inc()

		result <- models.RoundPlayedResult{
			GamesPlayed:     updated.GamesPlayed,
			ExperienceAdded: award,
		}
	}()

	return result
}

// RecordScore compare un score fraîchement observé au meilleur score
// distant et n'écrit que s'il l'améliore. La règle de comparaison dépend
// de la famille du jeu : temps de réaction, plus petit gagne ; sinon plus
// grand gagne. BestScore == 0 vaut "jamais renseigné".
func (s *StatsService) RecordScore(gameID string, score int) <-chan models.ScoreResult {
	result := make(chan models.ScoreResult, 1)

	if !models.ValidGame(gameID) {
		result <- models.ScoreResult{Err: fmt.Errorf("unknown game: %s", gameID)}
		close(result)
		return result
	}

	go func() {
		defer close(result)

		profile, err := s.profileRepo.GetOrCreate()
		if err != nil {
			result <- models.ScoreResult{Err: fmt.Errorf("failed to load profile: %w", err)}
			return
		}

		// Joueur anonyme : aucune interaction distante
		if !profile.Authenticated() {
			result <- models.ScoreResult{}
			return
		}

		lock := s.locks.get(profile.UserID + ":" + gameID)
		lock.Lock()
		defer lock.Unlock()

		stat, err := s.client.GetGameStat(profile.UserID, gameID)
		if err != nil {
			monitoring.RemoteWritesTotal.WithLabelValues("best_score", monitoring.OutcomeFailed).Inc()
			result <- models.ScoreResult{Err: fmt.Errorf("failed to fetch game stat: %w", err)}
			return
		}

		if !betterScore(gameID, score, stat.BestScore) {
			monitoring.RemoteWritesTotal.WithLabelValues("best_score", monitoring.OutcomeSkipped).Inc()
			result <- models.ScoreResult{Updated: false, Best: stat.BestScore}
			return
		}

		updated, err := s.client.PatchGameStat(profile.UserID, gameID, models.GameStatPatch{
			BestScore: &score,
		})
		if err != nil {
			monitoring.RemoteWritesTotal.WithLabelValues("best_score", monitoring.OutcomeFailed).Inc()
			result <- models.ScoreResult{Err: fmt.Errorf("failed to update best score: %w", err)}
			return
		}
		monitoring.RemoteWritesTotal.WithLabelValues("best_score", monitoring.OutcomeApplied).Inc()

		logrus.WithFields(logrus.Fields{
			"user_id": profile.UserID,
			"game":    gameID,
			"best":    updated.BestScore,
		}).Debug("Best score updated")

		result <- models.ScoreResult{Updated: true, Best: updated.BestScore}
	}()

	return result
}

// betterScore applique la règle de comparaison propre à la famille du jeu
func betterScore(gameID string, score, best int) bool {
	if models.LowerIsBetter(gameID) {
		return best == 0 || score < best
	}
	return score > best
}
