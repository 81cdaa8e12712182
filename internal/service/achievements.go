package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"progress/internal/models"
	"progress/internal/monitoring"
	"progress/internal/remote"
	"progress/internal/repository"
)

// AchievementService fait avancer les compteurs de succès distants sans
// jamais faire reculer la progression ni réécrire un succès déjà
// débloqué. Même modèle asynchrone et même sérialisation par clé que le
// réconciliateur de statistiques.
type AchievementService struct {
	profileRepo repository.ProfileRepositoryInterface
	client      remote.StatsClientInterface
	locks       *keyedLocks
}

// NewAchievementService crée un nouveau service de succès
func NewAchievementService(
	profileRepo repository.ProfileRepositoryInterface,
	client remote.StatsClientInterface,
) *AchievementService {
	return &AchievementService{
		profileRepo: profileRepo,
		client:      client,
		locks:       newKeyedLocks(),
	}
}

// Notify fait progresser un succès d'un pas
func (s *AchievementService) Notify(milestone models.Milestone) <-chan models.AchievementResult {
	return s.notifyStep(milestone, 1)
}

// NotifyFirstWorkout marque le tout premier entraînement. Cas
// particulier : le pas vaut le maximum, "passer à débloqué" plutôt
// qu'incrémenter.
func (s *AchievementService) NotifyFirstWorkout() <-chan models.AchievementResult {
	return s.notifyStep(models.MilestoneFirstWorkout, models.MilestoneFirstWorkout.MaxProgress)
}

// NotifyHundredRounds fait progresser le succès des cent manches
func (s *AchievementService) NotifyHundredRounds() <-chan models.AchievementResult {
	return s.Notify(models.MilestoneHundredRounds)
}

// NotifyAllCategories fait progresser le succès des quatre catégories
func (s *AchievementService) NotifyAllCategories() <-chan models.AchievementResult {
	return s.Notify(models.MilestoneAllCategories)
}

// DailySetCompleted fait progresser le succès des sept jeux de tâches
// quotidiens terminés. Branché sur le moteur de tâches ; l'issue est
// consommée en arrière-plan pour que les échecs soient journalisés.
func (s *AchievementService) DailySetCompleted() {
	results := s.Notify(models.MilestoneWeekOfTasks)

	go func() {
		for result := range results {
			if result.Err != nil {
				logrus.WithError(result.Err).
					WithField("achievement", models.MilestoneWeekOfTasks.ID).
					Warn("Daily set achievement update failed")
			}
		}
	}()
}

// notifyStep exécute l'aller-retour fetch-increment-write en arrière-plan.
// État terminal : achieved == true ne produit plus aucune écriture.
func (s *AchievementService) notifyStep(milestone models.Milestone, step int) <-chan models.AchievementResult {
	result := make(chan models.AchievementResult, 1)

	go func() {
		defer close(result)

		profile, err := s.profileRepo.GetOrCreate()
		if err != nil {
			result <- models.AchievementResult{Err: fmt.Errorf("failed to load profile: %w", err)}
			return
		}

		// Joueur anonyme : aucune interaction distante
		if !profile.Authenticated() {
			result <- models.AchievementResult{}
			return
		}

		lock := s.locks.get(profile.UserID + ":" + milestone.ID)
		lock.Lock()
		defer lock.Unlock()

		current, err := s.client.GetAchievementProgress(profile.UserID, milestone.ID)
		if err != nil {
			monitoring.RemoteWritesTotal.WithLabelValues("achievement", monitoring.OutcomeFailed).Inc()
			result <- models.AchievementResult{Err: fmt.Errorf("failed to fetch achievement: %w", err)}
			return
		}

		// Débloqué : terminal, aucune écriture
		if current.Achieved {
			monitoring.RemoteWritesTotal.WithLabelValues("achievement", monitoring.OutcomeSkipped).Inc()
			result <- models.AchievementResult{Progress: current.Progress, Achieved: true}
			return
		}

		newProgress := current.Progress + step
		if newProgress > milestone.MaxProgress {
			newProgress = milestone.MaxProgress
		}
		achieved := newProgress >= milestone.MaxProgress

		// N'écrire que si quelque chose a réellement changé
		if newProgress == current.Progress && achieved == current.Achieved {
			monitoring.RemoteWritesTotal.WithLabelValues("achievement", monitoring.OutcomeSkipped).Inc()
			result <- models.AchievementResult{Progress: current.Progress, Achieved: current.Achieved}
			return
		}

		written, err := s.client.PatchAchievementProgress(profile.UserID, milestone.ID, models.AchievementPatch{
			Progress: &newProgress,
			Achieved: &achieved,
		})
		if err != nil {
			monitoring.RemoteWritesTotal.WithLabelValues("achievement", monitoring.OutcomeFailed).Inc()
			result <- models.AchievementResult{Err: fmt.Errorf("failed to update achievement: %w", err)}
			return
		}
		monitoring.RemoteWritesTotal.WithLabelValues("achievement", monitoring.OutcomeApplied).Inc()

		if written.Achieved {
			logrus.WithFields(logrus.Fields{
				"user_id":     profile.UserID,
				"achievement": milestone.ID,
			}).Info("Achievement unlocked")
		}

		result <- models.AchievementResult{
			Progress: written.Progress,
			Achieved: written.Achieved,
			Written:  true,
		}
	}()

	return result
}
