// internal/remote/stats_client.go
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"progress/internal/config"
	"progress/internal/models"
	"progress/internal/repository"
)

// StatsClientInterface définit les méthodes pour communiquer avec le
// backend de statistiques. Toute erreur (réseau, statut, décodage) est
// remontée telle quelle : l'état distant reste inconnu jusqu'au prochain
// fetch, aucun retry n'est tenté ici.
type StatsClientInterface interface {
	GetGameStat(userID, gameID string) (*models.GameStat, error)
	PatchGameStat(userID, gameID string, patch models.GameStatPatch) (*models.GameStat, error)
	GetAchievementProgress(userID, achievementID string) (*models.AchievementProgress, error)
	PatchAchievementProgress(userID, achievementID string, patch models.AchievementPatch) (*models.AchievementProgress, error)
	PatchProfile(userID string, patch models.ProfilePatch) (*RemoteProfile, error)
}

// RemoteProfile représente les champs du profil côté backend de stats
type RemoteProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Experience  int    `json:"experience"`
}

// StatsClient implémente l'interface StatsClientInterface
type StatsClient struct {
	baseURL     string
	httpClient  *http.Client
	credentials repository.CredentialRepositoryInterface
}

// NewStatsClient crée une nouvelle instance du client Stats
func NewStatsClient(cfg *config.Config, credentials repository.CredentialRepositoryInterface) StatsClientInterface {
	return &StatsClient{
		baseURL: cfg.Remote.URL,
		httpClient: &http.Client{
			Timeout: cfg.Remote.Timeout,
		},
		credentials: credentials,
	}
}

// GetGameStat récupère la statistique distante d'un couple (joueur, jeu)
func (c *StatsClient) GetGameStat(userID, gameID string) (*models.GameStat, error) {
	url := fmt.Sprintf("%s/api/v1/players/%s/stats/%s", c.baseURL, userID, gameID)

	var stat models.GameStat
	if err := c.do(http.MethodGet, url, nil, &stat); err != nil {
		return nil, err
	}

	return &stat, nil
}

// PatchGameStat met à jour partiellement une statistique de jeu
func (c *StatsClient) PatchGameStat(userID, gameID string, patch models.GameStatPatch) (*models.GameStat, error) {
	url := fmt.Sprintf("%s/api/v1/players/%s/stats/%s", c.baseURL, userID, gameID)

	var stat models.GameStat
	if err := c.do(http.MethodPatch, url, patch, &stat); err != nil {
		return nil, err
	}

	return &stat, nil
}

// GetAchievementProgress récupère la progression distante d'un succès
func (c *StatsClient) GetAchievementProgress(userID, achievementID string) (*models.AchievementProgress, error) {
	url := fmt.Sprintf("%s/api/v1/players/%s/achievements/%s", c.baseURL, userID, achievementID)

	var progress models.AchievementProgress
	if err := c.do(http.MethodGet, url, nil, &progress); err != nil {
		return nil, err
	}

	return &progress, nil
}

// PatchAchievementProgress met à jour partiellement un succès
func (c *StatsClient) PatchAchievementProgress(userID, achievementID string, patch models.AchievementPatch) (*models.AchievementProgress, error) {
	url := fmt.Sprintf("%s/api/v1/players/%s/achievements/%s", c.baseURL, userID, achievementID)

	var progress models.AchievementProgress
	if err := c.do(http.MethodPatch, url, patch, &progress); err != nil {
		return nil, err
	}

	return &progress, nil
}

// PatchProfile met à jour partiellement le profil distant
func (c *StatsClient) PatchProfile(userID string, patch models.ProfilePatch) (*RemoteProfile, error) {
	url := fmt.Sprintf("%s/api/v1/players/%s", c.baseURL, userID)

	var profile RemoteProfile
	if err := c.do(http.MethodPatch, url, patch, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// do exécute une requête JSON authentifiée et décode la réponse
func (c *StatsClient) do(method, url string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Credential mis en cache localement, absent pour un joueur anonyme
	token, err := c.credentials.Get()
	if err != nil {
		return fmt.Errorf("failed to read cached credential: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stats service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
