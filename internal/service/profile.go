package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"progress/internal/models"
	"progress/internal/remote"
	"progress/internal/repository"
)

// ProfileService gère le profil du joueur local et sa projection distante
type ProfileService struct {
	profileRepo repository.ProfileRepositoryInterface
	credentials repository.CredentialRepositoryInterface
	client      remote.StatsClientInterface
}

// NewProfileService crée un nouveau service de profil
func NewProfileService(
	profileRepo repository.ProfileRepositoryInterface,
	credentials repository.CredentialRepositoryInterface,
	client remote.StatsClientInterface,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		credentials: credentials,
		client:      client,
	}
}

// GetProfile retourne le profil local, créé anonyme au premier accès
func (s *ProfileService) GetProfile() (*models.Profile, error) {
	return s.profileRepo.GetOrCreate()
}

// UpdateProfile modifie le nom et l'email. L'écriture locale fait foi ;
// la projection distante est au mieux, un échec est journalisé sans
// annuler la modification locale.
func (s *ProfileService) UpdateProfile(req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.profileRepo.GetOrCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if req.DisplayName != "" {
		profile.DisplayName = req.DisplayName
	}
	if req.Email != "" {
		profile.Email = req.Email
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if profile.Authenticated() {
		patch := models.ProfilePatch{}
		if req.DisplayName != "" {
			patch.DisplayName = &req.DisplayName
		}
		if req.Email != "" {
			patch.Email = &req.Email
		}

		if _, err := s.client.PatchProfile(profile.UserID, patch); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": profile.UserID,
				"error":   err.Error(),
			}).Warn("Remote profile sync failed, local value retained")
		}
	}

	return profile, nil
}

// Login lie le profil local à un compte distant et met le credential en
// cache pour les synchronisations à venir. Le profil anonyme existant est
// réécrit sur place, jamais recréé.
func (s *ProfileService) Login(userID, displayName, email, token string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	profile, err := s.profileRepo.GetOrCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile.UserID = userID
	if displayName != "" {
		profile.DisplayName = displayName
	}
	if email != "" {
		profile.Email = email
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to link profile: %w", err)
	}

	if err := s.credentials.Save(token); err != nil {
		return nil, fmt.Errorf("failed to cache credential: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"profile_id": profile.ID,
		"user_id":    userID,
	}).Info("Player logged in")

	return profile, nil
}

// Logout efface l'identité distante et le credential mis en cache. Le
// nom, l'avatar et l'expérience restent en local.
func (s *ProfileService) Logout() (*models.Profile, error) {
	profile, err := s.profileRepo.GetOrCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.profileRepo.ClearIdentity(profile.ID); err != nil {
		return nil, fmt.Errorf("failed to clear identity: %w", err)
	}

	if err := s.credentials.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear credential: %w", err)
	}

	logrus.WithField("profile_id", profile.ID).Info("Player logged out")

	return s.profileRepo.GetOrCreate()
}
