package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"progress/internal/database"
	"progress/internal/models"
)

// ProfileRepositoryInterface définit les méthodes du repository profil
type ProfileRepositoryInterface interface {
	GetOrCreate() (*models.Profile, error)
	Update(profile *models.Profile) error
	AddExperience(id uuid.UUID, amount int) (int, error)
	ClearIdentity(id uuid.UUID) error
}

// ProfileRepository implémente l'interface ProfileRepositoryInterface
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository crée une nouvelle instance du repository profil
func NewProfileRepository(db *database.DB) ProfileRepositoryInterface {
	return &ProfileRepository{db: db}
}

// GetOrCreate récupère le profil local, ou crée un profil anonyme au
// premier accès. Le profil n'est jamais supprimé, uniquement réécrit.
func (r *ProfileRepository) GetOrCreate() (*models.Profile, error) {
	var profile models.Profile

	query := `
		SELECT id, user_id, display_name, email, experience, avatar,
		       created_at, updated_at
		FROM profiles
		ORDER BY created_at
		LIMIT 1`

	err := r.db.Get(&profile, query)
	if err == nil {
		return &profile, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// Premier accès : créer un profil anonyme par défaut
	profile = models.Profile{
		ID:          uuid.New(),
		UserID:      "",
		DisplayName: "Player",
		Email:       "",
		Experience:  0,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	insert := `
		INSERT INTO profiles (id, user_id, display_name, email, experience, avatar, created_at, updated_at)
		VALUES (:id, :user_id, :display_name, :email, :experience, :avatar, :created_at, :updated_at)`

	if _, err := r.db.NamedExec(insert, &profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &profile, nil
}

// Update met à jour le profil
func (r *ProfileRepository) Update(profile *models.Profile) error {
	profile.UpdatedAt = time.Now()

	query := `
		UPDATE profiles SET
			user_id = :user_id,
			display_name = :display_name,
			email = :email,
			experience = :experience,
			avatar = :avatar,
			updated_at = :updated_at
		WHERE id = :id`

	if _, err := r.db.NamedExec(query, profile); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// AddExperience ajoute de l'expérience au profil et retourne le nouveau total.
// L'expérience ne décroît jamais.
func (r *ProfileRepository) AddExperience(id uuid.UUID, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("experience amount must be positive")
	}

	var total int

	query := `
		UPDATE profiles SET
			experience = experience + $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING experience`

	if err := r.db.Get(&total, query, id, amount); err != nil {
		return 0, fmt.Errorf("failed to add experience: %w", err)
	}

	return total, nil
}

// ClearIdentity efface l'identité distante et l'email lors d'une
// déconnexion ; le nom, l'avatar et l'expérience restent en local.
func (r *ProfileRepository) ClearIdentity(id uuid.UUID) error {
	query := `
		UPDATE profiles SET
			user_id = '',
			email = '',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to clear profile identity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("profile not found")
	}

	return nil
}
