package repository

import (
	"database/sql"
	"fmt"

	"progress/internal/database"
)

const authTokenKey = "auth_token"

// CredentialRepositoryInterface définit les méthodes du cache de credential
type CredentialRepositoryInterface interface {
	Get() (string, error)
	Save(token string) error
	Clear() error
}

// CredentialRepository implémente l'interface CredentialRepositoryInterface
type CredentialRepository struct {
	db *database.DB
}

// NewCredentialRepository crée une nouvelle instance du repository credential
func NewCredentialRepository(db *database.DB) CredentialRepositoryInterface {
	return &CredentialRepository{db: db}
}

// Get récupère le token mis en cache, chaîne vide si absent
func (r *CredentialRepository) Get() (string, error) {
	var token string

	query := `SELECT token FROM credentials WHERE key = $1`

	err := r.db.Get(&token, query, authTokenKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get cached credential: %w", err)
	}

	return token, nil
}

// Save écrit le token en cache
func (r *CredentialRepository) Save(token string) error {
	query := `
		INSERT INTO credentials (key, token, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.Exec(query, authTokenKey, token); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// Clear supprime le token du cache
func (r *CredentialRepository) Clear() error {
	query := `DELETE FROM credentials WHERE key = $1`

	if _, err := r.db.Exec(query, authTokenKey); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	return nil
}
