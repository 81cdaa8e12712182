package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile représente le profil du joueur local. user_id vide signifie
// joueur anonyme : aucune synchronisation distante n'est tentée.
type Profile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"` // ID du backend de stats, vide si anonyme
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	Experience  int       `json:"experience" db:"experience"`
	Avatar      []byte    `json:"avatar,omitempty" db:"avatar"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Authenticated indique si le profil est lié à un compte distant
func (p *Profile) Authenticated() bool {
	return p.UserID != ""
}

// UpdateProfileRequest représente une demande de modification du profil
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"omitempty,min=2,max=30"`
	Email       string `json:"email" binding:"omitempty,email"`
}
