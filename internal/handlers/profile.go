package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progress/internal/middleware"
	"progress/internal/models"
	"progress/internal/service"
)

// ProfileHandler gère les routes du profil joueur
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler crée un nouveau handler de profil
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile retourne le profil local
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile()
	if err != nil {
		logrus.WithError(err).Error("Failed to load profile")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to load profile",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile modifie le nom et l'email du profil
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request data",
			"details":    err.Error(),
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	profile, err := h.profileService.UpdateProfile(req)
	if err != nil {
		logrus.WithError(err).Error("Profile update failed")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to update profile",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Login lie le profil local au compte du JWT présenté et met le token en
// cache pour les appels vers le backend de stats
func (h *ProfileHandler) Login(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":      "User ID not found",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	// Le token brut devient le credential mis en cache
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	profile, err := h.profileService.Login(
		userID,
		c.GetString("username"),
		c.GetString("email"),
		token,
	)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Login failed")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to link profile",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Logout efface l'identité et le credential ; nom, avatar et expérience
// restent en local
func (h *ProfileHandler) Logout(c *gin.Context) {
	profile, err := h.profileService.Logout()
	if err != nil {
		logrus.WithError(err).Error("Logout failed")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to log out",
			"request_id": c.GetHeader("X-Request-ID"),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}
