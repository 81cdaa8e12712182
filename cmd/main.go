package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progress/internal/config"
	"progress/internal/database"
	"progress/internal/handlers"
	"progress/internal/middleware"
	"progress/internal/monitoring"
	"progress/internal/remote"
	"progress/internal/repository"
	"progress/internal/service"
)

func main() {
	// Initialisation du logger
	initLogger()

	// Chargement de la configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}

	// Connexion à la base de données
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Exécution des migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Initialisation des repositories
	profileRepo := repository.NewProfileRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	// Client vers le backend de statistiques
	statsClient := remote.NewStatsClient(cfg, credentialRepo)

	// Initialisation des services
	achievementService := service.NewAchievementService(profileRepo, statsClient)
	taskService := service.NewTaskService(taskRepo, cfg, achievementService)
	statsService := service.NewStatsService(profileRepo, statsClient, cfg)
	profileService := service.NewProfileService(profileRepo, credentialRepo, statsClient)

	// Configuration du mode Gin
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configuration des routes
	metrics := monitoring.NewMetrics()
	router := setupRoutes(taskService, statsService, achievementService, profileService, cfg, db, metrics)

	// Configuration du serveur HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Démarrage du serveur en arrière-plan
	go func() {
		logrus.WithFields(logrus.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
			"env":  cfg.Server.Environment,
		}).Info("🧠 Progress Service starting...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Génération des tâches du jour au démarrage puis contrôle périodique
	// du changement de jour (la régénération est idempotente)
	go startDailyRollover(taskService)

	// Gestion gracieuse de l'arrêt
	gracefulShutdown(server)
}

// setupRoutes configure toutes les routes du service Progress
func setupRoutes(
	taskService *service.TaskService,
	statsService *service.StatsService,
	achievementService *service.AchievementService,
	profileService *service.ProfileService,
	cfg *config.Config,
	db *database.DB,
	metrics *monitoring.Metrics,
) *gin.Engine {
	router := gin.New()

	// Middleware globaux
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(metrics.Middleware())

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg, db, metrics)
	eventHandler := handlers.NewEventHandler(taskService, statsService, achievementService)
	taskHandler := handlers.NewTaskHandler(taskService)
	profileHandler := handlers.NewProfileHandler(profileService)

	// Routes de santé et monitoring
	router.GET(cfg.Monitoring.HealthPath, healthHandler.HealthCheck)
	router.GET("/health/ready", healthHandler.Readiness)
	router.GET("/health/live", healthHandler.Liveness)
	router.GET(cfg.Monitoring.MetricsPath, healthHandler.Metrics)
	router.GET("/ping", healthHandler.Ping)

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.RateLimit))
	v1.Use(middleware.ValidateContentType())
	{
		// Événements de gameplay (joueur anonyme accepté : la
		// synchronisation distante est alors un no-op silencieux)
		events := v1.Group("/events")
		{
			events.POST("/round-started", eventHandler.RoundStarted)
			events.POST("/points", eventHandler.PointsScored)
			events.POST("/round-played", eventHandler.RoundPlayed)
			events.POST("/score", eventHandler.Score)
			events.POST("/milestone/:id", eventHandler.Milestone)
		}

		// Objectifs quotidiens
		tasks := v1.Group("/tasks")
		{
			tasks.GET("/today", taskHandler.GetToday)
		}

		// Profil joueur
		player := v1.Group("/player")
		{
			player.GET("/profile", profileHandler.GetProfile)
			player.PUT("/profile", profileHandler.UpdateProfile)
			player.POST("/logout", profileHandler.Logout)
		}

		// Liaison de compte (JWT du backend de stats requis)
		protected := v1.Group("/player")
		protected.Use(middleware.JWTAuth(cfg.Auth.JWTSecret))
		{
			protected.POST("/login", profileHandler.Login)
		}
	}

	return router
}

// startDailyRollover régénère le jeu de tâches au démarrage puis vérifie
// le changement de jour toutes les heures
func startDailyRollover(taskService *service.TaskService) {
	if _, err := taskService.EnsureTodaysTasks(); err != nil {
		logrus.WithError(err).Error("Failed to generate initial task set")
	}

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := taskService.EnsureTodaysTasks(); err != nil {
			logrus.WithError(err).Error("Failed to roll over daily tasks")
		}
	}
}

// initLogger initialise le logger global
func initLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	// Niveau de log selon l'environnement
	if os.Getenv("ENVIRONMENT") == "production" {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.WithField("service", "progress").Info("Logger initialized")
}

// gracefulShutdown gère l'arrêt gracieux du serveur
func gracefulShutdown(server *http.Server) {
	// Canal pour capturer les signaux système
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Attendre un signal
	<-quit
	logrus.Info("🛑 Progress Service shutting down...")

	// Timeout pour l'arrêt gracieux
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Arrêter le serveur HTTP
	if err := server.Shutdown(ctx); err != nil {
		logrus.Error("Progress service forced to shutdown:", err)
	}

	logrus.Info("✅ Progress Service stopped")
}
