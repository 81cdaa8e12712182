package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config représente la configuration du service Progress
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Remote     RemoteConfig     `mapstructure:"remote"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Game       GameConfig       `mapstructure:"game"`
}

// ServerConfig configuration du serveur Progress
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Environment  string        `mapstructure:"environment"`
	Debug        bool          `mapstructure:"debug"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig configuration PostgreSQL
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// AuthConfig configuration JWT
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// RemoteConfig configuration du backend de statistiques distant
type RemoteConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig configuration rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BurstSize         int           `mapstructure:"burst_size"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// MonitoringConfig configuration monitoring
type MonitoringConfig struct {
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// GameConfig constantes de génération des tâches et de progression
type GameConfig struct {
	DailyTaskCount    int `mapstructure:"daily_task_count"`
	RoundsTargetMin   int `mapstructure:"rounds_target_min"`   // multiple de 5
	RoundsTargetMax   int `mapstructure:"rounds_target_max"`   // multiple de 5
	PointsTargetMin   int `mapstructure:"points_target_min"`   // multiple de 50
	PointsTargetMax   int `mapstructure:"points_target_max"`   // multiple de 50
	ExperiencePerGame int `mapstructure:"experience_per_game"` // XP par manche terminée
}

// LoadConfig charge la configuration
func LoadConfig() (*Config, error) {
	// Configuration par défaut
	config := &Config{
		Server: ServerConfig{
			Port:         8084,
			Host:         "0.0.0.0",
			Environment:  "development",
			Debug:        true,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "progress_user",
			Password:     "progress_password",
			Name:         "progress_db",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			JWTSecret: "your-super-secret-jwt-key-change-in-production-minimum-64-characters",
		},
		Remote: RemoteConfig{
			URL:     "http://localhost:8085",
			Timeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 300,
			BurstSize:         50,
			CleanupInterval:   5 * time.Minute,
		},
		Monitoring: MonitoringConfig{
			MetricsPath: "/metrics",
			HealthPath:  "/health",
		},
		Game: GameConfig{
			DailyTaskCount:    3,
			RoundsTargetMin:   10,
			RoundsTargetMax:   30,
			PointsTargetMin:   1000,
			PointsTargetMax:   2500,
			ExperiencePerGame: 50,
		},
	}

	// Charger depuis les variables d'environnement
	loadFromEnv(config)

	// Tentative de chargement depuis fichier config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/progress/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		if err := viper.Unmarshal(config); err != nil {
			return nil, fmt.Errorf("error unmarshalling config: %w", err)
		}
	}

	// Validation
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// loadFromEnv charge depuis les variables d'environnement
func loadFromEnv(config *Config) {
	// Server
	if port := os.Getenv("PROGRESS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PROGRESS_HOST"); host != "" {
		config.Server.Host = host
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Server.Environment = env
	}

	// Database
	if host := os.Getenv("PROGRESS_DB_HOST"); host != "" {
		config.Database.Host = host
	}
	if port := os.Getenv("PROGRESS_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Database.Port = p
		}
	}
	if user := os.Getenv("PROGRESS_DB_USER"); user != "" {
		config.Database.User = user
	}
	if password := os.Getenv("PROGRESS_DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if name := os.Getenv("PROGRESS_DB_NAME"); name != "" {
		config.Database.Name = name
	}

	// Auth / Remote
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if remoteURL := os.Getenv("STATS_SERVICE_URL"); remoteURL != "" {
		config.Remote.URL = remoteURL
	}
}

// validateConfig valide la configuration
func validateConfig(config *Config) error {
	// Validation serveur
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validation base de données
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if config.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	// Validation Auth / Remote
	if len(config.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters long")
	}
	if config.Remote.URL == "" {
		return fmt.Errorf("remote stats service URL is required")
	}

	// Validation Game
	if config.Game.DailyTaskCount < 1 || config.Game.DailyTaskCount > 4 {
		return fmt.Errorf("daily task count must be between 1 and 4")
	}
	if config.Game.RoundsTargetMin > config.Game.RoundsTargetMax {
		return fmt.Errorf("invalid rounds target range")
	}
	if config.Game.PointsTargetMin > config.Game.PointsTargetMax {
		return fmt.Errorf("invalid points target range")
	}

	return nil
}

// GetDatabaseURL retourne l'URL de connection PostgreSQL
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}
