package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"progress/internal/config"
)

// DB représente la connection à la base de données
type DB struct {
	*sqlx.DB
	Config *config.DatabaseConfig
}

// NewConnection crée une nouvelle connection à la base de données
func NewConnection(cfg config.DatabaseConfig) (*DB, error) {
	// Construction de l'URL de connection
	dsn := cfg.GetDatabaseURL()

	// connection à la base de données
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configuration de la pool de connections
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	// Test de la connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.Name,
		"service":  "progress",
	}).Info("Connected to PostgreSQL database")

	return &DB{
		DB:     db,
		Config: &cfg,
	}, nil
}

// Close ferme la connection à la base de données
func (db *DB) Close() error {
	if db.DB != nil {
		logrus.Info("Closing progress database connection")
		return db.DB.Close()
	}
	return nil
}

// HealthCheck vérifie l'état de la base de données
func (db *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("progress database health check failed: %w", err)
	}

	return nil
}

// RunMigrations exécute les migrations de base de données
func RunMigrations(db *DB) error {
	logrus.Info("Running progress database migrations...")

	// Migrations SQL
	migrations := []string{
		createProfilesTable,
		createTasksTable,
		createTaskProgressTable,
		createCredentialsTable,
		createSyncMetaTable,
		createIndexes,
	}

	// Exécuter chaque migration
	for i, migration := range migrations {
		logrus.WithField("migration", i+1).Debug("Executing migration")

		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	logrus.Info("Progress database migrations completed successfully")
	return nil
}

// Migrations SQL
const createProfilesTable = `
CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id TEXT NOT NULL DEFAULT '', -- ID du backend de stats, vide si anonyme
    display_name VARCHAR(30) NOT NULL DEFAULT '',
    email VARCHAR(255) NOT NULL DEFAULT '',
    experience INTEGER NOT NULL DEFAULT 0 CHECK (experience >= 0),
    avatar BYTEA,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    created_on DATE NOT NULL,
    kind VARCHAR(40) NOT NULL CHECK (kind IN (
        'rounds_in_category', 'rounds_in_game',
        'points_in_game', 'points_in_each_game_in_category')),
    target_value INTEGER NOT NULL CHECK (target_value > 0),
    current_value INTEGER NOT NULL DEFAULT 0,
    game_name VARCHAR(50) NOT NULL DEFAULT '',
    category_name VARCHAR(50) NOT NULL DEFAULT '',
    completed BOOLEAN NOT NULL DEFAULT FALSE
);`

const createTaskProgressTable = `
CREATE TABLE IF NOT EXISTS task_progress (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    game_name VARCHAR(50) NOT NULL,
    points INTEGER NOT NULL DEFAULT 0,
    UNIQUE(task_id, game_name)
);`

const createCredentialsTable = `
CREATE TABLE IF NOT EXISTS credentials (
    key VARCHAR(50) PRIMARY KEY,
    token TEXT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

const createSyncMetaTable = `
CREATE TABLE IF NOT EXISTS sync_meta (
    key VARCHAR(50) PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

const createIndexes = `
-- Index pour optimiser les requêtes
CREATE INDEX IF NOT EXISTS idx_tasks_created_on ON tasks(created_on);
CREATE INDEX IF NOT EXISTS idx_tasks_kind ON tasks(kind);
CREATE INDEX IF NOT EXISTS idx_task_progress_task_id ON task_progress(task_id);
`
