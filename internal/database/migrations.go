// ===============================
// internal/database/migrations.go - Reel Episode Schema
// ===============================

package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(db *sqlx.DB) error {
	log.Println("📄 Running reel episode migrations...")

	// Check if migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			version VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := []Migration{
		{
			Version: "001_initial_reel_schema",
			Query: `
				-- Users table - Firebase-backed accounts
				CREATE TABLE IF NOT EXISTS users (
					uid VARCHAR(255) PRIMARY KEY,
					name VARCHAR(255) NOT NULL DEFAULT 'User',
					email VARCHAR(255) DEFAULT '',
					profile_image TEXT DEFAULT '',
					user_type VARCHAR(20) DEFAULT 'user',
					is_active BOOLEAN DEFAULT true,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT users_user_type_check CHECK (user_type IN ('user', 'admin', 'moderator'))
				);

				-- Reels table - parent content containers
				CREATE TABLE IF NOT EXISTS reels (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					title VARCHAR(255) NOT NULL,
					description TEXT NOT NULL,
					user_id VARCHAR(255) NOT NULL,
					status VARCHAR(20) DEFAULT 'pending',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT reels_status_check CHECK (status IN ('pending', 'approved', 'rejected'))
				);

				-- Reel episodes table - core entity
				CREATE TABLE IF NOT EXISTS reel_episodes (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					reel_id UUID NOT NULL,
					user_id VARCHAR(255) NOT NULL,
					episode_number INTEGER NOT NULL CHECK (episode_number > 0),
					episode_name VARCHAR(255) NOT NULL,
					description TEXT NOT NULL,
					caption TEXT DEFAULT '',
					is_free BOOLEAN DEFAULT false,
					is_locked BOOLEAN DEFAULT true,
					video_url TEXT DEFAULT '',
					likes TEXT[] DEFAULT '{}',
					saves TEXT[] DEFAULT '{}',
					status VARCHAR(20) DEFAULT 'pending',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(reel_id, episode_number),
					CONSTRAINT reel_episodes_status_check CHECK (status IN ('pending', 'approved', 'rejected'))
				);

				-- Per-user paywall unlock grants
				CREATE TABLE IF NOT EXISTS episode_unlocks (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					episode_id UUID NOT NULL,
					user_id VARCHAR(255) NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(episode_id, user_id)
				);
			`,
		},
		{
			Version: "002_episode_indexes",
			Query: `
				-- Episode listing by reel, ordered by episode number
				CREATE INDEX IF NOT EXISTS idx_episodes_reel_number ON reel_episodes(reel_id, episode_number);

				-- Approved-only listing path
				CREATE INDEX IF NOT EXISTS idx_episodes_reel_status ON reel_episodes(reel_id, status);

				-- Admin listing by creation time
				CREATE INDEX IF NOT EXISTS idx_episodes_created ON reel_episodes(created_at DESC);

				-- Saved-by-user listing scans the saves array
				CREATE INDEX IF NOT EXISTS idx_episodes_saves ON reel_episodes USING GIN(saves);

				-- Unlock lookups per episode and per user
				CREATE INDEX IF NOT EXISTS idx_unlocks_episode ON episode_unlocks(episode_id);
				CREATE INDEX IF NOT EXISTS idx_unlocks_user ON episode_unlocks(user_id);

				-- Reels by creator
				CREATE INDEX IF NOT EXISTS idx_reels_user ON reels(user_id, created_at DESC);
			`,
		},
	}

	for _, migration := range migrations {
		if err := applyMigration(db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
	}

	log.Println("✅ Reel episode migrations completed successfully")
	return nil
}

type Migration struct {
	Version string
	Query   string
}

func applyMigration(db *sqlx.DB, migration Migration) error {
	// Check if migration already applied
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = $1", migration.Version).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	if count > 0 {
		return nil
	}

	log.Printf("🔧 Applying migration: %s", migration.Version)

	// Apply migration in a transaction
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(migration.Query)
	if err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
	}

	// Record migration
	_, err = tx.Exec("INSERT INTO migrations (version) VALUES ($1)", migration.Version)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", migration.Version, err)
	}

	return nil
}
