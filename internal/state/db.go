package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
// Token amounts are stored as NUMERIC(78, 0): wide enough for any uint256 wei
// value without loss.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS strategy_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			max_tend_basefee_gwei BIGINT NOT NULL,
			min_discount_bps BIGINT NOT NULL,
			min_cooldown_amount NUMERIC(78, 0) NOT NULL,
			min_auction_amount NUMERIC(78, 0) NOT NULL,
			max_auction_amount NUMERIC(78, 0) NOT NULL,
			auction_starting_price NUMERIC(78, 0) NOT NULL,
			auction_range_size NUMERIC(78, 0) NOT NULL,
			auction_length_seconds BIGINT NOT NULL,
			auction_cooldown_seconds BIGINT NOT NULL,
			deposit_limit NUMERIC(78, 0) NOT NULL,
			CONSTRAINT uq_strategy_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_strategy_parameters_config_active ON strategy_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS pass_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			pass_number INTEGER NOT NULL,
			pass_id UUID NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			strategy_params_id INTEGER REFERENCES strategy_parameters(params_id),

			basefee_gwei DOUBLE PRECISION NOT NULL,
			skipped BOOLEAN NOT NULL DEFAULT FALSE,
			skip_reason TEXT,

			initial_liquidity JSONB,
			final_liquidity JSONB,
			initial_slots JSONB,
			final_slots JSONB,

			actions TEXT[],
			duration_ms BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_pass_snapshots_timestamp ON pass_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_pass_snapshots_pass ON pass_snapshots(pass_number DESC);
		CREATE INDEX IF NOT EXISTS idx_pass_snapshots_pass_id ON pass_snapshots(pass_id);

		-- Pass counter table for persistent global pass tracking
		CREATE TABLE IF NOT EXISTS pass_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_pass INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO pass_counter (id, current_pass)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
