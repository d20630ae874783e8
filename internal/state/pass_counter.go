/*

This file manages the persistent global pass counter for the keeper. The
counter is stored in the database to ensure continuity across restarts.

*/

package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ensurePassCounterTable creates the pass_counter table if it doesn't exist
func ensurePassCounterTable() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	createTableSQL := `
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

	_, err := DB.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create pass_counter table: %w", err)
	}

	return nil
}

// GetCurrentPassNumber retrieves the current pass number from the database
func GetCurrentPassNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	if err := ensurePassCounterTable(); err != nil {
		return 0, err
	}

	query := `SELECT current_pass FROM pass_counter WHERE id = 1;`

	var currentPass int
	row := DB.QueryRow(query)
	err := row.Scan(&currentPass)

	if err != nil {
		if err == sql.ErrNoRows {
			// Should not happen due to the INSERT in ensurePassCounterTable
			log.Warn().Msg("No pass counter row found, initializing to 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current pass number: %w", err)
	}

	return currentPass, nil
}

// IncrementPassNumber increments the pass counter and returns the new value
func IncrementPassNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	if err := ensurePassCounterTable(); err != nil {
		return 0, err
	}

	updateQuery := `
		UPDATE pass_counter
		SET current_pass = current_pass + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_pass;`

	var newPass int
	row := DB.QueryRow(updateQuery)
	err := row.Scan(&newPass)

	if err != nil {
		return 0, fmt.Errorf("failed to increment pass number: %w", err)
	}

	log.Info().Int("newPass", newPass).Msg("Incremented pass counter")
	return newPass, nil
}

// ResetPassNumber resets the pass counter to a specific value (for testing/maintenance)
func ResetPassNumber(passNumber int) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := ensurePassCounterTable(); err != nil {
		return err
	}

	if passNumber < 0 {
		return fmt.Errorf("pass number cannot be negative: %d", passNumber)
	}

	updateQuery := `
		UPDATE pass_counter
		SET current_pass = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1;`

	result, err := DB.Exec(updateQuery, passNumber)
	if err != nil {
		return fmt.Errorf("failed to reset pass number to %d: %w", passNumber, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no rows updated when resetting pass number")
	}

	log.Warn().Int("passNumber", passNumber).Msg("Reset pass counter")
	return nil
}
