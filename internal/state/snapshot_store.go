package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq" // PostgreSQL array support
	"github.com/rs/zerolog/log"

	"github.com/meridianyield/scm/internal/types"
)

// SavePassSnapshot saves a complete keeper pass snapshot to the database.
func SavePassSnapshot(snapshot types.PassSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	initialLiquidityJSON, err := json.Marshal(snapshot.InitialLiquidity)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal initial_liquidity: %w", err)
	}
	finalLiquidityJSON, err := json.Marshal(snapshot.FinalLiquidity)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal final_liquidity: %w", err)
	}
	initialSlotsJSON, err := json.Marshal(snapshot.InitialSlots)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal initial_slots: %w", err)
	}
	finalSlotsJSON, err := json.Marshal(snapshot.FinalSlots)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal final_slots: %w", err)
	}

	query := `
		INSERT INTO pass_snapshots (
			pass_number, pass_id, snapshot_timestamp, strategy_params_id,
			basefee_gwei, skipped, skip_reason,
			initial_liquidity, final_liquidity, initial_slots, final_slots,
			actions, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.PassNumber, snapshot.PassID, snapshot.Timestamp, snapshot.ParamsID,
		snapshot.BasefeeGwei, snapshot.Skipped, snapshot.SkipReason,
		initialLiquidityJSON, finalLiquidityJSON, initialSlotsJSON, finalSlotsJSON,
		pq.Array(snapshot.Actions), snapshot.DurationMS,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save pass snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("pass_number", snapshot.PassNumber).
		Bool("skipped", snapshot.Skipped).
		Msg("Pass snapshot saved to database")

	return snapshotID, nil
}

// GetRecentPasses returns the most recent pass snapshots, newest first.
func GetRecentPasses(limit int) ([]types.PassSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT pass_number, pass_id, snapshot_timestamp, strategy_params_id,
		       basefee_gwei, skipped, skip_reason,
		       initial_liquidity, final_liquidity, initial_slots, final_slots,
		       actions, duration_ms
		FROM pass_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent passes: %w", err)
	}
	defer rows.Close()

	var snapshots []types.PassSnapshot
	for rows.Next() {
		snapshot, err := scanPassSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pass snapshots: %w", err)
	}
	return snapshots, nil
}

// GetPassByID returns the snapshot for a single pass, or nil when unknown.
func GetPassByID(passID string) (*types.PassSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT pass_number, pass_id, snapshot_timestamp, strategy_params_id,
		       basefee_gwei, skipped, skip_reason,
		       initial_liquidity, final_liquidity, initial_slots, final_slots,
		       actions, duration_ms
		FROM pass_snapshots
		WHERE pass_id = $1
		ORDER BY snapshot_timestamp DESC
		LIMIT 1;`

	rows, err := DB.Query(query, passID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pass %s: %w", passID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading pass %s: %w", passID, err)
		}
		return nil, nil
	}
	snapshot, err := scanPassSnapshot(rows)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func scanPassSnapshot(rows *sql.Rows) (types.PassSnapshot, error) {
	var (
		snapshot         types.PassSnapshot
		skipReason       sql.NullString
		initialLiquidity []byte
		finalLiquidity   []byte
		initialSlots     []byte
		finalSlots       []byte
	)
	err := rows.Scan(
		&snapshot.PassNumber, &snapshot.PassID, &snapshot.Timestamp, &snapshot.ParamsID,
		&snapshot.BasefeeGwei, &snapshot.Skipped, &skipReason,
		&initialLiquidity, &finalLiquidity, &initialSlots, &finalSlots,
		pq.Array(&snapshot.Actions), &snapshot.DurationMS,
	)
	if err != nil {
		return types.PassSnapshot{}, fmt.Errorf("failed to scan pass snapshot: %w", err)
	}
	snapshot.SkipReason = skipReason.String

	jsonFields := map[string]struct {
		raw  []byte
		dest interface{}
	}{
		"initial_liquidity": {initialLiquidity, &snapshot.InitialLiquidity},
		"final_liquidity":   {finalLiquidity, &snapshot.FinalLiquidity},
		"initial_slots":     {initialSlots, &snapshot.InitialSlots},
		"final_slots":       {finalSlots, &snapshot.FinalSlots},
	}
	for column, f := range jsonFields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return types.PassSnapshot{}, fmt.Errorf("failed to unmarshal %s: %w", column, err)
		}
	}
	return snapshot, nil
}

// GetLatestPass returns the most recent pass snapshot, or nil when the table
// is empty.
func GetLatestPass() (*types.PassSnapshot, error) {
	snapshots, err := GetRecentPasses(1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	latest := snapshots[0]
	log.Debug().Str("pass_id", latest.PassID).Msg("Retrieved latest pass snapshot")
	return &latest, nil
}
