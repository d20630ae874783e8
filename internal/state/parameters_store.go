package state

import (
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/meridianyield/scm/internal/types"
)

// SaveStrategyParameters saves a new version of strategy parameters.
func SaveStrategyParameters(params types.StrategyParams, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if err := params.Validate(); err != nil {
		return 0, fmt.Errorf("refusing to persist invalid parameters: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE strategy_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO strategy_parameters (
            version, config_name, is_active, activated_at, created_at,
            max_tend_basefee_gwei, min_discount_bps,
            min_cooldown_amount, min_auction_amount, max_auction_amount,
            auction_starting_price, auction_range_size,
            auction_length_seconds, auction_cooldown_seconds,
            deposit_limit
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7,
            $8, $9, $10,
            $11, $12,
            $13, $14,
            $15
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.MaxTendBasefeeGwei, params.MinDiscountBps,
		params.MinCooldownAmount.String(), params.MinAuctionAmount.String(), params.MaxAuctionAmount.String(),
		params.AuctionStartingPrice.String(), params.AuctionRangeSize.String(),
		int64(params.AuctionLength/time.Second), int64(params.AuctionCooldown/time.Second),
		params.DepositLimit.String(),
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert strategy parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved strategy parameters")
	return paramsID, nil
}

// LoadActiveStrategyParameters loads the currently active strategy parameters.
func LoadActiveStrategyParameters(configName string) (*types.StrategyParams, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT
            max_tend_basefee_gwei, min_discount_bps,
            min_cooldown_amount, min_auction_amount, max_auction_amount,
            auction_starting_price, auction_range_size,
            auction_length_seconds, auction_cooldown_seconds,
            deposit_limit
        FROM strategy_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	row := DB.QueryRow(query, configName)
	p, err := scanStrategyParams(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active strategy parameters found for config '%s'", configName)
		}
		return nil, fmt.Errorf("failed to scan active strategy parameters for config '%s': %w", configName, err)
	}
	log.Info().Str("config", configName).Msg("Loaded active strategy parameters")
	return p, nil
}

// GetActiveStrategyParametersID returns the params_id of the currently active
// strategy parameters, or nil when none is active.
func GetActiveStrategyParametersID(configName string) (*int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT params_id
        FROM strategy_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var paramsID int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&paramsID)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug().Str("config", configName).Msg("No active strategy parameters found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active strategy parameters ID for config '%s': %w", configName, err)
	}

	return &paramsID, nil
}

func scanStrategyParams(row *sql.Row) (*types.StrategyParams, error) {
	var (
		p                                            types.StrategyParams
		minCooldown, minAuction, maxAuction          string
		startingPrice, rangeSize, depositLimit       string
		auctionLengthSeconds, auctionCooldownSeconds int64
	)
	err := row.Scan(
		&p.MaxTendBasefeeGwei, &p.MinDiscountBps,
		&minCooldown, &minAuction, &maxAuction,
		&startingPrice, &rangeSize,
		&auctionLengthSeconds, &auctionCooldownSeconds,
		&depositLimit,
	)
	if err != nil {
		return nil, err
	}

	fields := map[string]struct {
		raw  string
		dest *sdkmath.Int
	}{
		"min_cooldown_amount":    {minCooldown, &p.MinCooldownAmount},
		"min_auction_amount":     {minAuction, &p.MinAuctionAmount},
		"max_auction_amount":     {maxAuction, &p.MaxAuctionAmount},
		"auction_starting_price": {startingPrice, &p.AuctionStartingPrice},
		"auction_range_size":     {rangeSize, &p.AuctionRangeSize},
		"deposit_limit":          {depositLimit, &p.DepositLimit},
	}
	for column, f := range fields {
		parsed, ok := sdkmath.NewIntFromString(f.raw)
		if !ok {
			return nil, fmt.Errorf("column %s holds non-integer value %q", column, f.raw)
		}
		*f.dest = parsed
	}

	p.AuctionLength = time.Duration(auctionLengthSeconds) * time.Second
	p.AuctionCooldown = time.Duration(auctionCooldownSeconds) * time.Second
	return &p, nil
}
