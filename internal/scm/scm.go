// Package scm runs the Staked Cooldown Manager keeper: the periodic pass
// that collects matured cooldowns, dispatches loose staked balance into idle
// slots, and records a full before/after snapshot of every pass.
package scm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridianyield/scm/internal/engine"
	"github.com/meridianyield/scm/internal/logger"
	"github.com/meridianyield/scm/internal/state"
	"github.com/meridianyield/scm/internal/types"
)

const (
	// Exported for use in main.go
	DEFAULT_CONFIG_NAME    = "default_scm_strategy"
	DEFAULT_CONFIG_VERSION = 1
)

// BasefeeSource reports the current network basefee in gwei. The keeper uses
// it to avoid tending during gas spikes.
type BasefeeSource interface {
	BasefeeGwei(ctx context.Context) (float64, error)
}

// StaticBasefee is a fixed-value BasefeeSource for simulated runs.
type StaticBasefee float64

func (b StaticBasefee) BasefeeGwei(ctx context.Context) (float64, error) {
	return float64(b), nil
}

// Keeper drives the strategy through repeated position-adjustment passes.
type Keeper struct {
	logger   zerolog.Logger
	strategy *engine.Strategy
	basefee  BasefeeSource

	configName    string
	configVersion int

	// Fallback counter when the database is unavailable.
	passCount int
}

// Config holds the configuration for creating a new Keeper instance
type Config struct {
	Strategy      *engine.Strategy
	Basefee       BasefeeSource
	ConfigName    string
	ConfigVersion int
}

// NewKeeper creates a new Keeper instance with dependency injection
func NewKeeper(cfg Config) (*Keeper, error) {
	if err := validateKeeperConfig(cfg); err != nil {
		return nil, fmt.Errorf("keeper configuration validation failed: %w", err)
	}

	k := &Keeper{
		logger:        logger.GetForComponent("scm_core"),
		strategy:      cfg.Strategy,
		basefee:       cfg.Basefee,
		configName:    cfg.ConfigName,
		configVersion: cfg.ConfigVersion,
	}

	k.logger.Info().
		Str("configName", k.configName).
		Int("configVersion", k.configVersion).
		Msg("Keeper instance created successfully with dependency injection")

	return k, nil
}

func validateKeeperConfig(cfg Config) error {
	if cfg.Strategy == nil {
		return fmt.Errorf("strategy cannot be nil")
	}
	if cfg.Basefee == nil {
		return fmt.Errorf("basefee source cannot be nil")
	}
	if cfg.ConfigName == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	if cfg.ConfigVersion <= 0 {
		return fmt.Errorf("config version must be positive")
	}
	return nil
}

// RunLoop starts the main keeper loop with the specified interval
func (k *Keeper) RunLoop(ctx context.Context, interval time.Duration) {
	k.logger.Info().
		Dur("interval", interval).
		Msg("Starting keeper main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first pass immediately
	k.RunPass(ctx)

	for {
		select {
		case <-ctx.Done():
			k.logger.Info().Msg("Keeper loop stopped due to context cancellation")
			return
		case <-ticker.C:
			k.RunPass(ctx)
		}
	}
}

// ShouldTend reports whether a pass would act right now, with the reason when
// it would not. A zero MaxTendBasefeeGwei disables the gate.
func (k *Keeper) ShouldTend(ctx context.Context) (bool, string, error) {
	fee, err := k.basefee.BasefeeGwei(ctx)
	if err != nil {
		return false, "", fmt.Errorf("failed to read basefee: %w", err)
	}
	maxFee := k.strategy.Params().MaxTendBasefeeGwei
	if maxFee > 0 && fee > float64(maxFee) {
		return false, fmt.Sprintf("basefee %.2f gwei above limit %d gwei", fee, maxFee), nil
	}
	return true, "", nil
}

// RunPass executes one complete keeper pass: gate on gas, snapshot the
// initial state, adjust the position, snapshot the outcome and persist it.
func (k *Keeper) RunPass(ctx context.Context) {
	passStartTime := time.Now()

	// Unique pass ID for tracing logs across the entire pass
	passID := uuid.New().String()
	passLogger := k.logger.With().Str("pass_id", passID).Logger()

	passLogger.Info().Msg("--- Starting keeper pass ---")

	snapshot := types.PassSnapshot{
		PassNumber: k.nextPassNumber(passLogger),
		PassID:     passID,
		Timestamp:  passStartTime,
		ParamsID:   k.activeParamsID(passLogger),
		Actions:    make([]string, 0),
	}

	// --- Step 1: Gas gate ---
	fee, err := k.basefee.BasefeeGwei(ctx)
	if err != nil {
		passLogger.Error().Err(err).Msg("Pass aborted: failed to read basefee.")
		passesTotal.WithLabelValues("failed").Inc()
		return
	}
	snapshot.BasefeeGwei = fee
	basefeeGwei.Set(fee)

	maxFee := k.strategy.Params().MaxTendBasefeeGwei
	if maxFee > 0 && fee > float64(maxFee) {
		passLogger.Info().
			Float64("basefeeGwei", fee).
			Uint64("maxGwei", maxFee).
			Msg("Pass skipped: basefee above tend limit")
		snapshot.Skipped = true
		snapshot.SkipReason = fmt.Sprintf("basefee %.2f gwei above limit %d gwei", fee, maxFee)
		snapshot.DurationMS = time.Since(passStartTime).Milliseconds()
		passesTotal.WithLabelValues("skipped").Inc()
		k.savePassSnapshot(snapshot, passLogger)
		return
	}

	// --- Step 2: Initial state ---
	initialLiquidity, err := k.strategy.LiquidityReport()
	if err != nil {
		passLogger.Error().Err(err).Msg("Pass aborted: failed to assemble initial liquidity report.")
		passesTotal.WithLabelValues("failed").Inc()
		return
	}
	initialSlots, err := k.strategy.SlotViews()
	if err != nil {
		passLogger.Error().Err(err).Msg("Pass aborted: failed to project initial slot views.")
		passesTotal.WithLabelValues("failed").Inc()
		return
	}
	snapshot.InitialLiquidity = initialLiquidity
	snapshot.InitialSlots = initialSlots

	passLogger.Info().
		Str("totalAssets", initialLiquidity.TotalAssets.String()).
		Str("coolingTotal", initialLiquidity.CoolingTotal.String()).
		Str("maturedTotal", initialLiquidity.MaturedTotal.String()).
		Msg("Step 2: Initial liquidity assessed.")

	// --- Step 3: Position adjustment ---
	actions, err := k.strategy.AdjustPosition()
	if err != nil {
		passLogger.Error().Err(err).Msg("Pass failed: position adjustment returned an error.")
		snapshot.SkipReason = fmt.Sprintf("position adjustment failed: %v", err)
		snapshot.DurationMS = time.Since(passStartTime).Milliseconds()
		passesTotal.WithLabelValues("failed").Inc()
		k.savePassSnapshot(snapshot, passLogger)
		return
	}
	snapshot.Actions = actions
	passLogger.Info().
		Int("actionCount", len(actions)).
		Strs("actions", actions).
		Msg("Step 3: Position adjustment complete.")

	// --- Step 4: Final state ---
	finalLiquidity, err := k.strategy.LiquidityReport()
	if err != nil {
		passLogger.Error().Err(err).Msg("Pass failed: could not assemble final liquidity report.")
		passesTotal.WithLabelValues("failed").Inc()
		return
	}
	finalSlots, err := k.strategy.SlotViews()
	if err != nil {
		passLogger.Error().Err(err).Msg("Pass failed: could not project final slot views.")
		passesTotal.WithLabelValues("failed").Inc()
		return
	}
	snapshot.FinalLiquidity = finalLiquidity
	snapshot.FinalSlots = finalSlots

	// Adjustment only moves value between pools; a drop in total assets means
	// something outside this keeper touched the strategy mid-pass.
	if finalLiquidity.TotalAssets.LT(initialLiquidity.TotalAssets) {
		passLogger.Warn().
			Str("before", initialLiquidity.TotalAssets.String()).
			Str("after", finalLiquidity.TotalAssets.String()).
			Msg("Total assets decreased across the pass")
	}

	snapshot.DurationMS = time.Since(passStartTime).Milliseconds()
	passDurationSeconds.Set(time.Since(passStartTime).Seconds())
	passesTotal.WithLabelValues("completed").Inc()
	recordLiquidityMetrics(finalLiquidity, finalSlots)

	k.savePassSnapshot(snapshot, passLogger)

	passLogger.Info().
		Int64("durationMs", snapshot.DurationMS).
		Str("totalAssets", finalLiquidity.TotalAssets.String()).
		Str("withdrawable", finalLiquidity.Withdrawable.String()).
		Msg("--- Keeper pass completed ---")
}

// nextPassNumber advances the persistent pass counter, falling back to an
// in-memory count when the database is unavailable.
func (k *Keeper) nextPassNumber(passLogger zerolog.Logger) int {
	k.passCount++
	if state.DB == nil {
		return k.passCount
	}
	n, err := state.IncrementPassNumber()
	if err != nil {
		passLogger.Warn().Err(err).Msg("Falling back to in-memory pass counter")
		return k.passCount
	}
	k.passCount = n
	return n
}

func (k *Keeper) activeParamsID(passLogger zerolog.Logger) *int64 {
	if state.DB == nil {
		return nil
	}
	id, err := state.GetActiveStrategyParametersID(k.configName)
	if err != nil {
		passLogger.Warn().Err(err).Msg("Could not resolve active parameters ID")
		return nil
	}
	return id
}

func (k *Keeper) savePassSnapshot(snapshot types.PassSnapshot, passLogger zerolog.Logger) {
	if state.DB == nil {
		passLogger.Debug().Msg("Database not configured; pass snapshot not persisted")
		return
	}
	if _, err := state.SavePassSnapshot(snapshot); err != nil {
		passLogger.Error().Err(err).Msg("Failed to persist pass snapshot")
	}
}
