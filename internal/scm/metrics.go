package scm

import (
	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meridianyield/scm/internal/types"
	"github.com/meridianyield/scm/internal/utils"
)

// Prometheus collectors for the keeper. Registered once at package init and
// served by the web dashboard's /metrics endpoint.
var (
	passesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scm_passes_total",
			Help: "Keeper passes by outcome.",
		},
		[]string{"outcome"},
	)

	passDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scm_pass_duration_seconds",
			Help: "Wall-clock duration of the most recent keeper pass.",
		},
	)

	basefeeGwei = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scm_basefee_gwei",
			Help: "Basefee observed at the start of the most recent pass.",
		},
	)

	totalAssets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scm_total_assets",
			Help: "Estimated total assets under management, in whole base tokens.",
		},
	)

	withdrawable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scm_withdrawable",
			Help: "Instantly withdrawable value, in whole base tokens.",
		},
	)

	coolingTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scm_cooling_total",
			Help: "Value queued in cooldowns, matured included, in whole base tokens.",
		},
	)

	maturedTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scm_matured_total",
			Help: "Value in expired cooldowns awaiting collection, in whole base tokens.",
		},
	)

	slotsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scm_slots",
			Help: "Cooldown slots by derived status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		passesTotal,
		passDurationSeconds,
		basefeeGwei,
		totalAssets,
		withdrawable,
		coolingTotal,
		maturedTotal,
		slotsByStatus,
	)
}

const baseTokenDecimals = 18

// wholeTokens converts a wei amount to whole tokens for gauge export. Values
// beyond float64 range clamp to zero rather than poisoning the gauge.
func wholeTokens(amount sdkmath.Int) float64 {
	v, err := utils.SDKIntToFloat64(amount, baseTokenDecimals)
	if err != nil {
		return 0
	}
	return v
}

// recordLiquidityMetrics publishes the post-pass liquidity view.
func recordLiquidityMetrics(report types.LiquidityReport, views []types.SlotView) {
	totalAssets.Set(wholeTokens(report.TotalAssets))
	withdrawable.Set(wholeTokens(report.Withdrawable))
	coolingTotal.Set(wholeTokens(report.CoolingTotal))
	maturedTotal.Set(wholeTokens(report.MaturedTotal))

	counts := map[types.SlotStatus]int{
		types.SlotIdle:    0,
		types.SlotCooling: 0,
		types.SlotMatured: 0,
	}
	for _, view := range views {
		counts[view.Status]++
	}
	for status, count := range counts {
		slotsByStatus.WithLabelValues(string(status)).Set(float64(count))
	}
}
