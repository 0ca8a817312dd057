// Package score rates a measurement record as an ordinal quality tier.
package score

import "network-quality/pkg/models"

// Worst-case sentinels substituted for absent fields so that missing data
// never scores better than the data justifies.
const (
	sentinelLatencyMs   = 999
	sentinelDownlink    = 0
	sentinelLossPercent = 100
)

// Thresholds for the tier table. Edges are strict: a value sitting exactly on
// an excellent bound falls through to good, and so on down the table.
const (
	excellentLatencyMs = 50
	excellentDownlink  = 20
	excellentLoss      = 1

	goodLatencyMs = 100
	goodDownlink  = 5
	goodLoss      = 5

	fairLatencyMs = 200
	fairDownlink  = 1
	fairLoss      = 10
)

// Score maps a measurement record to a quality tier. It is a pure function:
// no I/O, no side effects. The tier table is evaluated top-down and the first
// match wins; a disconnected record is always offline regardless of any other
// field.
func Score(rec *models.MeasurementRecord) models.QualityTier {
	if !rec.IsConnected {
		return models.TierOffline
	}

	latency := valueOr(rec.LatencyMs, sentinelLatencyMs)
	downlink := valueOr(rec.DownlinkMbps, sentinelDownlink)
	loss := valueOr(rec.PacketLossPercent, sentinelLossPercent)

	switch {
	case latency < excellentLatencyMs && downlink > excellentDownlink && loss < excellentLoss:
		return models.TierExcellent
	case latency < goodLatencyMs && downlink >= goodDownlink && loss < goodLoss:
		return models.TierGood
	case latency < fairLatencyMs && downlink >= fairDownlink && loss < fairLoss:
		return models.TierFair
	default:
		return models.TierPoor
	}
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
