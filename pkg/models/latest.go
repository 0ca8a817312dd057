package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// LatestMeasurement is the single-row table holding the most recent
// measurement for external consumers. The row is replaced on every completed
// run; no history is kept.
type LatestMeasurement struct {
	bun.BaseModel `bun:"table:latest_measurement,alias:lm"`

	Key               int64     `bun:",pk"`
	Time              time.Time `bun:",notnull"`
	Tier              string    `bun:",notnull"`
	LinkType          string    `bun:",notnull"`
	IsConnected       bool      `bun:",notnull"`
	LatencyMs         *float64
	JitterMs          *float64
	DownlinkMbps      *float64
	PacketLossPercent *float64
	FailureReason     string
	Record            json.RawMessage `bun:",type:jsonb"`
	UpdatedAt         time.Time       `bun:",nullzero,notnull,default:current_timestamp"`
}
