package models

import "time"

// LinkType classifies the active network link.
type LinkType string

const (
	LinkNone     LinkType = "none"
	LinkWifi     LinkType = "wifi"
	LinkCellular LinkType = "cellular"
	LinkUnknown  LinkType = "unknown"
)

// CellularGeneration is the radio generation of a cellular link. It is
// meaningful only when the link type is cellular and the platform exposes it.
type CellularGeneration string

const (
	Cellular2G      CellularGeneration = "2g"
	Cellular3G      CellularGeneration = "3g"
	Cellular4G      CellularGeneration = "4g"
	Cellular5G      CellularGeneration = "5g"
	CellularUnknown CellularGeneration = "unknown"
)

// Snapshot is the instant, I/O-free view of the current connectivity state.
// Signal fields are nil when the platform does not expose them.
type Snapshot struct {
	IsConnected        bool
	LinkType           LinkType
	CellularGeneration CellularGeneration
	WifiSignalDBM      *int
	CellularSignalDBM  *int
}

// MeasurementRecord is the immutable result of one orchestration run.
// Optional numeric fields are nil when the corresponding probe failed or was
// skipped; a record is assembled exactly once and never mutated afterwards.
type MeasurementRecord struct {
	Timestamp          time.Time          `json:"timestamp"`
	LinkType           LinkType           `json:"link_type"`
	CellularGeneration CellularGeneration `json:"cellular_generation"`
	WifiSignalDBM      *int               `json:"wifi_signal_dbm,omitempty"`
	CellularSignalDBM  *int               `json:"cellular_signal_dbm,omitempty"`
	LatencyMs          *float64           `json:"latency_ms,omitempty"`
	JitterMs           *float64           `json:"jitter_ms,omitempty"`
	DownlinkMbps       *float64           `json:"downlink_mbps,omitempty"`
	PacketLossPercent  *float64           `json:"packet_loss_percent,omitempty"`
	IsConnected        bool               `json:"is_connected"`
	FailureReason      string             `json:"failure_reason,omitempty"`
}
