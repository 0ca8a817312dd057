/*
Package models defines the core data structures shared across the
network-quality application: connectivity snapshots, measurement records,
quality tiers, and the persisted latest-measurement row.

Core Types:

LinkType classifies the active network link:

	type LinkType string
	const (
		LinkNone     LinkType = "none"
		LinkWifi     LinkType = "wifi"
		LinkCellular LinkType = "cellular"
		LinkUnknown  LinkType = "unknown"
	)

Snapshot is the instant, I/O-free view of connectivity state taken at the
start of every orchestration run. Signal strength fields are pointers and
stay nil on platforms that do not expose them.

MeasurementRecord is the immutable product of one orchestration run:

	type MeasurementRecord struct {
		Timestamp          time.Time          // instant the record was produced
		LinkType           LinkType           // none/wifi/cellular/unknown
		CellularGeneration CellularGeneration // 2g..5g/unknown, cellular links only
		WifiSignalDBM      *int               // nil when unavailable
		CellularSignalDBM  *int               // nil when unavailable
		LatencyMs          *float64           // nil if every latency sample failed
		JitterMs           *float64           // nil with fewer than two samples
		DownlinkMbps       *float64           // nil if no bytes were transferred
		PacketLossPercent  *float64           // nil unless the extended probe ran
		IsConnected        bool               // from the snapshot, probe-independent
		FailureReason      string             // "offline" or a timeout note, else empty
	}

Absent numeric fields mean degraded data, never an error; the scorer
substitutes worst-case sentinels for them so a thin record is always rated
conservatively.

QualityTier is the ordinal rating produced by the scorer, totally ordered:

	offline < poor < fair < good < excellent

It marshals to JSON as its lowercase name.

LatestMeasurement is a bun model for the optional single-row persistence of
the most recent record. The fixed key means the row is replaced in place;
measurement history is deliberately not stored.

Thread Safety:

The structures themselves are not synchronized. MeasurementRecord values are
safe to share because they are never mutated after assembly; everything else
is synchronized by its owning layer.
*/
package models
