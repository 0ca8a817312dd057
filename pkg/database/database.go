// Package database optionally persists the most recent measurement to
// Postgres for external consumers. Exactly one row is kept: every completed
// run replaces it, so no measurement history accumulates.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"network-quality/pkg/models"
)

// The fixed primary key of the latest-measurement row.
const latestKey = 1

type DB struct {
	*bun.DB
}

// NewDB connects using the database.* config keys.
func NewDB() (*DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		viper.GetString("database.user"),
		viper.GetString("database.password"),
		viper.GetString("database.host"),
		viper.GetInt("database.port"),
		viper.GetString("database.dbname"),
		viper.GetString("database.sslmode"),
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	return &DB{db}, nil
}

// InitSchema creates the latest-measurement table if it doesn't exist.
func (db *DB) InitSchema(ctx context.Context) error {
	_, err := db.NewCreateTable().
		Model((*models.LatestMeasurement)(nil)).
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	return nil
}

// UpsertLatest replaces the single stored row with the given record and tier.
func (db *DB) UpsertLatest(ctx context.Context, rec *models.MeasurementRecord, tier models.QualityTier) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error encoding record: %v", err)
	}

	row := &models.LatestMeasurement{
		Key:               latestKey,
		Time:              rec.Timestamp,
		Tier:              tier.String(),
		LinkType:          string(rec.LinkType),
		IsConnected:       rec.IsConnected,
		LatencyMs:         rec.LatencyMs,
		JitterMs:          rec.JitterMs,
		DownlinkMbps:      rec.DownlinkMbps,
		PacketLossPercent: rec.PacketLossPercent,
		FailureReason:     rec.FailureReason,
		Record:            raw,
		UpdatedAt:         time.Now(),
	}

	_, err = db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("time = EXCLUDED.time").
		Set("tier = EXCLUDED.tier").
		Set("link_type = EXCLUDED.link_type").
		Set("is_connected = EXCLUDED.is_connected").
		Set("latency_ms = EXCLUDED.latency_ms").
		Set("jitter_ms = EXCLUDED.jitter_ms").
		Set("downlink_mbps = EXCLUDED.downlink_mbps").
		Set("packet_loss_percent = EXCLUDED.packet_loss_percent").
		Set("failure_reason = EXCLUDED.failure_reason").
		Set("record = EXCLUDED.record").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("error upserting latest measurement: %v", err)
	}

	return nil
}

// GetLatest returns the stored row, or nil if nothing has been written yet.
func (db *DB) GetLatest(ctx context.Context) (*models.LatestMeasurement, error) {
	row := new(models.LatestMeasurement)
	err := db.NewSelect().
		Model(row).
		Where("key = ?", latestKey).
		Scan(ctx)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting latest measurement: %v", err)
	}

	return row, nil
}
