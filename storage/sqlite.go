package storage

import (
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trains (
    id TEXT PRIMARY KEY, type TEXT, priority INTEGER, avg_speed_kmh REAL, length_m REAL
);
CREATE TABLE IF NOT EXISTS stations (
    id TEXT PRIMARY KEY, name TEXT, total_platforms INTEGER
);
CREATE TABLE IF NOT EXISTS platforms (
    station_id TEXT, platform_id TEXT, legacy_id TEXT, length_m REAL, electrified INTEGER
);
CREATE TABLE IF NOT EXISTS segments (
    id TEXT PRIMARY KEY, from_station TEXT, to_station TEXT,
    capacity INTEGER, travel_time_min INTEGER, distance_m REAL
);
CREATE TABLE IF NOT EXISTS scenarios (
    id TEXT PRIMARY KEY, description TEXT
);
CREATE TABLE IF NOT EXISTS scenario_trains (scenario_id TEXT, train_id TEXT);
CREATE TABLE IF NOT EXISTS scenario_segments (scenario_id TEXT, segment_id TEXT);
CREATE TABLE IF NOT EXISTS scenario_constraints (scenario_id TEXT, ref TEXT);
CREATE TABLE IF NOT EXISTS train_events (
    train_id TEXT, event_id TEXT, type TEXT, station_id TEXT, platform_id TEXT,
    scheduled_time TIMESTAMP, earliness_sec INTEGER, lateness_sec INTEGER, min_dwell_sec INTEGER
);
CREATE TABLE IF NOT EXISTS constraints (
    id TEXT PRIMARY KEY, type TEXT, segment_id TEXT, station_id TEXT, platform_id TEXT,
    start_time TIMESTAMP, end_time TIMESTAMP, min_gap_sec INTEGER, max_speed_kmh REAL,
    reason TEXT, description TEXT
);
CREATE TABLE IF NOT EXISTS platform_occupancy (
    train_id TEXT, station_id TEXT, platform_id TEXT, start_time TIMESTAMP, end_time TIMESTAMP,
    train_type TEXT, train_length_m REAL, duration_sec INTEGER
);
CREATE TABLE IF NOT EXISTS output_events (
    train_id TEXT, event_id TEXT, type TEXT, station_id TEXT, platform_id TEXT,
    scheduled_time TIMESTAMP, actual_time TIMESTAMP, status TEXT
);
CREATE TABLE IF NOT EXISTS output_occupancy (
    train_id TEXT, station_id TEXT, platform_id TEXT, start_time TIMESTAMP, end_time TIMESTAMP,
    train_length_m REAL
);
`

// SQLiteConfig configures NewSQLiteStore. The zero value opens an
// in-memory database, useful for tests and used by the CLI's
// --store sqlite when no --dsn is given.
type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

// NewSQLiteStore opens (creating if needed) a sqlite3-backed SQLStore.
func NewSQLiteStore(cfg ...SQLiteConfig) (*SQLStore, error) {
	dsn := ":memory:"
	if len(cfg) > 0 && cfg[0].OnDisk {
		dir := cfg[0].Directory
		if dir == "" {
			dir = "."
		}
		dsn = dir + "/dispatch.db"
	}
	return openSQLStore("sqlite3", "sqlite", dsn, sqliteSchema)
}
