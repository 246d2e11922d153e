package storage

import (
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS trains (
    id TEXT PRIMARY KEY, type TEXT, priority INTEGER, avg_speed_kmh DOUBLE PRECISION, length_m DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS stations (
    id TEXT PRIMARY KEY, name TEXT, total_platforms INTEGER
);
CREATE TABLE IF NOT EXISTS platforms (
    station_id TEXT, platform_id TEXT, legacy_id TEXT, length_m DOUBLE PRECISION, electrified BOOLEAN
);
CREATE TABLE IF NOT EXISTS segments (
    id TEXT PRIMARY KEY, from_station TEXT, to_station TEXT,
    capacity INTEGER, travel_time_min INTEGER, distance_m DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS scenarios (
    id TEXT PRIMARY KEY, description TEXT
);
CREATE TABLE IF NOT EXISTS scenario_trains (scenario_id TEXT, train_id TEXT);
CREATE TABLE IF NOT EXISTS scenario_segments (scenario_id TEXT, segment_id TEXT);
CREATE TABLE IF NOT EXISTS scenario_constraints (scenario_id TEXT, ref TEXT);
CREATE TABLE IF NOT EXISTS train_events (
    train_id TEXT, event_id TEXT, type TEXT, station_id TEXT, platform_id TEXT,
    scheduled_time TIMESTAMPTZ, earliness_sec INTEGER, lateness_sec INTEGER, min_dwell_sec INTEGER
);
CREATE TABLE IF NOT EXISTS constraints (
    id TEXT PRIMARY KEY, type TEXT, segment_id TEXT, station_id TEXT, platform_id TEXT,
    start_time TIMESTAMPTZ, end_time TIMESTAMPTZ, min_gap_sec INTEGER, max_speed_kmh DOUBLE PRECISION,
    reason TEXT, description TEXT
);
CREATE TABLE IF NOT EXISTS platform_occupancy (
    train_id TEXT, station_id TEXT, platform_id TEXT, start_time TIMESTAMPTZ, end_time TIMESTAMPTZ,
    train_type TEXT, train_length_m DOUBLE PRECISION, duration_sec INTEGER
);
CREATE TABLE IF NOT EXISTS output_events (
    train_id TEXT, event_id TEXT, type TEXT, station_id TEXT, platform_id TEXT,
    scheduled_time TIMESTAMPTZ, actual_time TIMESTAMPTZ, status TEXT
);
CREATE TABLE IF NOT EXISTS output_occupancy (
    train_id TEXT, station_id TEXT, platform_id TEXT, start_time TIMESTAMPTZ, end_time TIMESTAMPTZ,
    train_length_m DOUBLE PRECISION
);
`

// NewPostgresStore opens (creating the schema if needed) a
// postgres-backed SQLStore, for a durable deployment.
func NewPostgresStore(connStr string) (*SQLStore, error) {
	return openSQLStore("postgres", "postgres", connStr, postgresSchema)
}
