package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLStore is a database/sql backed ReadStore/EventWriter/SeedWriter.
// It is dialect-aware only where the two supported drivers
// (sqlite3, postgres) disagree: bind-parameter syntax and a handful of
// DDL keywords. NewSQLiteStore and NewPostgresStore build one of these
// against the appropriate driver and schema.
type SQLStore struct {
	db      *sql.DB
	dialect string // "sqlite" | "postgres"
}

func openSQLStore(driver, dialect, dataSourceName, schema string) (*SQLStore, error) {
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) ph(n int) string {
	return placeholder(s.dialect, n)
}

func (s *SQLStore) phList(n int) string {
	return placeholders(s.dialect, n)
}

func (s *SQLStore) GetScenario(scenarioID string) (*ScenarioRecord, error) {
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT id, description FROM scenarios WHERE id = %s", s.ph(1)),
		scenarioID,
	)
	var sc ScenarioRecord
	if err := row.Scan(&sc.ID, &sc.Description); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "get scenario", Err: err}
	}

	sc.Trains, _ = s.scenarioRefs("scenario_trains", "train_id", scenarioID)
	sc.Segments, _ = s.scenarioRefs("scenario_segments", "segment_id", scenarioID)
	sc.Constraints, _ = s.scenarioRefs("scenario_constraints", "ref", scenarioID)

	return &sc, nil
}

func (s *SQLStore) scenarioRefs(table, column, scenarioID string) ([]string, error) {
	rows, err := s.db.Query(
		fmt.Sprintf("SELECT %s FROM %s WHERE scenario_id = %s", column, table, s.ph(1)),
		scenarioID,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "get scenario refs", Err: err}
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, &PersistenceError{Op: "scan scenario ref", Err: err}
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (s *SQLStore) GetTrains(ids []string) ([]TrainRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(
		"SELECT id, type, priority, avg_speed_kmh, length_m FROM trains WHERE id IN (%s)",
		s.phList(len(ids)),
	)
	rows, err := s.db.Query(query, stringSliceToArgs(ids)...)
	if err != nil {
		return nil, &PersistenceError{Op: "get trains", Err: err}
	}
	defer rows.Close()

	var out []TrainRecord
	for rows.Next() {
		var t TrainRecord
		if err := rows.Scan(&t.ID, &t.Type, &t.Priority, &t.AvgSpeedKMH, &t.LengthM); err != nil {
			return nil, &PersistenceError{Op: "scan train", Err: err}
		}
		t.TrainID = t.ID
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetSegments(ids []string) ([]SegmentRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(
		"SELECT id, from_station, to_station, capacity, travel_time_min, distance_m FROM segments WHERE id IN (%s)",
		s.phList(len(ids)),
	)
	rows, err := s.db.Query(query, stringSliceToArgs(ids)...)
	if err != nil {
		return nil, &PersistenceError{Op: "get segments", Err: err}
	}
	defer rows.Close()

	var out []SegmentRecord
	for rows.Next() {
		var seg SegmentRecord
		if err := rows.Scan(&seg.ID, &seg.From, &seg.To, &seg.Capacity, &seg.TravelTimeMin, &seg.DistanceM); err != nil {
			return nil, &PersistenceError{Op: "scan segment", Err: err}
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetStations(ids []string) ([]StationRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(
		"SELECT id, name, total_platforms FROM stations WHERE id IN (%s)",
		s.phList(len(ids)),
	)
	rows, err := s.db.Query(query, stringSliceToArgs(ids)...)
	if err != nil {
		return nil, &PersistenceError{Op: "get stations", Err: err}
	}
	defer rows.Close()

	var out []StationRecord
	for rows.Next() {
		var st StationRecord
		if err := rows.Scan(&st.ID, &st.Name, &st.TotalPlatforms); err != nil {
			return nil, &PersistenceError{Op: "scan station", Err: err}
		}
		platforms, err := s.platformsFor(st.ID)
		if err != nil {
			return nil, err
		}
		st.Platforms = platforms
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) platformsFor(stationID string) ([]PlatformRecord, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(
			"SELECT platform_id, legacy_id, length_m, electrified FROM platforms WHERE station_id = %s",
			s.ph(1),
		),
		stationID,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "get platforms", Err: err}
	}
	defer rows.Close()

	var out []PlatformRecord
	for rows.Next() {
		var p PlatformRecord
		if err := rows.Scan(&p.PlatformID, &p.LegacyID, &p.LengthM, &p.Electrified); err != nil {
			return nil, &PersistenceError{Op: "scan platform", Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetTrainEvents(trainIDs []string, window *Window) ([]TrainEventRecord, error) {
	if len(trainIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(
		`SELECT train_id, event_id, type, station_id, platform_id, scheduled_time,
		        earliness_sec, lateness_sec, min_dwell_sec
		 FROM train_events WHERE train_id IN (%s)`,
		s.phList(len(trainIDs)),
	)
	args := stringSliceToArgs(trainIDs)
	pos := len(trainIDs) + 1
	if window != nil && window.Start != nil {
		query += fmt.Sprintf(" AND scheduled_time >= %s", s.ph(pos))
		args = append(args, *window.Start)
		pos++
	}
	if window != nil && window.End != nil {
		query += fmt.Sprintf(" AND scheduled_time <= %s", s.ph(pos))
		args = append(args, *window.End)
		pos++
	}
	query += " ORDER BY scheduled_time"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "get train events", Err: err}
	}
	defer rows.Close()

	var out []TrainEventRecord
	for rows.Next() {
		var ev TrainEventRecord
		var platformID sql.NullString
		if err := rows.Scan(
			&ev.TrainID, &ev.EventID, &ev.Type, &ev.StationID, &platformID,
			&ev.ScheduledTime, &ev.EarlinessSec, &ev.LatenessSec, &ev.MinDwellSec,
		); err != nil {
			return nil, &PersistenceError{Op: "scan train event", Err: err}
		}
		ev.PlatformID = platformID.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *SQLStore) constraintsWhere(clause string, args ...interface{}) ([]ConstraintRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, type, segment_id, station_id, platform_id, start_time, end_time,
		        min_gap_sec, max_speed_kmh, reason, description
		 FROM constraints WHERE `+clause,
		args...,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "get constraints", Err: err}
	}
	defer rows.Close()

	var out []ConstraintRecord
	for rows.Next() {
		var c ConstraintRecord
		var start, end sql.NullTime
		if err := rows.Scan(
			&c.ID, &c.Type, &c.SegmentID, &c.StationID, &c.PlatformID, &start, &end,
			&c.MinGapSec, &c.MaxSpeedKMH, &c.Reason, &c.Description,
		); err != nil {
			return nil, &PersistenceError{Op: "scan constraint", Err: err}
		}
		c.Start = start.Time
		c.End = end.Time
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetConstraintsByIDs(ids []string) ([]ConstraintRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.constraintsWhere(fmt.Sprintf("id IN (%s)", s.phList(len(ids))), stringSliceToArgs(ids)...)
}

func (s *SQLStore) GetConstraintsByTypes(types []string) ([]ConstraintRecord, error) {
	if len(types) == 0 {
		return nil, nil
	}
	return s.constraintsWhere(fmt.Sprintf("type IN (%s)", s.phList(len(types))), stringSliceToArgs(types)...)
}

func (s *SQLStore) GetOccupancyOverlapping(window *Window) ([]OccupancyRecord, error) {
	clause := "1=1"
	var args []interface{}
	pos := 1
	if window != nil && window.End != nil {
		clause += fmt.Sprintf(" AND start_time <= %s", s.ph(pos))
		args = append(args, *window.End)
		pos++
	}
	if window != nil && window.Start != nil {
		clause += fmt.Sprintf(" AND end_time >= %s", s.ph(pos))
		args = append(args, *window.Start)
		pos++
	}

	rows, err := s.db.Query(
		`SELECT train_id, station_id, platform_id, start_time, end_time,
		        train_type, train_length_m, duration_sec
		 FROM platform_occupancy WHERE `+clause,
		args...,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "get occupancy", Err: err}
	}
	defer rows.Close()

	var out []OccupancyRecord
	for rows.Next() {
		var o OccupancyRecord
		if err := rows.Scan(
			&o.TrainID, &o.StationID, &o.PlatformID, &o.StartTime, &o.EndTime,
			&o.TrainType, &o.TrainLengthM, &o.DurationSec,
		); err != nil {
			return nil, &PersistenceError{Op: "scan occupancy", Err: err}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteEventsForTrains(trainIDs []string) error {
	if len(trainIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(
		fmt.Sprintf("DELETE FROM output_events WHERE train_id IN (%s)", s.phList(len(trainIDs))),
		stringSliceToArgs(trainIDs)...,
	)
	if err != nil {
		return &PersistenceError{Op: "delete events", Err: err}
	}
	return nil
}

func (s *SQLStore) InsertEvents(records []EventOutputRecord) error {
	for _, rec := range records {
		_, err := s.db.Exec(
			fmt.Sprintf(
				`INSERT INTO output_events
				 (train_id, event_id, type, station_id, platform_id, scheduled_time, actual_time, status)
				 VALUES (%s)`,
				s.phList(8),
			),
			rec.TrainID, rec.EventID, rec.Type, rec.StationID, rec.PlatformID,
			rec.ScheduledTime, rec.ActualTime, rec.Status,
		)
		if err != nil {
			return &PersistenceError{Op: "insert event", Err: err}
		}
	}
	return nil
}

func (s *SQLStore) DeleteOccupancyForTrains(trainIDs []string) error {
	if len(trainIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(
		fmt.Sprintf("DELETE FROM output_occupancy WHERE train_id IN (%s)", s.phList(len(trainIDs))),
		stringSliceToArgs(trainIDs)...,
	)
	if err != nil {
		return &PersistenceError{Op: "delete occupancy", Err: err}
	}
	return nil
}

func (s *SQLStore) InsertOccupancy(records []OccupancyOutputRecord) error {
	for _, rec := range records {
		_, err := s.db.Exec(
			fmt.Sprintf(
				`INSERT INTO output_occupancy
				 (train_id, station_id, platform_id, start_time, end_time, train_length_m)
				 VALUES (%s)`,
				s.phList(6),
			),
			rec.TrainID, rec.StationID, rec.PlatformID, rec.StartTime, rec.EndTime, rec.TrainLengthM,
		)
		if err != nil {
			return &PersistenceError{Op: "insert occupancy", Err: err}
		}
	}
	return nil
}

// SeedWriter implementation, used by the importer.

func (s *SQLStore) WriteTrain(t TrainRecord) error {
	id := t.ID
	if id == "" {
		id = t.TrainID
	}
	_, err := s.db.Exec(
		fmt.Sprintf(
			`INSERT INTO trains (id, type, priority, avg_speed_kmh, length_m) VALUES (%s)`,
			s.phList(5),
		),
		id, t.Type, t.Priority, t.AvgSpeedKMH, t.LengthM,
	)
	if err != nil {
		return &PersistenceError{Op: "write train", Err: err}
	}
	return nil
}

func (s *SQLStore) WriteStation(st StationRecord) error {
	_, err := s.db.Exec(
		fmt.Sprintf(`INSERT INTO stations (id, name, total_platforms) VALUES (%s)`, s.phList(3)),
		st.ID, st.Name, st.TotalPlatforms,
	)
	if err != nil {
		return &PersistenceError{Op: "write station", Err: err}
	}
	for _, p := range st.Platforms {
		_, err := s.db.Exec(
			fmt.Sprintf(
				`INSERT INTO platforms (station_id, platform_id, legacy_id, length_m, electrified) VALUES (%s)`,
				s.phList(5),
			),
			st.ID, p.PlatformID, p.LegacyID, p.LengthM, p.Electrified,
		)
		if err != nil {
			return &PersistenceError{Op: "write platform", Err: err}
		}
	}
	return nil
}

func (s *SQLStore) WriteSegment(seg SegmentRecord) error {
	_, err := s.db.Exec(
		fmt.Sprintf(
			`INSERT INTO segments (id, from_station, to_station, capacity, travel_time_min, distance_m) VALUES (%s)`,
			s.phList(6),
		),
		seg.ID, seg.From, seg.To, seg.Capacity, seg.TravelTimeMin, seg.DistanceM,
	)
	if err != nil {
		return &PersistenceError{Op: "write segment", Err: err}
	}
	return nil
}

func (s *SQLStore) WriteScenario(sc ScenarioRecord) error {
	_, err := s.db.Exec(
		fmt.Sprintf(`INSERT INTO scenarios (id, description) VALUES (%s)`, s.phList(2)),
		sc.ID, sc.Description,
	)
	if err != nil {
		return &PersistenceError{Op: "write scenario", Err: err}
	}
	for _, trainID := range sc.Trains {
		if _, err := s.db.Exec(
			fmt.Sprintf(`INSERT INTO scenario_trains (scenario_id, train_id) VALUES (%s)`, s.phList(2)),
			sc.ID, trainID,
		); err != nil {
			return &PersistenceError{Op: "write scenario train", Err: err}
		}
	}
	for _, segID := range sc.Segments {
		if _, err := s.db.Exec(
			fmt.Sprintf(`INSERT INTO scenario_segments (scenario_id, segment_id) VALUES (%s)`, s.phList(2)),
			sc.ID, segID,
		); err != nil {
			return &PersistenceError{Op: "write scenario segment", Err: err}
		}
	}
	for _, ref := range sc.Constraints {
		if _, err := s.db.Exec(
			fmt.Sprintf(`INSERT INTO scenario_constraints (scenario_id, ref) VALUES (%s)`, s.phList(2)),
			sc.ID, ref,
		); err != nil {
			return &PersistenceError{Op: "write scenario constraint ref", Err: err}
		}
	}
	return nil
}

func (s *SQLStore) WriteTrainEvent(ev TrainEventRecord) error {
	_, err := s.db.Exec(
		fmt.Sprintf(
			`INSERT INTO train_events
			 (train_id, event_id, type, station_id, platform_id, scheduled_time,
			  earliness_sec, lateness_sec, min_dwell_sec)
			 VALUES (%s)`,
			s.phList(9),
		),
		ev.TrainID, ev.EventID, ev.Type, ev.StationID, ev.PlatformID, ev.ScheduledTime,
		ev.EarlinessSec, ev.LatenessSec, ev.MinDwellSec,
	)
	if err != nil {
		return &PersistenceError{Op: "write train event", Err: err}
	}
	return nil
}

func (s *SQLStore) WriteConstraint(c ConstraintRecord) error {
	_, err := s.db.Exec(
		fmt.Sprintf(
			`INSERT INTO constraints
			 (id, type, segment_id, station_id, platform_id, start_time, end_time,
			  min_gap_sec, max_speed_kmh, reason, description)
			 VALUES (%s)`,
			s.phList(11),
		),
		c.ID, c.Type, c.SegmentID, c.StationID, c.PlatformID, nullableTime(c.Start), nullableTime(c.End),
		c.MinGapSec, c.MaxSpeedKMH, c.Reason, c.Description,
	)
	if err != nil {
		return &PersistenceError{Op: "write constraint", Err: err}
	}
	return nil
}

func (s *SQLStore) WriteOccupancy(o OccupancyRecord) error {
	_, err := s.db.Exec(
		fmt.Sprintf(
			`INSERT INTO platform_occupancy
			 (train_id, station_id, platform_id, start_time, end_time, train_type, train_length_m, duration_sec)
			 VALUES (%s)`,
			s.phList(8),
		),
		o.TrainID, o.StationID, o.PlatformID, o.StartTime, o.EndTime, o.TrainType, o.TrainLengthM, o.DurationSec,
	)
	if err != nil {
		return &PersistenceError{Op: "write occupancy", Err: err}
	}
	return nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
