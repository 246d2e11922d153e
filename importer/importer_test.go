package importer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raildispatch.dev/core/importer"
	"raildispatch.dev/core/storage"
)

func TestParseTrains(t *testing.T) {
	store := storage.NewMemoryStorage()
	csv := "train_id,type,priority,avg_speed_kmh,length_m\nT1,express,10,120.5,200\n"

	n, err := importer.ParseTrains(store, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "express", store.Trains["T1"].Type)
	assert.Equal(t, 10, store.Trains["T1"].Priority)
}

func TestParseTrainsRejectsBlankID(t *testing.T) {
	store := storage.NewMemoryStorage()
	csv := "train_id,type,priority,avg_speed_kmh,length_m\n,express,10,120.5,200\n"

	_, err := importer.ParseTrains(store, strings.NewReader(csv))
	assert.Error(t, err)
}

func TestParseStationsAttachesPlatforms(t *testing.T) {
	platformCSV := "station_id,platform_id,legacy_id,length_m,electrified\nS1,P1,,300,true\nS1,P2,,250,false\n"
	platformsByStation, err := importer.ParsePlatforms(strings.NewReader(platformCSV))
	require.NoError(t, err)

	store := storage.NewMemoryStorage()
	stationCSV := "station_id,name,total_platforms\nS1,Central,2\n"
	n, err := importer.ParseStations(store, strings.NewReader(stationCSV), platformsByStation)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, store.Stations["S1"].Platforms, 2)
}

func TestParseSegmentsRequiresEndpoints(t *testing.T) {
	store := storage.NewMemoryStorage()
	csv := "segment_id,from_station_id,to_station_id,capacity,travel_time_min,distance_m\nSEG1,,S2,1,10,1000\n"

	_, err := importer.ParseSegments(store, strings.NewReader(csv))
	assert.Error(t, err)
}

func TestParseScenariosSplitsIDLists(t *testing.T) {
	store := storage.NewMemoryStorage()
	csv := "scenario_id,description,train_ids,segment_ids,constraint_ids\nSC1,demo,T1;T2,SEG1,C1;C2\n"

	n, err := importer.ParseScenarios(store, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"T1", "T2"}, store.Scenarios["SC1"].Trains)
	assert.Equal(t, []string{"C1", "C2"}, store.Scenarios["SC1"].Constraints)
}

func TestParseTrainEventsParsesScheduledTime(t *testing.T) {
	store := storage.NewMemoryStorage()
	csv := "train_id,event_id,type,station_id,platform_id,scheduled_time,earliness_sec,lateness_sec,min_dwell_sec\n" +
		"T1,ev1,departure,S1,P1,2026-07-29T08:00:00Z,60,300,0\n"

	n, err := importer.ParseTrainEvents(store, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, store.Events["T1"], 1)
	assert.Equal(t, 2026, store.Events["T1"][0].ScheduledTime.Year())
}

func TestParseTrainEventsRejectsBadTimestamp(t *testing.T) {
	store := storage.NewMemoryStorage()
	csv := "train_id,event_id,type,station_id,platform_id,scheduled_time,earliness_sec,lateness_sec,min_dwell_sec\n" +
		"T1,ev1,departure,S1,P1,not-a-time,60,300,0\n"

	_, err := importer.ParseTrainEvents(store, strings.NewReader(csv))
	assert.Error(t, err)
}

func TestDirImportsAllCollectionsAndSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "trains.csv", "train_id,type,priority,avg_speed_kmh,length_m\nT1,express,10,120,200\n")
	writeFile(t, dir, "platforms.csv", "station_id,platform_id,legacy_id,length_m,electrified\nS1,P1,,300,true\n")
	writeFile(t, dir, "stations.csv", "station_id,name,total_platforms\nS1,Central,1\n")
	writeFile(t, dir, "segments.csv", "segment_id,from_station_id,to_station_id,capacity,travel_time_min,distance_m\nSEG1,S1,S2,1,10,1000\n")
	writeFile(t, dir, "scenarios.csv", "scenario_id,description,train_ids,segment_ids,constraint_ids\nSC1,demo,T1,SEG1,\n")
	// no train_events.csv, constraints.csv or occupancy.csv: must not error.

	store := storage.NewMemoryStorage()
	sum, err := importer.Dir(store, dir)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Trains)
	assert.Equal(t, 1, sum.Stations)
	assert.Equal(t, 1, sum.Segments)
	assert.Equal(t, 1, sum.Scenarios)
	assert.Equal(t, 0, sum.TrainEvents)
	assert.Equal(t, 0, sum.Constraints)
	assert.Equal(t, 0, sum.Occupancy)
	assert.Len(t, store.Stations["S1"].Platforms, 1)
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}
