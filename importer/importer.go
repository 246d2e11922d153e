// Package importer loads a scenario's flat-file CSV export into a
// storage.SeedWriter, the same per-file parse-and-write shape the
// teacher uses for its own GTFS static feed, adapted to this domain's
// collections (trains, stations, platforms, segments, scenarios,
// train_events, constraints, occupancy).
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"raildispatch.dev/core/storage"
)

func init() {
	// LazyCSVReader tolerates sloppy quoting; bom.NewReader strips a
	// leading unicode BOM if the file carries one. Same combination the
	// teacher wires up for its own GTFS CSVs.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})
}

// Summary reports how many records of each kind were written.
type Summary struct {
	Trains      int
	Stations    int
	Segments    int
	Scenarios   int
	TrainEvents int
	Constraints int
	Occupancy   int
}

// Dir imports every recognised CSV file under dir into w. Files that
// don't exist are skipped rather than treated as an error, since a
// scenario export need not carry every collection (e.g. no
// constraints.csv if the scenario has none).
func Dir(w storage.SeedWriter, dir string) (*Summary, error) {
	sum := &Summary{}

	platformsByStation, err := parsePlatformsFile(filepath.Join(dir, "platforms.csv"))
	if err != nil {
		return nil, fmt.Errorf("parsing platforms.csv: %w", err)
	}

	if n, err := importFile(filepath.Join(dir, "trains.csv"), func(r io.Reader) (int, error) {
		return ParseTrains(w, r)
	}); err != nil {
		return nil, fmt.Errorf("parsing trains.csv: %w", err)
	} else {
		sum.Trains = n
	}

	if n, err := importFile(filepath.Join(dir, "stations.csv"), func(r io.Reader) (int, error) {
		return ParseStations(w, r, platformsByStation)
	}); err != nil {
		return nil, fmt.Errorf("parsing stations.csv: %w", err)
	} else {
		sum.Stations = n
	}

	if n, err := importFile(filepath.Join(dir, "segments.csv"), func(r io.Reader) (int, error) {
		return ParseSegments(w, r)
	}); err != nil {
		return nil, fmt.Errorf("parsing segments.csv: %w", err)
	} else {
		sum.Segments = n
	}

	if n, err := importFile(filepath.Join(dir, "scenarios.csv"), func(r io.Reader) (int, error) {
		return ParseScenarios(w, r)
	}); err != nil {
		return nil, fmt.Errorf("parsing scenarios.csv: %w", err)
	} else {
		sum.Scenarios = n
	}

	if n, err := importFile(filepath.Join(dir, "train_events.csv"), func(r io.Reader) (int, error) {
		return ParseTrainEvents(w, r)
	}); err != nil {
		return nil, fmt.Errorf("parsing train_events.csv: %w", err)
	} else {
		sum.TrainEvents = n
	}

	if n, err := importFile(filepath.Join(dir, "constraints.csv"), func(r io.Reader) (int, error) {
		return ParseConstraints(w, r)
	}); err != nil {
		return nil, fmt.Errorf("parsing constraints.csv: %w", err)
	} else {
		sum.Constraints = n
	}

	if n, err := importFile(filepath.Join(dir, "occupancy.csv"), func(r io.Reader) (int, error) {
		return ParseOccupancy(w, r)
	}); err != nil {
		return nil, fmt.Errorf("parsing occupancy.csv: %w", err)
	} else {
		sum.Occupancy = n
	}

	return sum, nil
}

// importFile opens path and runs parse against it, returning (0, nil)
// if the file is absent — collections are optional per scenario.
func importFile(path string, parse func(io.Reader) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()
	return parse(f)
}

func parsePlatformsFile(path string) (map[string][]storage.PlatformRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParsePlatforms(f)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
