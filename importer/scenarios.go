package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"raildispatch.dev/core/storage"
)

type scenarioCSV struct {
	ScenarioID  string `csv:"scenario_id"`
	Description string `csv:"description"`
	Trains      string `csv:"train_ids"`
	Segments    string `csv:"segment_ids"`
	Constraints string `csv:"constraint_ids"`
}

// ParseScenarios reads the scenarios collection from r. Trains,
// Segments and Constraints are ';'-separated id lists, the same
// convention the rest of the importer uses for list-valued columns.
func ParseScenarios(w storage.SeedWriter, r io.Reader) (int, error) {
	var rows []scenarioCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.ScenarioID == "" {
			return 0, fmt.Errorf("row %d: missing scenario_id", i+1)
		}
		rec := storage.ScenarioRecord{
			ID:          row.ScenarioID,
			Description: row.Description,
			Trains:      splitList(row.Trains),
			Segments:    splitList(row.Segments),
			Constraints: splitList(row.Constraints),
		}
		if err := w.WriteScenario(rec); err != nil {
			return 0, fmt.Errorf("writing scenario %s: %w", row.ScenarioID, err)
		}
	}
	return len(rows), nil
}
