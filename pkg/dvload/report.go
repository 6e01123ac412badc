package dvload

import (
	"time"

	"github.com/google/uuid"
)

// TableStats counts what one loader step did to one table.
type TableStats struct {
	Table      string
	Candidates int // distinct keys (or versions) derived from the batch
	Inserted   int
	Skipped    int // candidates already persisted
}

// LoadReport summarizes a committed load run.
type LoadReport struct {
	RunID        uuid.UUID
	RecordSource string
	LoadDTS      time.Time

	// Batch statistics
	SourceRows        int
	DistinctCustomers int
	DistinctProducts  int
	DistinctLocations int
	DistinctOrders    int

	// Tables is in load order: hubs, link, satellites
	Tables []TableStats

	Duration time.Duration
}

// Table returns the stats recorded for the named table.
func (r *LoadReport) Table(name string) (TableStats, bool) {
	for _, t := range r.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return TableStats{}, false
}

// TotalInserted sums inserted rows across all tables.
func (r *LoadReport) TotalInserted() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Inserted
	}
	return total
}

// CheckReport is the outcome of a preflight check.
type CheckReport struct {
	Schema        string
	MissingTables []string

	// Batch statistics, zero when no source was given
	SourceRows        int
	DistinctCustomers int
	DistinctProducts  int
	DistinctLocations int
	DistinctOrders    int
}
