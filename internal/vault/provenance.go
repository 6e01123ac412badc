package vault

import (
	"time"
)

// Tick is the spacing between consecutive order satellite timestamps.
// It matches the resolution of a PostgreSQL timestamp.
const Tick = time.Microsecond

// Provenance is the lineage stamped on every row of a run.
type Provenance struct {
	RecordSource string
	LoadDTS      time.Time
}

// NewProvenance captures the batch load timestamp from now, normalized to UTC
// and truncated to Tick so the value written is the value read back.
func NewProvenance(recordSource string, now time.Time) Provenance {
	return Provenance{
		RecordSource: recordSource,
		LoadDTS:      now.UTC().Truncate(Tick),
	}
}

// VersionClock hands out distinct timestamps for the versions of one run.
// The n-th call to Next returns base + n*Tick.
type VersionClock struct {
	base time.Time
	next int64
}

// NewVersionClock returns a clock starting at base.
func NewVersionClock(base time.Time) *VersionClock {
	return &VersionClock{base: base.UTC().Truncate(Tick)}
}

// Next returns the next timestamp.
func (c *VersionClock) Next() time.Time {
	t := c.base.Add(time.Duration(c.next) * Tick)
	c.next++
	return t
}
