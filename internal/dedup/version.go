package dedup

import (
	"time"

	"github.com/vvka-141/dvload/internal/hashkey"
)

// VersionKey identifies a satellite row version: (hash_key, load_dts).
// LoadDTS is stored as UTC microseconds so a timestamp read back from
// PostgreSQL compares equal to the one written.
type VersionKey struct {
	Key     hashkey.Key
	LoadDTS int64
}

// NewVersionKey builds the composite for key at t.
func NewVersionKey(key hashkey.Key, t time.Time) VersionKey {
	return VersionKey{Key: key, LoadDTS: t.UTC().UnixMicro()}
}

// Time returns the load timestamp of the version.
func (v VersionKey) Time() time.Time {
	return time.UnixMicro(v.LoadDTS).UTC()
}
