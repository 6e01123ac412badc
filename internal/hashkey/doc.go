// Package hashkey derives the deterministic business-key fingerprints used as
// hub, link and satellite identifiers.
//
// A key is the lowercase hex MD5 of the canonical encoding of an ordered list
// of attributes:
//
//  1. Each attribute is coerced to a token by Canonical (no locale, shortest
//     round-trip numbers, UTC timestamps, a single token for null)
//  2. Tokens are combined according to the Mode (delimited or concat)
//  3. The combined string is hashed
//
// The same attribute values in the same order always yield the same key,
// across calls, processes and load runs.
//
// # Example Usage
//
//	deriver := hashkey.New(dvload.HashModeDelimited)
//	key := deriver.Derive("Furniture", "Chairs")
//
// # Thread Safety
//
// Deriver is a value type and is safe for concurrent use by multiple goroutines.
package hashkey
