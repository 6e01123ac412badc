// Package vault models the Data Vault tables of the retail warehouse and loads
// a batch into them.
//
// A run derives hash keys for the four business entities (customer, product,
// location, order), partitions them against the keys already persisted, and
// writes in a fixed order:
//
//	hubs (customer, product, location, order) -> link_order -> satellites
//
// Hubs and the link are write-once. Satellites are append-only: every run
// writes a new version for each entity in the batch, keyed by
// (hash_key, load_dts).
package vault
