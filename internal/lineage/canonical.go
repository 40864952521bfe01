// Canonical identifier generation for emitted events.
//
// Idempotency keys let downstream consumers deduplicate re-emitted events
// (the Kafka transport uses them as message keys); dataset URNs give each
// dataset a single stable identity string.

package lineage

import (
	"crypto/sha256"
	"encoding/hex"
)

// GenerateIdempotencyKey generates a unique key for idempotent event processing.
//
// Formula: SHA256(producer + namespace + name + runID + eventTime + eventType)
//
// Same inputs always produce the same key, so re-emitting an event (retried
// parse, replayed artifact) yields a duplicate a consumer can drop. A
// different eventTime or eventType produces a different key, which allows
// multiple events per run.
//
// Returns: 64-character lowercase hex string (SHA256 output).
func GenerateIdempotencyKey(producer, namespace, name, runID, eventTime, eventType string) string {
	input := producer + namespace + name + runID + eventTime + eventType

	return hashSHA256(input)
}

// GenerateDatasetURN constructs a canonical URN from namespace and name.
//
// Format: {namespace}/{name}
//
// Examples:
//   - GenerateDatasetURN("snowflake://my-account", "db.public.orders")
//     → "snowflake://my-account/db.public.orders"
//   - GenerateDatasetURN("bigquery", "project.dataset.table")
//     → "bigquery/project.dataset.table"
//
// Always construct dataset URNs through this function, never via manual
// string concatenation, so grouping and lookups agree on the format.
func GenerateDatasetURN(namespace, name string) string {
	return namespace + "/" + name
}

// hashSHA256 computes the SHA256 hash of the input string.
//
// Returns: 64-character lowercase hex string.
func hashSHA256(input string) string {
	hash := sha256.Sum256([]byte(input))

	return hex.EncodeToString(hash[:])
}
