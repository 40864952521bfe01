// Run assembly: converting raw execution records into run records ready for
// event construction.

package dbt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the outcome of one executed unit as recorded in run_results.
type RunStatus string

const (
	// RunStatusSuccess indicates the unit executed and materialized its output.
	RunStatusSuccess RunStatus = "success"

	// RunStatusError indicates the unit failed; no output was durably produced.
	RunStatusError RunStatus = "error"

	// RunStatusSkipped indicates the unit never executed. Skipped units emit
	// no events.
	RunStatusSkipped RunStatus = "skipped"
)

// Sentinel errors for run assembly.
var (
	// ErrUnknownResultNode indicates an execution record references a unit id
	// the definition graph does not know.
	ErrUnknownResultNode = errors.New("execution record references unknown node")

	// ErrUnrecognizedStatus indicates an execution status outside
	// {success, error, skipped}. This is an artifact contract violation,
	// not a recoverable condition.
	ErrUnrecognizedStatus = errors.New("unrecognized run status, should be one of 'success', 'error', 'skipped'")
)

// ModelRun is one executed transformation unit, resolved and ready for event
// construction. Built once per execution record and consumed exactly once.
type ModelRun struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Status      RunStatus
	Inputs      []ModelNode
	Output      *ModelNode
	JobName     string
	Namespace   string
	RunID       string
}

// newRunID generates the unique run identifier correlating a run's lifecycle
// events. Explicit factory call so tests and callers see where ids come from.
func newRunID() string {
	return uuid.NewString()
}

// assembleRun converts one run_results execution record into a ModelRun,
// attaching resolved inputs and output from the node index.
func assembleRun(ix *nodeIndex, record map[string]interface{}, namespace string) (ModelRun, error) {
	uniqueID, _ := chainString(record, "unique_id")

	output, ok := ix.node(uniqueID)
	if !ok {
		return ModelRun{}, fmt.Errorf("%w: %q", ErrUnknownResultNode, uniqueID)
	}

	name, err := jobName(output.Metadata, uniqueID)
	if err != nil {
		return ModelRun{}, err
	}

	status, _ := chainString(record, "status")
	startedAt, completedAt := executionWindow(record["timing"])

	return ModelRun{
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Status:      RunStatus(status),
		Inputs:      ix.inputs(uniqueID),
		Output:      &output,
		JobName:     name,
		Namespace:   namespace,
		RunID:       newRunID(),
	}, nil
}

// executionWindow extracts start/end timestamps from a record's timing
// entries by locating the entry named "execute". When the run aborted before
// timing capture, both ends fall back to the current wall-clock time.
func executionWindow(timing interface{}) (time.Time, time.Time) {
	entries, _ := timing.([]interface{})

	for _, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		if name, _ := chainString(entry, "name"); name != "execute" {
			continue
		}

		started, okStart := parseTimestamp(entry["started_at"])
		completed, okEnd := parseTimestamp(entry["completed_at"])

		if okStart && okEnd {
			return started, completed
		}
	}

	now := time.Now().UTC()

	return now, now
}

// parseTimestamp parses an RFC3339 timestamp value from an artifact field.
func parseTimestamp(value interface{}) (time.Time, bool) {
	str, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}

	ts, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return time.Time{}, false
	}

	return ts, true
}

// jobName builds the fully-qualified job name
// "database.schema.<unit-local-name>". Missing database or schema metadata is
// an artifact contract violation, not a blank segment.
func jobName(metadata map[string]interface{}, uniqueID string) (string, error) {
	database, okDatabase := chainString(metadata, "database")
	schema, okSchema := chainString(metadata, "schema")

	if !okDatabase || !okSchema {
		return "", fmt.Errorf("%w: node %s is missing database/schema", ErrMalformedArtifact, uniqueID)
	}

	return fmt.Sprintf("%s.%s.%s", database, schema, localName(uniqueID)), nil
}

// localName strips the kind and project segments from a unit id
// ("model.proj.customers" names the unit "customers"). Ids without both
// leading segments pass through unchanged.
func localName(uniqueID string) string {
	const idSegments = 3

	parts := strings.SplitN(uniqueID, ".", idSegments)
	if len(parts) < idSegments {
		return uniqueID
	}

	return parts[2]
}
