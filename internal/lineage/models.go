// Package lineage provides the OpenLineage event model emitted by the dbt
// artifact processor.
// Spec: https://openlineage.io/docs/spec/object-model
package lineage

import (
	"time"
)

// SchemaURL is the OpenLineage spec version this producer emits.
const SchemaURL = "https://openlineage.io/spec/2-0-2/OpenLineage.json"

type (
	// RunEvent represents an OpenLineage RunEvent describing one state change
	// of a job run. Events are emitted when runs start, complete, or fail, and
	// carry the input and output Datasets involved in the run.
	//
	// JSON tags follow the OpenLineage wire format so events can be handed to
	// a transport without a separate API mapping layer.
	//
	// Spec: https://openlineage.io/docs/spec/object-model#job-run-state-update
	RunEvent struct {
		// EventType is the run state: START, RUNNING, COMPLETE, FAIL, ABORT, or OTHER.
		// Terminal states (COMPLETE, FAIL, ABORT) are idempotent.
		EventType EventType `json:"eventType"`

		// EventTime is the timestamp when this event occurred (RFC3339 format).
		EventTime time.Time `json:"eventTime"`

		// Run contains metadata about this specific run instance.
		Run Run `json:"run"`

		// Job contains metadata about the job definition.
		Job Job `json:"job"`

		// Producer identifies the tool that generated this event.
		// Format: URL with version (e.g., "https://github.com/dbt-labs/dbt-core/tree/1.5.0")
		Producer string `json:"producer"`

		// SchemaURL is the OpenLineage spec version URL.
		SchemaURL string `json:"schemaURL"` //nolint:tagliatelle // OpenLineage wire format

		// Inputs are datasets consumed by this run (optional).
		Inputs []Dataset `json:"inputs"`

		// Outputs are datasets produced by this run (optional).
		// Populated on terminal events; always empty on FAIL (a failed run
		// asserts no output was durably produced).
		Outputs []Dataset `json:"outputs"`
	}

	// EventType represents OpenLineage run states.
	// Spec: https://openlineage.io/docs/spec/run-cycle#run-states
	EventType string

	// Facets are extensible metadata attached to runs, jobs, and datasets,
	// keyed by facet name (e.g., "schema", "sql", "dataQualityAssertions").
	// Spec: https://openlineage.io/docs/spec/facets/dataset-facets
	Facets map[string]interface{}

	// Run represents a single execution instance of a Job.
	// The run ID is a client-generated UUID that correlates all lifecycle
	// events of the same run (START with its COMPLETE or FAIL).
	//
	// Spec: https://openlineage.io/docs/spec/object-model#run
	Run struct {
		ID     string `json:"runId"` //nolint:tagliatelle // OpenLineage wire format
		Facets Facets `json:"facets,omitempty"`
	}

	// Job represents a recurring data transformation with inputs and outputs.
	// Jobs are identified by a unique name within a namespace.
	//
	// Spec: https://openlineage.io/docs/spec/object-model#job
	Job struct {
		// Namespace identifies the scheduler or storage system the job runs
		// against (e.g., "snowflake://my-account", "bigquery").
		Namespace string `json:"namespace"`

		// Name is unique within the namespace.
		// dbt jobs use "database.schema.model_name".
		Name string `json:"name"`

		Facets Facets `json:"facets,omitempty"`
	}

	// Dataset represents a data artifact consumed or produced by a run.
	// The (namespace, name) pair uniquely identifies a dataset within a data
	// ecosystem.
	//
	// Spec: https://openlineage.io/docs/spec/object-model#dataset
	Dataset struct {
		// Namespace identifies the data source.
		// Format: {protocol}://{service_identifier} or a bare scheme literal.
		// Spec: https://openlineage.io/docs/spec/naming#dataset-naming
		Namespace string `json:"namespace"`

		// Name is the hierarchical path to the dataset
		// (e.g., "analytics.public.orders").
		Name string `json:"name"`

		// Facets are metadata common to inputs and outputs
		// (schema, dataSource, ...).
		Facets Facets `json:"facets,omitempty"`

		// InputFacets are metadata specific to input datasets
		// (dataQualityAssertions, ...).
		InputFacets Facets `json:"inputFacets,omitempty"`

		// OutputFacets are metadata specific to output datasets
		// (outputStatistics, ...).
		OutputFacets Facets `json:"outputFacets,omitempty"`
	}
)

const (
	// EventTypeStart indicates the beginning of a job execution.
	EventTypeStart EventType = "START"

	// EventTypeRunning provides additional information about a running job.
	EventTypeRunning EventType = "RUNNING"

	// EventTypeComplete signifies that execution concluded successfully.
	// Terminal state (idempotent).
	EventTypeComplete EventType = "COMPLETE"

	// EventTypeFail signifies that the job has failed.
	// Terminal state (idempotent).
	EventTypeFail EventType = "FAIL"

	// EventTypeAbort signifies that the job was stopped abnormally.
	// Terminal state (idempotent).
	EventTypeAbort EventType = "ABORT"

	// EventTypeOther is used to send additional metadata outside the standard
	// run cycle.
	EventTypeOther EventType = "OTHER"
)

// ValidEventTypes returns all valid OpenLineage event types.
func ValidEventTypes() []EventType {
	return []EventType{
		EventTypeStart,
		EventTypeRunning,
		EventTypeComplete,
		EventTypeFail,
		EventTypeAbort,
		EventTypeOther,
	}
}

// IsValid checks if the EventType is a valid OpenLineage run state.
func (et EventType) IsValid() bool {
	for _, valid := range ValidEventTypes() {
		if et == valid {
			return true
		}
	}

	return false
}

// IsTerminal returns true if the event type is a terminal state.
// Terminal states (COMPLETE, FAIL, ABORT) are idempotent and cannot
// transition to other states.
//
// Spec: https://openlineage.io/docs/spec/run-cycle#run-states
func (et EventType) IsTerminal() bool {
	return et == EventTypeComplete || et == EventTypeFail || et == EventTypeAbort
}

// IdempotencyKey returns the idempotency key for this event.
//
// The key is stable across re-emission of the same event and is used as the
// Kafka message key so duplicate deliveries land on the same partition and
// can be deduplicated downstream.
//
// Formula: SHA256(producer + job.namespace + job.name + run.runId + eventTime + eventType)
func (e *RunEvent) IdempotencyKey() string {
	return GenerateIdempotencyKey(
		e.Producer,
		e.Job.Namespace,
		e.Job.Name,
		e.Run.ID,
		e.EventTime.Format(time.RFC3339Nano),
		string(e.EventType),
	)
}

// URN returns the canonical URN for this dataset.
//
// Format: {namespace}/{name}
func (d *Dataset) URN() string {
	return GenerateDatasetURN(d.Namespace, d.Name)
}
