// OpenLineage event validation, applied by transports before emission.

package lineage

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrNilEvent                = errors.New("event cannot be nil")
	ErrInvalidEventType        = errors.New("invalid eventType")
	ErrMissingEventTime        = errors.New("eventTime is required")
	ErrMissingProducer         = errors.New("producer is required")
	ErrMissingSchemaURL        = errors.New("schemaURL is required")
	ErrMissingRunID            = errors.New("run.runId is required")
	ErrMissingJobNamespace     = errors.New("job.namespace is required")
	ErrMissingJobName          = errors.New("job.name is required")
	ErrDatasetMissingNamespace = errors.New("dataset.namespace is required")
	ErrDatasetMissingName      = errors.New("dataset.name is required")
)

// Validator performs semantic validation of OpenLineage RunEvents before they
// are handed to a transport. Catching a malformed event here surfaces a
// producer bug at emission time instead of a rejection from the collector.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRunEvent validates that a RunEvent contains all required
// OpenLineage fields.
//
// Required fields (per OpenLineage v2 spec):
//   - eventType: Must be a valid run state
//   - eventTime: Must not be the zero value
//   - producer: Must not be empty
//   - schemaURL: Must not be empty
//   - run.runId: Must not be empty
//   - job.namespace: Must not be empty
//   - job.name: Must not be empty
//
// Inputs, outputs, and facets are optional. Every referenced dataset must
// carry both namespace and name.
func (v *Validator) ValidateRunEvent(event *RunEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	if !event.EventType.IsValid() {
		return fmt.Errorf(
			"%w: %s (valid: START, RUNNING, COMPLETE, FAIL, ABORT, OTHER)",
			ErrInvalidEventType, event.EventType,
		)
	}

	if event.EventTime.IsZero() {
		return ErrMissingEventTime
	}

	if event.Producer == "" {
		return ErrMissingProducer
	}

	if event.SchemaURL == "" {
		return ErrMissingSchemaURL
	}

	if event.Run.ID == "" {
		return ErrMissingRunID
	}

	if event.Job.Namespace == "" {
		return ErrMissingJobNamespace
	}

	if event.Job.Name == "" {
		return ErrMissingJobName
	}

	for i := range event.Inputs {
		if err := v.ValidateDataset(&event.Inputs[i]); err != nil {
			return fmt.Errorf("inputs[%d]: %w", i, err)
		}
	}

	for i := range event.Outputs {
		if err := v.ValidateDataset(&event.Outputs[i]); err != nil {
			return fmt.Errorf("outputs[%d]: %w", i, err)
		}
	}

	return nil
}

// ValidateDataset validates that a Dataset carries the required namespace and
// name pair. Facets may be nil or contain unknown entries (extensibility).
func (v *Validator) ValidateDataset(dataset *Dataset) error {
	if dataset.Namespace == "" {
		return ErrDatasetMissingNamespace
	}

	if dataset.Name == "" {
		return ErrDatasetMissingName
	}

	return nil
}
