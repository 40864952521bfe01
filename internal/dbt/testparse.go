// Test-assertion aggregation: translating "dbt test" results into data
// quality events.
//
// Unlike model runs, test executions do not map one-to-one onto lifecycle
// events. All assertions validating the same dataset are grouped, and each
// validated dataset with at least one assertion yields one start/complete
// event pair carrying a dataQualityAssertions facet.

package dbt

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/correlator-io/dbt-lineage/internal/lineage"
)

// ErrOrphanTest indicates a test record whose dependency graph entry names no
// model or source, so the validated dataset cannot be resolved.
var ErrOrphanTest = errors.New("test has no resolvable validated dataset")

// parseTest translates the execution records of a "dbt test" invocation into
// start/complete event pairs, one pair per validated dataset. There is no
// fail path: assertion outcomes are encoded in the facet's success flags, not
// in run status.
//
// The run_results artifact carries no meaningful per-test timing, so every
// emitted event is stamped with the wall-clock time at aggregation.
func (p *Processor) parseTest(runCtx *runContext, records []interface{}) (*Events, error) {
	now := time.Now().UTC()

	assertions := make(map[string][]lineage.Assertion)

	for _, raw := range records {
		record, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: test record is not a mapping", ErrMalformedArtifact)
		}

		uniqueID, _ := chainString(record, "unique_id")

		testNode, ok := runCtx.ix.node(uniqueID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownResultNode, uniqueID)
		}

		validated, ok := runCtx.ix.validatedParent(uniqueID)
		if !ok {
			return nil, fmt.Errorf("%w: test %q", ErrOrphanTest, uniqueID)
		}

		name, ok := chainString(testNode.Metadata, "test_metadata", "name")
		if !ok {
			return nil, fmt.Errorf("%w: test %s has no test_metadata.name", ErrMalformedArtifact, uniqueID)
		}

		status, _ := chainString(record, "status")
		column, _ := chainString(testNode.Metadata, "test_metadata", "kwargs", "column_name")

		assertions[validated] = append(assertions[validated], lineage.Assertion{
			Assertion: name,
			Success:   status == "pass",
			Column:    column,
		})
	}

	// Go maps have no iteration order; sorted unit ids keep the emitted
	// stream deterministic across parses of the same artifacts.
	validatedIDs := make([]string, 0, len(assertions))
	for id := range assertions {
		validatedIDs = append(validatedIDs, id)
	}

	sort.Strings(validatedIDs)

	events := &Events{}

	for _, id := range validatedIDs {
		node, ok := runCtx.ix.node(id)
		if !ok {
			continue
		}

		start, complete, err := runCtx.assertionEvents(node, assertions[id], now)
		if err != nil {
			return nil, err
		}

		events.Starts = append(events.Starts, start)
		events.Completes = append(events.Completes, complete)
	}

	return events, nil
}

// assertionEvents builds the start/complete pair for one validated dataset.
// Both events share one fresh run id; only the complete event carries the
// assertions facet.
func (runCtx *runContext) assertionEvents(
	node ModelNode,
	checks []lineage.Assertion,
	eventTime time.Time,
) (lineage.RunEvent, lineage.RunEvent, error) {
	name, err := datasetName(node)
	if err != nil {
		return lineage.RunEvent{}, lineage.RunEvent{}, err
	}

	jobTitle, err := jobName(node.Metadata, node.ID)
	if err != nil {
		return lineage.RunEvent{}, lineage.RunEvent{}, err
	}

	job := lineage.Job{
		Namespace: runCtx.jobNamespace,
		Name:      jobTitle,
	}
	runID := newRunID()

	start := lineage.RunEvent{
		EventType: lineage.EventTypeStart,
		EventTime: eventTime,
		Run:       lineage.Run{ID: runID},
		Job:       job,
		Producer:  runCtx.producer,
		SchemaURL: lineage.SchemaURL,
		Inputs: []lineage.Dataset{
			{Namespace: runCtx.datasetNamespace, Name: name},
		},
		Outputs: []lineage.Dataset{},
	}

	complete := lineage.RunEvent{
		EventType: lineage.EventTypeComplete,
		EventTime: eventTime,
		Run:       lineage.Run{ID: runID},
		Job:       job,
		Producer:  runCtx.producer,
		SchemaURL: lineage.SchemaURL,
		Inputs: []lineage.Dataset{
			{
				Namespace: runCtx.datasetNamespace,
				Name:      name,
				Facets: lineage.Facets{
					lineage.FacetKeyDataQualityAssertions: lineage.DataQualityAssertionsDatasetFacet{
						BaseFacet:  lineage.NewBaseFacet(runCtx.producer),
						Assertions: checks,
					},
				},
			},
		},
		Outputs: []lineage.Dataset{},
	}

	return start, complete, nil
}
