// Artifact-to-event translation: the processor walks loaded artifacts and
// produces ordered OpenLineage lifecycle events.

package dbt

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/correlator-io/dbt-lineage/internal/lineage"
)

// Sentinel errors for artifact parsing.
var (
	// ErrUnrecognizedCommand indicates run_results was produced by a dbt
	// sub-command other than "run" or "test".
	ErrUnrecognizedCommand = errors.New("unrecognized dbt command, should be 'run' or 'test'")

	// ErrMissingProfile indicates the connection profile referenced by the
	// project could not be resolved from profiles.yml.
	ErrMissingProfile = errors.New("profile not found in profiles.yml")
)

// Config configures a Processor.
type Config struct {
	// Producer identifies this tool in emitted events.
	// Format: URL with version.
	Producer string

	// ProjectDir is the dbt project directory holding dbt_project.yml and the
	// target path with the JSON artifacts.
	ProjectDir string

	// ProfileName selects the profiles.yml entry. Empty means the project's
	// declared profile.
	ProfileName string

	// Target selects the profile output. Empty means the profile's declared
	// default target.
	Target string

	// SkipBadRuns selects the failure isolation policy for per-run
	// translation errors: true drops the offending run with a warning, false
	// (default) aborts the whole parse wrapping the cause.
	SkipBadRuns bool

	// StrictArtifacts enables structural JSON Schema validation of the
	// artifacts at load time.
	StrictArtifacts bool
}

// Processor translates the artifacts of one dbt invocation into OpenLineage
// events. It is immutable after construction: each Parse call resolves its
// own per-parse state, so a Processor is safe to use concurrently for
// independent invocations.
type Processor struct {
	producer    string
	projectDir  string
	profileName string
	target      string
	skipBadRuns bool
	strict      bool
}

// NewProcessor creates a Processor for one dbt project directory.
func NewProcessor(cfg Config) *Processor {
	return &Processor{
		producer:    cfg.Producer,
		projectDir:  cfg.ProjectDir,
		profileName: cfg.ProfileName,
		target:      cfg.Target,
		skipBadRuns: cfg.SkipBadRuns,
		strict:      cfg.StrictArtifacts,
	}
}

// Events is the aggregate output of one parse pass: three ordered lifecycle
// event lists, handed to a transport for delivery.
type Events struct {
	Starts    []lineage.RunEvent
	Completes []lineage.RunEvent
	Fails     []lineage.RunEvent
}

// All returns every event in emission order: starts, completes, fails.
func (e *Events) All() []lineage.RunEvent {
	all := make([]lineage.RunEvent, 0, len(e.Starts)+len(e.Completes)+len(e.Fails))
	all = append(all, e.Starts...)
	all = append(all, e.Completes...)
	all = append(all, e.Fails...)

	return all
}

// runEventSet is the event pair produced from one run: a start event always,
// and at most one of complete/fail.
type runEventSet struct {
	start    lineage.RunEvent
	complete *lineage.RunEvent
	fail     *lineage.RunEvent
}

// runContext is the state resolved once per Parse call (node index,
// namespaces, producer stamp), threaded through event construction. Keeping
// it off the Processor means concurrent parses share nothing mutable.
type runContext struct {
	ix               *nodeIndex
	producer         string
	datasetNamespace string
	jobNamespace     string
}

// Parse loads the dbt artifacts and produces OpenLineage events for the
// recorded invocation ("run" produces model lifecycle events, "test"
// produces data quality assertion events).
func (p *Processor) Parse() (*Events, error) {
	project, err := loadYAML(filepath.Join(p.projectDir, "dbt_project.yml"))
	if err != nil {
		return nil, err
	}

	targetPath, ok := chainString(project, "target-path")
	if !ok {
		targetPath = "target"
	}

	manifest, err := LoadManifest(filepath.Join(p.projectDir, targetPath, "manifest.json"), p.strict)
	if err != nil {
		return nil, err
	}

	runResults, err := LoadRunResults(filepath.Join(p.projectDir, targetPath, "run_results.json"), p.strict)
	if err != nil {
		return nil, err
	}

	catalog, err := LoadCatalog(filepath.Join(p.projectDir, targetPath, "catalog.json"), p.strict)
	if err != nil {
		return nil, err
	}

	profile, err := p.resolveProfile(project, runResults)
	if err != nil {
		return nil, err
	}

	datasetNamespace, jobNamespace, err := resolveNamespaces(profile)
	if err != nil {
		return nil, err
	}

	runCtx := &runContext{
		ix:               newNodeIndex(manifest, catalog),
		producer:         p.producer,
		datasetNamespace: datasetNamespace,
		jobNamespace:     jobNamespace,
	}

	results, _ := chainValue(runResults, "results")
	records, _ := results.([]interface{})

	command, _ := chainString(runResults, "args", "which")
	switch command {
	case "run":
		return p.parseRun(runCtx, records)
	case "test":
		return p.parseTest(runCtx, records)
	default:
		return nil, fmt.Errorf("%w: got %q", ErrUnrecognizedCommand, command)
	}
}

// resolveProfile locates the connection profile output for this invocation:
// profiles.yml is keyed by profile name, then target environment. The profile
// name defaults to the project's declared profile and the target to the
// profile's declared default.
func (p *Processor) resolveProfile(project, runResults map[string]interface{}) (map[string]interface{}, error) {
	profilesDir, _ := chainString(runResults, "args", "profiles_dir")

	profiles, err := loadYAML(filepath.Join(profilesDir, "profiles.yml"))
	if err != nil {
		return nil, err
	}

	profileName := p.profileName
	if profileName == "" {
		profileName, _ = chainString(project, "profile")
	}

	profile, ok := chainMap(profiles, profileName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingProfile, profileName)
	}

	target := p.target
	if target == "" {
		target, _ = chainString(profile, "target")
	}

	output, ok := chainMap(profile, "outputs", target)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no output for target %q", ErrMissingProfile, profileName, target)
	}

	return output, nil
}

// parseRun translates the execution records of a "dbt run" invocation into
// lifecycle events, preserving artifact record order.
//
// Failure isolation policy: assembling or translating one record may fail on
// malformed per-node data; the record is either dropped with a warning
// (SkipBadRuns) or aborts the parse wrapping the cause.
func (p *Processor) parseRun(runCtx *runContext, records []interface{}) (*Events, error) {
	events := &Events{}

	for _, raw := range records {
		record, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: execution record is not a mapping", ErrMalformedArtifact)
		}

		set, err := p.recordEvents(runCtx, record)
		if err != nil {
			uniqueID, _ := chainString(record, "unique_id")

			if p.skipBadRuns {
				slog.Warn("Skipping run that failed to translate",
					slog.String("node", uniqueID),
					slog.String("error", err.Error()))

				continue
			}

			return nil, fmt.Errorf("translate run %s: %w", uniqueID, err)
		}

		if set == nil {
			continue
		}

		events.Starts = append(events.Starts, set.start)

		if set.complete != nil {
			events.Completes = append(events.Completes, *set.complete)
		} else if set.fail != nil {
			events.Fails = append(events.Fails, *set.fail)
		}
	}

	return events, nil
}

// recordEvents assembles one execution record into a run and maps it to its
// lifecycle events.
func (p *Processor) recordEvents(runCtx *runContext, record map[string]interface{}) (*runEventSet, error) {
	run, err := assembleRun(runCtx.ix, record, runCtx.datasetNamespace)
	if err != nil {
		return nil, err
	}

	return runCtx.buildRunEvents(run)
}

// buildRunEvents maps one run to its lifecycle events.
//
// Status state machine:
//   - skipped → no events
//   - success → start + complete
//   - error   → start + fail (empty output list: a failed run asserts no
//     output was durably produced)
//   - anything else → ErrUnrecognizedStatus
//
// Facet policy: the start event is facet-free (facets describe final observed
// state, not intent); terminal events carry full dataset facets and the sql
// job facet.
func (runCtx *runContext) buildRunEvents(run ModelRun) (*runEventSet, error) {
	if run.Status == RunStatusSkipped {
		return nil, nil //nolint:nilnil // skipped units emit zero events
	}

	startInputs, err := runCtx.datasets(run.Inputs, false)
	if err != nil {
		return nil, err
	}

	startOutputs := []lineage.Dataset{}

	if run.Output != nil {
		output, err := runCtx.dataset(*run.Output, false)
		if err != nil {
			return nil, err
		}

		startOutputs = append(startOutputs, output)
	}

	start := lineage.RunEvent{
		EventType: lineage.EventTypeStart,
		EventTime: run.StartedAt,
		Run:       lineage.Run{ID: run.RunID},
		Job:       lineage.Job{Namespace: runCtx.jobNamespace, Name: run.JobName},
		Producer:  runCtx.producer,
		SchemaURL: lineage.SchemaURL,
		Inputs:    startInputs,
		Outputs:   startOutputs,
	}

	switch run.Status {
	case RunStatusSuccess:
		complete, err := runCtx.terminalEvent(run, lineage.EventTypeComplete)
		if err != nil {
			return nil, err
		}

		return &runEventSet{start: start, complete: complete}, nil
	case RunStatusError:
		fail, err := runCtx.terminalEvent(run, lineage.EventTypeFail)
		if err != nil {
			return nil, err
		}

		return &runEventSet{start: start, fail: fail}, nil
	case RunStatusSkipped:
		// Handled above; keeps the switch exhaustive.
		return nil, nil //nolint:nilnil // skipped units emit zero events
	default:
		return nil, fmt.Errorf("%w: got %q", ErrUnrecognizedStatus, run.Status)
	}
}

// terminalEvent builds the COMPLETE or FAIL event of a run with full facet
// richness: sql job facet, schema/dataSource facets on inputs, and (for
// COMPLETE) the output with schema and statistics facets.
func (runCtx *runContext) terminalEvent(run ModelRun, eventType lineage.EventType) (*lineage.RunEvent, error) {
	if run.Output == nil {
		return nil, fmt.Errorf("%w: run %s has no output node", ErrUnknownResultNode, run.JobName)
	}

	compiledSQL, ok := chainString(run.Output.Metadata, "compiled_sql")
	if !ok {
		return nil, fmt.Errorf("%w: node %s has no compiled_sql", ErrMalformedArtifact, run.Output.ID)
	}

	inputs, err := runCtx.datasets(run.Inputs, true)
	if err != nil {
		return nil, err
	}

	outputs := []lineage.Dataset{}

	if eventType == lineage.EventTypeComplete {
		output, err := runCtx.outputDataset(*run.Output)
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, output)
	}

	event := lineage.RunEvent{
		EventType: eventType,
		EventTime: run.CompletedAt,
		Run:       lineage.Run{ID: run.RunID},
		Job: lineage.Job{
			Namespace: runCtx.jobNamespace,
			Name:      run.JobName,
			Facets: lineage.Facets{
				lineage.FacetKeySQL: lineage.SQLJobFacet{
					BaseFacet: lineage.NewBaseFacet(runCtx.producer),
					Query:     compiledSQL,
				},
			},
		},
		Producer:  runCtx.producer,
		SchemaURL: lineage.SchemaURL,
		Inputs:    inputs,
		Outputs:   outputs,
	}

	return &event, nil
}

// datasets maps resolved nodes to datasets, with or without facets.
func (runCtx *runContext) datasets(nodes []ModelNode, withFacets bool) ([]lineage.Dataset, error) {
	datasets := make([]lineage.Dataset, 0, len(nodes))

	for _, node := range nodes {
		dataset, err := runCtx.dataset(node, withFacets)
		if err != nil {
			return nil, err
		}

		datasets = append(datasets, dataset)
	}

	return datasets, nil
}

// dataset extracts the dataset identity (namespace, fully-qualified name) and
// optionally the schema and dataSource facets from a resolved node.
//
// Schema extraction branches on data source: the catalog entry wins when
// present (column type and description from observed physical structure),
// else the definition graph's column metadata (type only).
func (runCtx *runContext) dataset(node ModelNode, withFacets bool) (lineage.Dataset, error) {
	name, err := datasetName(node)
	if err != nil {
		return lineage.Dataset{}, err
	}

	dataset := lineage.Dataset{
		Namespace: runCtx.datasetNamespace,
		Name:      name,
	}

	if !withFacets {
		return dataset, nil
	}

	fields, err := schemaFields(node)
	if err != nil {
		return lineage.Dataset{}, err
	}

	dataset.Facets = lineage.Facets{
		lineage.FacetKeyDataSource: lineage.DataSourceDatasetFacet{
			BaseFacet: lineage.NewBaseFacet(runCtx.producer),
			Name:      runCtx.datasetNamespace,
			URI:       runCtx.datasetNamespace,
		},
		lineage.FacetKeySchema: lineage.SchemaDatasetFacet{
			BaseFacet: lineage.NewBaseFacet(runCtx.producer),
			Fields:    fields,
		},
	}

	return dataset, nil
}

// outputDataset extracts a fully-faceted output dataset, attaching the
// outputStatistics facet when the catalog provides both byte and row counts.
func (runCtx *runContext) outputDataset(node ModelNode) (lineage.Dataset, error) {
	dataset, err := runCtx.dataset(node, true)
	if err != nil {
		return lineage.Dataset{}, err
	}

	stats, ok := outputStatistics(node)
	if ok {
		stats.BaseFacet = lineage.NewBaseFacet(runCtx.producer)
		dataset.OutputFacets = lineage.Facets{
			lineage.FacetKeyOutputStatistics: stats,
		}
	}

	return dataset, nil
}

// datasetName builds the dataset's fully-qualified name
// "database.schema.name" from the node's definition-graph metadata.
func datasetName(node ModelNode) (string, error) {
	database, okDatabase := chainString(node.Metadata, "database")
	schema, okSchema := chainString(node.Metadata, "schema")
	name, okName := chainString(node.Metadata, "name")

	if !okDatabase || !okSchema || !okName {
		return "", fmt.Errorf("%w: node %s is missing database/schema/name", ErrMalformedArtifact, node.ID)
	}

	return fmt.Sprintf("%s.%s.%s", database, schema, name), nil
}
