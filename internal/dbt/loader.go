// Package dbt translates dbt run artifacts into OpenLineage lifecycle events.
//
// The artifacts (manifest.json, run_results.json, catalog.json, profiles.yml,
// dbt_project.yml) are produced by independent dbt subsystems and are
// independently versioned. Loading validates the declared schema version of
// each JSON artifact against the version this processor understands and fails
// fast on mismatch; only the catalog is permitted to be absent.
package dbt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schema versions accepted for each artifact kind. dbt tags every artifact
// with the URL of the JSON schema it was written against.
const (
	manifestSchemaVersion   = "https://schemas.getdbt.com/dbt/manifest/v2.json"
	runResultsSchemaVersion = "https://schemas.getdbt.com/dbt/run-results/v2.json"
	catalogSchemaVersion    = "https://schemas.getdbt.com/dbt/catalog/v1.json"
)

// Sentinel errors for artifact loading.
var (
	// ErrSchemaVersion indicates an artifact declared a schema version other
	// than the one this processor understands.
	ErrSchemaVersion = errors.New("wrong dbt metadata schema version")

	// ErrMalformedArtifact indicates an artifact could not be decoded.
	ErrMalformedArtifact = errors.New("malformed dbt artifact")
)

// LoadManifest loads and version-validates a dbt manifest.json document.
// The manifest holds the definition graph: node metadata, the inverted
// dependency map (parent_map), and the external source table.
func LoadManifest(path string, strict bool) (map[string]interface{}, error) {
	return loadArtifact(path, manifestSchemaVersion, manifestSchema, strict)
}

// LoadRunResults loads and version-validates a dbt run_results.json document.
// It records what actually executed: per-unit status, timing, and the
// invocation arguments.
func LoadRunResults(path string, strict bool) (map[string]interface{}, error) {
	return loadArtifact(path, runResultsSchemaVersion, runResultsSchema, strict)
}

// LoadCatalog loads and version-validates a dbt catalog.json document.
//
// The catalog is optional: a missing file returns (nil, nil) and only
// degrades facet richness. Any other failure (unreadable file, malformed
// JSON, version mismatch) is returned as an error.
func LoadCatalog(path string, strict bool) (map[string]interface{}, error) {
	catalog, err := loadArtifact(path, catalogSchemaVersion, catalogSchema, strict)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	return catalog, nil
}

// loadArtifact reads a JSON artifact, optionally validates its structure
// against an embedded JSON Schema, and checks the declared schema version tag
// at metadata.dbt_schema_version.
func loadArtifact(path, wantVersion, structuralSchema string, strict bool) (map[string]interface{}, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from caller-supplied project dir
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	if strict {
		if err := validateArtifact(structuralSchema, data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformedArtifact, path, err)
	}

	version, _ := chainString(doc, "metadata", "dbt_schema_version")
	if version != wantVersion {
		return nil, fmt.Errorf("%w: %s declares %q, want %q",
			ErrSchemaVersion, path, version, wantVersion)
	}

	return doc, nil
}

// loadYAML parses a YAML configuration document (profiles.yml,
// dbt_project.yml) into a generic mapping. YAML artifacts carry no schema
// version tag, so there is nothing to gate on.
func loadYAML(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from caller-supplied project dir
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformedArtifact, path, err)
	}

	return doc, nil
}
