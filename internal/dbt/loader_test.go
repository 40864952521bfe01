package dbt

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeJSON marshals doc into dir/name and returns the full path.
func writeJSON(t *testing.T, dir, name string, doc map[string]interface{}) string {
	t.Helper()

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	return path
}

func TestLoadManifest_AcceptsMatchingSchemaVersion(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	path := writeJSON(t, t.TempDir(), "manifest.json", map[string]interface{}{
		"metadata":   map[string]interface{}{"dbt_schema_version": manifestSchemaVersion},
		"nodes":      map[string]interface{}{},
		"sources":    map[string]interface{}{},
		"parent_map": map[string]interface{}{},
	})

	manifest, err := LoadManifest(path, false)
	if err != nil {
		t.Fatalf("LoadManifest() failed: %v", err)
	}

	if _, ok := chainString(manifest, "metadata", "dbt_schema_version"); !ok {
		t.Error("Expected loaded manifest to retain its metadata")
	}
}

func TestLoadManifest_RejectsWrongSchemaVersion(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	path := writeJSON(t, t.TempDir(), "manifest.json", map[string]interface{}{
		"metadata": map[string]interface{}{
			"dbt_schema_version": "https://schemas.getdbt.com/dbt/manifest/v1.json",
		},
	})

	_, err := LoadManifest(path, false)
	if !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("Expected ErrSchemaVersion, got %v", err)
	}
}

func TestLoadManifest_RejectsMissingVersionTag(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	path := writeJSON(t, t.TempDir(), "manifest.json", map[string]interface{}{
		"nodes": map[string]interface{}{},
	})

	_, err := LoadManifest(path, false)
	if !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("Expected ErrSchemaVersion for missing tag, got %v", err)
	}
}

func TestLoadCatalog_MissingFileIsTolerated(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	catalog, err := LoadCatalog(filepath.Join(t.TempDir(), "catalog.json"), false)
	if err != nil {
		t.Fatalf("Expected missing catalog to be tolerated, got %v", err)
	}

	if catalog != nil {
		t.Error("Expected nil catalog for missing file")
	}
}

func TestLoadCatalog_WrongVersionIsStillFatal(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	path := writeJSON(t, t.TempDir(), "catalog.json", map[string]interface{}{
		"metadata": map[string]interface{}{
			"dbt_schema_version": "https://schemas.getdbt.com/dbt/catalog/v2.json",
		},
		"nodes": map[string]interface{}{},
	})

	_, err := LoadCatalog(path, false)
	if !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("Expected ErrSchemaVersion, got %v", err)
	}
}

func TestLoadRunResults_MalformedJSON(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	path := filepath.Join(t.TempDir(), "run_results.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	_, err := LoadRunResults(path, false)
	if !errors.Is(err, ErrMalformedArtifact) {
		t.Fatalf("Expected ErrMalformedArtifact, got %v", err)
	}
}

func TestLoadRunResults_StrictModeRejectsMissingSections(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	// Version tag is correct but the results/args sections are missing:
	// only strict mode catches this at load time.
	doc := map[string]interface{}{
		"metadata": map[string]interface{}{"dbt_schema_version": runResultsSchemaVersion},
	}

	dir := t.TempDir()
	path := writeJSON(t, dir, "run_results.json", doc)

	if _, err := LoadRunResults(path, false); err != nil {
		t.Fatalf("Expected lax mode to accept the artifact, got %v", err)
	}

	_, err := LoadRunResults(path, true)
	if !errors.Is(err, ErrArtifactInvalid) {
		t.Fatalf("Expected ErrArtifactInvalid in strict mode, got %v", err)
	}
}

func TestLoadYAML_ParsesProfiles(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yml")

	content := []byte("proj:\n  target: prod\n  outputs:\n    prod:\n      type: snowflake\n      account: acct\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	profiles, err := loadYAML(path)
	if err != nil {
		t.Fatalf("loadYAML() failed: %v", err)
	}

	adapter, ok := chainString(profiles, "proj", "outputs", "prod", "type")
	if !ok || adapter != "snowflake" {
		t.Errorf("Expected snowflake adapter, got %q (present: %v)", adapter, ok)
	}
}
