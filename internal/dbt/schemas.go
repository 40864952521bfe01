// Optional strict structural validation of JSON artifacts.
//
// The schema-version tag check in loader.go only gates on the declared
// version; it does not prove the document has the shape traversal relies on.
// Strict mode validates each artifact against an embedded JSON Schema
// describing the subset of the dbt contract this processor reads, so a
// truncated or hand-edited artifact fails at load time with a field path
// instead of partway through translation.

package dbt

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var embeddedSchemas embed.FS

// Embedded schema file names, one per JSON artifact kind.
const (
	manifestSchema   = "schemas/manifest.json"
	runResultsSchema = "schemas/run_results.json"
	catalogSchema    = "schemas/catalog.json"
)

// ErrArtifactInvalid indicates an artifact failed strict structural validation.
var ErrArtifactInvalid = errors.New("artifact failed structural validation")

// validateArtifact validates raw artifact bytes against the embedded JSON
// Schema named by schemaFile. Validation errors list every offending field
// path, not just the first.
func validateArtifact(schemaFile string, document []byte) error {
	schemaBytes, err := embeddedSchemas.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("load embedded schema %s: %w", schemaFile, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate against %s: %w", schemaFile, err)
	}

	if result.Valid() {
		return nil
	}

	var sb strings.Builder

	for i, desc := range result.Errors() {
		if i > 0 {
			sb.WriteString("; ")
		}

		field := desc.Field()
		if field == "" {
			field = "(root)"
		}

		fmt.Fprintf(&sb, "%s: %s", field, desc.Description())
	}

	return fmt.Errorf("%w: %s", ErrArtifactInvalid, sb.String())
}
