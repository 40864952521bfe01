// Facet field extraction from node metadata and catalog entries.

package dbt

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/correlator-io/dbt-lineage/internal/lineage"
)

// schemaFields extracts the dataset's column fields, preferring the catalog
// entry (observed physical structure, type + description) over the definition
// graph's declared columns (type only). Fields are ordered by column name so
// repeated parses of the same artifacts produce identical events.
func schemaFields(node ModelNode) ([]lineage.SchemaField, error) {
	if node.Catalog != nil {
		columns, ok := chainMap(node.Catalog, "columns")
		if !ok {
			return nil, fmt.Errorf("%w: catalog entry for %s has no columns", ErrMalformedArtifact, node.ID)
		}

		return extractCatalogFields(columns), nil
	}

	columns, ok := chainMap(node.Metadata, "columns")
	if !ok {
		return nil, fmt.Errorf("%w: node %s has no columns", ErrMalformedArtifact, node.ID)
	}

	return extractMetadataFields(columns), nil
}

// extractMetadataFields extracts field info from the definition graph's
// column metadata. Used only in the absence of a catalog entry; the manifest
// carries less column information than the catalog (no description).
func extractMetadataFields(columns map[string]interface{}) []lineage.SchemaField {
	fields := make([]lineage.SchemaField, 0, len(columns))

	for _, name := range sortedKeys(columns) {
		column, ok := columns[name].(map[string]interface{})
		if !ok {
			continue
		}

		field := lineage.SchemaField{Name: name}
		if columnName, ok := chainString(column, "name"); ok {
			field.Name = columnName
		}

		field.Type, _ = chainString(column, "data_type")

		fields = append(fields, field)
	}

	return fields
}

// extractCatalogFields extracts field info from a catalog entry's observed
// columns.
func extractCatalogFields(columns map[string]interface{}) []lineage.SchemaField {
	fields := make([]lineage.SchemaField, 0, len(columns))

	for _, name := range sortedKeys(columns) {
		column, ok := columns[name].(map[string]interface{})
		if !ok {
			continue
		}

		field := lineage.SchemaField{Name: name}
		if columnName, ok := chainString(column, "name"); ok {
			field.Name = columnName
		}

		field.Type, _ = chainString(column, "type")
		field.Description, _ = chainString(column, "column")

		fields = append(fields, field)
	}

	return fields
}

// outputStatistics extracts observed byte and row counts from a node's
// catalog entry. The two supported adapters store them under different key
// paths, tried in fixed priority order:
//   - BigQuery:  stats.num_bytes.value / stats.num_rows.value
//   - Snowflake: stats.bytes.value / stats.row_count.value
//
// The facet is produced only when BOTH counts coerce to integers.
func outputStatistics(node ModelNode) (lineage.OutputStatisticsOutputDatasetFacet, bool) {
	if node.Catalog == nil {
		return lineage.OutputStatisticsOutputDatasetFacet{}, false
	}

	rawBytes, okBytes := firstChainValue(node.Catalog,
		[]string{"stats", "num_bytes", "value"},
		[]string{"stats", "bytes", "value"},
	)
	rawRows, okRows := firstChainValue(node.Catalog,
		[]string{"stats", "num_rows", "value"},
		[]string{"stats", "row_count", "value"},
	)

	if !okBytes || !okRows {
		return lineage.OutputStatisticsOutputDatasetFacet{}, false
	}

	size, okSize := coerceInt64(rawBytes)
	rows, okCount := coerceInt64(rawRows)

	if !okSize || !okCount {
		return lineage.OutputStatisticsOutputDatasetFacet{}, false
	}

	return lineage.OutputStatisticsOutputDatasetFacet{
		RowCount: rows,
		Size:     size,
	}, true
}

// coerceInt64 best-effort converts a catalog statistic value to an integer.
// Adapters disagree on representation: BigQuery emits strings, Snowflake
// emits numbers (which JSON decoding surfaces as float64).
func coerceInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return int64(parsed), true
	default:
		return 0, false
	}
}

// sortedKeys returns the keys of a mapping in lexical order.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
