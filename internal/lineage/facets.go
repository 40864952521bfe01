// OpenLineage standard facet definitions used by the dbt artifact processor.
// Spec: https://openlineage.io/docs/spec/facets/

package lineage

// Facet name constants. Facets are attached to jobs and datasets under these
// keys; consumers dispatch on the key, so the names must match OpenLineage
// exactly.
const (
	// FacetKeyDataSource identifies the data source a dataset lives in.
	FacetKeyDataSource = "dataSource"

	// FacetKeySchema describes the fields of a dataset.
	FacetKeySchema = "schema"

	// FacetKeySQL carries the SQL statement a job executed.
	FacetKeySQL = "sql"

	// FacetKeyOutputStatistics carries observed row/byte counts of an output.
	FacetKeyOutputStatistics = "outputStatistics"

	// FacetKeyDataQualityAssertions carries data quality check outcomes.
	FacetKeyDataQualityAssertions = "dataQualityAssertions"
)

type (
	// BaseFacet carries the producer and schema identification every
	// OpenLineage facet must embed.
	// Spec: https://openlineage.io/docs/spec/facets/#custom-facet-naming
	BaseFacet struct {
		Producer  string `json:"_producer"`  //nolint:tagliatelle // OpenLineage wire format
		SchemaURL string `json:"_schemaURL"` //nolint:tagliatelle // OpenLineage wire format
	}

	// DataSourceDatasetFacet identifies the physical data source of a dataset.
	DataSourceDatasetFacet struct {
		BaseFacet

		Name string `json:"name"`
		URI  string `json:"uri"`
	}

	// SchemaField describes one column of a dataset.
	SchemaField struct {
		Name        string `json:"name"`
		Type        string `json:"type,omitempty"`
		Description string `json:"description,omitempty"`
	}

	// SchemaDatasetFacet describes the declared or observed schema of a dataset.
	SchemaDatasetFacet struct {
		BaseFacet

		Fields []SchemaField `json:"fields"`
	}

	// SQLJobFacet carries the compiled SQL text a job executed.
	SQLJobFacet struct {
		BaseFacet

		Query string `json:"query"`
	}

	// OutputStatisticsOutputDatasetFacet carries physically observed output
	// statistics. Attached only when both row and byte counts are known.
	OutputStatisticsOutputDatasetFacet struct {
		BaseFacet

		RowCount int64 `json:"rowCount"` //nolint:tagliatelle // OpenLineage wire format
		Size     int64 `json:"size"`
	}

	// Assertion is one data quality check outcome.
	Assertion struct {
		// Assertion names the check (e.g., "not_null", "unique").
		Assertion string `json:"assertion"`

		// Success is the boolean outcome of the check.
		Success bool `json:"success"`

		// Column is the checked column, when the check targets one.
		Column string `json:"column,omitempty"`
	}

	// DataQualityAssertionsDatasetFacet lists the data quality checks executed
	// against a dataset and their outcomes.
	DataQualityAssertionsDatasetFacet struct {
		BaseFacet

		Assertions []Assertion `json:"assertions"`
	}
)

// NewBaseFacet returns the base facet fields for the given producer.
func NewBaseFacet(producer string) BaseFacet {
	return BaseFacet{
		Producer:  producer,
		SchemaURL: SchemaURL,
	}
}
