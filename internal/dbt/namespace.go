// Namespace resolution from the connection profile.
//
// The dataset namespace identifies the physical storage system a dataset
// lives in and is derived from the resolved profile output; the job namespace
// defaults to the same value but can be overridden externally so jobs from
// several projects group under one logical namespace.
// Spec: https://openlineage.io/docs/spec/naming

package dbt

import (
	"errors"
	"fmt"

	"github.com/correlator-io/dbt-lineage/internal/config"
)

// JobNamespaceEnvVar overrides the job namespace when set.
const JobNamespaceEnvVar = "OPENLINEAGE_NAMESPACE"

// ErrUnsupportedAdapter indicates the profile uses an adapter this processor
// cannot derive a namespace for. Hard failure: emitting events under a
// guessed namespace would silently break downstream correlation.
var ErrUnsupportedAdapter = errors.New("unsupported dbt adapter")

// resolveNamespaces derives the dataset and job namespaces from a resolved
// profile output (one entry of profiles.yml outputs).
//
// Supported adapters:
//   - snowflake (account-based): "snowflake://{account}"
//   - bigquery (project-based, no account segment): "bigquery"
//
// The job namespace is the OPENLINEAGE_NAMESPACE environment variable when
// set, else the dataset namespace.
func resolveNamespaces(profile map[string]interface{}) (datasetNamespace, jobNamespace string, err error) {
	datasetNamespace, err = extractNamespace(profile)
	if err != nil {
		return "", "", err
	}

	jobNamespace = config.GetEnvStr(JobNamespaceEnvVar, datasetNamespace)

	return datasetNamespace, jobNamespace, nil
}

// extractNamespace maps a profile output to its dataset namespace, branching
// on the adapter kind.
func extractNamespace(profile map[string]interface{}) (string, error) {
	adapter, _ := chainString(profile, "type")

	switch adapter {
	case "snowflake":
		account, _ := chainString(profile, "account")

		return fmt.Sprintf("snowflake://%s", account), nil
	case "bigquery":
		return "bigquery", nil
	default:
		return "", fmt.Errorf(
			"%w: only 'snowflake' and 'bigquery' adapters are supported, got %q",
			ErrUnsupportedAdapter, adapter,
		)
	}
}
