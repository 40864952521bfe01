// Optional-path lookups over dynamically shaped artifact documents.
//
// dbt artifacts are deeply nested JSON whose optional sections vary by
// adapter and dbt version. These helpers walk a fixed key sequence
// left-to-right and report absence instead of panicking on shape drift.

package dbt

// chainValue walks doc along keys and returns the value at the end of the
// chain. Returns (nil, false) if any intermediate key is missing, nil, or not
// a mapping.
func chainValue(doc map[string]interface{}, keys ...string) (interface{}, bool) {
	if doc == nil || len(keys) == 0 {
		return nil, false
	}

	var current interface{} = doc

	for _, key := range keys {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}

		current, ok = node[key]
		if !ok || current == nil {
			return nil, false
		}
	}

	return current, true
}

// chainString walks doc along keys and returns the string at the end of the
// chain. Returns ("", false) if the path is absent or the value is not a
// string.
func chainString(doc map[string]interface{}, keys ...string) (string, bool) {
	value, ok := chainValue(doc, keys...)
	if !ok {
		return "", false
	}

	str, ok := value.(string)

	return str, ok
}

// chainMap walks doc along keys and returns the mapping at the end of the
// chain. Returns (nil, false) if the path is absent or the value is not a
// mapping.
func chainMap(doc map[string]interface{}, keys ...string) (map[string]interface{}, bool) {
	value, ok := chainValue(doc, keys...)
	if !ok {
		return nil, false
	}

	m, ok := value.(map[string]interface{})

	return m, ok
}

// firstChainValue tries several key paths in priority order and returns the
// first present value. Used for vendor-specific catalog layouts where the
// same statistic lives under different keys (BigQuery vs Snowflake).
func firstChainValue(doc map[string]interface{}, paths ...[]string) (interface{}, bool) {
	for _, path := range paths {
		if value, ok := chainValue(doc, path...); ok {
			return value, true
		}
	}

	return nil, false
}
