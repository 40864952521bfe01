// Node resolution over the definition graph and the optional catalog.
//
// The manifest's parent_map is an inverted adjacency structure: for each
// executed unit it lists the upstream unit ids feeding it. Units are
// classified once at index construction (models and tests live in the
// manifest node table, external sources in the source table); the catalog, if
// present, contributes observed physical metadata per node.

package dbt

import (
	"strings"
)

// NodeKind classifies a graph unit by the table it lives in.
type NodeKind string

const (
	// KindModel is a transformation unit (manifest node table, "model." prefix).
	KindModel NodeKind = "model"

	// KindSource is an external source (manifest source table, "source." prefix).
	KindSource NodeKind = "source"

	// KindTest is a data quality test (manifest node table, "test." prefix).
	KindTest NodeKind = "test"

	// KindUnknown marks ids with an unrecognized prefix. Unknown parents are
	// filtered during input resolution, not treated as errors.
	KindUnknown NodeKind = ""
)

// classifyNode maps a unit id to its NodeKind by prefix. Classification
// happens once at index construction so traversal never re-inspects strings.
func classifyNode(uniqueID string) NodeKind {
	switch {
	case strings.HasPrefix(uniqueID, "model."):
		return KindModel
	case strings.HasPrefix(uniqueID, "source."):
		return KindSource
	case strings.HasPrefix(uniqueID, "test."):
		return KindTest
	default:
		return KindUnknown
	}
}

// ModelNode is one transformation unit or external source, merged from the
// definition graph and, when available, the catalog.
type ModelNode struct {
	// ID is the manifest unique id (e.g., "model.proj.customers").
	ID string

	// Kind is the classification tag attached at index construction.
	Kind NodeKind

	// Metadata is the definition-graph entry: database, schema, name,
	// columns, compiled SQL.
	Metadata map[string]interface{}

	// Catalog is the observed physical entry (columns, stats).
	// Nil when the catalog is absent or has no entry for this node.
	Catalog map[string]interface{}
}

// nodeIndex resolves unit ids to ModelNodes and executed units to their
// upstream inputs.
type nodeIndex struct {
	nodes   map[string]map[string]interface{}
	sources map[string]map[string]interface{}
	parents map[string][]string
	catalog map[string]interface{}
	kinds   map[string]NodeKind
}

// newNodeIndex builds a node index from a loaded manifest and an optional
// catalog (nil when absent).
func newNodeIndex(manifest, catalog map[string]interface{}) *nodeIndex {
	ix := &nodeIndex{
		nodes:   make(map[string]map[string]interface{}),
		sources: make(map[string]map[string]interface{}),
		parents: make(map[string][]string),
		catalog: catalog,
		kinds:   make(map[string]NodeKind),
	}

	if nodes, ok := chainMap(manifest, "nodes"); ok {
		for id, raw := range nodes {
			node, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}

			kind := classifyNode(id)
			if kind != KindModel && kind != KindTest {
				continue
			}

			ix.nodes[id] = node
			ix.kinds[id] = kind
		}
	}

	if sources, ok := chainMap(manifest, "sources"); ok {
		for id, raw := range sources {
			source, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}

			ix.sources[id] = source
			ix.kinds[id] = KindSource
		}
	}

	if parentMap, ok := chainMap(manifest, "parent_map"); ok {
		for id, raw := range parentMap {
			list, ok := raw.([]interface{})
			if !ok {
				continue
			}

			parents := make([]string, 0, len(list))

			for _, entry := range list {
				if parent, ok := entry.(string); ok {
					parents = append(parents, parent)
				}
			}

			ix.parents[id] = parents
		}
	}

	return ix
}

// node resolves a unit id to its ModelNode, merging the definition-graph
// entry with the matching catalog entry. Catalog lookup is best-effort.
func (ix *nodeIndex) node(uniqueID string) (ModelNode, bool) {
	kind := ix.kinds[uniqueID]

	var metadata map[string]interface{}

	var catalogTable string

	switch kind {
	case KindModel, KindTest:
		metadata = ix.nodes[uniqueID]
		catalogTable = "nodes"
	case KindSource:
		metadata = ix.sources[uniqueID]
		catalogTable = "sources"
	case KindUnknown:
		return ModelNode{}, false
	}

	if metadata == nil {
		return ModelNode{}, false
	}

	catalogNode, _ := chainMap(ix.catalog, catalogTable, uniqueID)

	return ModelNode{
		ID:       uniqueID,
		Kind:     kind,
		Metadata: metadata,
		Catalog:  catalogNode,
	}, true
}

// inputs resolves the upstream input nodes of an executed unit via the
// inverted dependency map. Only models and sources qualify as inputs; parents
// with unknown prefixes are filtered out.
func (ix *nodeIndex) inputs(uniqueID string) []ModelNode {
	parents := ix.parents[uniqueID]
	inputs := make([]ModelNode, 0, len(parents))

	for _, parent := range parents {
		kind := ix.kinds[parent]
		if kind != KindModel && kind != KindSource {
			continue
		}

		if node, ok := ix.node(parent); ok {
			inputs = append(inputs, node)
		}
	}

	return inputs
}

// validatedParent returns the first parent of a test unit that refers to a
// model or source, i.e. the dataset the test validates.
func (ix *nodeIndex) validatedParent(uniqueID string) (string, bool) {
	for _, parent := range ix.parents[uniqueID] {
		kind := ix.kinds[parent]
		if kind == KindModel || kind == KindSource {
			return parent, true
		}
	}

	return "", false
}
