// Package dag provides a layered, read-only view of a node graph for
// rendering and structural checks.
//
// # Overview
//
// The live graph in package graph is keyed by generation-tagged ids and
// mutated through a validate-then-commit protocol. Renderers and invariant
// checks want something simpler: string-keyed nodes, plain edges, and a row
// per node. [graph.Store.Snapshot] produces exactly that.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge], then let [DAG.AssignLayers] place each node one row below
// its deepest parent:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "perlin"})
//	g.AddNode(dag.Node{ID: "render"})
//	g.AddEdge(dag.Edge{From: "perlin", To: "render"})
//	g.AssignLayers()
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.NodesInRow]
// and related methods. [DAG.Validate] verifies that every edge points to an
// existing, deeper node and that there is no cycle.
//
// # Metadata
//
// Nodes, edges and the graph itself carry arbitrary [Metadata]. Snapshots
// store node state ("ready", "dirty", "kind") and pin names on edges, which
// the DOT renderer turns into styles and labels. Metadata maps are never nil
// after creation.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. A snapshot is a copy, so
// it can be handed to another goroutine once built.
//
// [graph.Store.Snapshot]: github.com/matzehuels/noisegraph/pkg/graph
package dag
