package dag_test

import (
	"fmt"

	"github.com/matzehuels/noisegraph/pkg/dag"
)

func ExampleDAG_basic() {
	// perlin -> scale -> render
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "perlin"})
	_ = g.AddNode(dag.Node{ID: "scale"})
	_ = g.AddNode(dag.Node{ID: "render"})
	_ = g.AddEdge(dag.Edge{From: "perlin", To: "scale"})
	_ = g.AddEdge(dag.Edge{From: "scale", To: "render"})
	g.AssignLayers()

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 3
}

func ExampleDAG_AssignLayers() {
	// A long and a short path into the same combiner: the combiner sits
	// below the deepest of its parents.
	g := dag.New(nil)
	for _, id := range []string{"a", "b", "c", "add"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "add"})
	_ = g.AddEdge(dag.Edge{From: "c", To: "add"})
	g.AssignLayers()

	for _, row := range g.RowIDs() {
		fmt.Println(row, dag.NodeIDs(g.NodesInRow(row)))
	}
	// Output:
	// 0 [a c]
	// 1 [b]
	// 2 [add]
}

func ExampleDAG_Validate() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "a"})

	fmt.Println(g.Validate())
	// Output:
	// graph contains a cycle
}
