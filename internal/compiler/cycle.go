package compiler

import (
	"strings"

	"github.com/bjoto/simple-binary-encoding/internal/ir"
)

// checkTypeCycles rejects schemas where a composite references itself,
// directly or transitively. A self-describing layout must have a finite
// footprint, so type references form a DAG.
//
// The algorithm builds the composite reference graph and finds strongly
// connected components with Tarjan's algorithm; any SCC larger than one
// node, or a single node with a self-edge, is a violation.
func checkTypeCycles(schema *ir.MessageSchema) error {
	graph := buildTypeGraph(schema)

	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfEdge(scc[0], graph) {
			return &SchemaValidationError{
				Code:    ErrCodeTypeCycle,
				Entity:  "composite " + scc[len(scc)-1],
				Message: "type references itself: " + formatCycle(scc),
			}
		}
	}
	return nil
}

// typeGraph maps composite name to the composite names it references.
type typeGraph map[string][]string

func buildTypeGraph(schema *ir.MessageSchema) typeGraph {
	graph := make(typeGraph)
	for t := range schema.Types() {
		ct, ok := t.(*ir.CompositeType)
		if !ok {
			continue
		}
		edges := []string{}
		for _, m := range ct.Members() {
			if nested, ok := m.(*ir.CompositeType); ok {
				edges = append(edges, nested.TypeName())
			}
		}
		graph[ct.TypeName()] = edges
	}
	return graph
}

func hasSelfEdge(node string, graph typeGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

func formatCycle(scc []string) string {
	path := make([]string, 0, len(scc)+1)
	for i := len(scc) - 1; i >= 0; i-- {
		path = append(path, scc[i])
	}
	path = append(path, path[0])
	return strings.Join(path, " -> ")
}

// tarjanSCC finds strongly connected components of the type-reference
// graph. Single-node SCCs without self-edges are not cycles.
func tarjanSCC(graph typeGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for node := range graph {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}
