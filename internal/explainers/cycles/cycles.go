package cycles

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/objchdr/internal/objc"
)

// CycleExplainer detects superclass cycles using Tarjan's SCC algorithm.
// A cycle can only come from malformed or conflicting headers, since the
// compiler rejects circular inheritance.
type CycleExplainer struct{}

// New creates a new CycleExplainer.
func New() *CycleExplainer {
	return &CycleExplainer{}
}

func (e *CycleExplainer) Name() string {
	return "cycles"
}

// Explain builds the inheritance graph and reports every cycle in it.
func (e *CycleExplainer) Explain(ctx context.Context, snapshot *objc.Snapshot) ([]objc.Insight, error) {
	graph, files := buildInheritanceGraph(snapshot.Classes)

	var insights []objc.Insight
	for _, scc := range tarjanSCC(graph) {
		selfLoop := len(scc) == 1 && contains(graph[scc[0]], scc[0])
		if len(scc) <= 1 && !selfLoop {
			continue
		}
		scc = rotate(scc)

		cyclePath := strings.Join(scc, " : ") + " : " + scc[0]
		evidence := make([]objc.Evidence, 0, len(scc))
		for _, name := range scc {
			evidence = append(evidence, objc.Evidence{
				File:   files[name],
				Symbol: name,
				Detail: fmt.Sprintf("class %q is part of the cycle", name),
			})
		}

		insights = append(insights, objc.Insight{
			Title:       fmt.Sprintf("Superclass cycle detected (%d classes)", len(scc)),
			Description: fmt.Sprintf("The following classes inherit from each other: %s. The headers cannot all be valid at once.", cyclePath),
			Confidence:  1.0,
			Evidence:    evidence,
			Actions: []string{
				"Check for duplicate class names across headers",
				"Fix the @interface superclass declaration",
			},
		})
	}

	sort.Slice(insights, func(i, j int) bool { return insights[i].Description < insights[j].Description })
	return insights, nil
}

// buildInheritanceGraph maps each class to its superclass when the
// superclass was extracted too. The first declaration of a name wins.
func buildInheritanceGraph(classes []*objc.Class) (map[string][]string, map[string]string) {
	graph := make(map[string][]string)
	files := make(map[string]string)
	for _, c := range classes {
		if _, ok := files[c.Name]; ok {
			continue
		}
		files[c.Name] = c.FilePath
		graph[c.Name] = nil
	}
	seen := make(map[string]bool)
	for _, c := range classes {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		if _, ok := graph[c.SuperclassName]; ok {
			graph[c.Name] = append(graph[c.Name], c.SuperclassName)
		}
	}
	return graph, files
}

// rotate orders a cycle to start at its smallest name while keeping the
// inheritance direction.
func rotate(scc []string) []string {
	// Tarjan pops the stack, so members come out in reverse edge order.
	cycle := make([]string, len(scc))
	for i, v := range scc {
		cycle[len(scc)-1-i] = v
	}
	minIdx := 0
	for i, v := range cycle {
		if v < cycle[minIdx] {
			minIdx = i
		}
	}
	return append(cycle[minIdx:], cycle[:minIdx]...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// tarjanSCC implements Tarjan's strongly connected components algorithm.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index    int
		stack    []string
		onStack  = make(map[string]bool)
		indices  = make(map[string]int)
		lowlinks = make(map[string]int)
		sccs     [][]string
	)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				if lowlinks[w] < lowlinks[v] {
					lowlinks[v] = lowlinks[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlinks[v] {
					lowlinks[v] = indices[w]
				}
			}
		}

		// Root of an SCC
		if lowlinks[v] == indices[v] {
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

	// Visit in name order so results do not depend on map iteration.
	names := make([]string, 0, len(graph))
	for v := range graph {
		names = append(names, v)
	}
	sort.Strings(names)
	for _, v := range names {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}

	return sccs
}
