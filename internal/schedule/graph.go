package schedule

import (
	"sort"
)

// node is a task augmented with the derived fields the two CPM passes
// fill in. Nodes are transient; the caller's tasks are never mutated.
type node struct {
	Task     TimelineTask
	Duration int

	EarlyStart  int
	EarlyFinish int
	LateStart   int
	LateFinish  int
	Float       int
	Critical    bool
}

// taskGraph indexes a flat task list for forward/backward traversal.
type taskGraph struct {
	Nodes map[string]*node
	// Succ maps a task to the tasks that list it as a dependency.
	// Derived from Dependencies only; the stored Successors field is
	// treated as advisory and not trusted for traversal.
	Succ  map[string][]string
	Order []string // topological order
}

// buildGraph validates and indexes tasks, then topologically sorts the
// dependency DAG with Kahn's algorithm. Dangling dependency references,
// inverted date windows and an empty input are all ValidationErrors;
// a cycle is a CycleError.
func buildGraph(tasks []TimelineTask) (*taskGraph, error) {
	if len(tasks) == 0 {
		return nil, &ValidationError{Reason: "task list is empty"}
	}

	g := &taskGraph{
		Nodes: make(map[string]*node, len(tasks)),
		Succ:  make(map[string][]string),
	}

	for _, t := range tasks {
		if t.ID == "" {
			return nil, &ValidationError{Reason: "task with empty id"}
		}
		if _, dup := g.Nodes[t.ID]; dup {
			return nil, &ValidationError{TaskID: t.ID, Reason: "duplicate id"}
		}
		if t.EndDate.Before(t.StartDate) {
			return nil, &ValidationError{TaskID: t.ID, Reason: "end date precedes start date"}
		}
		g.Nodes[t.ID] = &node{Task: t, Duration: t.DurationDays()}
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := g.Nodes[dep]; !ok {
				return nil, &ValidationError{TaskID: t.ID, Reason: "dependency " + dep + " not in task set"}
			}
			g.Succ[dep] = append(g.Succ[dep], t.ID)
		}
	}
	for id := range g.Succ {
		sort.Strings(g.Succ[id])
	}

	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}
	g.Order = order
	return g, nil
}

// topoSort runs Kahn's algorithm. Ready sets are kept sorted so the
// resulting order is deterministic for a given input.
func topoSort(g *taskGraph) ([]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for id, n := range g.Nodes {
		inDegree[id] = len(n.Task.Dependencies)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var ready []string
		for _, succ := range g.Succ[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(order) != len(g.Nodes) {
		var remaining []string
		for id, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &CycleError{Remaining: remaining}
	}
	return order, nil
}
