package cpm

import (
	"github.com/gammazero/toposort"

	"github.com/joshharrison/construction/internal/graph"
)

func analyzeTopological(g *graph.TaskGraph) (es, ls map[string]int, end int, err error) {
	if len(g.Roots) == 0 {
		return nil, nil, 0, &NoRootError{Cycle: g.DetectCycle()}
	}
	order, err := topoOrder(g)
	if err != nil {
		return nil, nil, 0, err
	}

	es = make(map[string]int, len(order))
	for _, id := range order {
		start := 0
		for _, dep := range g.Tasks[id].Deps {
			if finish := es[dep] + g.Tasks[dep].Duration; finish > start {
				start = finish
			}
		}
		es[id] = start
	}
	end = projectEnd(g, es)

	if len(g.Leaves) == 0 {
		return nil, nil, 0, ErrNoLeafTask
	}
	ls = make(map[string]int, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		task := g.Tasks[order[i]]
		// Dependents come later in the order, so they are always resolved here.
		latest, _ := latestStart(task, ls, end)
		ls[task.ID] = latest
	}
	return es, ls, end, nil
}

// topoOrder sorts task IDs so every task follows all of its dependencies.
func topoOrder(g *graph.TaskGraph) ([]string, error) {
	var edges []toposort.Edge
	for _, id := range g.SortedIDs() {
		task := g.Tasks[id]
		if len(task.Deps) == 0 {
			// Edge from nil keeps isolated tasks in the result
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, dep := range task.Deps {
			edges = append(edges, toposort.Edge{dep, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, topoCycleError(g)
	}

	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}
	if len(order) != len(g.Tasks) {
		return nil, topoCycleError(g)
	}
	return order, nil
}

func topoCycleError(g *graph.TaskGraph) error {
	cycle := g.DetectCycle()
	if len(cycle) == 0 {
		return &CycleError{TaskID: "unknown"}
	}
	return &CycleError{TaskID: cycle[0], Cycle: cycle}
}
