package graph

import (
	"errors"
	"fmt"
	"sort"
)

var errFinalized = errors.New("builder already finalized")

// Builder accumulates tasks and produces a validated TaskGraph.
type Builder struct {
	g *TaskGraph
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{g: &TaskGraph{Tasks: make(map[string]*Task)}}
}

// Add inserts a task keyed by id. Empty and repeated dependency identifiers
// are dropped so Deps behaves as a set.
func (b *Builder) Add(id string, duration int, deps []string) (*Task, error) {
	if b.g == nil {
		return nil, errFinalized
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty task identifier", ErrInvalidRecord)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: task %q has negative duration %d", ErrInvalidRecord, id, duration)
	}
	if _, ok := b.g.Tasks[id]; ok {
		return nil, &TaskError{Kind: ErrDuplicateTask, TaskID: id}
	}

	seen := make(map[string]bool, len(deps))
	task := &Task{ID: id, Duration: duration}
	for _, dep := range deps {
		if dep == "" || seen[dep] {
			continue
		}
		seen[dep] = true
		task.Deps = append(task.Deps, dep)
	}

	b.g.Tasks[id] = task
	b.g.Order = append(b.g.Order, id)
	return task, nil
}

// Finalize derives every task's dependents, checks that all dependencies
// resolve, and returns the graph. The builder cannot be reused afterwards.
func (b *Builder) Finalize() (*TaskGraph, error) {
	if b.g == nil {
		return nil, errFinalized
	}
	g := b.g
	b.g = nil

	for _, id := range g.Order {
		for _, dep := range g.Tasks[id].Deps {
			if _, ok := g.Tasks[dep]; !ok {
				return nil, &TaskError{Kind: ErrMissingDependency, TaskID: dep, Owner: id}
			}
		}
	}

	// Dependents follow declaration order of the dependent task.
	for _, id := range g.Order {
		for _, dep := range g.Tasks[id].Deps {
			parent := g.Tasks[dep]
			parent.dependents = append(parent.dependents, id)
		}
	}

	for _, id := range g.Order {
		t := g.Tasks[id]
		if len(t.Deps) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(t.dependents) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}
	sort.Strings(g.Roots)
	sort.Strings(g.Leaves)

	return g, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
// Edges are followed from a task to its dependencies.
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Tasks[node].Deps {
			if _, ok := g.Tasks[next]; !ok {
				continue
			}
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				// Reverse so each task depends on the one after it
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.SortedIDs() {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// SortedIDs returns every task ID in lexicographic order.
func (g *TaskGraph) SortedIDs() []string {
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Tasks)
}
