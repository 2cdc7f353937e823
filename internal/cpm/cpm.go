package cpm

import (
	"fmt"
	"log"
	"sort"

	"github.com/joshharrison/construction/internal/graph"
)

// Analyze performs critical path method analysis on a finalized task graph.
// The graph is only read, so repeated calls return identical schedules.
func Analyze(g *graph.TaskGraph, opts Options) (*Schedule, error) {
	if opts.Strategy == "" {
		opts.Strategy = StrategyWorklist
	}

	var (
		es, ls map[string]int
		end    int
		err    error
	)
	switch opts.Strategy {
	case StrategyWorklist:
		es, ls, end, err = analyzeWorklist(g)
	case StrategyTopological:
		es, ls, end, err = analyzeTopological(g)
	default:
		return nil, fmt.Errorf("unknown strategy %q", opts.Strategy)
	}
	if err != nil {
		return nil, err
	}

	result := &Schedule{
		Tasks:      make(map[string]*TaskSchedule, len(g.Tasks)),
		ProjectEnd: end,
		Strategy:   opts.Strategy,
	}
	for id, t := range g.Tasks {
		ts := &TaskSchedule{
			TaskID:   id,
			Duration: t.Duration,
			ES:       es[id],
			EF:       es[id] + t.Duration,
			LS:       ls[id],
			LF:       ls[id] + t.Duration,
		}
		ts.Slack = ts.LS - ts.ES
		ts.IsCritical = ts.Slack == 0
		result.Tasks[id] = ts
	}

	for _, ts := range result.Sorted() {
		if ts.IsCritical {
			result.CriticalPath = append(result.CriticalPath, ts.TaskID)
		}
	}
	result.Waves = computeWaves(result)

	return result, nil
}

// worklist is a LIFO stack that never holds the same task twice.
type worklist struct {
	items  []string
	queued map[string]bool
}

func newWorklist() *worklist {
	return &worklist{queued: make(map[string]bool)}
}

func (w *worklist) push(id string) {
	if w.queued[id] {
		return
	}
	w.queued[id] = true
	w.items = append(w.items, id)
}

func (w *worklist) pop() (string, bool) {
	if len(w.items) == 0 {
		return "", false
	}
	id := w.items[len(w.items)-1]
	w.items = w.items[:len(w.items)-1]
	delete(w.queued, id)
	return id, true
}

func analyzeWorklist(g *graph.TaskGraph) (es, ls map[string]int, end int, err error) {
	es, err = forwardWorklist(g)
	if err != nil {
		return nil, nil, 0, err
	}
	end = projectEnd(g, es)
	ls, err = backwardWorklist(g, end)
	if err != nil {
		return nil, nil, 0, err
	}
	return es, ls, end, nil
}

// forwardWorklist resolves earliest starts. A popped task whose
// dependencies are not all resolved is dropped; the last dependency to
// resolve pushes it again.
func forwardWorklist(g *graph.TaskGraph) (map[string]int, error) {
	if len(g.Roots) == 0 {
		return nil, &NoRootError{Cycle: g.DetectCycle()}
	}

	es := make(map[string]int, len(g.Tasks))
	wl := newWorklist()
	for _, id := range g.Roots {
		wl.push(id)
	}

	visits := 0
	for id, ok := wl.pop(); ok; id, ok = wl.pop() {
		visits++
		if _, done := es[id]; done {
			continue
		}
		task := g.Tasks[id]
		start, ready := 0, true
		for _, dep := range task.Deps {
			depStart, ok := es[dep]
			if !ok {
				ready = false
				break
			}
			if finish := depStart + g.Tasks[dep].Duration; finish > start {
				start = finish
			}
		}
		if !ready {
			continue
		}
		es[id] = start
		for _, child := range task.Dependents() {
			wl.push(child)
		}
	}
	log.Printf("cpm: forward pass resolved %d/%d tasks in %d visits", len(es), len(g.Tasks), visits)

	if len(es) != len(g.Tasks) {
		return nil, cycleError(g, es)
	}
	return es, nil
}

// backwardWorklist resolves latest starts once the project end is known.
// The forward pass has already proven the graph acyclic.
func backwardWorklist(g *graph.TaskGraph, end int) (map[string]int, error) {
	if len(g.Leaves) == 0 {
		return nil, ErrNoLeafTask
	}

	ls := make(map[string]int, len(g.Tasks))
	wl := newWorklist()
	for _, id := range g.Leaves {
		wl.push(id)
	}

	for id, ok := wl.pop(); ok; id, ok = wl.pop() {
		if _, done := ls[id]; done {
			continue
		}
		task := g.Tasks[id]
		latest, ok := latestStart(task, ls, end)
		if !ok {
			continue
		}
		ls[id] = latest
		for _, dep := range task.Deps {
			wl.push(dep)
		}
	}
	return ls, nil
}

// latestStart returns the task's latest start, or false while any dependent
// is unresolved.
func latestStart(task *graph.Task, ls map[string]int, end int) (int, bool) {
	dependents := task.Dependents()
	if len(dependents) == 0 {
		return end - task.Duration, true
	}
	earliest := 0
	for i, child := range dependents {
		childStart, ok := ls[child]
		if !ok {
			return 0, false
		}
		if i == 0 || childStart < earliest {
			earliest = childStart
		}
	}
	return earliest - task.Duration, true
}

func projectEnd(g *graph.TaskGraph, es map[string]int) int {
	end := 0
	for id, t := range g.Tasks {
		if finish := es[id] + t.Duration; finish > end {
			end = finish
		}
	}
	return end
}

// cycleError names the smallest unresolved task and, when one is found,
// the cycle responsible.
func cycleError(g *graph.TaskGraph, es map[string]int) error {
	for _, id := range g.SortedIDs() {
		if _, ok := es[id]; !ok {
			return &CycleError{TaskID: id, Cycle: g.DetectCycle()}
		}
	}
	return nil
}

// computeWaves groups tasks by their earliest start time.
func computeWaves(result *Schedule) []Wave {
	esGroups := make(map[int][]string)
	for id, ts := range result.Tasks {
		esGroups[ts.ES] = append(esGroups[ts.ES], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		taskIDs := esGroups[es]
		sort.Strings(taskIDs)

		hasCritical := false
		for _, id := range taskIDs {
			result.Tasks[id].Wave = i
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical tasks first within a wave
		sort.SliceStable(taskIDs, func(a, b int) bool {
			return result.Tasks[taskIDs[a]].IsCritical && !result.Tasks[taskIDs[b]].IsCritical
		})

		waves[i] = Wave{
			Index:      i,
			Start:      es,
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		}
	}

	return waves
}
