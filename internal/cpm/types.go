package cpm

import "sort"

// Strategy selects how the engine orders its two propagation passes.
type Strategy string

const (
	// StrategyWorklist revisits tasks from a stack until every prerequisite
	// is resolved.
	StrategyWorklist Strategy = "worklist"
	// StrategyTopological precomputes a topological order and sweeps it once
	// in each direction.
	StrategyTopological Strategy = "topological"
)

// Options configures Analyze. The zero value uses StrategyWorklist.
type Options struct {
	Strategy Strategy
}

// Schedule holds the complete critical path analysis.
type Schedule struct {
	Tasks        map[string]*TaskSchedule
	ProjectEnd   int      // total project duration
	CriticalPath []string // zero-slack task IDs in display order
	Waves        []Wave   // tasks grouped by earliest start
	Strategy     Strategy
}

// TaskSchedule holds the scheduling info for a single task.
type TaskSchedule struct {
	TaskID     string
	Duration   int
	ES, EF     int // earliest start/finish
	LS, LF     int // latest start/finish
	Slack      int
	IsCritical bool
	Wave       int // index into Schedule.Waves
}

// Wave represents a group of tasks that share an earliest start.
type Wave struct {
	Index      int
	Start      int
	TaskIDs    []string
	IsCritical bool // true if wave contains critical path tasks
}

// Sorted returns every task ordered by earliest start, then duration, then ID.
func (s *Schedule) Sorted() []*TaskSchedule {
	out := make([]*TaskSchedule, 0, len(s.Tasks))
	for _, ts := range s.Tasks {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ES != b.ES {
			return a.ES < b.ES
		}
		if a.Duration != b.Duration {
			return a.Duration < b.Duration
		}
		return a.TaskID < b.TaskID
	})
	return out
}
