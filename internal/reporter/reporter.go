package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/joshharrison/construction/internal/cpm"
	"github.com/joshharrison/construction/internal/graph"
	"github.com/joshharrison/construction/internal/ui"
)

// Config controls report rendering.
type Config struct {
	Unit   string // time unit named in the duration header
	Marker string // bar character repeated once per unit of duration
}

// Reporter renders a finished schedule.
type Reporter struct {
	Graph    *graph.TaskGraph
	Schedule *cpm.Schedule
	Config   Config
}

// New creates a new Reporter, filling unset config fields with defaults.
func New(g *graph.TaskGraph, s *cpm.Schedule, cfg Config) *Reporter {
	if cfg.Unit == "" {
		cfg.Unit = "weeks"
	}
	if cfg.Marker == "" {
		cfg.Marker = "="
	}
	return &Reporter{Graph: g, Schedule: s, Config: cfg}
}

// PrintReport writes the text report: total duration, the start window of
// every task, then one offset bar per task, followed by a blank line. The
// report is written in a single call. Styling follows ui.SetEnabled.
func (r *Reporter) PrintReport(w io.Writer) error {
	var b strings.Builder
	tasks := r.Schedule.Sorted()

	fmt.Fprintf(&b, "%s %s %s\n\n",
		r.style(ui.BoldCyan, "Total duration of construction:"),
		r.style(ui.Bold, fmt.Sprint(r.Schedule.ProjectEnd)),
		r.Config.Unit)

	for _, ts := range tasks {
		if ts.ES == ts.LS {
			fmt.Fprintf(&b, "%s must begin at t=%d\n", r.taskID(ts), ts.ES)
		} else {
			fmt.Fprintf(&b, "%s must begin between t=%d and t=%d\n", r.taskID(ts), ts.ES, ts.LS)
		}
	}
	b.WriteString("\n")

	for _, ts := range tasks {
		fmt.Fprintf(&b, "%s\t(%d)\t%s%s\n", r.taskID(ts), ts.Slack,
			strings.Repeat(" ", ts.ES), r.bar(ts))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Reporter) taskID(ts *cpm.TaskSchedule) string {
	if ts.IsCritical {
		return r.style(ui.BoldYellow, ts.TaskID)
	}
	return r.style(ui.BoldMagenta, ts.TaskID)
}

func (r *Reporter) bar(ts *cpm.TaskSchedule) string {
	bar := strings.Repeat(r.Config.Marker, ts.Duration)
	if ts.IsCritical {
		return r.style(ui.Red, bar)
	}
	return r.style(ui.Green, bar)
}

func (r *Reporter) style(fn func(a ...interface{}) string, s string) string {
	if s == "" {
		return s
	}
	return fn(s)
}

// JSON returns the machine-readable schedule.
func (r *Reporter) JSON() ([]byte, error) {
	type taskReport struct {
		TaskID        string   `json:"task_id"`
		Description   string   `json:"description,omitempty"`
		Duration      int      `json:"duration"`
		Deps          []string `json:"deps"`
		EarliestStart int      `json:"earliest_start"`
		LatestStart   int      `json:"latest_start"`
		Slack         int      `json:"slack"`
		IsCritical    bool     `json:"is_critical"`
		Wave          int      `json:"wave"`
	}

	type output struct {
		ID           string       `json:"id"`
		ProjectEnd   int          `json:"project_end"`
		Unit         string       `json:"unit"`
		Strategy     string       `json:"strategy"`
		CriticalPath []string     `json:"critical_path"`
		Tasks        []taskReport `json:"tasks"`
	}

	o := output{
		ID:           uuid.NewString(),
		ProjectEnd:   r.Schedule.ProjectEnd,
		Unit:         r.Config.Unit,
		Strategy:     string(r.Schedule.Strategy),
		CriticalPath: r.Schedule.CriticalPath,
	}
	for _, ts := range r.Schedule.Sorted() {
		deps := []string{}
		desc := ""
		if task, ok := r.Graph.Tasks[ts.TaskID]; ok {
			deps = append(deps, task.Deps...)
			desc = task.Description
		}
		o.Tasks = append(o.Tasks, taskReport{
			TaskID:        ts.TaskID,
			Description:   desc,
			Duration:      ts.Duration,
			Deps:          deps,
			EarliestStart: ts.ES,
			LatestStart:   ts.LS,
			Slack:         ts.Slack,
			IsCritical:    ts.IsCritical,
			Wave:          ts.Wave,
		})
	}

	return json.MarshalIndent(o, "", "  ")
}

// PrintDOT writes the dependency graph in Graphviz format. Critical tasks,
// and the edges between them that carry no slack, are drawn in red.
func (r *Reporter) PrintDOT(w io.Writer) error {
	var b strings.Builder
	ids := r.Graph.SortedIDs()

	b.WriteString("digraph construction {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, id := range ids {
		task := r.Graph.Tasks[id]
		label := fmt.Sprintf("%s\n%d %s", id, task.Duration, r.Config.Unit)
		if task.Description != "" {
			label = fmt.Sprintf("%s\n%s\n%d %s", id, task.Description, task.Duration, r.Config.Unit)
		}
		attrs := fmt.Sprintf("label=%q", label)
		if ts, ok := r.Schedule.Tasks[id]; ok && ts.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(&b, "  %q [%s];\n", id, attrs)
	}

	b.WriteString("\n")

	for _, id := range ids {
		for _, child := range r.Graph.Tasks[id].Dependents() {
			style := ""
			from, to := r.Schedule.Tasks[id], r.Schedule.Tasks[child]
			if from != nil && to != nil && from.IsCritical && to.IsCritical && from.EF == to.ES {
				style = " [color=red, penwidth=2]"
			}
			fmt.Fprintf(&b, "  %q -> %q%s;\n", id, child, style)
		}
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
