package graph

// Task is a single schedulable unit of work.
type Task struct {
	ID          string
	Description string
	Duration    int
	Deps        []string // tasks that must finish before this one starts

	dependents []string // populated by Builder.Finalize
}

// Dependents returns the tasks that list t as a dependency.
func (t *Task) Dependents() []string {
	return t.dependents
}

// TaskGraph is a directed acyclic graph of tasks.
type TaskGraph struct {
	Tasks  map[string]*Task
	Order  []string // task IDs in declaration order
	Roots  []string // tasks with no dependencies
	Leaves []string // tasks nothing depends on
}
