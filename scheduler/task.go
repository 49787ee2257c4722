package scheduler

import "github.com/robertringler/aion/sir"

// Status is a task's execution status.
type Status int

const (
	Pending Status = iota
	Ready
	Running
	Completed
	Failed
	Migrated
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Migrated:
		return "Migrated"
	default:
		return "Unknown"
	}
}

// Task is a schedulable unit derived from a sir.Vertex (§4.7).
type Task struct {
	ID               string
	VertexID         string
	Status           Status
	HardwareAffinity sir.HardwareAffinity
	Dependencies     map[string]bool
	Dependents       map[string]bool
	EstimatedCycles  int64
	MemoryRequired   int64
	FeatureTags      []string
	Parallelism      int
	Priority         int
	AssignedDevice   *Device
	StartTime        float64
	EndTime          float64
}

// IsReady reports whether every dependency of t is present in
// completed.
func (t *Task) IsReady(completed map[string]bool) bool {
	for dep := range t.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// NewTaskFromVertex builds a Task for v, with dependencies drawn from
// g's data-flow predecessors and cycle/parallelism estimates
// heuristic per vertex type: KernelLaunch scales by grid×block×100,
// Load/Store ≈ 100 cycles, generic Apply ≈ 1000 cycles.
func NewTaskFromVertex(v *sir.Vertex, g *sir.Graph) *Task {
	deps := map[string]bool{}
	for _, pred := range g.Predecessors(v.ID) {
		deps[pred.ID] = true
	}

	var cycles int64
	parallelism := 1
	switch v.VType {
	case sir.KernelLaunch:
		grid, block := v.Metadata.Parallelism.Grid, v.Metadata.Parallelism.Block
		cycles = int64(grid[0]*grid[1]*grid[2]*block[0]*block[1]*block[2]) * 100
		parallelism = grid[0] * grid[1] * grid[2]
	case sir.Load, sir.Store:
		cycles = 100
	default:
		cycles = 1000
	}
	if parallelism < 1 {
		parallelism = 1
	}

	var memRequired int64
	if v.VType == sir.Alloc {
		if size, ok := v.Value.(int64); ok {
			memRequired = size
		}
	}

	return &Task{
		ID:               v.ID,
		VertexID:         v.ID,
		HardwareAffinity: v.Metadata.Affinity,
		Dependencies:     deps,
		Dependents:       map[string]bool{},
		EstimatedCycles:  cycles,
		MemoryRequired:   memRequired,
		FeatureTags:      append([]string(nil), v.Metadata.FeatureTags...),
		Parallelism:      parallelism,
	}
}
