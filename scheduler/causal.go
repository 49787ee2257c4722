package scheduler

import (
	"container/heap"
	"sort"

	"github.com/robertringler/aion/sir"
)

// Result is the outcome of scheduling a graph: every task with its
// final assignment (ordered by start time, ties by task id; tasks
// that found no device have start time 0), the overall makespan, per-device utilization, and
// (for AdaptiveScheduler) the migration count.
type Result struct {
	Tasks             []*Task
	Makespan          float64
	DeviceUtilization map[string]float64
	Migrations        int
}

// CausalScheduler greedily dispatches ready tasks to the device with
// the earliest projected finish time, respecting data-flow dependency
// order (§4.7's causal scheduling loop).
type CausalScheduler struct {
	Devices []*Device
}

// NewCausalScheduler builds a scheduler over devices, defaulting to a
// single 16GiB CPU device when none are given.
func NewCausalScheduler(devices ...*Device) *CausalScheduler {
	if len(devices) == 0 {
		devices = []*Device{NewDevice("cpu0", CPU, WithName("CPU"), WithMemory(16<<30, 16<<30))}
	}
	return &CausalScheduler{Devices: devices}
}

// Schedule runs the causal scheduling loop over every vertex of g.
func (s *CausalScheduler) Schedule(g *sir.Graph) Result {
	tasks := buildTasks(g)
	return s.scheduleTasks(tasks)
}

func buildTasks(g *sir.Graph) map[string]*Task {
	tasks := map[string]*Task{}
	for _, v := range g.Vertices() {
		tasks[v.ID] = NewTaskFromVertex(v, g)
	}
	for _, t := range tasks {
		for dep := range t.Dependencies {
			if d, ok := tasks[dep]; ok {
				d.Dependents[t.ID] = true
			}
		}
	}
	return tasks
}

type readyItem struct {
	negPriority int
	taskID      string
}

type readyQueue []readyItem

func (q readyQueue) Len() int { return len(q) }
func (q readyQueue) Less(i, j int) bool {
	if q[i].negPriority != q[j].negPriority {
		return q[i].negPriority < q[j].negPriority
	}
	return q[i].taskID < q[j].taskID
}
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *readyQueue) Push(x interface{}) { *q = append(*q, x.(readyItem)) }
func (q *readyQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (s *CausalScheduler) scheduleTasks(tasks map[string]*Task) Result {
	completed := map[string]bool{}
	queue := &readyQueue{}
	heap.Init(queue)

	for _, t := range tasks {
		if t.IsReady(completed) {
			t.Status = Ready
			heap.Push(queue, readyItem{negPriority: -t.Priority, taskID: t.ID})
		}
	}

	deviceFinish := map[string]float64{}
	for _, d := range s.Devices {
		deviceFinish[d.ID] = 0.0
	}
	currentTime := 0.0

	for queue.Len() > 0 {
		item := heap.Pop(queue).(readyItem)
		t := tasks[item.taskID]
		if t.Status != Ready {
			continue
		}

		best, bestFinish := s.pickDevice(t, deviceFinish, currentTime)
		if best == nil {
			t.Status = Failed
			continue
		}

		t.AssignedDevice = best
		t.StartTime = maxFloat(deviceFinish[best.ID], currentTime)
		t.EndTime = bestFinish
		t.Status = Completed
		deviceFinish[best.ID] = t.EndTime
		completed[t.ID] = true

		for depID := range t.Dependents {
			dep := tasks[depID]
			if dep != nil && dep.Status == Pending && dep.IsReady(completed) {
				dep.Status = Ready
				heap.Push(queue, readyItem{negPriority: -dep.Priority, taskID: dep.ID})
			}
		}
	}

	return s.result(tasks, deviceFinish)
}

// pickDevice finds the eligible device minimizing projected finish
// time; ties are broken by the lexicographically smaller device id.
func (s *CausalScheduler) pickDevice(t *Task, deviceFinish map[string]float64, now float64) (*Device, float64) {
	var best *Device
	bestFinish := 0.0

	for _, d := range s.Devices {
		if !d.CanExecute(t) {
			continue
		}
		start := maxFloat(deviceFinish[d.ID], now)
		finish := start + d.EstimatedTime(t)

		if best == nil || finish < bestFinish || (finish == bestFinish && d.ID < best.ID) {
			best, bestFinish = d, finish
		}
	}
	return best, bestFinish
}

func (s *CausalScheduler) result(tasks map[string]*Task, deviceFinish map[string]float64) Result {
	makespan := 0.0
	for _, f := range deviceFinish {
		if f > makespan {
			makespan = f
		}
	}

	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})

	utilization := map[string]float64{}
	for _, d := range s.Devices {
		utilization[d.ID] = Utilization(out, d.ID, makespan)
	}

	return Result{Tasks: out, Makespan: makespan, DeviceUtilization: utilization}
}

// Utilization computes sum(end-start) over tasks assigned to deviceID
// divided by makespan (§4.7), 0 when makespan is 0.
func Utilization(tasks []*Task, deviceID string, makespan float64) float64 {
	if makespan <= 0 {
		return 0.0
	}
	busy := 0.0
	for _, t := range tasks {
		if t.AssignedDevice != nil && t.AssignedDevice.ID == deviceID {
			busy += t.EndTime - t.StartTime
		}
	}
	return busy / makespan
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
