package scheduler

// WorkStealingScheduler dispatches pre-built tasks across per-device
// FIFO queues; idle devices steal from the tail of the busiest queue
// for locality (§4.7's work-stealing variant).
type WorkStealingScheduler struct {
	Devices []*Device
	queues  map[string][]*Task
}

// NewWorkStealingScheduler builds a work-stealing scheduler with one
// empty queue per device.
func NewWorkStealingScheduler(devices ...*Device) *WorkStealingScheduler {
	queues := make(map[string][]*Task, len(devices))
	for _, d := range devices {
		queues[d.ID] = nil
	}
	return &WorkStealingScheduler{Devices: devices, queues: queues}
}

// AddTask enqueues t on the eligible device with the shortest queue.
func (w *WorkStealingScheduler) AddTask(t *Task) {
	var best *Device
	minLen := -1
	for _, d := range w.Devices {
		if !d.CanExecute(t) {
			continue
		}
		if minLen == -1 || len(w.queues[d.ID]) < minLen {
			minLen = len(w.queues[d.ID])
			best = d
		}
	}
	if best == nil {
		return
	}
	w.queues[best.ID] = append(w.queues[best.ID], t)
	t.AssignedDevice = best
}

// StealWork finds the busiest other device's queue (length > 1) and
// pops the last eligible-for-idle task off its tail.
func (w *WorkStealingScheduler) StealWork(idle *Device) *Task {
	var busiest *Device
	maxLen := 1
	for _, d := range w.Devices {
		if d.ID == idle.ID {
			continue
		}
		if l := len(w.queues[d.ID]); l > maxLen {
			maxLen = l
			busiest = d
		}
	}
	if busiest == nil {
		return nil
	}

	queue := w.queues[busiest.ID]
	for i := len(queue) - 1; i >= 0; i-- {
		if idle.CanExecute(queue[i]) {
			stolen := queue[i]
			w.queues[busiest.ID] = append(queue[:i], queue[i+1:]...)
			stolen.AssignedDevice = idle
			return stolen
		}
	}
	return nil
}

// Run drains every device queue in round-robin order, stealing for any
// device that goes idle, and returns the resulting schedule.
func (w *WorkStealingScheduler) Run() Result {
	deviceTime := map[string]float64{}
	var all []*Task
	for _, d := range w.Devices {
		deviceTime[d.ID] = 0.0
		all = append(all, w.queues[d.ID]...)
	}
	currentTime := 0.0

	for w.anyQueued() {
		for _, d := range w.Devices {
			if len(w.queues[d.ID]) == 0 {
				if stolen := w.StealWork(d); stolen != nil {
					w.queues[d.ID] = append(w.queues[d.ID], stolen)
				}
			}
			if len(w.queues[d.ID]) == 0 {
				continue
			}
			t := w.queues[d.ID][0]
			w.queues[d.ID] = w.queues[d.ID][1:]

			t.StartTime = maxFloat(deviceTime[d.ID], currentTime)
			t.EndTime = t.StartTime + d.EstimatedTime(t)
			t.Status = Completed
			deviceTime[d.ID] = t.EndTime
		}
		currentTime = minDeviceTime(deviceTime)
	}

	makespan := 0.0
	for _, f := range deviceTime {
		if f > makespan {
			makespan = f
		}
	}

	utilization := map[string]float64{}
	for _, d := range w.Devices {
		utilization[d.ID] = Utilization(all, d.ID, makespan)
	}

	return Result{Tasks: all, Makespan: makespan, DeviceUtilization: utilization}
}

func (w *WorkStealingScheduler) anyQueued() bool {
	for _, q := range w.queues {
		if len(q) > 0 {
			return true
		}
	}
	return false
}

func minDeviceTime(times map[string]float64) float64 {
	first := true
	min := 0.0
	for _, t := range times {
		if first || t < min {
			min, first = t, false
		}
	}
	return min
}
