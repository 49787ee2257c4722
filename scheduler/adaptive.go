package scheduler

import "github.com/robertringler/aion/sir"

// MigrationThreshold is the default relative improvement (§4.7, 20%)
// required before AdaptiveScheduler migrates a task to a different
// device.
const MigrationThreshold = 0.2

// AdaptiveScheduler wraps CausalScheduler with online profiling:
// every recorded (task, device) execution feeds an average used on
// the next Schedule call to migrate tasks toward consistently faster
// devices.
type AdaptiveScheduler struct {
	Causal             *CausalScheduler
	ProfilingEnabled   bool
	MigrationThreshold float64
	profile            map[string][]float64
}

// NewAdaptiveScheduler builds an adaptive scheduler over devices.
func NewAdaptiveScheduler(devices ...*Device) *AdaptiveScheduler {
	return &AdaptiveScheduler{
		Causal:             NewCausalScheduler(devices...),
		ProfilingEnabled:   true,
		MigrationThreshold: MigrationThreshold,
		profile:            map[string][]float64{},
	}
}

// AddDevice registers a new device with the underlying causal scheduler.
func (a *AdaptiveScheduler) AddDevice(d *Device) {
	a.Causal.Devices = append(a.Causal.Devices, d)
}

// RemoveDevice drops the device with the given id.
func (a *AdaptiveScheduler) RemoveDevice(id string) {
	out := a.Causal.Devices[:0]
	for _, d := range a.Causal.Devices {
		if d.ID != id {
			out = append(out, d)
		}
	}
	a.Causal.Devices = out
}

// Schedule runs the causal schedule then applies profiling-based
// migration.
func (a *AdaptiveScheduler) Schedule(g *sir.Graph) Result {
	result := a.Causal.Schedule(g)
	if a.ProfilingEnabled && len(a.profile) > 0 {
		result = a.optimizeFromProfile(result)
	}
	return result
}

// RecordExecution records an observed execution time for (taskID,
// deviceID), feeding future migration decisions.
func (a *AdaptiveScheduler) RecordExecution(taskID string, actualTime float64, deviceID string) {
	key := taskID + ":" + deviceID
	a.profile[key] = append(a.profile[key], actualTime)
}

func (a *AdaptiveScheduler) optimizeFromProfile(result Result) Result {
	migrations := 0

	for _, t := range result.Tasks {
		if t.AssignedDevice == nil {
			continue
		}
		currentKey := t.ID + ":" + t.AssignedDevice.ID
		currentSamples, ok := a.profile[currentKey]
		if !ok || len(currentSamples) == 0 {
			continue
		}
		currentAvg := average(currentSamples)

		bestDevice := t.AssignedDevice
		bestAvg := currentAvg
		for _, d := range a.Causal.Devices {
			if d.ID == t.AssignedDevice.ID || !d.CanExecute(t) {
				continue
			}
			otherKey := t.ID + ":" + d.ID
			otherSamples, ok := a.profile[otherKey]
			if !ok || len(otherSamples) == 0 {
				continue
			}
			otherAvg := average(otherSamples)
			improvement := (currentAvg - otherAvg) / currentAvg
			if improvement >= a.MigrationThreshold && otherAvg < bestAvg {
				bestDevice, bestAvg = d, otherAvg
			}
		}

		if bestDevice.ID != t.AssignedDevice.ID {
			t.AssignedDevice = bestDevice
			t.Status = Migrated
			migrations++
		}
	}

	result.Migrations = migrations
	return result
}

// GetOptimalDevice returns the device with the lowest profiled (or
// estimated, if unprofiled) time for t, or nil if none are eligible.
func (a *AdaptiveScheduler) GetOptimalDevice(t *Task) *Device {
	var best *Device
	bestTime := 0.0

	for _, d := range a.Causal.Devices {
		if !d.CanExecute(t) {
			continue
		}
		key := t.ID + ":" + d.ID
		var time float64
		if samples, ok := a.profile[key]; ok && len(samples) > 0 {
			time = average(samples)
		} else {
			time = d.EstimatedTime(t)
		}
		if best == nil || time < bestTime {
			best, bestTime = d, time
		}
	}
	return best
}

// BalanceLoad assigns each device a target utilization proportional
// to its share of total capacity.
func (a *AdaptiveScheduler) BalanceLoad() map[string]float64 {
	total := 0.0
	for _, d := range a.Causal.Devices {
		total += d.Capacity
	}

	utilization := map[string]float64{}
	for _, d := range a.Causal.Devices {
		target := 0.0
		if total > 0 {
			target = d.Capacity / total
		}
		d.Utilization = target
		utilization[d.ID] = target
	}
	return utilization
}

// PredictThroughput estimates tasks-per-second for g by scheduling it
// and dividing task count by makespan.
func (a *AdaptiveScheduler) PredictThroughput(g *sir.Graph) float64 {
	result := a.Schedule(g)
	if result.Makespan > 0 {
		return float64(len(result.Tasks)) / result.Makespan
	}
	return 0.0
}

func average(samples []float64) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}
