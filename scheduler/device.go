package scheduler

import "github.com/robertringler/aion/sir"

// Kind enumerates execution device kinds (§4.7).
type Kind int

const (
	CPU Kind = iota
	GPU
	FPGA
	WASM
	JVM
	TPU
)

func (k Kind) String() string {
	switch k {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	case FPGA:
		return "FPGA"
	case WASM:
		return "WASM"
	case JVM:
		return "JVM"
	case TPU:
		return "TPU"
	default:
		return "Unknown"
	}
}

var affinityToKind = map[sir.HardwareAffinity]Kind{
	sir.AffinityCPU:  CPU,
	sir.AffinityGPU:  GPU,
	sir.AffinityFPGA: FPGA,
	sir.AffinityWASM: WASM,
	sir.AffinityJVM:  JVM,
	sir.AffinityTPU:  TPU,
}

// Device is a schedulable execution resource. Option is its
// functional-options constructor, mirroring the core's GraphOption
// idiom.
type Device struct {
	ID              string
	Kind            Kind
	Name            string
	Capacity        float64
	Utilization     float64
	MemoryAvailable int64
	MemoryTotal     int64
	Features        map[string]bool
}

// Option configures a Device at construction time.
type Option func(*Device)

// WithName sets the device's display name.
func WithName(name string) Option { return func(d *Device) { d.Name = name } }

// WithCapacity sets the device's relative throughput capacity.
func WithCapacity(c float64) Option { return func(d *Device) { d.Capacity = c } }

// WithMemory sets available and total device memory in bytes.
func WithMemory(available, total int64) Option {
	return func(d *Device) { d.MemoryAvailable, d.MemoryTotal = available, total }
}

// WithFeatures declares hardware capability tags the device advertises.
func WithFeatures(tags ...string) Option {
	return func(d *Device) {
		for _, t := range tags {
			d.Features[t] = true
		}
	}
}

// NewDevice builds a Device of the given id and kind, capacity
// defaulting to 1.0.
func NewDevice(id string, kind Kind, opts ...Option) *Device {
	d := &Device{ID: id, Kind: kind, Capacity: 1.0, Features: map[string]bool{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CanExecute reports device eligibility per §4.7: affinity maps to the
// device kind (ANY matches all), task memory fits available memory,
// and every required feature tag is advertised by the device.
func (d *Device) CanExecute(t *Task) bool {
	if t.HardwareAffinity != sir.AffinityAny {
		required, known := affinityToKind[t.HardwareAffinity]
		if known && required != d.Kind {
			return false
		}
	}
	if t.MemoryRequired > d.MemoryAvailable {
		return false
	}
	for _, tag := range t.FeatureTags {
		if !d.Features[tag] {
			return false
		}
	}
	return true
}

// EstimatedTime computes §4.7's per-device time estimate: base cycles
// at 1GHz, adjusted for GPU parallelism (divide by min(parallelism,
// 1024)), FPGA overhead (×0.8), TPU parallelism (divide by
// min(parallelism, 128)), or generic device capacity otherwise.
func (d *Device) EstimatedTime(t *Task) float64 {
	base := float64(t.EstimatedCycles) / 1e9

	switch d.Kind {
	case GPU:
		if t.Parallelism > 1 {
			return base / float64(min(t.Parallelism, 1024))
		}
	case FPGA:
		return base * 0.8
	case TPU:
		return base / float64(min(t.Parallelism, 128))
	}
	return base / d.Capacity
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
