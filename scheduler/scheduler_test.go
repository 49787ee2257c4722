package scheduler_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/robertringler/aion/scheduler"
	"github.com/robertringler/aion/sir"
)

func TestScheduler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scheduler Suite")
}

var _ = Describe("Device eligibility", func() {
	var cpu *scheduler.Device

	BeforeEach(func() {
		cpu = scheduler.NewDevice("cpu0", scheduler.CPU, scheduler.WithMemory(1024, 1024), scheduler.WithFeatures("avx512"))
	})

	It("rejects a task whose affinity targets a different device kind", func() {
		g := sir.NewGraph()
		v := sir.NewKernelLaunch("k1", [3]int{1, 1, 1}, [3]int{1, 1, 1})
		Expect(g.AddVertex(v)).To(Succeed())
		task := scheduler.NewTaskFromVertex(v, g)

		Expect(cpu.CanExecute(task)).To(BeFalse())
	})

	It("rejects a task whose memory requirement exceeds availability", func() {
		g := sir.NewGraph()
		v := sir.NewAlloc("a1", 2048)
		Expect(g.AddVertex(v)).To(Succeed())
		task := scheduler.NewTaskFromVertex(v, g)

		Expect(cpu.CanExecute(task)).To(BeFalse())
	})

	It("rejects a task requiring an unadvertised feature tag", func() {
		g := sir.NewGraph()
		v := sir.NewApply("c1", "matmul")
		v.Metadata.FeatureTags = []string{"tensor-core"}
		Expect(g.AddVertex(v)).To(Succeed())
		task := scheduler.NewTaskFromVertex(v, g)

		Expect(cpu.CanExecute(task)).To(BeFalse())
	})

	It("accepts a task whose affinity is ANY and whose requirements fit", func() {
		g := sir.NewGraph()
		v := sir.NewApply("c1", "noop")
		Expect(g.AddVertex(v)).To(Succeed())
		task := scheduler.NewTaskFromVertex(v, g)

		Expect(cpu.CanExecute(task)).To(BeTrue())
	})
})

var _ = Describe("CausalScheduler", func() {
	It("respects dependency order and reports a positive makespan", func() {
		g := sir.NewGraph()
		Expect(g.AddVertex(sir.NewLoad("l1"))).To(Succeed())
		Expect(g.AddVertex(sir.NewStore("s1"))).To(Succeed())
		Expect(g.AddEdge(sir.NewDataFlowEdge("e1", []string{"l1"}, []string{"s1"}))).To(Succeed())

		sched := scheduler.NewCausalScheduler()
		result := sched.Schedule(g)

		byID := map[string]*scheduler.Task{}
		for _, t := range result.Tasks {
			byID[t.ID] = t
		}
		Expect(byID["l1"].EndTime).To(BeNumerically("<=", byID["s1"].StartTime))
		Expect(result.Makespan).To(BeNumerically(">", 0))
	})

	It("breaks finish-time ties by the lexicographically smaller device id", func() {
		g := sir.NewGraph()
		Expect(g.AddVertex(sir.NewApply("c1", "noop"))).To(Succeed())

		devB := scheduler.NewDevice("zzz", scheduler.CPU, scheduler.WithMemory(1<<30, 1<<30))
		devA := scheduler.NewDevice("aaa", scheduler.CPU, scheduler.WithMemory(1<<30, 1<<30))
		sched := scheduler.NewCausalScheduler(devB, devA)
		result := sched.Schedule(g)

		Expect(result.Tasks).To(HaveLen(1))
		Expect(result.Tasks[0].AssignedDevice.ID).To(Equal("aaa"))
	})
})

var _ = Describe("AdaptiveScheduler migration", func() {
	// S5: three independent Apply tasks, a slow CPU and a much faster
	// GPU; once profiling shows a >=20% improvement on a different
	// device than the one initially assigned, the task migrates there.
	It("migrates a task toward the device with a faster observed average", func() {
		g := sir.NewGraph()
		for _, id := range []string{"t1", "t2", "t3"} {
			Expect(g.AddVertex(sir.NewApply(id, "work"))).To(Succeed())
		}

		cpu := scheduler.NewDevice("cpu0", scheduler.CPU, scheduler.WithCapacity(1.0), scheduler.WithMemory(1<<30, 1<<30))
		gpu := scheduler.NewDevice("gpu0", scheduler.GPU, scheduler.WithCapacity(10.0), scheduler.WithMemory(1<<30, 1<<30))
		adaptive := scheduler.NewAdaptiveScheduler(cpu, gpu)

		first := adaptive.Schedule(g)
		var target *scheduler.Task
		for _, t := range first.Tasks {
			if t.ID == "t1" {
				target = t
			}
		}
		Expect(target).NotTo(BeNil())
		initialDevice := target.AssignedDevice.ID

		other := "gpu0"
		if initialDevice == "gpu0" {
			other = "cpu0"
		}
		adaptive.RecordExecution("t1", 1.0, initialDevice)
		adaptive.RecordExecution("t1", 0.2, other)

		second := adaptive.Schedule(g)
		Expect(second.Migrations).To(BeNumerically(">=", 1))

		var migrated *scheduler.Task
		for _, t := range second.Tasks {
			if t.ID == "t1" {
				migrated = t
			}
		}
		Expect(migrated.AssignedDevice.ID).To(Equal(other))
		Expect(migrated.Status).To(Equal(scheduler.Migrated))
	})
})

var _ = Describe("WorkStealingScheduler", func() {
	It("lets an idle device steal from the tail of the busiest queue", func() {
		busy := scheduler.NewDevice("busy", scheduler.CPU, scheduler.WithMemory(1<<30, 1<<30))
		idle := scheduler.NewDevice("idle", scheduler.CPU, scheduler.WithMemory(1<<30, 1<<30))
		ws := scheduler.NewWorkStealingScheduler(busy, idle)

		g := sir.NewGraph()
		for _, id := range []string{"a", "b", "c"} {
			v := sir.NewApply(id, "work")
			Expect(g.AddVertex(v)).To(Succeed())
			ws.AddTask(scheduler.NewTaskFromVertex(v, g))
		}

		result := ws.Run()
		Expect(result.Tasks).To(HaveLen(3))
		Expect(result.Makespan).To(BeNumerically(">", 0))
		for _, u := range result.DeviceUtilization {
			Expect(u).To(BeNumerically(">=", 0))
		}
	})
})
