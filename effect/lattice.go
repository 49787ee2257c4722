package effect

// Effect is an element of the fixed concurrency-effect enumeration,
// ordered into a lattice by the Hasse diagram in coversOf.
type Effect int

const (
	Pure Effect = iota
	Alloc
	Read
	Write
	ThreadSpawn
	ThreadJoin
	ChannelSend
	ChannelRecv
	ActorSend
	WarpSync
	Barrier
	AtomicRead
	AtomicWrite
	AtomicRmw
	PipelineStage
	IO
	Network
	GpuLaunch
	FpgaProgram
	Arbitrary
)

var names = map[Effect]string{
	Pure: "Pure", Alloc: "Alloc", Read: "Read", Write: "Write",
	ThreadSpawn: "ThreadSpawn", ThreadJoin: "ThreadJoin",
	ChannelSend: "ChannelSend", ChannelRecv: "ChannelRecv",
	ActorSend: "ActorSend", WarpSync: "WarpSync", Barrier: "Barrier",
	AtomicRead: "AtomicRead", AtomicWrite: "AtomicWrite", AtomicRmw: "AtomicRmw",
	PipelineStage: "PipelineStage", IO: "IO", Network: "Network",
	GpuLaunch: "GpuLaunch", FpgaProgram: "FpgaProgram", Arbitrary: "Arbitrary",
}

// String renders the effect's enumeration name.
func (e Effect) String() string {
	if n, ok := names[e]; ok {
		return n
	}
	return "Unknown"
}

// coversOf maps each effect to the set of effects it sits directly
// above in the Hasse diagram (e.g. coversOf[Write] = {Read} means
// Read ⊑ Write). Arbitrary covers everything else, making it top;
// Pure covers nothing, making it bottom.
var coversOf = map[Effect][]Effect{
	Pure:          {},
	Alloc:         {Pure},
	Read:          {Pure},
	Write:         {Read},
	ThreadSpawn:   {Write},
	ThreadJoin:    {ThreadSpawn},
	ChannelSend:   {ThreadJoin},
	ChannelRecv:   {ChannelSend},
	ActorSend:     {ChannelRecv},
	WarpSync:      {ActorSend},
	Barrier:       {WarpSync},
	AtomicRead:    {Read},
	AtomicWrite:   {AtomicRead, Write},
	AtomicRmw:     {AtomicWrite},
	PipelineStage: {Barrier},
	IO:            {PipelineStage},
	Network:       {IO},
	GpuLaunch:     {WarpSync},
	FpgaProgram:   {IO},
}

// All enumerates every effect in the lattice, including top and bottom.
func All() []Effect {
	out := make([]Effect, 0, len(names))
	for e := Pure; e <= Arbitrary; e++ {
		out = append(out, e)
	}
	return out
}

// Bottom returns the least element of the lattice (Pure).
func Bottom() Effect { return Pure }

// Top returns the greatest element of the lattice (Arbitrary).
func Top() Effect { return Arbitrary }

// coveredBy is the reverse of coversOf: coveredBy[x] lists the
// effects that directly cover x (i.e. x ⊑ y for each y in
// coveredBy[x]). Built once from coversOf so the Hasse diagram has a
// single source of truth.
var coveredBy = func() map[Effect][]Effect {
	m := make(map[Effect][]Effect, len(coversOf))
	for higher, lowers := range coversOf {
		for _, lower := range lowers {
			m[lower] = append(m[lower], higher)
		}
	}
	return m
}()

// Leq reports whether a ⊑ b, found by an upward breadth-first search
// over the covers relation starting at a. The traversal mirrors the
// reference graph library's layered BFS: a FIFO queue of frontier
// effects, a visited set to avoid revisiting, expanding one level
// (one step up the Hasse diagram, via coveredBy) per iteration.
func Leq(a, b Effect) bool {
	if a == b {
		return true
	}
	if b == Arbitrary {
		return true
	}
	if a == Pure {
		return true
	}

	visited := map[Effect]bool{a: true}
	queue := []Effect{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, higher := range coveredBy[cur] {
			if higher == b {
				return true
			}
			if !visited[higher] {
				visited[higher] = true
				queue = append(queue, higher)
			}
		}
	}
	return false
}

// Join returns an upper bound of a and b: the larger of the two when
// they are comparable, otherwise the lattice top. The Hasse diagram is
// not a full lattice (two effects on different branches may share no
// useful common ancestor below Arbitrary), so Join only guarantees the
// upper-bound property (§8 invariant 4), not minimality.
func Join(a, b Effect) Effect {
	if Leq(a, b) {
		return b
	}
	if Leq(b, a) {
		return a
	}
	return Top()
}

// Meet returns a lower bound of a and b: the smaller of the two when
// they are comparable, otherwise the lattice bottom. As with Join,
// only the lower-bound property is guaranteed for incomparable pairs.
func Meet(a, b Effect) Effect {
	if Leq(a, b) {
		return a
	}
	if Leq(b, a) {
		return b
	}
	return Bottom()
}

// JoinAll folds Join over a set of effects, returning Bottom for an
// empty set.
func JoinAll(effects []Effect) Effect {
	result := Bottom()
	for _, e := range effects {
		result = Join(result, e)
	}
	return result
}
