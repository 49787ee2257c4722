package sir

import (
	"fmt"

	"github.com/google/uuid"
)

// Builder is a fluent construction helper: each call mutates an
// internal "current vertex" cursor and emits the default DataFlow
// edges connecting it to its operands, mirroring the reference graph
// library's builder.BuildGraph orchestration but specialized to SIR's
// vertex variants. Terminal Build() returns the finished graph.
type Builder struct {
	g       *Graph
	current string
	err     error
}

// NewBuilder starts a fluent construction session over a fresh graph.
func NewBuilder(name string) *Builder {
	return &Builder{g: NewGraph(WithName(name))}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) add(v *Vertex) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.g.AddVertex(v); err != nil {
		return b.fail(err)
	}
	b.current = v.ID
	return b
}

func freshID(prefix string) string { return prefix + "_" + uuid.NewString() }

// Const appends a Const vertex and makes it current.
func (b *Builder) Const(value interface{}) *Builder {
	return b.add(NewConst(freshID("const"), value))
}

// Alloc appends an Alloc vertex and makes it current.
func (b *Builder) Alloc(size int64) *Builder {
	return b.add(NewAlloc(freshID("alloc"), size))
}

// Load appends a Load vertex connected from src by a DataFlow edge.
func (b *Builder) Load(src string) *Builder {
	b.add(NewLoad(freshID("load")))
	return b.Connect(src, b.current)
}

// Store appends a Store vertex connected from src by a DataFlow edge.
func (b *Builder) Store(src string) *Builder {
	b.add(NewStore(freshID("store")))
	return b.Connect(src, b.current)
}

// Apply appends an Apply vertex invoking callee, connected from every
// operand by a DataFlow edge.
func (b *Builder) Apply(callee string, operands ...string) *Builder {
	b.add(NewApply(freshID("apply"), callee))
	for _, op := range operands {
		b.Connect(op, b.current)
	}
	return b
}

// Phi appends a Phi vertex merging the given inputs.
func (b *Builder) Phi(inputs ...string) *Builder {
	b.add(NewPhi(freshID("phi")))
	for _, in := range inputs {
		b.Connect(in, b.current)
	}
	return b
}

// Kernel appends a KernelLaunch vertex with the given grid/block.
func (b *Builder) Kernel(grid, block [3]int) *Builder {
	return b.add(NewKernelLaunch(freshID("kernel"), grid, block))
}

// Param appends a Parameter vertex.
func (b *Builder) Param(name string, index int) *Builder {
	return b.add(NewParameter(freshID("param"), name, index))
}

// Ret appends a Return vertex connected from src.
func (b *Builder) Ret(src string) *Builder {
	b.add(NewReturn(freshID("ret")))
	return b.Connect(src, b.current)
}

// Connect adds a DataFlow edge from src to dst.
func (b *Builder) Connect(src, dst string) *Builder {
	if b.err != nil {
		return b
	}
	e := NewDataFlowEdge(freshID("df"), []string{src}, []string{dst})
	if err := b.g.AddEdge(e); err != nil {
		return b.fail(err)
	}
	return b
}

// Control adds a ControlFlow edge from src to dst.
func (b *Builder) Control(src, dst string, kind ControlFlowKind, condition string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.g.AddEdge(NewControlFlowEdge(freshID("cf"), []string{src}, []string{dst}, kind, condition)); err != nil {
		return b.fail(err)
	}
	return b
}

// Parallel adds a ParallelEdge declaring targets independently
// executable.
func (b *Builder) Parallel(kind ParallelismKind, targets ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.g.AddEdge(NewParallelEdge(freshID("par"), nil, targets, kind, 0, 0, 0, AffinityAny)); err != nil {
		return b.fail(err)
	}
	return b
}

// EffectOrder adds an EffectEdge ordering src before dst under mode.
func (b *Builder) EffectOrder(src, dst, mode string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.g.AddEdge(NewEffectEdge(freshID("eff"), []string{src}, []string{dst}, mode)); err != nil {
		return b.fail(err)
	}
	return b
}

// Current returns the cursor vertex identity set by the last
// vertex-appending call.
func (b *Builder) Current() string { return b.current }

// Build finalizes construction, returning the built graph or the
// first error encountered.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, fmt.Errorf("sir: build: %w", b.err)
	}
	return b.g, nil
}
