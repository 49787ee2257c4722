package region

import "github.com/robertringler/aion/sir"

// Kind names the storage class of a Region.
type Kind int

const (
	Stack Kind = iota
	Heap
	ThreadLocal
	GpuGlobal
	GpuShared
	FpgaBram
	FpgaLut
	Static
	WasmLinear
	JvmHeap
)

// AllocationStrategy names how a Block's owning Allocation manages
// its lifetime.
type AllocationStrategy int

const (
	Manual AllocationStrategy = iota
	Owned
	GC
	Arena
	Pool
)

// BorrowKind names the access mode of a Borrow.
type BorrowKind int

const (
	Immutable BorrowKind = iota
	Mutable
	Exclusive
)

// TransferKind names whether an OwnershipTransfer changes the owner.
type TransferKind int

const (
	Move TransferKind = iota
	CloneTransfer
)

// Lifetime is a named interval with an optional parent and a list of
// opaque SMT constraint strings.
type Lifetime struct {
	Name        string
	Start       string
	End         string
	Parent      *Lifetime
	Constraints []string
}

// StaticLifetime is the distinguished lifetime that outlives
// everything and is torn down only at process exit.
var StaticLifetime = &Lifetime{Name: "static"}

// Outlives reports whether l outlives other: static outlives
// everything, any lifetime outlives itself, and l outlives other iff
// other's parent chain contains l.
func (l *Lifetime) Outlives(other *Lifetime) bool {
	if l == nil || other == nil {
		return false
	}
	if l.Name == StaticLifetime.Name {
		return true
	}
	if l.Name == other.Name {
		return true
	}
	for p := other.Parent; p != nil; p = p.Parent {
		if p.Name == l.Name {
			return true
		}
	}
	return false
}

// Region is a named, typed memory container.
type Region struct {
	ID         string
	Name       string
	Kind       Kind
	StreamID   string // gpu-global
	Lifetime   *Lifetime
	MaxSize    int64 // 0 means unbounded
	Alignment  int
	Affinity   sir.HardwareAffinity
	ParentID   string
	usedBytes  int64
	blockIDs   []string
}

// IsGPU reports whether the region lives on a GPU.
func (r *Region) IsGPU() bool { return r.Kind == GpuGlobal || r.Kind == GpuShared }

// IsFPGA reports whether the region lives on an FPGA.
func (r *Region) IsFPGA() bool { return r.Kind == FpgaBram || r.Kind == FpgaLut }

// IsDevice reports whether the region is device-resident (not
// host-side stack/heap/static/thread-local).
func (r *Region) IsDevice() bool {
	return r.IsGPU() || r.IsFPGA() || r.Kind == WasmLinear || r.Kind == JvmHeap
}

// IsHostSide reports whether the region lives on the CPU host.
func (r *Region) IsHostSide() bool {
	return r.Kind == Stack || r.Kind == Heap || r.Kind == ThreadLocal || r.Kind == Static
}

// CanTransferTo reports whether a cross-region transfer from r to
// other is permitted without explicit host staging: same region,
// either side host-side, or both on the same device family.
func (r *Region) CanTransferTo(other *Region) bool {
	if r.ID == other.ID {
		return true
	}
	if r.IsHostSide() || other.IsHostSide() {
		return true
	}
	if r.IsGPU() && other.IsGPU() {
		return true
	}
	if r.IsFPGA() && other.IsFPGA() {
		return true
	}
	return false
}

// Block is a sized, aligned, lifetime-bound portion of a region.
type Block struct {
	ID        string
	RegionID  string
	Offset    int64
	Size      int64
	Alignment int
	Lifetime  *Lifetime
	Owner     string // vertex identity; "" means none
	Borrows   []*Borrow
}

// Borrow references a block for the duration of a lifetime.
type Borrow struct {
	ID       string
	BlockID  string
	Kind     BorrowKind
	Borrower string
	Lifetime *Lifetime
}

// Allocation records who allocated a block, how, every vertex that has
// since referenced it (the allocating vertex plus every transfer or
// borrow party), and whether and where it has been freed.
type Allocation struct {
	ID           string
	Vertex       string
	BlockID      string
	Strategy     AllocationStrategy
	Freed        bool
	FreedAt      string // vertex identity that performed the free; "" if not freed
	ReferencedBy []string
}

// OwnershipTransfer records a move or clone of a block between two
// vertices.
type OwnershipTransfer struct {
	ID      string
	BlockID string
	From    string
	To      string
	Kind    TransferKind
}
