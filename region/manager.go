package region

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/robertringler/aion/diag"
	"github.com/robertringler/aion/sir"
)

// Manager is process-wide region state: an explicit value threaded
// through analyses rather than a package-level singleton, per the
// core's "no global mutable state" design note. Initialize it once at
// core entry and discard it at teardown; only the currently running
// analysis mutates it.
type Manager struct {
	regions      map[string]*Region
	blocks       map[string]*Block
	allocations  map[string]*Allocation
	blockToAlloc map[string]string
	lifetimes    map[string]*Lifetime
	transfers    []OwnershipTransfer
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	m := &Manager{
		regions:      map[string]*Region{},
		blocks:       map[string]*Block{},
		allocations:  map[string]*Allocation{},
		blockToAlloc: map[string]string{},
		lifetimes:    map[string]*Lifetime{StaticLifetime.Name: StaticLifetime},
	}
	return m
}

// DeclareRegion registers r explicitly, minting an ID when r.ID is
// empty. Regions are not created on first allocation: Allocate fails
// with ErrUnknownRegion for a region that was never declared.
func (m *Manager) DeclareRegion(r *Region) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.regions[r.ID] = r
	if r.Lifetime != nil {
		m.lifetimes[r.Lifetime.Name] = r.Lifetime
	}
}

// Region returns the region named id, or nil.
func (m *Manager) Region(id string) *Region { return m.regions[id] }

// Block returns the block named id, or nil if it was never allocated
// or has since been freed.
func (m *Manager) Block(id string) *Block { return m.blocks[id] }

// Regions returns every declared region, in no particular order.
func (m *Manager) Regions() []*Region {
	out := make([]*Region, 0, len(m.regions))
	for _, r := range m.regions {
		out = append(out, r)
	}
	return out
}

// Allocations returns every allocation record, freed or not, in no
// particular order.
func (m *Manager) Allocations() []*Allocation {
	out := make([]*Allocation, 0, len(m.allocations))
	for _, a := range m.allocations {
		out = append(out, a)
	}
	return out
}

// FreedAllocationVertices returns the set of vertex identities that
// performed an allocation whose block has since been freed, keyed by
// the same sir.Vertex.ID a proof.Synthesizer's allocation records
// carry — the correlation proof.Synthesizer.SynthesizeMemorySafety's
// freed parameter expects.
func (m *Manager) FreedAllocationVertices() map[string]bool {
	out := map[string]bool{}
	for _, a := range m.allocations {
		if a.Freed {
			out[a.Vertex] = true
		}
	}
	return out
}

// Allocate computes used bytes in the target region, rounds up to
// alignment, and fails with ErrOutOfRegion if the region has a maximum
// size the new block would exceed; otherwise constructs a Block and an
// Allocation record with the Owned strategy.
func (m *Manager) Allocate(regionID string, size int64, alignment int, vertexID string) (*Allocation, error) {
	r, ok := m.regions[regionID]
	if !ok {
		return nil, ErrUnknownRegion
	}
	offset := roundUp(r.usedBytes, int64(alignment))
	if r.MaxSize > 0 && offset+size > r.MaxSize {
		return nil, fmt.Errorf("region %s: offset %d + size %d exceeds max %d: %w", r.ID, offset, size, r.MaxSize, ErrOutOfRegion)
	}

	block := &Block{
		ID: uuid.NewString(), RegionID: regionID, Offset: offset, Size: size,
		Alignment: alignment, Lifetime: r.Lifetime, Owner: vertexID,
	}
	m.blocks[block.ID] = block
	r.usedBytes = offset + size
	r.blockIDs = append(r.blockIDs, block.ID)

	alloc := &Allocation{ID: uuid.NewString(), Vertex: vertexID, BlockID: block.ID, Strategy: Owned, ReferencedBy: []string{vertexID}}
	m.allocations[alloc.ID] = alloc
	m.blockToAlloc[block.ID] = alloc.ID
	return alloc, nil
}

func roundUp(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	if rem := n % align; rem != 0 {
		return n + (align - rem)
	}
	return n
}

// Free marks allocationID's block freed by vertexID. Double-free fails
// with ErrDoubleFree; freeing a block with a live borrow fails with
// ErrBorrowedAtFree. vertexID is recorded as the allocation's FreedAt
// point so CheckSafety can tell later references from earlier ones.
func (m *Manager) Free(allocationID, vertexID string) error {
	alloc, ok := m.allocations[allocationID]
	if !ok {
		return ErrUnknownAllocation
	}
	if alloc.Freed {
		return ErrDoubleFree
	}
	block, ok := m.blocks[alloc.BlockID]
	if !ok {
		return ErrUnknownBlock
	}
	if len(block.Borrows) > 0 {
		return ErrBorrowedAtFree
	}
	alloc.Freed = true
	alloc.FreedAt = vertexID
	delete(m.blocks, block.ID)
	return nil
}

// TransferOwnership moves or clones blockID between vertices. A move
// requires from to be the current owner and updates the owner on
// success; a clone leaves ownership unchanged.
func (m *Manager) TransferOwnership(blockID, from, to string, kind TransferKind) (*OwnershipTransfer, error) {
	block, ok := m.blocks[blockID]
	if !ok {
		return nil, ErrUnknownBlock
	}
	if kind == Move {
		if block.Owner != from {
			return nil, fmt.Errorf("region: %s is not owner of block %s: %w", from, blockID, ErrNotOwner)
		}
		block.Owner = to
	}
	t := OwnershipTransfer{ID: uuid.NewString(), BlockID: blockID, From: from, To: to, Kind: kind}
	m.transfers = append(m.transfers, t)
	if allocID, ok := m.blockToAlloc[blockID]; ok {
		if alloc := m.allocations[allocID]; alloc != nil {
			alloc.ReferencedBy = append(alloc.ReferencedBy, from, to)
		}
	}
	return &t, nil
}

// BorrowBlock records a borrow of blockID. A mutable borrow requires
// no existing borrows; an immutable borrow requires no existing
// mutable borrow. The borrow's lifetime must be outlived by the
// block's lifetime.
func (m *Manager) BorrowBlock(blockID string, kind BorrowKind, borrower string, lifetime *Lifetime) (*Borrow, error) {
	block, ok := m.blocks[blockID]
	if !ok {
		return nil, ErrUnknownBlock
	}
	if block.Lifetime != nil && !block.Lifetime.Outlives(lifetime) {
		return nil, fmt.Errorf("region: block lifetime does not outlive borrow: %w", ErrConflictingBorrow)
	}
	hasMutable := false
	for _, b := range block.Borrows {
		if b.Kind == Mutable || b.Kind == Exclusive {
			hasMutable = true
		}
	}
	if kind == Mutable || kind == Exclusive {
		if len(block.Borrows) > 0 {
			return nil, fmt.Errorf("region: block %s already borrowed: %w", blockID, ErrConflictingBorrow)
		}
	} else if hasMutable {
		return nil, fmt.Errorf("region: block %s has a live mutable borrow: %w", blockID, ErrConflictingBorrow)
	}

	borrow := &Borrow{ID: uuid.NewString(), BlockID: blockID, Kind: kind, Borrower: borrower, Lifetime: lifetime}
	block.Borrows = append(block.Borrows, borrow)
	if allocID, ok := m.blockToAlloc[blockID]; ok {
		if alloc := m.allocations[allocID]; alloc != nil {
			alloc.ReferencedBy = append(alloc.ReferencedBy, borrower)
		}
	}
	return borrow, nil
}

// EndBorrow removes a previously recorded borrow from its block.
func (m *Manager) EndBorrow(blockID, borrowID string) error {
	block, ok := m.blocks[blockID]
	if !ok {
		return ErrUnknownBlock
	}
	for i, b := range block.Borrows {
		if b.ID == borrowID {
			block.Borrows = append(block.Borrows[:i], block.Borrows[i+1:]...)
			return nil
		}
	}
	return ErrUnknownBorrow
}

// InferLifetimes assigns the region's lifetime to every block that
// does not already carry an explicit override, mirroring §3's
// "inherited from region unless overridden."
func (m *Manager) InferLifetimes() {
	for _, b := range m.blocks {
		if b.Lifetime == nil {
			if r, ok := m.regions[b.RegionID]; ok {
				b.Lifetime = r.Lifetime
			}
		}
	}
}

// CheckSafety walks g in topological order verifying that no freed
// allocation's block is referenced, after the point it was freed, by
// any vertex that allocated, received, or borrowed it; and that every
// live borrow's lifetime is outlived by its block's lifetime.
func (m *Manager) CheckSafety(g *sir.Graph) []diag.Violation {
	var violations []diag.Violation

	order, _ := g.TopologicalOrder()
	indexOf := make(map[string]int, len(order))
	for i, v := range order {
		indexOf[v.ID] = i
	}

	for _, alloc := range m.allocations {
		if !alloc.Freed || alloc.FreedAt == "" {
			continue
		}
		freeIdx, ok := indexOf[alloc.FreedAt]
		if !ok {
			continue
		}
		for _, ref := range alloc.ReferencedBy {
			if ref == alloc.FreedAt {
				continue
			}
			if idx, ok := indexOf[ref]; ok && idx > freeIdx {
				violations = append(violations, diag.New(diag.MemorySafetyViolation, "vertex %s references freed block %s", ref, alloc.BlockID).WithVertices(ref))
			}
		}
	}

	for _, b := range m.blocks {
		for _, borrow := range b.Borrows {
			if b.Lifetime != nil && borrow.Lifetime != nil && !b.Lifetime.Outlives(borrow.Lifetime) {
				violations = append(violations, diag.New(diag.BorrowViolation, "borrow %s outlives block %s", borrow.ID, b.ID))
			}
		}
	}
	return violations
}
