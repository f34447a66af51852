// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package trail implements the engine's reversible state store.
//
// A Trail is an append-only log of old values keyed by a partition and an
// address (or index). Mutations are logged before they happen; rewinding to
// a previously captured Sizes restores every logged address to its
// pre-mutation value, in strict LIFO order within each partition.
//
// The design follows the block-packed trail described in the base
// specification: each partition keeps a small "active" window of unpacked
// entries plus a linked list of packed blocks that roll off the window.
// Saves and rewinds near the top of the trail work on the unpacked window;
// once a numeric partition's window is full, every further save also packs
// the oldest entry and copies the window into a newly allocated slice.
package trail

// Partition identifies one of the reversible-state kinds a Trail tracks.
type Partition int

const (
	PartInt Partition = iota
	PartInt64
	PartUint64
	PartPtr
	PartBoolVar
	PartAlloc
	numPartitions
)

// BoolVarRestorer is implemented by the domain library's boolean variables
// so the trail can restore them without depending on that library.
type BoolVarRestorer interface {
	TrailRestore()
}

// AllocKind distinguishes a single owned object from an owned array for the
// purposes of release on rewind.
type AllocKind int

const (
	AllocObject AllocKind = iota
	AllocArray
)

type intEntry struct {
	addr *int
	old  int
}

type int64Entry struct {
	addr *int64
	old  int64
}

type uint64Entry struct {
	addr *uint64
	old  uint64
}

type ptrEntry struct {
	addr *interface{}
	old  interface{}
}

type boolVarEntry struct {
	v BoolVarRestorer
}

type allocEntry struct {
	kind AllocKind
	ptr  interface{}
}

// Config selects the trail's behavior. BlockSize and Compression mirror the
// `trail_block_size` and `trail_compression` Solver parameters.
type Config struct {
	BlockSize   int
	Compression Codec
}

// DefaultBlockSize is the default number of entries held in a partition's
// active window before it is packed, matching the base spec's default.
const DefaultBlockSize = 8000

// Trail is the engine's single reversible-state store. It is not safe for
// concurrent use; the engine is single-threaded by design (see base spec §5).
type Trail struct {
	cfg Config

	ints     []intEntry
	int64s   []int64Entry
	uint64s  []uint64Entry
	ptrs     []ptrEntry
	boolVars []boolVarEntry
	allocs   []allocEntry

	// packed holds, per primitive partition, blocks that have rolled off the
	// active window. packed[p] is a stack (LIFO) of packed blocks; the most
	// recently packed block is last.
	packed [numPartitions - 2][]packedBlock // excludes PartBoolVar/PartAlloc, which are never packed

	// packedLen is the total entry count currently sitting in packed[p],
	// kept in lockstep with every pack/unpack so SizeOf can report a
	// logical position that stays monotonic once a partition starts
	// packing, instead of the active window's length, which maybePack
	// pins at cfg.BlockSize forever.
	packedLen [numPartitions - 2]int

	free []packedBlock
}

// packedBlock holds a snapshot of entries that rolled off the active
// window for one primitive partition. Addresses remain live Go pointers;
// only the old-value payload passes through the configured Codec.
type packedBlock struct {
	intAddrs    []*int
	int64Addrs  []*int64
	uint64Addrs []*uint64
	data        []byte
	n           int
}

// New creates a Trail. A zero Config uses DefaultBlockSize and the identity
// codec.
func New(cfg Config) *Trail {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.Compression == nil {
		cfg.Compression = IdentityCodec{}
	}
	return &Trail{cfg: cfg}
}

// Sizes is a snapshot of the size of every partition, used by a search
// marker to later rewind exactly to this point.
type Sizes struct {
	Int     int
	Int64   int
	Uint64  int
	Ptr     int
	BoolVar int
	Alloc   int
}

// SizeOf returns a snapshot of all partition sizes, each a logical count
// of every entry saved so far (active window plus whatever has rolled off
// into packed blocks), not just the active window's length.
func (t *Trail) SizeOf() Sizes {
	return Sizes{
		Int:     t.packedLen[PartInt] + len(t.ints),
		Int64:   t.packedLen[PartInt64] + len(t.int64s),
		Uint64:  t.packedLen[PartUint64] + len(t.uint64s),
		Ptr:     t.packedLen[PartPtr] + len(t.ptrs),
		BoolVar: len(t.boolVars),
		Alloc:   len(t.allocs),
	}
}

// SaveInt appends an entry capturing (addr, *addr).
func (t *Trail) SaveInt(addr *int) {
	t.ints = append(t.ints, intEntry{addr: addr, old: *addr})
	t.maybePack(PartInt)
}

// SaveInt64 appends an entry capturing (addr, *addr).
func (t *Trail) SaveInt64(addr *int64) {
	t.int64s = append(t.int64s, int64Entry{addr: addr, old: *addr})
	t.maybePack(PartInt64)
}

// SaveUint64 appends an entry capturing (addr, *addr).
func (t *Trail) SaveUint64(addr *uint64) {
	t.uint64s = append(t.uint64s, uint64Entry{addr: addr, old: *addr})
	t.maybePack(PartUint64)
}

// SavePtr appends an entry capturing (addr, *addr) for a pointer-shaped
// field of arbitrary type.
func (t *Trail) SavePtr(addr *interface{}) {
	t.ptrs = append(t.ptrs, ptrEntry{addr: addr, old: *addr})
	t.maybePack(PartPtr)
}

// SaveBoolVar appends a reference to a boolean variable whose domain is
// restored, on rewind, by its own TrailRestore hook.
func (t *Trail) SaveBoolVar(v BoolVarRestorer) {
	t.boolVars = append(t.boolVars, boolVarEntry{v: v})
}

// AllocObject registers ptr as owned memory released when rewind passes the
// point at which this call was made.
func (t *Trail) AllocObject(ptr interface{}) {
	t.allocs = append(t.allocs, allocEntry{kind: AllocObject, ptr: ptr})
}

// AllocArray registers ptr (a slice or array) as owned memory released when
// rewind passes the point at which this call was made.
func (t *Trail) AllocArray(ptr interface{}) {
	t.allocs = append(t.allocs, allocEntry{kind: AllocArray, ptr: ptr})
}

// RewindTo restores every primitive address logged since m, in LIFO order,
// and releases every allocation registered since m. RewindTo never fails: a
// trail that cannot be rewound indicates a prior out-of-memory during a
// save, which is fatal at the point of the save, not here.
func (t *Trail) RewindTo(m Sizes) {
	for t.packedLen[PartInt]+len(t.ints) > m.Int {
		if len(t.ints) == 0 {
			t.unpackBlock(PartInt)
		}
		e := t.ints[len(t.ints)-1]
		*e.addr = e.old
		t.ints = t.ints[:len(t.ints)-1]
	}
	for t.packedLen[PartInt64]+len(t.int64s) > m.Int64 {
		if len(t.int64s) == 0 {
			t.unpackBlock(PartInt64)
		}
		e := t.int64s[len(t.int64s)-1]
		*e.addr = e.old
		t.int64s = t.int64s[:len(t.int64s)-1]
	}
	for t.packedLen[PartUint64]+len(t.uint64s) > m.Uint64 {
		if len(t.uint64s) == 0 {
			t.unpackBlock(PartUint64)
		}
		e := t.uint64s[len(t.uint64s)-1]
		*e.addr = e.old
		t.uint64s = t.uint64s[:len(t.uint64s)-1]
	}
	for t.packedLen[PartPtr]+len(t.ptrs) > m.Ptr {
		if len(t.ptrs) == 0 {
			t.unpackBlock(PartPtr)
		}
		e := t.ptrs[len(t.ptrs)-1]
		*e.addr = e.old
		t.ptrs = t.ptrs[:len(t.ptrs)-1]
	}
	for len(t.boolVars) > m.BoolVar {
		e := t.boolVars[len(t.boolVars)-1]
		e.v.TrailRestore()
		t.boolVars = t.boolVars[:len(t.boolVars)-1]
	}
	for len(t.allocs) > m.Alloc {
		// release: nothing to do explicitly in Go (GC-managed), but drop the
		// reference so the allocation becomes collectible immediately and any
		// release hooks on the owning type can run via a finalizer-free path.
		if r, ok := t.allocs[len(t.allocs)-1].ptr.(interface{ Release() }); ok {
			r.Release()
		}
		t.allocs = t.allocs[:len(t.allocs)-1]
	}
}

// maybePack moves the oldest entries of the active window into a new packed
// block once the window holds more than the configured block size, leaving
// the newest BlockSize entries unpacked in a freshly allocated window. Only
// numeric partitions are packed; BoolVar and Alloc
// entries hold live references that cannot be serialized generically.
func (t *Trail) maybePack(p Partition) {
	bs := t.cfg.BlockSize
	switch p {
	case PartInt:
		if len(t.ints) <= bs {
			return
		}
		head := t.ints[:len(t.ints)-bs]
		t.packed[p] = append(t.packed[p], t.packInts(head))
		t.packedLen[p] += len(head)
		rest := make([]intEntry, bs)
		copy(rest, t.ints[len(t.ints)-bs:])
		t.ints = rest
	case PartInt64:
		if len(t.int64s) <= bs {
			return
		}
		head := t.int64s[:len(t.int64s)-bs]
		t.packed[p] = append(t.packed[p], t.packInt64s(head))
		t.packedLen[p] += len(head)
		rest := make([]int64Entry, bs)
		copy(rest, t.int64s[len(t.int64s)-bs:])
		t.int64s = rest
	case PartUint64:
		if len(t.uint64s) <= bs {
			return
		}
		head := t.uint64s[:len(t.uint64s)-bs]
		t.packed[p] = append(t.packed[p], t.packUint64s(head))
		t.packedLen[p] += len(head)
		rest := make([]uint64Entry, bs)
		copy(rest, t.uint64s[len(t.uint64s)-bs:])
		t.uint64s = rest
	case PartPtr:
		// pointer-shaped entries hold arbitrary interface{} values that the
		// configured codec cannot generically serialize; they stay unpacked.
	}
}

// allocBlock returns a packedBlock ready to be filled by one of the pack*
// helpers, drawn from the freelist when one is available so steady-state
// packing (one block per overflowing save, once a partition is full)
// doesn't allocate a fresh block on every call.
func (t *Trail) allocBlock() packedBlock {
	if n := len(t.free); n > 0 {
		blk := t.free[n-1]
		t.free = t.free[:n-1]
		return blk
	}
	return packedBlock{}
}

// releaseBlock returns blk to the freelist once its contents have been
// unpacked back into the active window and are no longer needed.
func (t *Trail) releaseBlock(blk packedBlock) {
	blk.intAddrs = blk.intAddrs[:0]
	blk.int64Addrs = blk.int64Addrs[:0]
	blk.uint64Addrs = blk.uint64Addrs[:0]
	blk.data = nil
	blk.n = 0
	t.free = append(t.free, blk)
}

// unpackBlock restores the top packed block for partition p into the
// active window and returns its block to the freelist. Callers only call
// this when the active window is empty and packed[p] is non-empty, so
// RewindTo can keep popping without ever observing a gap.
func (t *Trail) unpackBlock(p Partition) {
	switch p {
	case PartInt:
		blk := t.packed[p][len(t.packed[p])-1]
		t.packed[p] = t.packed[p][:len(t.packed[p])-1]
		t.ints = t.unpackInts(blk)
		t.packedLen[p] -= blk.n
		t.releaseBlock(blk)
	case PartInt64:
		blk := t.packed[p][len(t.packed[p])-1]
		t.packed[p] = t.packed[p][:len(t.packed[p])-1]
		t.int64s = t.unpackInt64s(blk)
		t.packedLen[p] -= blk.n
		t.releaseBlock(blk)
	case PartUint64:
		blk := t.packed[p][len(t.packed[p])-1]
		t.packed[p] = t.packed[p][:len(t.packed[p])-1]
		t.uint64s = t.unpackUint64s(blk)
		t.packedLen[p] -= blk.n
		t.releaseBlock(blk)
	}
}

func (t *Trail) packInts(entries []intEntry) packedBlock {
	blk := t.allocBlock()
	vals := make([]int64, 0, len(entries))
	for _, e := range entries {
		blk.intAddrs = append(blk.intAddrs, e.addr)
		vals = append(vals, int64(e.old))
	}
	blk.data = t.cfg.Compression.Encode(vals)
	blk.n = len(entries)
	return blk
}

func (t *Trail) unpackInts(blk packedBlock) []intEntry {
	vals := t.cfg.Compression.Decode(blk.data, blk.n)
	out := make([]intEntry, blk.n)
	for i := 0; i < blk.n; i++ {
		out[i] = intEntry{addr: blk.intAddrs[i], old: int(vals[i])}
	}
	return out
}

func (t *Trail) packInt64s(entries []int64Entry) packedBlock {
	blk := t.allocBlock()
	vals := make([]int64, 0, len(entries))
	for _, e := range entries {
		blk.int64Addrs = append(blk.int64Addrs, e.addr)
		vals = append(vals, e.old)
	}
	blk.data = t.cfg.Compression.Encode(vals)
	blk.n = len(entries)
	return blk
}

func (t *Trail) unpackInt64s(blk packedBlock) []int64Entry {
	vals := t.cfg.Compression.Decode(blk.data, blk.n)
	out := make([]int64Entry, blk.n)
	for i := 0; i < blk.n; i++ {
		out[i] = int64Entry{addr: blk.int64Addrs[i], old: vals[i]}
	}
	return out
}

func (t *Trail) packUint64s(entries []uint64Entry) packedBlock {
	blk := t.allocBlock()
	vals := make([]int64, 0, len(entries))
	for _, e := range entries {
		blk.uint64Addrs = append(blk.uint64Addrs, e.addr)
		vals = append(vals, int64(e.old))
	}
	blk.data = t.cfg.Compression.Encode(vals)
	blk.n = len(entries)
	return blk
}

func (t *Trail) unpackUint64s(blk packedBlock) []uint64Entry {
	vals := t.cfg.Compression.Decode(blk.data, blk.n)
	out := make([]uint64Entry, blk.n)
	for i := 0; i < blk.n; i++ {
		out[i] = uint64Entry{addr: blk.uint64Addrs[i], old: uint64(vals[i])}
	}
	return out
}
