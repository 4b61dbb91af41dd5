// Package intern canonicalises structurally equal keys to one stable ID.
//
// A Table owns every value it interns; callers hold IDs, never pointers into
// the arena. Two keys that compare equal always map to the same ID for the
// lifetime of the table, so ID equality is structural equality.
//
// Lookups by key and reads by ID take no lock. Inserts are serialised: the table
// checks the index again under its write lock and either returns the entry
// another goroutine created or allocates a new slot.
package intern

import (
	"fmt"
	"sync"
	"sync/atomic"

	"fortio.org/safecast"
)

// ID is a handle into a Table arena.
type ID uint32

// NoID marks the absence of an entry. Slot 0 is reserved for it.
const NoID ID = 0

// IsValid reports whether id refers to a real slot.
func (id ID) IsValid() bool { return id != NoID }

const (
	chunkBits = 8
	chunkSize = 1 << chunkBits
	chunkMask = chunkSize - 1
)

// chunk slots never move once allocated, so a published slot can be read
// without the lock.
type chunk[V any] [chunkSize]V

// Table maps keys of type K to interned values of type V.
type Table[K comparable, V any] struct {
	mu    sync.Mutex // serialises inserts and Reset
	index sync.Map   // K -> ID
	// chunks is replaced, never mutated, when it grows.
	chunks atomic.Pointer[[]*chunk[V]]
	// n counts published slots including the sentinel. A slot is written
	// before n covers it.
	n atomic.Uint32
}

// New creates an empty table. capacity is a hint for the number of chunks
// to preallocate.
func New[K comparable, V any](capacity int) *Table[K, V] {
	t := &Table[K, V]{}
	t.init(capacity)
	return t
}

func (t *Table[K, V]) init(capacity int) {
	dir := make([]*chunk[V], 1, max(1, (capacity+chunkSize)/chunkSize))
	dir[0] = new(chunk[V])
	t.chunks.Store(&dir)
	t.n.Store(1) // index 0 reserved for NoID
}

// Intern returns the canonical ID for key. When the key is new, build is
// called exactly once with the freshly allocated ID to produce the value.
// build runs under the table's write lock and must not intern into the same
// table. A build error leaves the table unchanged.
func (t *Table[K, V]) Intern(key K, build func(ID) (V, error)) (ID, bool, error) {
	if id, ok := t.index.Load(key); ok {
		return id.(ID), false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.index.Load(key); ok {
		return id.(ID), false, nil
	}
	next := t.n.Load()
	count, err := safecast.Conv[uint32](uint64(next) + 1)
	if err != nil {
		panic(fmt.Errorf("intern arena overflow: %w", err))
	}
	id := ID(next)
	value, err := build(id)
	if err != nil {
		return NoID, false, err
	}

	dir := *t.chunks.Load()
	ci := int(next >> chunkBits)
	if ci == len(dir) {
		grown := append(dir[:len(dir):len(dir)], new(chunk[V]))
		t.chunks.Store(&grown)
		dir = grown
	}
	dir[ci][next&chunkMask] = value
	t.n.Store(count)
	t.index.Store(key, id)
	return id, true, nil
}

// Lookup returns the ID for key without creating it.
func (t *Table[K, V]) Lookup(key K) (ID, bool) {
	id, ok := t.index.Load(key)
	if !ok {
		return NoID, false
	}
	return id.(ID), true
}

// Get returns the value stored under id. It takes no lock.
func (t *Table[K, V]) Get(id ID) (V, bool) {
	if id == NoID || uint32(id) >= t.n.Load() {
		var zero V
		return zero, false
	}
	dir := *t.chunks.Load()
	return dir[id>>chunkBits][id&chunkMask], true
}

// MustGet panics when id is not a valid slot.
func (t *Table[K, V]) MustGet(id ID) V {
	v, ok := t.Get(id)
	if !ok {
		panic(fmt.Sprintf("intern: invalid ID %d", id))
	}
	return v
}

// Len reports the number of interned entries excluding the sentinel.
func (t *Table[K, V]) Len() int {
	return int(t.n.Load()) - 1
}

// Each calls fn for every entry in allocation order until fn returns false.
// Entries interned while Each runs may or may not be visited.
func (t *Table[K, V]) Each(fn func(ID, V) bool) {
	n := t.n.Load()
	dir := *t.chunks.Load()
	for i := uint32(1); i < n; i++ {
		if !fn(ID(i), dir[i>>chunkBits][i&chunkMask]) {
			return
		}
	}
}

// Reset drops every entry. IDs handed out before Reset must not be reused,
// and Reset must not run concurrently with other calls.
func (t *Table[K, V]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.init(len(*t.chunks.Load()) * chunkSize)
	t.index.Range(func(key, _ any) bool {
		t.index.Delete(key)
		return true
	})
}
