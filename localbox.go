package secdesc

import (
	"fmt"
	"sync"
	"unsafe"
)

// allocation is one live buffer owned by a LocalBox. Go-allocated buffers
// are pinned through buf; OS-allocated buffers carry the release function
// that returns the memory to the OS. owned records whether a box currently
// owns the allocation, so a second Claim cannot create two owners.
type allocation struct {
	buf     []byte
	release func(unsafe.Pointer)
	owned   bool
}

var (
	allocMu sync.Mutex
	allocs  = make(map[unsafe.Pointer]*allocation)
)

// trackBytes registers a Go-allocated buffer and returns its base pointer.
// The table entry keeps the slice reachable until the owning box is closed.
func trackBytes(buf []byte) unsafe.Pointer {
	p := unsafe.Pointer(&buf[0])
	allocMu.Lock()
	allocs[p] = &allocation{buf: buf, owned: true}
	allocMu.Unlock()
	return p
}

// trackNative registers an OS-allocated buffer with its release function.
func trackNative(p unsafe.Pointer, release func(unsafe.Pointer)) {
	allocMu.Lock()
	allocs[p] = &allocation{release: release, owned: true}
	allocMu.Unlock()
}

// LocalBox is the sole owner of one allocation. View borrows the contents;
// Close releases the memory and invalidates every outstanding view. A box
// is safe for concurrent use, but the caller must not touch views
// concurrently with Close.
type LocalBox[T any] struct {
	mu  sync.Mutex
	ptr *T
}

func newLocalBox[T any](p unsafe.Pointer) *LocalBox[T] {
	return &LocalBox[T]{ptr: (*T)(p)}
}

// Claim takes ownership of an allocation previously released with Release.
// It panics if ptr is not the start of a tracked allocation; in particular,
// claiming a borrowed view into a descriptor, such as its owner SID, panics
// rather than corrupting the allocation table. It also panics if another
// box still owns the allocation, so two boxes can never free the same
// memory.
func Claim[T any](ptr *T) *LocalBox[T] {
	p := unsafe.Pointer(ptr)
	allocMu.Lock()
	a, ok := allocs[p]
	switch {
	case !ok:
		allocMu.Unlock()
		panic(fmt.Sprintf("secdesc: Claim of pointer %p, which is not the start of a tracked allocation", ptr))
	case a.owned:
		allocMu.Unlock()
		panic(fmt.Sprintf("secdesc: Claim of pointer %p, whose allocation already has an owner", ptr))
	}
	a.owned = true
	allocMu.Unlock()
	return &LocalBox[T]{ptr: ptr}
}

// Release gives up ownership without freeing the memory and returns the
// contents. The box behaves as closed afterward, the allocation stays
// tracked, and a later Claim may adopt it. Release panics on a closed box.
func (b *LocalBox[T]) Release() *T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr == nil {
		panic("secdesc: Release of a closed LocalBox")
	}
	ptr := b.ptr
	b.ptr = nil

	allocMu.Lock()
	if a, ok := allocs[unsafe.Pointer(ptr)]; ok {
		a.owned = false
	}
	allocMu.Unlock()
	return ptr
}

// View returns the borrowed contents of the box. It panics after Close;
// views must never outlive the box they came from.
func (b *LocalBox[T]) View() *T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr == nil {
		panic("secdesc: View of a closed LocalBox")
	}
	return b.ptr
}

// Close releases the allocation. Closing twice panics, as does closing a
// box whose allocation was already freed through another owner.
func (b *LocalBox[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr == nil {
		panic("secdesc: LocalBox closed twice")
	}
	p := unsafe.Pointer(b.ptr)
	b.ptr = nil

	allocMu.Lock()
	a, ok := allocs[p]
	delete(allocs, p)
	allocMu.Unlock()
	if !ok {
		panic(fmt.Sprintf("secdesc: freeing pointer %p, which does not own an allocation", p))
	}
	if a.release != nil {
		a.release(p)
	}
}
