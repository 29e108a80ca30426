package mmap

import (
	"fmt"
	"os"
	"sync"
	"unsafe"
)

var pageSize = os.Getpagesize()

// PageSize is the granularity of every mapping handed out by this package.
func PageSize() int {
	return pageSize
}

func roundPageUp(n int) int {
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// Allocator backs an address space with anonymous read/write pages. The
// returned slice has the requested length and a page rounded capacity.
type Allocator struct{}

func (Allocator) Alloc(size int) ([]byte, error) {
	return Mmap(size)
}

func (Allocator) Free(b []byte) error {
	return Munmap(b)
}

var (
	mappingsLock sync.Mutex
	mappings     = make(map[uintptr][]byte)
)

// track records a live mapping; b spans the whole page rounded mapping.
func track(b []byte) {
	mappingsLock.Lock()
	defer mappingsLock.Unlock()
	mappings[uintptr(unsafe.Pointer(&b[0]))] = b
}

// untrack forgets the mapping starting at addr and returns it in full.
func untrack(addr uintptr) ([]byte, error) {
	mappingsLock.Lock()
	defer mappingsLock.Unlock()
	b, ok := mappings[addr]
	if !ok {
		return nil, fmt.Errorf("0x%x is not the start of a mapping", addr)
	}
	delete(mappings, addr)
	return b, nil
}

// Mapped reports the page rounded size of the live mapping at addr.
func Mapped(addr uintptr) (int, bool) {
	mappingsLock.Lock()
	defer mappingsLock.Unlock()
	b, ok := mappings[addr]
	return len(b), ok
}

// Containing returns the bytes [addr, addr+length) of the live mapping that
// holds the whole range.
func Containing(addr uintptr, length int) ([]byte, bool) {
	mappingsLock.Lock()
	defer mappingsLock.Unlock()
	for start, b := range mappings {
		if addr < start {
			continue
		}
		off := addr - start
		if off <= uintptr(len(b)) && uintptr(length) <= uintptr(len(b))-off {
			return b[off : off+uintptr(length)], true
		}
	}
	return nil, false
}
