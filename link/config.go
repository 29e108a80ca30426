package link

import (
	"debug/elf"
	"io"
)

// Allocator provides the backing buffer of an image's address space.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(b []byte) error
}

type heapAllocator struct{}

func (heapAllocator) Alloc(size int) ([]byte, error) { return make([]byte, size), nil }
func (heapAllocator) Free([]byte) error              { return nil }

// HeapAllocator backs address spaces with ordinary Go memory. Such images
// can be inspected and relocated but their pages cannot be made executable.
var HeapAllocator Allocator = heapAllocator{}

type Config struct {
	// Machine is the only e_machine accepted. Zero means EM_X86_64.
	Machine elf.Machine
	// Allocator backs the address space. Nil means HeapAllocator for Load
	// and an mmap backed allocator for LoadModule.
	Allocator Allocator
	// RelocationDebugWriter receives one line per applied relocation.
	RelocationDebugWriter io.Writer
	// Demangle renders C++ symbol names demangled in dumps.
	Demangle bool
}

func (conf Config) machine() elf.Machine {
	if conf.Machine == elf.EM_NONE {
		return elf.EM_X86_64
	}
	return conf.Machine
}

// arch holds the relocation type ids the patch step understands.
type arch struct {
	Machine  elf.Machine
	Relative uint32
	GlobDat  uint32
	JumpSlot uint32
}

var arches = map[elf.Machine]*arch{
	elf.EM_X86_64: {
		Machine:  elf.EM_X86_64,
		Relative: uint32(elf.R_X86_64_RELATIVE),
		GlobDat:  uint32(elf.R_X86_64_GLOB_DAT),
		JumpSlot: uint32(elf.R_X86_64_JMP_SLOT),
	},
	elf.EM_AARCH64: {
		Machine:  elf.EM_AARCH64,
		Relative: uint32(elf.R_AARCH64_RELATIVE),
		GlobDat:  uint32(elf.R_AARCH64_GLOB_DAT),
		JumpSlot: uint32(elf.R_AARCH64_JUMP_SLOT),
	},
}
