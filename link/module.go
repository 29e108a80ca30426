package link

import (
	"debug/elf"
	"io"

	"github.com/eh-steve/elfloader/elf64"
	"github.com/eh-steve/elfloader/mmap"
)

// Module is an Image whose relocations have been applied against a shim
// table. Once the host has made its pages executable, the functions it
// exports can be called.
type Module struct {
	*Image
	shims map[string]uintptr
}

// LoadModule parses r and applies every relocation. External symbols are
// resolved through shims, which maps symbol names to host addresses. A
// symbol missing from shims, or a relocation type the loader does not
// support, fails the whole load.
func LoadModule(r io.ReadSeeker, shims map[string]uintptr, conf Config) (*Module, error) {
	if conf.Allocator == nil {
		conf.Allocator = mmap.Allocator{}
	}
	img, err := load(r, conf)
	if err != nil {
		return nil, err
	}
	module := &Module{Image: img, shims: shims}
	if err = module.relocate(); err != nil {
		_ = img.Close()
		return nil, err
	}
	return module, nil
}

// EntryPointAddress returns the runtime address of the exported symbol name.
func (module *Module) EntryPointAddress(name string) (uintptr, error) {
	sym, ok := module.LookupSymbol(name)
	if !ok {
		return 0, &LinkError{Err: ErrSymbolNotFound, Symbol: name}
	}
	return module.Base() + uintptr(sym.Value), nil
}

// Size is the length of the address space in bytes.
func (module *Module) Size() int {
	return len(module.space)
}

// InitFunctions returns the relocated contents of the init arrays.
func (module *Module) InitFunctions() ([]uintptr, error) {
	return module.functionArray(elf.SHT_INIT_ARRAY)
}

// FiniFunctions returns the relocated contents of the fini arrays.
func (module *Module) FiniFunctions() ([]uintptr, error) {
	return module.functionArray(elf.SHT_FINI_ARRAY)
}

func (module *Module) functionArray(typ elf.SectionType) ([]uintptr, error) {
	var funcs []uintptr
	for i := range module.sections {
		if module.sections[i].Type != typ {
			continue
		}
		b, err := module.sectionBytes(i)
		if err != nil {
			return nil, err
		}
		for _, addr := range elf64.DecodeAddresses(b) {
			funcs = append(funcs, uintptr(addr))
		}
	}
	return funcs, nil
}
