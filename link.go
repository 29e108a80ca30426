package elfloader

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"

	"github.com/eh-steve/elfloader/libdl"
	"github.com/eh-steve/elfloader/link"
	"github.com/eh-steve/elfloader/mmap"
	"github.com/eh-steve/elfloader/mprotect"
)

type Image = link.Image
type Module = link.Module
type Config = link.Config

func Load(r io.ReadSeeker, conf Config) (*Image, error) {
	return link.Load(r, conf)
}

func LoadModule(r io.ReadSeeker, shims map[string]uintptr, conf Config) (*Module, error) {
	return link.LoadModule(r, shims, conf)
}

func Dump(img *Image, w io.Writer) error {
	return link.Dump(img, w)
}

func UnresolvedSymbols(img *Image, shims map[string]uintptr) []string {
	return link.UnresolvedSymbols(img, shims)
}

// MakeExecutable makes the whole address space of module executable. It must
// be called before any function of the module is invoked, and the module must
// have been loaded with an allocator backed by mmap.Mmap.
func MakeExecutable(module *Module) error {
	return mprotect.MakeExecutable(module.Base(), module.Size())
}

// ResolveShims builds a shim table for img from the host's shared libraries.
// libs are opened in order after the main program. Weak imports that no
// library exports are bound to null.
func ResolveShims(img *Image, libs []string) (map[string]uintptr, error) {
	handles := make([]uintptr, 0, len(libs)+1)
	for _, lib := range append([]string{""}, libs...) {
		h, err := libdl.Open(lib)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	shims, err := libdl.Resolve(handles, img.ImportedSymbols())
	if err != nil && !errors.Is(err, libdl.ErrNotFound) {
		return nil, err
	}
	weak := weakImports(img)
	var missing []string
	for _, name := range img.ImportedSymbols() {
		if _, ok := shims[name]; ok {
			continue
		}
		if weak[name] {
			shims[name] = 0
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return shims, fmt.Errorf("%w: %q", libdl.ErrNotFound, missing)
	}
	return shims, nil
}

func weakImports(img *Image) map[string]bool {
	weak := make(map[string]bool)
	for _, section := range img.Relocations() {
		for _, loc := range section.Relocations {
			if loc.Symbol.Bind() == elf.STB_WEAK {
				weak[loc.SymbolName] = true
			}
		}
	}
	return weak
}

// Call invokes the exported function name of module with integer arguments.
func Call(module *Module, name string, args ...uintptr) (uintptr, error) {
	fn, err := module.EntryPointAddress(name)
	if err != nil {
		return 0, err
	}
	return libdl.Call(fn, args...)
}

// RunInitFunctions calls the module's init array entries in order.
func RunInitFunctions(module *Module) error {
	funcs, err := module.InitFunctions()
	if err != nil {
		return err
	}
	return callAll(funcs)
}

// RunFiniFunctions calls the module's fini array entries in reverse order.
func RunFiniFunctions(module *Module) error {
	funcs, err := module.FiniFunctions()
	if err != nil {
		return err
	}
	for i, j := 0, len(funcs)-1; i < j; i, j = i+1, j-1 {
		funcs[i], funcs[j] = funcs[j], funcs[i]
	}
	return callAll(funcs)
}

func callAll(funcs []uintptr) error {
	for _, fn := range funcs {
		// 0 and -1 are placeholders left by the static linker
		if fn == 0 || fn == ^uintptr(0) {
			continue
		}
		if _, err := libdl.Call(fn); err != nil {
			return err
		}
	}
	return nil
}

func Mmap(size int) ([]byte, error) {
	return mmap.Mmap(size)
}

func Munmap(b []byte) error {
	return mmap.Munmap(b)
}
