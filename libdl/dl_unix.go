//go:build cgo && (darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd)
// +build cgo
// +build darwin dragonfly freebsd linux openbsd solaris netbsd

package libdl

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
#include <stdint.h>

static uintptr_t dlOpen(const char* name, char** err) {
	void* h = dlopen(name, RTLD_NOW|RTLD_GLOBAL);
	if (h == NULL) {
		*err = (char*)dlerror();
	}
	return (uintptr_t)h;
}

static void* dlLookup(uintptr_t h, const char* name, char** err) {
	dlerror();
	void* r = dlsym((void*)h, name);
	if (r == NULL) {
		*err = (char*)dlerror();
	}
	return r;
}

static int closeHandle(uintptr_t h, char** err) {
	int r = dlclose((void*)h);
	if (r != 0) {
		*err = (char*)dlerror();
	}
	return r;
}

typedef uintptr_t (*fn6)(uintptr_t, uintptr_t, uintptr_t, uintptr_t, uintptr_t, uintptr_t);

static uintptr_t call6(uintptr_t fn, uintptr_t a0, uintptr_t a1, uintptr_t a2, uintptr_t a3, uintptr_t a4, uintptr_t a5) {
	return ((fn6)fn)(a0, a1, a2, a3, a4, a5);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

func cError(cErr *C.char) error {
	if cErr == nil {
		return errors.New("unknown dynamic linker error")
	}
	return errors.New(C.GoString(cErr))
}

// Open loads the shared library libName. An empty name opens the main
// program.
func Open(libName string) (uintptr, error) {
	var cName *C.char
	if libName != "" {
		cName = C.CString(libName)
		defer C.free(unsafe.Pointer(cName))
	}
	var cErr *C.char
	h := C.dlOpen(cName, &cErr)
	if h == 0 {
		return 0, fmt.Errorf("failed to open %q: %w", libName, cError(cErr))
	}
	return uintptr(h), nil
}

func LookupSymbol(handle uintptr, symName string) (uintptr, error) {
	cName := C.CString(symName)
	defer C.free(unsafe.Pointer(cName))
	var cErr *C.char
	addr := C.dlLookup(C.uintptr_t(handle), cName, &cErr)
	if addr == nil {
		return 0, fmt.Errorf("failed to lookup symbol %s: %w", symName, cError(cErr))
	}
	return uintptr(addr), nil
}

func Close(handle uintptr) error {
	var cErr *C.char
	if C.closeHandle(C.uintptr_t(handle), &cErr) != 0 {
		return cError(cErr)
	}
	return nil
}

// Call invokes the C function at fn with up to MaxArgs integer arguments and
// returns its integer result. Unused argument registers are passed as zero.
func Call(fn uintptr, args ...uintptr) (uintptr, error) {
	if len(args) > MaxArgs {
		return 0, ErrTooManyArgs
	}
	var a [MaxArgs]C.uintptr_t
	for i, arg := range args {
		a[i] = C.uintptr_t(arg)
	}
	r := C.call6(C.uintptr_t(fn), a[0], a[1], a[2], a[3], a[4], a[5])
	return uintptr(r), nil
}
