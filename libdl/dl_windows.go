//go:build windows
// +build windows

package libdl

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

func Open(dllName string) (uintptr, error) {
	if dllName == "" {
		var h windows.Handle
		if err := windows.GetModuleHandleEx(0, nil, &h); err != nil {
			return 0, fmt.Errorf("failed to open main program: %w", err)
		}
		return uintptr(h), nil
	}
	h, err := windows.LoadLibrary(dllName)
	if err != nil {
		return 0, fmt.Errorf("failed to open %q: %w", dllName, err)
	}
	return uintptr(h), nil
}

func LookupSymbol(h uintptr, symName string) (uintptr, error) {
	addr, err := windows.GetProcAddress(windows.Handle(h), symName)
	if err != nil {
		return 0, fmt.Errorf("failed to lookup symbol %s: %w", symName, err)
	}
	return addr, nil
}

func Close(h uintptr) error {
	return windows.FreeLibrary(windows.Handle(h))
}

func Call(fn uintptr, args ...uintptr) (uintptr, error) {
	if len(args) > MaxArgs {
		return 0, ErrTooManyArgs
	}
	r, _, _ := syscall.SyscallN(fn, args...)
	return r, nil
}
