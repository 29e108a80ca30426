//go:build windows
// +build windows

package mprotect

import (
	"os"

	"golang.org/x/sys/windows"
)

func protect(addr uintptr, length int, prot uint32) error {
	start, size, err := pageRange(addr, length)
	if err != nil || size == 0 {
		return err
	}
	var old uint32
	if err := windows.VirtualProtect(start, uintptr(size), prot, &old); err != nil {
		return os.NewSyscallError("VirtualProtect", err)
	}
	return nil
}

// MakeExecutable marks every page overlapping [addr, addr+length) readable,
// writable and executable.
func MakeExecutable(addr uintptr, length int) error {
	return protect(addr, length, windows.PAGE_EXECUTE_READWRITE)
}

// MakeWritable drops execute permission from the pages overlapping
// [addr, addr+length).
func MakeWritable(addr uintptr, length int) error {
	return protect(addr, length, windows.PAGE_READWRITE)
}
