//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd
// +build darwin dragonfly freebsd linux openbsd solaris netbsd

package mprotect

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/eh-steve/elfloader/mmap"
)

// protect changes the protection of whole pages. The pages must belong to a
// live mapping made by mmap.Mmap.
func protect(addr uintptr, length int, prot int) error {
	start, size, err := pageRange(addr, length)
	if err != nil || size == 0 {
		return err
	}
	pages, ok := mmap.Containing(start, size)
	if !ok {
		return fmt.Errorf("[0x%x, 0x%x) is not inside a mapping made by mmap.Mmap", start, start+uintptr(size))
	}
	if err := unix.Mprotect(pages, prot); err != nil {
		return os.NewSyscallError("mprotect", err)
	}
	return nil
}

// MakeExecutable marks every page overlapping [addr, addr+length) readable,
// writable and executable.
func MakeExecutable(addr uintptr, length int) error {
	return protect(addr, length, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC)
}

// MakeWritable drops execute permission from the pages overlapping
// [addr, addr+length).
func MakeWritable(addr uintptr, length int) error {
	return protect(addr, length, unix.PROT_READ|unix.PROT_WRITE)
}
