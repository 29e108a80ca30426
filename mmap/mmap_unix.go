//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd
// +build darwin dragonfly freebsd linux openbsd solaris netbsd

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mmap maps size bytes of zeroed, private read/write memory.
func Mmap(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	data, err := unix.Mmap(-1, 0, roundPageUp(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, os.NewSyscallError("mmap", err)
	}
	track(data)
	return data[:size], nil
}

// Munmap releases a mapping returned by Mmap. b must start where the mapping
// starts; its length is ignored.
func Munmap(b []byte) error {
	if cap(b) == 0 {
		return nil
	}
	full, err := untrack(uintptr(unsafe.Pointer(&b[:1][0])))
	if err != nil {
		return err
	}
	if err := unix.Munmap(full); err != nil {
		return os.NewSyscallError("munmap", err)
	}
	return nil
}
