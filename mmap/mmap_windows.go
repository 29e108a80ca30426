//go:build windows
// +build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Mmap commits size bytes of zeroed read/write memory.
func Mmap(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	rounded := roundPageUp(size)
	addr, err := windows.VirtualAlloc(0, uintptr(rounded),
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, os.NewSyscallError("VirtualAlloc", err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), rounded)
	track(data)
	return data[:size], nil
}

// Munmap releases a mapping returned by Mmap.
func Munmap(b []byte) error {
	if cap(b) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&b[:1][0]))
	if _, err := untrack(addr); err != nil {
		return err
	}
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return os.NewSyscallError("VirtualFree", err)
	}
	return nil
}
