package mprotect

import (
	"fmt"

	"github.com/eh-steve/elfloader/mmap"
)

// pageRange widens [addr, addr+length) to whole pages.
func pageRange(addr uintptr, length int) (start uintptr, size int, err error) {
	if length < 0 {
		return 0, 0, fmt.Errorf("negative length %d", length)
	}
	page := uintptr(mmap.PageSize())
	start = addr &^ (page - 1)
	end := (addr + uintptr(length) + page - 1) &^ (page - 1)
	if end < start {
		return 0, 0, fmt.Errorf("range 0x%x+0x%x wraps the address space", addr, length)
	}
	return start, int(end - start), nil
}
