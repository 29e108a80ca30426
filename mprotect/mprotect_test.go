package mprotect

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/eh-steve/elfloader/mmap"
)

func TestPageRange(t *testing.T) {
	page := uintptr(mmap.PageSize())

	start, size, err := pageRange(page+1, 1)
	require.NoError(t, err)
	require.Equal(t, page, start)
	require.Equal(t, int(page), size)

	start, size, err = pageRange(page-1, 2)
	require.NoError(t, err)
	require.Equal(t, uintptr(0), start)
	require.Equal(t, int(2*page), size)

	_, size, err = pageRange(page, 0)
	require.NoError(t, err)
	require.Equal(t, 0, size)

	_, _, err = pageRange(page, -1)
	require.Error(t, err)
}

func TestMakeExecutable(t *testing.T) {
	b, err := mmap.Mmap(3 * mmap.PageSize())
	require.NoError(t, err)
	defer func() { require.NoError(t, mmap.Munmap(b)) }()

	addr := uintptr(unsafe.Pointer(&b[0]))
	require.NoError(t, MakeExecutable(addr+10, mmap.PageSize()))
	b[10] = 0xC3
	require.NoError(t, MakeWritable(addr, len(b)))
	require.Equal(t, byte(0xC3), b[10])
}

func TestMakeExecutableOutsideMapping(t *testing.T) {
	b, err := mmap.Mmap(mmap.PageSize())
	require.NoError(t, err)
	addr := uintptr(unsafe.Pointer(&b[0]))
	require.Error(t, MakeExecutable(addr, 2*mmap.PageSize()))
	require.NoError(t, mmap.Munmap(b))
	require.Error(t, MakeExecutable(addr, 1))
}
