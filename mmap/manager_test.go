package mmap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestMmapManager(t *testing.T) {
	data, err := Mmap(215123)
	require.NoError(t, err)
	require.Len(t, data, 215123)
	require.Equal(t, 0, cap(data)%PageSize())

	data2, err := Mmap(215123)
	require.NoError(t, err)
	require.NotEqual(t, unsafe.Pointer(&data[0]), unsafe.Pointer(&data2[0]))

	for _, c := range data {
		if c != 0 {
			t.Fatal("fresh mapping is not zeroed")
		}
	}
	data[len(data)-1] = 0xAA

	size, ok := Mapped(uintptr(unsafe.Pointer(&data[0])))
	require.True(t, ok)
	require.Equal(t, cap(data), size)

	require.NoError(t, Munmap(data))
	require.NoError(t, Munmap(data2))

	_, ok = Mapped(uintptr(unsafe.Pointer(&data[0])))
	require.False(t, ok)
}

func TestMunmapUnknown(t *testing.T) {
	b := make([]byte, 16)
	require.Error(t, Munmap(b))
	require.NoError(t, Munmap(nil))
}

func TestAllocator(t *testing.T) {
	var a Allocator
	b, err := a.Alloc(10)
	require.NoError(t, err)
	require.Len(t, b, 10)
	require.NoError(t, a.Free(b))
}

func TestRoundPage(t *testing.T) {
	require.Equal(t, 0, roundPageUp(0))
	require.Equal(t, pageSize, roundPageUp(1))
	require.Equal(t, pageSize, roundPageUp(pageSize))
	require.Equal(t, 2*pageSize, roundPageUp(pageSize+1))
}

func TestContaining(t *testing.T) {
	data, err := Mmap(2 * PageSize())
	require.NoError(t, err)
	start := uintptr(unsafe.Pointer(&data[0]))

	b, ok := Containing(start+16, PageSize())
	require.True(t, ok)
	require.Len(t, b, PageSize())
	require.Equal(t, start+16, uintptr(unsafe.Pointer(&b[0])))

	_, ok = Containing(start+uintptr(PageSize()), 2*PageSize())
	require.False(t, ok)

	require.NoError(t, Munmap(data))
	_, ok = Containing(start, 1)
	require.False(t, ok)
}
