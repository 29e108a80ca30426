//go:build cgo && linux
// +build cgo,linux

package libdl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenLookupCall(t *testing.T) {
	h, err := Open("libc.so.6")
	require.NoError(t, err)
	defer func() { require.NoError(t, Close(h)) }()

	abs, err := LookupSymbol(h, "labs")
	require.NoError(t, err)
	n := -42
	r, err := Call(abs, uintptr(n))
	require.NoError(t, err)
	require.Equal(t, uintptr(42), r)

	_, err = LookupSymbol(h, "definitely_not_a_libc_symbol")
	require.Error(t, err)

	_, err = Call(abs, 1, 2, 3, 4, 5, 6, 7)
	require.ErrorIs(t, err, ErrTooManyArgs)
}

func TestResolve(t *testing.T) {
	h, err := Open("libc.so.6")
	require.NoError(t, err)
	defer func() { require.NoError(t, Close(h)) }()

	shims, err := Resolve([]uintptr{h}, []string{"strlen", "definitely_not_a_libc_symbol"})
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, shims, "strlen")
	require.NotContains(t, shims, "definitely_not_a_libc_symbol")
}
