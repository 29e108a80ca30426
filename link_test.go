package elfloader

import (
	"bytes"
	"debug/elf"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eh-steve/elfloader/internal/elftest"
	"github.com/eh-steve/elfloader/libdl"
)

func TestResolveShims(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs a glibc host")
	}
	img, err := Load(bytes.NewReader(elftest.SharedObject(elf.EM_X86_64).Bytes()), Config{})
	require.NoError(t, err)
	defer img.Close()

	shims, err := ResolveShims(img, []string{"libc.so.6"})
	if strings.Contains(errString(err), "requires cgo") {
		t.Skip(err)
	}
	require.ErrorIs(t, err, libdl.ErrNotFound)
	require.Contains(t, err.Error(), `"foo"`)
	require.Contains(t, shims, "bar")
	require.Equal(t, uintptr(0), shims["bar"], "weak import bound to null")
	require.Equal(t, []string{"foo"}, UnresolvedSymbols(img, shims))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func TestRunModule(t *testing.T) {
	if runtime.GOOS != "linux" || runtime.GOARCH != "amd64" {
		t.Skip("fixture code is x86-64")
	}
	if _, err := libdl.Open(""); err != nil {
		t.Skip(err)
	}
	module, err := LoadModule(bytes.NewReader(elftest.SharedObject(elf.EM_X86_64).Bytes()),
		map[string]uintptr{"foo": 0, "bar": 0}, Config{})
	require.NoError(t, err)
	defer module.Close()

	require.NoError(t, MakeExecutable(module))
	require.NoError(t, RunInitFunctions(module))
	_, err = Call(module, "entry")
	require.NoError(t, err)
	require.NoError(t, RunFiniFunctions(module))

	_, err = Call(module, "missing")
	require.Error(t, err)
}

func TestDumpFacade(t *testing.T) {
	img, err := Load(bytes.NewReader(elftest.SharedObject(elf.EM_X86_64).Bytes()), Config{})
	require.NoError(t, err)
	defer img.Close()

	var out bytes.Buffer
	require.NoError(t, Dump(img, &out))
	require.Contains(t, out.String(), "libc.so.6")
}

func TestMmapFacade(t *testing.T) {
	b, err := Mmap(100)
	require.NoError(t, err)
	require.Len(t, b, 100)
	require.NoError(t, Munmap(b))
}
