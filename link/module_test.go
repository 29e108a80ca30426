package link

import (
	"bytes"
	"debug/elf"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eh-steve/elfloader/elf64"
	"github.com/eh-steve/elfloader/internal/elftest"
)

// singleRelocation builds an image of 0x40 bytes with one relocation.
func singleRelocation(machine elf.Machine, rela elf64.Rela) []byte {
	b := elftest.New(machine)
	b.Load(0, 0x40, 0x40, elf.PF_R|elf.PF_W)

	var dynstr elftest.StringTable
	syms := elftest.Symbols(
		elf64.Symbol{},
		elf64.Symbol{Name: dynstr.Add("foo"), Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC)},
	)
	b.Add(".dynsym", elf64.SectionHeader{Type: elf.SHT_DYNSYM, Link: 2, Entsize: elf64.SymbolSize}, syms)
	b.Add(".dynstr", elf64.SectionHeader{Type: elf.SHT_STRTAB}, dynstr.Bytes())
	b.Add(".rela.dyn", elf64.SectionHeader{Type: elf.SHT_RELA, Link: 1, Entsize: elf64.RelaSize}, elftest.Relas(rela))
	return b.Bytes()
}

func TestRelativeRelocation(t *testing.T) {
	relative, _, _ := elftest.RelocationTypes(elf.EM_X86_64)
	data := singleRelocation(elf.EM_X86_64, elf64.Rela{Offset: 0x10, Info: elf64.RelaInfo(0, relative), Addend: 0x20})

	module, err := LoadModule(bytes.NewReader(data), nil, Config{Allocator: HeapAllocator})
	require.NoError(t, err)
	defer module.Close()

	space := module.AddressSpace()
	require.Equal(t, uint64(module.Base())+0x20, elf64.Address(space[0x10:]))
	require.Equal(t, make([]byte, 0x10), space[:0x10])
}

func TestJumpSlotRelocation(t *testing.T) {
	_, _, jumpSlot := elftest.RelocationTypes(elf.EM_X86_64)
	data := singleRelocation(elf.EM_X86_64, elf64.Rela{Offset: 0x18, Info: elf64.RelaInfo(1, jumpSlot)})

	module, err := LoadModule(bytes.NewReader(data), map[string]uintptr{"foo": 0xDEADBEEF}, Config{Allocator: HeapAllocator})
	require.NoError(t, err)
	require.Equal(t, uint64(0xDEADBEEF), elf64.Address(module.AddressSpace()[0x18:]))
	require.NoError(t, module.Close())

	alloc := &countingAllocator{}
	_, err = LoadModule(bytes.NewReader(data), map[string]uintptr{}, Config{Allocator: alloc})
	require.ErrorIs(t, err, ErrUnresolvedSymbol)
	var linkErr *LinkError
	require.True(t, errors.As(err, &linkErr))
	require.Equal(t, "foo", linkErr.Symbol)
	require.Equal(t, 1, alloc.frees, "a failed load releases its address space")
}

func TestUnexpectedRelocationType(t *testing.T) {
	data := singleRelocation(elf.EM_X86_64, elf64.Rela{Offset: 0x8, Info: elf64.RelaInfo(0, uint32(elf.R_X86_64_IRELATIVE))})

	_, err := LoadModule(bytes.NewReader(data), nil, Config{Allocator: HeapAllocator})
	require.ErrorIs(t, err, ErrUnexpectedRelocationType)
	var linkErr *LinkError
	require.True(t, errors.As(err, &linkErr))
	require.Equal(t, uint32(elf.R_X86_64_IRELATIVE), linkErr.Type)
	require.Contains(t, err.Error(), "R_X86_64_IRELATIVE")
	require.Contains(t, err.Error(), "(37)")

	// parsing alone accepts any type
	img, err := Load(bytes.NewReader(data), Config{})
	require.NoError(t, err)
	require.Equal(t, uint32(elf.R_X86_64_IRELATIVE), img.Relocations()[0].Relocations[0].Type)
}

func TestRelocationOutsideAddressSpace(t *testing.T) {
	relative, _, _ := elftest.RelocationTypes(elf.EM_X86_64)
	data := singleRelocation(elf.EM_X86_64, elf64.Rela{Offset: 0x3c, Info: elf64.RelaInfo(0, relative)})

	_, err := LoadModule(bytes.NewReader(data), nil, Config{Allocator: HeapAllocator})
	require.ErrorIs(t, err, ErrSectionOutOfRange)
}

func loadModuleFixture(t *testing.T, machine elf.Machine, conf Config) *Module {
	t.Helper()
	conf.Machine = machine
	data := elftest.SharedObject(machine).Bytes()
	module, err := LoadModule(bytes.NewReader(data), map[string]uintptr{"foo": 0xDEADBEEF, "bar": 0}, conf)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, module.Close()) })
	return module
}

func TestLoadModule(t *testing.T) {
	for _, machine := range []elf.Machine{elf.EM_X86_64, elf.EM_AARCH64} {
		t.Run(machine.String(), func(t *testing.T) {
			module := loadModuleFixture(t, machine, Config{})
			base := module.Base()
			space := module.AddressSpace()

			require.Equal(t, elftest.MemorySize, module.Size())
			require.Equal(t, uint64(0xDEADBEEF), elf64.Address(space[elftest.FooSlot:]))
			require.Equal(t, uint64(0), elf64.Address(space[elftest.BarSlot:]), "weak symbol bound to null")

			inits, err := module.InitFunctions()
			require.NoError(t, err)
			require.Equal(t, []uintptr{base + elftest.EntryAddr}, inits)
			finis, err := module.FiniFunctions()
			require.NoError(t, err)
			require.Equal(t, []uintptr{base + elftest.HelperAddr}, finis)

			entry, err := module.EntryPointAddress("entry")
			require.NoError(t, err)
			require.Equal(t, base+elftest.EntryAddr, entry)
			require.Equal(t, byte(0xc3), space[entry-base])

			helper, err := module.EntryPointAddress("helper")
			require.NoError(t, err)
			require.Equal(t, base+elftest.HelperAddr, helper)

			_, err = module.EntryPointAddress("missing")
			require.ErrorIs(t, err, ErrSymbolNotFound)
		})
	}
}

func TestRelocationDebugWriter(t *testing.T) {
	var trace bytes.Buffer
	loadModuleFixture(t, elf.EM_X86_64, Config{RelocationDebugWriter: &trace})

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "RELOCATING "), line)
	}
	require.Contains(t, lines[0], "R_X86_64_RELATIVE")
	require.Contains(t, lines[2], "R_X86_64_GLOB_DAT")
	require.Contains(t, lines[3], "R_X86_64_JMP_SLOT")
	require.True(t, strings.HasSuffix(lines[3], " foo"))
}

func TestCloseIsIdempotent(t *testing.T) {
	alloc := &countingAllocator{}
	data := elftest.SharedObject(elf.EM_X86_64).Bytes()
	module, err := LoadModule(bytes.NewReader(data), map[string]uintptr{"foo": 1, "bar": 2}, Config{Allocator: alloc})
	require.NoError(t, err)
	require.NoError(t, module.Close())
	require.NoError(t, module.Close())
	require.Equal(t, 1, alloc.frees)
	require.Nil(t, module.AddressSpace())
}
