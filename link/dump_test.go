package link

import (
	"bytes"
	"debug/elf"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eh-steve/elfloader/elf64"
	"github.com/eh-steve/elfloader/internal/elftest"
)

func TestDump(t *testing.T) {
	img := loadFixture(t)

	var out bytes.Buffer
	require.NoError(t, Dump(img, &out))
	s := out.String()

	order := []string{
		"== Header ==",
		"== Sections ==",
		"== Program Headers ==",
		"== Symbol Table 8: .dynsym ==",
		"== Symbol Table 12: .symtab ==",
		"== Relocations 10: .rela.dyn",
		"== Relocations 11: .rela.plt",
		"== Init Array ==",
		"== Fini Array ==",
		"== Preinit Array ==",
		"== Needed ==",
		"== Dynamic ==",
	}
	last := -1
	for _, heading := range order {
		i := strings.Index(s, heading)
		require.Greater(t, i, last, heading)
		last = i
	}

	assert.Contains(t, s, "Machine: 62 (Advanced Micro Devices x86-64)")
	assert.Contains(t, s, "Type: 0x1 (program defined information)")
	assert.Contains(t, s, "Flags: 0x6 (AX)")
	assert.Contains(t, s, "Type: 0x1 (Loadable segment)")
	assert.Contains(t, s, "Flags: 0x7 (RWE)")
	assert.Contains(t, s, "bind 2 (WEAK)")
	assert.Contains(t, s, "vis 2 (HIDDEN)")
	assert.Contains(t, s, "section 1 (.text)")
	assert.Contains(t, s, "section 65521 (ABS)")
	assert.Contains(t, s, "type 7 (R_X86_64_JMP_SLOT) symbol 1 foo")
	assert.Contains(t, s, "libm.so.6")
	assert.Contains(t, s, "tag 0x1 (DT_NEEDED)")
}

func TestDumpUnknownCodes(t *testing.T) {
	b := elftest.New(elf.EM_X86_64)
	b.Load(0, 0x10, 0x10, elf.PF_R|0x100000)
	b.Segments = append(b.Segments, elf64.ProgramHeader{Type: 0x60001234})
	b.Add(".weird", elf64.SectionHeader{Type: 0x60005678, Flags: 0x10000000}, []byte{0})

	var dynstr elftest.StringTable
	b.Add(".dynsym", elf64.SectionHeader{Type: elf.SHT_DYNSYM, Link: 3}, elftest.Symbols(
		elf64.Symbol{},
		elf64.Symbol{Name: dynstr.Add("odd"), Info: 0xff, Other: 0x3, Shndx: 0xff00},
	))
	b.Add(".dynstr", elf64.SectionHeader{Type: elf.SHT_STRTAB}, dynstr.Bytes())
	b.Add(".rela", elf64.SectionHeader{Type: elf.SHT_RELA, Link: 2}, elftest.Relas(
		elf64.Rela{Offset: 0x8, Info: elf64.RelaInfo(1, 0x99)},
	))

	img, err := Load(bytes.NewReader(b.Bytes()), Config{})
	require.NoError(t, err)
	defer img.Close()

	var out bytes.Buffer
	require.NoError(t, img.Dump(&out))
	s := out.String()

	assert.Contains(t, s, "Type: 0x60005678 (Unknown)")
	assert.Contains(t, s, "Flags: 0x10000000 (?)")
	assert.Contains(t, s, "Type: 0x60001234 (Unknown)")
	assert.Contains(t, s, "Flags: 0x100004 (R?)")
	assert.Contains(t, s, "bind 15 (Unknown) type 15 (Unknown)")
	assert.Contains(t, s, "section 65280 (Unknown)")
	assert.Contains(t, s, "type 153 (Unknown)")
}

func TestDumpDemangle(t *testing.T) {
	b := elftest.New(elf.EM_X86_64)
	b.Load(0, 0x10, 0x10, elf.PF_R|elf.PF_X)
	var strtab elftest.StringTable
	b.Add(".text", elf64.SectionHeader{Type: elf.SHT_PROGBITS, Addr: 0x8, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR}, []byte{0xc3})
	b.Add(".symtab", elf64.SectionHeader{Type: elf.SHT_SYMTAB, Link: 3}, elftest.Symbols(
		elf64.Symbol{},
		elf64.Symbol{Name: strtab.Add("_ZN3foo3barEv"), Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC), Shndx: 1, Value: 0x8},
	))
	b.Add(".strtab", elf64.SectionHeader{Type: elf.SHT_STRTAB}, strtab.Bytes())
	data := b.Bytes()

	for _, tt := range []struct {
		demangle bool
		want     string
	}{
		{false, "_ZN3foo3barEv"},
		{true, "foo::bar()"},
	} {
		img, err := Load(bytes.NewReader(data), Config{Demangle: tt.demangle})
		require.NoError(t, err)
		var out bytes.Buffer
		require.NoError(t, img.Dump(&out))
		assert.Contains(t, out.String(), "   1: "+tt.want+" ")
		require.NoError(t, img.Close())
	}
}

type failingWriter struct{ n int }

var errWrite = errors.New("write failed")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errWrite
	}
	w.n--
	return len(p), nil
}

func TestDumpWriteError(t *testing.T) {
	img := loadFixture(t)
	require.ErrorIs(t, img.Dump(&failingWriter{n: 3}), errWrite)
}
