package elf64

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLayout(t *testing.T) {
	b := make([]byte, HeaderSize)
	copy(b, elf.ELFMAG)
	b[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	b[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	b[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	b[18] = byte(elf.EM_X86_64)
	b[40] = 0x40 // e_shoff
	b[58] = SectionHeaderSize
	b[60] = 3 // e_shnum

	h := DecodeHeader(b)
	assert.True(t, h.HasMagic())
	assert.Equal(t, elf.ELFCLASS64, h.Class())
	assert.Equal(t, elf.ELFDATA2LSB, h.Data())
	assert.Equal(t, elf.EM_X86_64, h.Machine)
	assert.Equal(t, uint64(0x40), h.Shoff)
	assert.Equal(t, uint16(SectionHeaderSize), h.Shentsize)
	assert.Equal(t, uint16(3), h.Shnum)

	out := make([]byte, HeaderSize)
	h.Put(out)
	assert.Equal(t, b, out)
}

func TestSymbolInfo(t *testing.T) {
	sym := Symbol{
		Name:  7,
		Info:  elf.ST_INFO(elf.STB_WEAK, elf.STT_FUNC),
		Other: byte(elf.STV_HIDDEN),
		Shndx: 12,
		Value: 0x1234,
		Size:  16,
	}
	b := make([]byte, 2*SymbolSize)
	sym.Put(b[SymbolSize:])

	syms := DecodeSymbols(b)
	require.Len(t, syms, 2)
	assert.Equal(t, sym, syms[1])
	assert.Equal(t, elf.STB_WEAK, syms[1].Bind())
	assert.Equal(t, elf.STT_FUNC, syms[1].Type())
	assert.Equal(t, elf.STV_HIDDEN, syms[1].Visibility())
	assert.True(t, syms[1].Defined())
	assert.False(t, syms[0].Defined())
}

func TestSymbolReservedIndexIsNotDefined(t *testing.T) {
	for _, idx := range []elf.SectionIndex{elf.SHN_UNDEF, elf.SHN_LORESERVE, elf.SHN_ABS, elf.SHN_COMMON, elf.SHN_XINDEX} {
		sym := Symbol{Shndx: idx}
		assert.False(t, sym.Defined(), "index 0x%x", uint16(idx))
	}
	sym := Symbol{Shndx: elf.SHN_LORESERVE - 1}
	assert.True(t, sym.Defined())
}

func TestRelaInfoSplit(t *testing.T) {
	r := Rela{Offset: 0x10, Info: RelaInfo(5, uint32(elf.R_X86_64_JMP_SLOT)), Addend: -8}
	b := make([]byte, RelaSize)
	r.Put(b)

	relas := DecodeRelas(b)
	require.Len(t, relas, 1)
	assert.Equal(t, uint32(5), relas[0].Sym())
	assert.Equal(t, uint32(elf.R_X86_64_JMP_SLOT), relas[0].Type())
	assert.Equal(t, int64(-8), relas[0].Addend)
}

func TestDecodeDynsStopsAtNull(t *testing.T) {
	b := make([]byte, 4*DynSize)
	entries := []Dyn{{Tag: elf.DT_NEEDED, Val: 1}, {Tag: elf.DT_INIT_ARRAYSZ, Val: 8}, {Tag: elf.DT_NULL}, {Tag: elf.DT_SONAME, Val: 3}}
	for i := range entries {
		entries[i].Put(b[i*DynSize:])
	}
	dyns := DecodeDyns(b)
	assert.Equal(t, entries[:2], dyns)
}

func TestDecodeAddresses(t *testing.T) {
	b := make([]byte, 2*AddrSize+3)
	PutAddress(b, 0x1000)
	PutAddress(b[AddrSize:], 0xdeadbeef)
	assert.Equal(t, []uint64{0x1000, 0xdeadbeef}, DecodeAddresses(b))
}
