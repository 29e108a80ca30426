// Package elftest builds small ELF64 images in memory for tests.
package elftest

import (
	"debug/elf"

	"github.com/eh-steve/elfloader/elf64"
)

// memoryOffset is the file offset of the loadable memory image.
const memoryOffset = elf64.HeaderSize

// Section is a section to be emitted. Header.Name and, for non-resident
// sections, Header.Offset are assigned by Builder.Bytes. Header.Size
// defaults to len(Data).
type Section struct {
	Name   string
	Header elf64.SectionHeader
	Data   []byte
}

// Builder lays out an ELF64 file as: header, memory image, non-resident
// section data, program headers, section headers. The memory image is what
// PT_LOAD segments map; resident sections are written into it at their
// address.
type Builder struct {
	Header   elf64.Header
	Memory   []byte
	Segments []elf64.ProgramHeader
	Sections []Section

	// NoSectionNames suppresses the trailing .shstrtab.
	NoSectionNames bool
}

// New returns a builder with a valid header for machine and the null
// section.
func New(machine elf.Machine) *Builder {
	var h elf64.Header
	copy(h.Ident[:], elf.ELFMAG)
	h.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	h.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	h.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	h.Type = elf.ET_DYN
	h.Machine = machine
	h.Version = uint32(elf.EV_CURRENT)
	h.Ehsize = elf64.HeaderSize
	h.Phentsize = elf64.ProgramHeaderSize
	h.Shentsize = elf64.SectionHeaderSize
	return &Builder{
		Header:   h,
		Sections: []Section{{}},
	}
}

// Load adds a PT_LOAD segment mapping [vaddr, vaddr+filesz) of the memory
// image, growing the image as needed.
func (b *Builder) Load(vaddr, filesz, memsz uint64, flags elf.ProgFlag) {
	if end := vaddr + filesz; end > uint64(len(b.Memory)) {
		b.Memory = append(b.Memory, make([]byte, end-uint64(len(b.Memory)))...)
	}
	b.Segments = append(b.Segments, elf64.ProgramHeader{
		Type:   elf.PT_LOAD,
		Flags:  flags,
		Offset: memoryOffset + vaddr,
		Vaddr:  vaddr,
		Paddr:  vaddr,
		Filesz: filesz,
		Memsz:  memsz,
		Align:  8,
	})
}

// Add appends a section and returns its index. Data of a resident
// non-NOBITS section is copied into the memory image at Header.Addr.
func (b *Builder) Add(name string, h elf64.SectionHeader, data []byte) int {
	if h.Size == 0 {
		h.Size = uint64(len(data))
	}
	if h.Addr != 0 && h.Type != elf.SHT_NOBITS {
		if end := h.Addr + uint64(len(data)); end > uint64(len(b.Memory)) {
			b.Memory = append(b.Memory, make([]byte, end-uint64(len(b.Memory)))...)
		}
		copy(b.Memory[h.Addr:], data)
	}
	b.Sections = append(b.Sections, Section{Name: name, Header: h, Data: data})
	return len(b.Sections) - 1
}

func align8(n uint64) uint64 {
	return (n + 7) &^ 7
}

// Bytes serializes the image. It fills in the header's offsets and counts
// and, unless NoSectionNames is set, appends .shstrtab as the last section.
func (b *Builder) Bytes() []byte {
	sections := append([]Section(nil), b.Sections...)
	h := b.Header

	var names StringTable
	for i := range sections {
		if i > 0 {
			sections[i].Header.Name = names.Add(sections[i].Name)
		}
	}
	if !b.NoSectionNames {
		shstrtab := Section{Name: ".shstrtab", Header: elf64.SectionHeader{Type: elf.SHT_STRTAB}}
		shstrtab.Header.Name = names.Add(shstrtab.Name)
		shstrtab.Data = names.Bytes()
		shstrtab.Header.Size = uint64(len(shstrtab.Data))
		sections = append(sections, shstrtab)
		h.Shstrndx = uint16(len(sections) - 1)
	}

	out := make([]byte, memoryOffset, memoryOffset+len(b.Memory))
	out = append(out, b.Memory...)
	for i := range sections {
		s := &sections[i]
		if s.Header.Addr != 0 {
			s.Header.Offset = memoryOffset + s.Header.Addr
			continue
		}
		if i == 0 || s.Header.Type == elf.SHT_NOBITS {
			continue
		}
		out = append(out, make([]byte, align8(uint64(len(out)))-uint64(len(out)))...)
		s.Header.Offset = uint64(len(out))
		out = append(out, s.Data...)
	}

	out = append(out, make([]byte, align8(uint64(len(out)))-uint64(len(out)))...)
	h.Phoff = uint64(len(out))
	h.Phnum = uint16(len(b.Segments))
	for i := range b.Segments {
		rec := make([]byte, elf64.ProgramHeaderSize)
		b.Segments[i].Put(rec)
		out = append(out, rec...)
	}
	if len(b.Segments) == 0 {
		h.Phoff = 0
	}

	h.Shoff = uint64(len(out))
	h.Shnum = uint16(len(sections))
	for i := range sections {
		rec := make([]byte, elf64.SectionHeaderSize)
		sections[i].Header.Put(rec)
		out = append(out, rec...)
	}

	h.Put(out[:elf64.HeaderSize])
	return out
}

// StringTable accumulates NUL terminated strings. Offset 0 is the empty
// string.
type StringTable struct {
	data []byte
}

func (t *StringTable) Add(s string) uint32 {
	if len(t.data) == 0 {
		t.data = []byte{0}
	}
	if s == "" {
		return 0
	}
	off := uint32(len(t.data))
	t.data = append(t.data, s...)
	t.data = append(t.data, 0)
	return off
}

func (t *StringTable) Bytes() []byte {
	if len(t.data) == 0 {
		return []byte{0}
	}
	return t.data
}

func Symbols(syms ...elf64.Symbol) []byte {
	b := make([]byte, len(syms)*elf64.SymbolSize)
	for i := range syms {
		syms[i].Put(b[i*elf64.SymbolSize:])
	}
	return b
}

func Relas(relas ...elf64.Rela) []byte {
	b := make([]byte, len(relas)*elf64.RelaSize)
	for i := range relas {
		relas[i].Put(b[i*elf64.RelaSize:])
	}
	return b
}

func Dyns(dyns ...elf64.Dyn) []byte {
	b := make([]byte, len(dyns)*elf64.DynSize)
	for i := range dyns {
		dyns[i].Put(b[i*elf64.DynSize:])
	}
	return b
}

func Addresses(addrs ...uint64) []byte {
	b := make([]byte, len(addrs)*elf64.AddrSize)
	for i, addr := range addrs {
		elf64.PutAddress(b[i*elf64.AddrSize:], addr)
	}
	return b
}
