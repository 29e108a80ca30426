package elf64

import "debug/elf"

type SectionHeader struct {
	Name      uint32
	Type      elf.SectionType
	Flags     elf.SectionFlag
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// Resident reports whether the section's bytes live inside a loaded segment.
func (s *SectionHeader) Resident() bool {
	return s.Addr != 0
}

func DecodeSectionHeader(b []byte) SectionHeader {
	_ = b[SectionHeaderSize-1]
	return SectionHeader{
		Name:      byteOrder.Uint32(b[0:]),
		Type:      elf.SectionType(byteOrder.Uint32(b[4:])),
		Flags:     elf.SectionFlag(byteOrder.Uint64(b[8:])),
		Addr:      byteOrder.Uint64(b[16:]),
		Offset:    byteOrder.Uint64(b[24:]),
		Size:      byteOrder.Uint64(b[32:]),
		Link:      byteOrder.Uint32(b[40:]),
		Info:      byteOrder.Uint32(b[44:]),
		Addralign: byteOrder.Uint64(b[48:]),
		Entsize:   byteOrder.Uint64(b[56:]),
	}
}

func (s *SectionHeader) Put(b []byte) {
	_ = b[SectionHeaderSize-1]
	byteOrder.PutUint32(b[0:], s.Name)
	byteOrder.PutUint32(b[4:], uint32(s.Type))
	byteOrder.PutUint64(b[8:], uint64(s.Flags))
	byteOrder.PutUint64(b[16:], s.Addr)
	byteOrder.PutUint64(b[24:], s.Offset)
	byteOrder.PutUint64(b[32:], s.Size)
	byteOrder.PutUint32(b[40:], s.Link)
	byteOrder.PutUint32(b[44:], s.Info)
	byteOrder.PutUint64(b[48:], s.Addralign)
	byteOrder.PutUint64(b[56:], s.Entsize)
}

type ProgramHeader struct {
	Type   elf.ProgType
	Flags  elf.ProgFlag
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

func DecodeProgramHeader(b []byte) ProgramHeader {
	_ = b[ProgramHeaderSize-1]
	return ProgramHeader{
		Type:   elf.ProgType(byteOrder.Uint32(b[0:])),
		Flags:  elf.ProgFlag(byteOrder.Uint32(b[4:])),
		Offset: byteOrder.Uint64(b[8:]),
		Vaddr:  byteOrder.Uint64(b[16:]),
		Paddr:  byteOrder.Uint64(b[24:]),
		Filesz: byteOrder.Uint64(b[32:]),
		Memsz:  byteOrder.Uint64(b[40:]),
		Align:  byteOrder.Uint64(b[48:]),
	}
}

func (p *ProgramHeader) Put(b []byte) {
	_ = b[ProgramHeaderSize-1]
	byteOrder.PutUint32(b[0:], uint32(p.Type))
	byteOrder.PutUint32(b[4:], uint32(p.Flags))
	byteOrder.PutUint64(b[8:], p.Offset)
	byteOrder.PutUint64(b[16:], p.Vaddr)
	byteOrder.PutUint64(b[24:], p.Paddr)
	byteOrder.PutUint64(b[32:], p.Filesz)
	byteOrder.PutUint64(b[40:], p.Memsz)
	byteOrder.PutUint64(b[48:], p.Align)
}
