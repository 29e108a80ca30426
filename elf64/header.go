// Package elf64 decodes the fixed-layout records of little-endian ELF64
// objects. Every decoder reads fields at explicit offsets so the result does
// not depend on host struct layout.
package elf64

import (
	"debug/elf"
	"encoding/binary"
)

// record sizes
const (
	HeaderSize        = 64
	SectionHeaderSize = 64
	ProgramHeaderSize = 56
	SymbolSize        = 24
	RelaSize          = 24
	RelSize           = 16
	DynSize           = 16
	AddrSize          = 8
)

var byteOrder = binary.LittleEndian

type Header struct {
	Ident     [elf.EI_NIDENT]byte
	Type      elf.Type
	Machine   elf.Machine
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

func (h *Header) HasMagic() bool {
	return string(h.Ident[:len(elf.ELFMAG)]) == elf.ELFMAG
}

func (h *Header) Class() elf.Class {
	return elf.Class(h.Ident[elf.EI_CLASS])
}

func (h *Header) Data() elf.Data {
	return elf.Data(h.Ident[elf.EI_DATA])
}

func (h *Header) IdentVersion() elf.Version {
	return elf.Version(h.Ident[elf.EI_VERSION])
}

func (h *Header) OSABI() elf.OSABI {
	return elf.OSABI(h.Ident[elf.EI_OSABI])
}

func DecodeHeader(b []byte) Header {
	_ = b[HeaderSize-1] // early bounds check to guarantee safety of reads below
	var h Header
	copy(h.Ident[:], b[:elf.EI_NIDENT])
	h.Type = elf.Type(byteOrder.Uint16(b[16:]))
	h.Machine = elf.Machine(byteOrder.Uint16(b[18:]))
	h.Version = byteOrder.Uint32(b[20:])
	h.Entry = byteOrder.Uint64(b[24:])
	h.Phoff = byteOrder.Uint64(b[32:])
	h.Shoff = byteOrder.Uint64(b[40:])
	h.Flags = byteOrder.Uint32(b[48:])
	h.Ehsize = byteOrder.Uint16(b[52:])
	h.Phentsize = byteOrder.Uint16(b[54:])
	h.Phnum = byteOrder.Uint16(b[56:])
	h.Shentsize = byteOrder.Uint16(b[58:])
	h.Shnum = byteOrder.Uint16(b[60:])
	h.Shstrndx = byteOrder.Uint16(b[62:])
	return h
}

func (h *Header) Put(b []byte) {
	_ = b[HeaderSize-1]
	copy(b, h.Ident[:])
	byteOrder.PutUint16(b[16:], uint16(h.Type))
	byteOrder.PutUint16(b[18:], uint16(h.Machine))
	byteOrder.PutUint32(b[20:], h.Version)
	byteOrder.PutUint64(b[24:], h.Entry)
	byteOrder.PutUint64(b[32:], h.Phoff)
	byteOrder.PutUint64(b[40:], h.Shoff)
	byteOrder.PutUint32(b[48:], h.Flags)
	byteOrder.PutUint16(b[52:], h.Ehsize)
	byteOrder.PutUint16(b[54:], h.Phentsize)
	byteOrder.PutUint16(b[56:], h.Phnum)
	byteOrder.PutUint16(b[58:], h.Shentsize)
	byteOrder.PutUint16(b[60:], h.Shnum)
	byteOrder.PutUint16(b[62:], h.Shstrndx)
}

// PutAddress writes an 8-byte little-endian address.
func PutAddress(b []byte, addr uint64) {
	byteOrder.PutUint64(b, addr)
}

func Address(b []byte) uint64 {
	return byteOrder.Uint64(b)
}

// DecodeAddresses decodes an array of 8-byte addresses, such as the contents
// of an init or fini array section. Trailing bytes short of a full entry are
// ignored.
func DecodeAddresses(b []byte) []uint64 {
	addrs := make([]uint64, len(b)/AddrSize)
	for i := range addrs {
		addrs[i] = byteOrder.Uint64(b[i*AddrSize:])
	}
	return addrs
}
