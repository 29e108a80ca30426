package elf64

import "debug/elf"

type Symbol struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx elf.SectionIndex
	Value uint64
	Size  uint64
}

func (s *Symbol) Bind() elf.SymBind {
	return elf.ST_BIND(s.Info)
}

func (s *Symbol) Type() elf.SymType {
	return elf.ST_TYPE(s.Info)
}

func (s *Symbol) Visibility() elf.SymVis {
	return elf.ST_VISIBILITY(s.Other)
}

// Defined reports whether the symbol lives in a real section of the object,
// that is, its index is neither SHN_UNDEF nor in the reserved range
// [SHN_LORESERVE, SHN_HIRESERVE].
func (s *Symbol) Defined() bool {
	return s.Shndx != elf.SHN_UNDEF && s.Shndx < elf.SHN_LORESERVE
}

// DecodeSymbols decodes len(b)/SymbolSize symbol records.
func DecodeSymbols(b []byte) []Symbol {
	syms := make([]Symbol, len(b)/SymbolSize)
	for i := range syms {
		r := b[i*SymbolSize : (i+1)*SymbolSize]
		syms[i] = Symbol{
			Name:  byteOrder.Uint32(r[0:]),
			Info:  r[4],
			Other: r[5],
			Shndx: elf.SectionIndex(byteOrder.Uint16(r[6:])),
			Value: byteOrder.Uint64(r[8:]),
			Size:  byteOrder.Uint64(r[16:]),
		}
	}
	return syms
}

func (s *Symbol) Put(b []byte) {
	_ = b[SymbolSize-1]
	byteOrder.PutUint32(b[0:], s.Name)
	b[4] = s.Info
	b[5] = s.Other
	byteOrder.PutUint16(b[6:], uint16(s.Shndx))
	byteOrder.PutUint64(b[8:], s.Value)
	byteOrder.PutUint64(b[16:], s.Size)
}

type Rela struct {
	Offset uint64
	Info   uint64
	Addend int64
}

func (r *Rela) Sym() uint32 {
	return uint32(r.Info >> 32)
}

func (r *Rela) Type() uint32 {
	return uint32(r.Info)
}

func RelaInfo(sym, typ uint32) uint64 {
	return uint64(sym)<<32 | uint64(typ)
}

func DecodeRelas(b []byte) []Rela {
	relas := make([]Rela, len(b)/RelaSize)
	for i := range relas {
		r := b[i*RelaSize:]
		relas[i] = Rela{
			Offset: byteOrder.Uint64(r[0:]),
			Info:   byteOrder.Uint64(r[8:]),
			Addend: int64(byteOrder.Uint64(r[16:])),
		}
	}
	return relas
}

func (r *Rela) Put(b []byte) {
	_ = b[RelaSize-1]
	byteOrder.PutUint64(b[0:], r.Offset)
	byteOrder.PutUint64(b[8:], r.Info)
	byteOrder.PutUint64(b[16:], uint64(r.Addend))
}

type Dyn struct {
	Tag elf.DynTag
	Val uint64
}

// DecodeDyns decodes dynamic entries up to, not including, the first
// DT_NULL.
func DecodeDyns(b []byte) []Dyn {
	var dyns []Dyn
	for off := 0; off+DynSize <= len(b); off += DynSize {
		d := Dyn{
			Tag: elf.DynTag(int64(byteOrder.Uint64(b[off:]))),
			Val: byteOrder.Uint64(b[off+8:]),
		}
		if d.Tag == elf.DT_NULL {
			break
		}
		dyns = append(dyns, d)
	}
	return dyns
}

func (d *Dyn) Put(b []byte) {
	_ = b[DynSize-1]
	byteOrder.PutUint64(b[0:], uint64(d.Tag))
	byteOrder.PutUint64(b[8:], d.Val)
}
