package link

import (
	"debug/elf"

	"github.com/eh-steve/elfloader/elf64"
)

// SymbolTable is a decoded symbol section paired with its string table. One
// instance exists per symbol section and is shared by every relocation
// section that links to it.
type SymbolTable struct {
	Index   int
	Symbols []elf64.Symbol
	Strings []byte
}

// Name returns the name of symbol i.
func (st *SymbolTable) Name(i int) string {
	return cstring(st.Strings, uint64(st.Symbols[i].Name))
}

// Lookup finds the first defined symbol called name.
func (st *SymbolTable) Lookup(name string) (*elf64.Symbol, bool) {
	for i := range st.Symbols {
		if st.Symbols[i].Defined() && st.Name(i) == name {
			return &st.Symbols[i], true
		}
	}
	return nil, false
}

func (img *Image) symbolTable(i int) (*SymbolTable, error) {
	if st, ok := img.symtabs[i]; ok {
		return st, nil
	}
	if i < 0 || i >= len(img.sections) {
		return nil, layoutError(i, ErrSectionOutOfRange, "image has %d sections", len(img.sections))
	}
	s := &img.sections[i]
	if s.Type != elf.SHT_SYMTAB && s.Type != elf.SHT_DYNSYM {
		return nil, layoutError(i, ErrUnexpectedSectionType, "%s is not a symbol table", s.Type)
	}
	if s.Size%elf64.SymbolSize != 0 {
		return nil, layoutError(i, ErrUnsupportedSymbolSize, "%d is not a multiple of %d", s.Size, elf64.SymbolSize)
	}
	symBytes, err := img.sectionBytes(i)
	if err != nil {
		return nil, err
	}
	strBytes, err := img.sectionBytes(int(s.Link))
	if err != nil {
		return nil, err
	}
	st := &SymbolTable{
		Index:   i,
		Symbols: elf64.DecodeSymbols(symBytes),
		Strings: strBytes,
	}
	img.symtabs[i] = st
	img.symtabOrder = append(img.symtabOrder, i)
	return st, nil
}

// SymbolTable returns the cached symbol table of section i, loading it on
// first use.
func (img *Image) SymbolTable(i int) (*SymbolTable, error) {
	return img.symbolTable(i)
}

// SymbolTables returns every loaded symbol table in the order the image first
// encountered them.
func (img *Image) SymbolTables() []*SymbolTable {
	tables := make([]*SymbolTable, 0, len(img.symtabOrder))
	for _, i := range img.symtabOrder {
		tables = append(tables, img.symtabs[i])
	}
	return tables
}

// LookupSymbol searches the dynamic symbol tables, then the static ones, for
// a defined symbol called name.
func (img *Image) LookupSymbol(name string) (*elf64.Symbol, bool) {
	for _, typ := range []elf.SectionType{elf.SHT_DYNSYM, elf.SHT_SYMTAB} {
		for _, i := range img.symtabOrder {
			if img.sections[i].Type != typ {
				continue
			}
			if sym, ok := img.symtabs[i].Lookup(name); ok {
				return sym, true
			}
		}
	}
	return nil, false
}

// symbolSectionName names the section a symbol is defined in. Indices in the
// reserved range [SHN_LORESERVE, SHN_HIRESERVE] and SHN_UNDEF do not refer to
// a real section.
func (img *Image) symbolSectionName(sym *elf64.Symbol) string {
	if !sym.Defined() || int(sym.Shndx) >= len(img.sections) {
		return ""
	}
	return img.sectionName(int(sym.Shndx))
}
