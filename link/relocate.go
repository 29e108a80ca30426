package link

import (
	"debug/elf"
	"fmt"

	"github.com/eh-steve/elfloader/decoding"
	"github.com/eh-steve/elfloader/elf64"
)

// Relocation is a decoded Rela entry with its symbol already looked up.
type Relocation struct {
	Offset      uint64
	Type        uint32
	Addend      int64
	SymbolIndex uint32
	Symbol      elf64.Symbol
	SymbolValue uint64
	SymbolName  string
}

// RelocationSection groups the relocations of one SHT_RELA section in file
// order.
type RelocationSection struct {
	Index       int
	Name        string
	SymbolTable *SymbolTable
	Relocations []Relocation
}

func (img *Image) parseRelocations(i int) error {
	s := &img.sections[i]
	if s.Type != elf.SHT_RELA {
		return layoutError(i, ErrUnexpectedSectionType, "%s relocations are not supported", s.Type)
	}
	if s.Size%elf64.RelaSize != 0 {
		return layoutError(i, ErrUnsupportedRelocationSize, "%d is not a multiple of %d", s.Size, elf64.RelaSize)
	}
	b, err := img.sectionBytes(i)
	if err != nil {
		return err
	}
	st, err := img.symbolTable(int(s.Link))
	if err != nil {
		return err
	}

	relas := elf64.DecodeRelas(b)
	section := RelocationSection{
		Index:       i,
		Name:        img.sectionName(i),
		SymbolTable: st,
		Relocations: make([]Relocation, 0, len(relas)),
	}
	for _, rela := range relas {
		symIndex := rela.Sym()
		if int(symIndex) >= len(st.Symbols) {
			return layoutError(i, ErrSymbolIndexOutOfRange,
				"symbol %d of table %d with %d entries", symIndex, st.Index, len(st.Symbols))
		}
		sym := st.Symbols[symIndex]
		section.Relocations = append(section.Relocations, Relocation{
			Offset:      rela.Offset,
			Type:        rela.Type(),
			Addend:      rela.Addend,
			SymbolIndex: symIndex,
			Symbol:      sym,
			SymbolValue: sym.Value,
			SymbolName:  st.Name(int(symIndex)),
		})
	}
	img.relocations = append(img.relocations, section)
	return nil
}

// Relocations returns the decoded relocations grouped by relocation section.
func (img *Image) Relocations() []RelocationSection {
	return img.relocations
}

// ImportedSymbols lists, in first use order, the symbols that GLOB_DAT and
// JUMP_SLOT relocations expect to find in a shim table.
func (img *Image) ImportedSymbols() []string {
	a, ok := arches[img.header.Machine]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, section := range img.relocations {
		for _, loc := range section.Relocations {
			if loc.Type != a.GlobDat && loc.Type != a.JumpSlot {
				continue
			}
			if !seen[loc.SymbolName] {
				seen[loc.SymbolName] = true
				names = append(names, loc.SymbolName)
			}
		}
	}
	return names
}

// UnresolvedSymbols lists the imported symbols that have no entry in shims.
func UnresolvedSymbols(img *Image, shims map[string]uintptr) []string {
	var missing []string
	for _, name := range img.ImportedSymbols() {
		if _, ok := shims[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// relocate patches every relocation into the address space. A key present
// in shims with a zero value binds the symbol to null.
func (module *Module) relocate() error {
	img := module.Image
	a, supported := arches[img.header.Machine]
	base := img.Base()
	for _, section := range img.relocations {
		for _, loc := range section.Relocations {
			if !supported {
				return module.unexpectedRelocation(loc)
			}
			var value uint64
			switch loc.Type {
			case a.Relative:
				value = uint64(base) + uint64(loc.Addend)
			case a.GlobDat, a.JumpSlot:
				addr, ok := module.shims[loc.SymbolName]
				if !ok {
					return &LinkError{
						Err:      ErrUnresolvedSymbol,
						Type:     loc.Type,
						TypeName: decoding.RelocationName(a.Machine, loc.Type),
						Symbol:   loc.SymbolName,
					}
				}
				value = uint64(addr)
			default:
				return module.unexpectedRelocation(loc)
			}

			end := loc.Offset + elf64.AddrSize
			if end < loc.Offset || end > uint64(len(img.space)) {
				return layoutError(section.Index, ErrSectionOutOfRange,
					"relocation at 0x%x outside address space of 0x%x bytes", loc.Offset, len(img.space))
			}
			elf64.PutAddress(img.space[loc.Offset:end], value)

			if module.conf.RelocationDebugWriter != nil {
				_, _ = fmt.Fprintf(module.conf.RelocationDebugWriter, "RELOCATING %-22s Base: 0x%x Pos: 0x%016x Addend: %8d Value: 0x%016x %s\n",
					decoding.RelocationName(a.Machine, loc.Type), base, uint64(base)+loc.Offset, loc.Addend, value, loc.SymbolName)
			}
		}
	}
	return nil
}

func (module *Module) unexpectedRelocation(loc Relocation) error {
	return &LinkError{
		Err:      ErrUnexpectedRelocationType,
		Type:     loc.Type,
		TypeName: decoding.RelocationName(module.Image.header.Machine, loc.Type),
		Symbol:   loc.SymbolName,
	}
}
