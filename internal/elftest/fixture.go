package elftest

import (
	"debug/elf"

	"github.com/eh-steve/elfloader/elf64"
)

// Addresses of the shared object built by SharedObject.
const (
	TextAddr    = 0x40
	EntryAddr   = TextAddr
	HelperAddr  = TextAddr + 0x8
	InitAddr    = 0x60
	FiniAddr    = 0x68
	GotAddr     = 0x80
	FooSlot     = GotAddr
	BarSlot     = GotAddr + 0x8
	DataAddr    = 0xa0
	DynamicAddr = 0xc0
	FileSize    = 0x100
	MemorySize  = 0x200
)

// RelocationTypes returns the RELATIVE, GLOB_DAT and JUMP_SLOT type ids of
// machine m.
func RelocationTypes(m elf.Machine) (relative, globDat, jumpSlot uint32) {
	switch m {
	case elf.EM_AARCH64:
		return uint32(elf.R_AARCH64_RELATIVE), uint32(elf.R_AARCH64_GLOB_DAT), uint32(elf.R_AARCH64_JUMP_SLOT)
	default:
		return uint32(elf.R_X86_64_RELATIVE), uint32(elf.R_X86_64_GLOB_DAT), uint32(elf.R_X86_64_JMP_SLOT)
	}
}

// Sections of the shared object built by SharedObject, by index.
const (
	TextSection = 1 + iota
	InitSection
	FiniSection
	GotSection
	DataSection
	BssSection
	DynamicSection
	DynsymSection
	DynstrSection
	RelaDynSection
	RelaPltSection
	SymtabSection
	StrtabSection
)

// SharedObject returns a builder for a small shared object:
//
//   - one PT_LOAD segment with FileSize bytes in the file and MemorySize in
//     memory,
//   - .text holding "entry" and "helper",
//   - init and fini arrays fixed up by RELATIVE relocations,
//   - a .got whose slots import "foo" (JUMP_SLOT) and weak "bar" (GLOB_DAT),
//     from two relocation sections sharing one .dynsym,
//   - a .dynamic naming libc.so.6 and libm.so.6,
//   - a static .symtab with a local symbol and an absolute symbol.
func SharedObject(machine elf.Machine) *Builder {
	relative, globDat, jumpSlot := RelocationTypes(machine)
	b := New(machine)
	b.Load(0, FileSize, MemorySize, elf.PF_R|elf.PF_W|elf.PF_X)

	alloc := elf.SHF_ALLOC
	b.Add(".text", elf64.SectionHeader{Type: elf.SHT_PROGBITS, Flags: alloc | elf.SHF_EXECINSTR, Addr: TextAddr, Addralign: 16},
		[]byte{0xc3, 0, 0, 0, 0, 0, 0, 0, 0xc3})
	b.Add(".init_array", elf64.SectionHeader{Type: elf.SHT_INIT_ARRAY, Flags: alloc | elf.SHF_WRITE, Addr: InitAddr, Addralign: 8, Entsize: 8},
		Addresses(0))
	b.Add(".fini_array", elf64.SectionHeader{Type: elf.SHT_FINI_ARRAY, Flags: alloc | elf.SHF_WRITE, Addr: FiniAddr, Addralign: 8, Entsize: 8},
		Addresses(0))
	b.Add(".got", elf64.SectionHeader{Type: elf.SHT_PROGBITS, Flags: alloc | elf.SHF_WRITE, Addr: GotAddr, Addralign: 8, Entsize: 8},
		Addresses(0, 0))
	b.Add(".data", elf64.SectionHeader{Type: elf.SHT_PROGBITS, Flags: alloc | elf.SHF_WRITE, Addr: DataAddr, Addralign: 8},
		[]byte{1, 2, 3, 4, 5, 6, 7, 8})
	b.Add(".bss", elf64.SectionHeader{Type: elf.SHT_NOBITS, Flags: alloc | elf.SHF_WRITE, Addr: FileSize, Size: MemorySize - FileSize, Addralign: 8}, nil)

	var dynstr StringTable
	libc := dynstr.Add("libc.so.6")
	libm := dynstr.Add("libm.so.6")
	b.Add(".dynamic", elf64.SectionHeader{Type: elf.SHT_DYNAMIC, Flags: alloc | elf.SHF_WRITE, Addr: DynamicAddr, Link: DynstrSection, Addralign: 8, Entsize: elf64.DynSize},
		Dyns(
			elf64.Dyn{Tag: elf.DT_NEEDED, Val: uint64(libc)},
			elf64.Dyn{Tag: elf.DT_NEEDED, Val: uint64(libm)},
			elf64.Dyn{Tag: elf.DT_NULL},
		))

	dynsym := Symbols(
		elf64.Symbol{},
		elf64.Symbol{Name: dynstr.Add("foo"), Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC)},
		elf64.Symbol{Name: dynstr.Add("bar"), Info: elf.ST_INFO(elf.STB_WEAK, elf.STT_NOTYPE)},
		elf64.Symbol{Name: dynstr.Add("entry"), Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC), Shndx: TextSection, Value: EntryAddr, Size: 1},
		elf64.Symbol{Name: dynstr.Add("table"), Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_OBJECT), Shndx: DataSection, Value: DataAddr, Size: 8},
	)
	b.Add(".dynsym", elf64.SectionHeader{Type: elf.SHT_DYNSYM, Link: DynstrSection, Info: 1, Addralign: 8, Entsize: elf64.SymbolSize}, dynsym)
	b.Add(".dynstr", elf64.SectionHeader{Type: elf.SHT_STRTAB}, dynstr.Bytes())

	b.Add(".rela.dyn", elf64.SectionHeader{Type: elf.SHT_RELA, Link: DynsymSection, Addralign: 8, Entsize: elf64.RelaSize},
		Relas(
			elf64.Rela{Offset: InitAddr, Info: elf64.RelaInfo(0, relative), Addend: EntryAddr},
			elf64.Rela{Offset: FiniAddr, Info: elf64.RelaInfo(0, relative), Addend: HelperAddr},
			elf64.Rela{Offset: BarSlot, Info: elf64.RelaInfo(2, globDat)},
		))
	b.Add(".rela.plt", elf64.SectionHeader{Type: elf.SHT_RELA, Flags: elf.SHF_INFO_LINK, Link: DynsymSection, Info: GotSection, Addralign: 8, Entsize: elf64.RelaSize},
		Relas(
			elf64.Rela{Offset: FooSlot, Info: elf64.RelaInfo(1, jumpSlot)},
		))

	var strtab StringTable
	symtab := Symbols(
		elf64.Symbol{},
		elf64.Symbol{Name: strtab.Add("helper"), Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_FUNC), Other: byte(elf.STV_HIDDEN), Shndx: TextSection, Value: HelperAddr, Size: 1},
		elf64.Symbol{Name: strtab.Add("version"), Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_OBJECT), Shndx: elf.SHN_ABS, Value: 3},
		elf64.Symbol{Name: strtab.Add("entry"), Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC), Shndx: TextSection, Value: EntryAddr, Size: 1},
	)
	b.Add(".symtab", elf64.SectionHeader{Type: elf.SHT_SYMTAB, Link: StrtabSection, Info: 2, Addralign: 8, Entsize: elf64.SymbolSize}, symtab)
	b.Add(".strtab", elf64.SectionHeader{Type: elf.SHT_STRTAB}, strtab.Bytes())
	return b
}
