// Package decoding renders ELF enumerants and flag masks as human readable
// text. Lookups never fail: unknown codes render as Unknown and unknown flag
// bits as "?".
package decoding

import (
	"debug/elf"
	"strings"
)

const (
	Unknown     = "Unknown"
	UnknownFlag = "?"
)

type Category int

const (
	FileType Category = iota
	Class
	Data
	OSABI
	Machine
	SectionType
	SectionFlags
	SectionIndex
	SegmentType
	SegmentFlags
	SymbolBind
	SymbolType
	SymbolVisibility
	DynamicTag
	RelocationX86_64
	RelocationAArch64
)

var names = map[Category]map[uint64]string{
	FileType: {
		uint64(elf.ET_NONE): "No file type",
		uint64(elf.ET_REL):  "Relocatable file",
		uint64(elf.ET_EXEC): "Executable file",
		uint64(elf.ET_DYN):  "Shared object file",
		uint64(elf.ET_CORE): "Core file",
	},
	Class: {
		uint64(elf.ELFCLASSNONE): "Invalid class",
		uint64(elf.ELFCLASS32):   "32-bit objects",
		uint64(elf.ELFCLASS64):   "64-bit objects",
	},
	Data: {
		uint64(elf.ELFDATANONE): "Invalid data encoding",
		uint64(elf.ELFDATA2LSB): "2's complement, little endian",
		uint64(elf.ELFDATA2MSB): "2's complement, big endian",
	},
	OSABI: {
		uint64(elf.ELFOSABI_NONE):    "UNIX System V ABI",
		uint64(elf.ELFOSABI_HPUX):    "HP-UX",
		uint64(elf.ELFOSABI_NETBSD):  "NetBSD",
		uint64(elf.ELFOSABI_LINUX):   "GNU/Linux",
		uint64(elf.ELFOSABI_SOLARIS): "Solaris",
		uint64(elf.ELFOSABI_FREEBSD): "FreeBSD",
		uint64(elf.ELFOSABI_OPENBSD): "OpenBSD",
	},
	Machine: {
		uint64(elf.EM_NONE):    "No machine",
		uint64(elf.EM_386):     "Intel 80386",
		uint64(elf.EM_ARM):     "ARM",
		uint64(elf.EM_X86_64):  "Advanced Micro Devices x86-64",
		uint64(elf.EM_AARCH64): "ARM 64-bit architecture (AArch64)",
		uint64(elf.EM_RISCV):   "RISC-V",
		uint64(elf.EM_PPC64):   "PowerPC 64-bit",
		uint64(elf.EM_S390):    "IBM System/390",
	},
	SectionType: {
		uint64(elf.SHT_NULL):           "inactive",
		uint64(elf.SHT_PROGBITS):       "program defined information",
		uint64(elf.SHT_SYMTAB):         "symbol table section",
		uint64(elf.SHT_STRTAB):         "string table section",
		uint64(elf.SHT_RELA):           "relocation section with addends",
		uint64(elf.SHT_HASH):           "symbol hash table section",
		uint64(elf.SHT_DYNAMIC):        "dynamic section",
		uint64(elf.SHT_NOTE):           "note section",
		uint64(elf.SHT_NOBITS):         "no space section",
		uint64(elf.SHT_REL):            "relocation section - no addends",
		uint64(elf.SHT_SHLIB):          "reserved - purpose unknown",
		uint64(elf.SHT_DYNSYM):         "dynamic symbol table section",
		uint64(elf.SHT_INIT_ARRAY):     "Initialization function pointers",
		uint64(elf.SHT_FINI_ARRAY):     "Termination function pointers",
		uint64(elf.SHT_PREINIT_ARRAY):  "Pre-initialization function pointers",
		uint64(elf.SHT_GROUP):          "Section group",
		uint64(elf.SHT_SYMTAB_SHNDX):   "Section indexes",
		uint64(elf.SHT_GNU_ATTRIBUTES): "Object attributes",
		uint64(elf.SHT_GNU_HASH):       "GNU-style hash table",
		uint64(elf.SHT_GNU_LIBLIST):    "Library List",
		uint64(elf.SHT_GNU_VERDEF):     "Symbol versions provided",
		uint64(elf.SHT_GNU_VERNEED):    "Symbol versions required",
		uint64(elf.SHT_GNU_VERSYM):     "Symbol version table",
		0x70000001:                     "unwind information",
	},
	SectionIndex: {
		uint64(elf.SHN_UNDEF):  "UND",
		uint64(elf.SHN_ABS):    "ABS",
		uint64(elf.SHN_COMMON): "COM",
		uint64(elf.SHN_XINDEX): "XINDEX",
	},
	SegmentType: {
		uint64(elf.PT_NULL):         "Unused",
		uint64(elf.PT_LOAD):         "Loadable segment",
		uint64(elf.PT_DYNAMIC):      "Dynamic linking information segment",
		uint64(elf.PT_INTERP):       "Pathname of interpreter",
		uint64(elf.PT_NOTE):         "Auxiliary information",
		uint64(elf.PT_SHLIB):        "Reserved",
		uint64(elf.PT_PHDR):         "Location of program header itself",
		uint64(elf.PT_TLS):          "Thread local storage segment",
		uint64(elf.PT_GNU_EH_FRAME): "GNU exception handling frame",
		uint64(elf.PT_GNU_STACK):    "GNU stack executability",
		uint64(elf.PT_GNU_RELRO):    "GNU read-only after relocation",
		uint64(elf.PT_GNU_PROPERTY): "GNU property notes",
		0x6464e550:                  "AMD64 UNWIND program header",
		0x6ffffffa:                  "Sun Specific segment",
		0x6ffffffb:                  "Describes the stack segment",
		0x6ffffffc:                  "Private",
		0x6ffffffd:                  "Hard/soft capabilities segment",
	},
	SymbolBind: {
		uint64(elf.STB_LOCAL):  "LOCAL",
		uint64(elf.STB_GLOBAL): "GLOBAL",
		uint64(elf.STB_WEAK):   "WEAK",
		10:                     "UNIQUE",
	},
	SymbolType: {
		uint64(elf.STT_NOTYPE):  "NOTYPE",
		uint64(elf.STT_OBJECT):  "OBJECT",
		uint64(elf.STT_FUNC):    "FUNC",
		uint64(elf.STT_SECTION): "SECTION",
		uint64(elf.STT_FILE):    "FILE",
		uint64(elf.STT_COMMON):  "COMMON",
		uint64(elf.STT_TLS):     "TLS",
		10:                      "IFUNC",
	},
	SymbolVisibility: {
		uint64(elf.STV_DEFAULT):   "DEFAULT",
		uint64(elf.STV_INTERNAL):  "INTERNAL",
		uint64(elf.STV_HIDDEN):    "HIDDEN",
		uint64(elf.STV_PROTECTED): "PROTECTED",
	},
	DynamicTag:        stringerTable(dynamicTags),
	RelocationX86_64:  stringerTable(x86_64Relocations),
	RelocationAArch64: stringerTable(aarch64Relocations),
}

type flagName struct {
	bit  uint64
	name string
}

var flags = map[Category][]flagName{
	SectionFlags: {
		{uint64(elf.SHF_WRITE), "W"},
		{uint64(elf.SHF_ALLOC), "A"},
		{uint64(elf.SHF_EXECINSTR), "X"},
		{uint64(elf.SHF_MERGE), "M"},
		{uint64(elf.SHF_STRINGS), "S"},
		{uint64(elf.SHF_INFO_LINK), "I"},
		{uint64(elf.SHF_LINK_ORDER), "L"},
		{uint64(elf.SHF_OS_NONCONFORMING), "O"},
		{uint64(elf.SHF_GROUP), "G"},
		{uint64(elf.SHF_TLS), "T"},
		{uint64(elf.SHF_COMPRESSED), "C"},
	},
	SegmentFlags: {
		{uint64(elf.PF_R), "R"},
		{uint64(elf.PF_W), "W"},
		{uint64(elf.PF_X), "E"},
	},
}

// NameFor returns the descriptive name of code within category c.
func NameFor(c Category, code uint64) string {
	if name, ok := names[c][code]; ok {
		return name
	}
	return Unknown
}

// FlagsFor renders mask as a string of single-letter flags. Bits without a
// known letter collapse into one trailing UnknownFlag.
func FlagsFor(c Category, mask uint64) string {
	var sb strings.Builder
	rest := mask
	for _, f := range flags[c] {
		if mask&f.bit != 0 {
			sb.WriteString(f.name)
			rest &^= f.bit
		}
	}
	if rest != 0 {
		sb.WriteString(UnknownFlag)
	}
	return sb.String()
}

// RelocationCategory selects the relocation name table for machine m.
func RelocationCategory(m elf.Machine) (Category, bool) {
	switch m {
	case elf.EM_X86_64:
		return RelocationX86_64, true
	case elf.EM_AARCH64:
		return RelocationAArch64, true
	}
	return 0, false
}

// RelocationName is NameFor over the relocation table of machine m.
func RelocationName(m elf.Machine, typ uint32) string {
	c, ok := RelocationCategory(m)
	if !ok {
		return Unknown
	}
	return NameFor(c, uint64(typ))
}
