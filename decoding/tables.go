package decoding

import (
	"debug/elf"
	"fmt"
)

func stringerTable[T interface {
	~int | ~uint32 | ~int64
	fmt.Stringer
}](codes []T) map[uint64]string {
	table := make(map[uint64]string, len(codes))
	for _, code := range codes {
		table[uint64(code)] = code.String()
	}
	return table
}

var dynamicTags = []elf.DynTag{
	elf.DT_NULL, elf.DT_NEEDED, elf.DT_PLTRELSZ, elf.DT_PLTGOT, elf.DT_HASH,
	elf.DT_STRTAB, elf.DT_SYMTAB, elf.DT_RELA, elf.DT_RELASZ, elf.DT_RELAENT,
	elf.DT_STRSZ, elf.DT_SYMENT, elf.DT_INIT, elf.DT_FINI, elf.DT_SONAME,
	elf.DT_RPATH, elf.DT_SYMBOLIC, elf.DT_REL, elf.DT_RELSZ, elf.DT_RELENT,
	elf.DT_PLTREL, elf.DT_DEBUG, elf.DT_TEXTREL, elf.DT_JMPREL, elf.DT_BIND_NOW,
	elf.DT_INIT_ARRAY, elf.DT_FINI_ARRAY, elf.DT_INIT_ARRAYSZ, elf.DT_FINI_ARRAYSZ,
	elf.DT_RUNPATH, elf.DT_FLAGS, elf.DT_PREINIT_ARRAY, elf.DT_PREINIT_ARRAYSZ,
	elf.DT_GNU_HASH, elf.DT_VERSYM, elf.DT_RELACOUNT, elf.DT_RELCOUNT,
	elf.DT_FLAGS_1, elf.DT_VERDEF, elf.DT_VERDEFNUM, elf.DT_VERNEED, elf.DT_VERNEEDNUM,
}

var x86_64Relocations = []elf.R_X86_64{
	elf.R_X86_64_NONE, elf.R_X86_64_64, elf.R_X86_64_PC32, elf.R_X86_64_GOT32,
	elf.R_X86_64_PLT32, elf.R_X86_64_COPY, elf.R_X86_64_GLOB_DAT, elf.R_X86_64_JMP_SLOT,
	elf.R_X86_64_RELATIVE, elf.R_X86_64_GOTPCREL, elf.R_X86_64_32, elf.R_X86_64_32S,
	elf.R_X86_64_16, elf.R_X86_64_PC16, elf.R_X86_64_8, elf.R_X86_64_PC8,
	elf.R_X86_64_DTPMOD64, elf.R_X86_64_DTPOFF64, elf.R_X86_64_TPOFF64,
	elf.R_X86_64_TLSGD, elf.R_X86_64_TLSLD, elf.R_X86_64_DTPOFF32,
	elf.R_X86_64_GOTTPOFF, elf.R_X86_64_TPOFF32, elf.R_X86_64_PC64,
	elf.R_X86_64_GOTOFF64, elf.R_X86_64_GOTPC32, elf.R_X86_64_SIZE32,
	elf.R_X86_64_SIZE64, elf.R_X86_64_TLSDESC, elf.R_X86_64_IRELATIVE,
	elf.R_X86_64_GOTPCRELX, elf.R_X86_64_REX_GOTPCRELX,
}

var aarch64Relocations = []elf.R_AARCH64{
	elf.R_AARCH64_NONE, elf.R_AARCH64_ABS64, elf.R_AARCH64_ABS32,
	elf.R_AARCH64_PREL64, elf.R_AARCH64_PREL32, elf.R_AARCH64_CALL26,
	elf.R_AARCH64_JUMP26, elf.R_AARCH64_COPY, elf.R_AARCH64_GLOB_DAT,
	elf.R_AARCH64_JUMP_SLOT, elf.R_AARCH64_RELATIVE, elf.R_AARCH64_TLS_DTPMOD64,
	elf.R_AARCH64_TLS_DTPREL64, elf.R_AARCH64_TLS_TPREL64, elf.R_AARCH64_TLSDESC,
	elf.R_AARCH64_IRELATIVE,
}
