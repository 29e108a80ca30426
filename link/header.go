package link

import (
	"debug/elf"
	"fmt"

	"github.com/eh-steve/elfloader/elf64"
)

// readHeader reads and validates the ELF header. Validation stops at the
// first violation, before anything past the header is read.
func readHeader(r *readAtSeeker, machine elf.Machine) (*elf64.Header, error) {
	b, err := r.BytesAt(0, elf64.HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := elf64.DecodeHeader(b)

	if !h.HasMagic() {
		return nil, &FormatError{Err: ErrInvalidSignature}
	}
	if h.Class() != elf.ELFCLASS64 {
		return nil, formatError(ErrUnsupportedClass, "%s", h.Class())
	}
	if h.Data() != elf.ELFDATA2LSB {
		return nil, formatError(ErrUnsupportedData, "%s", h.Data())
	}
	if h.IdentVersion() != elf.EV_CURRENT || elf.Version(h.Version) != elf.EV_CURRENT {
		return nil, formatError(ErrIncompatibleVersion, "ident %d, header %d", h.IdentVersion(), h.Version)
	}
	if h.Machine != machine {
		return nil, formatError(ErrIncompatibleMachine, "%s != %s", h.Machine, machine)
	}
	if h.Shentsize != elf64.SectionHeaderSize {
		return nil, formatError(ErrUnsupportedSectionSize, "%d != %d", h.Shentsize, elf64.SectionHeaderSize)
	}
	if h.Phnum > 0 && h.Phentsize != elf64.ProgramHeaderSize {
		return nil, formatError(ErrUnsupportedProgramSize, "%d != %d", h.Phentsize, elf64.ProgramHeaderSize)
	}
	return &h, nil
}

func readSectionHeaders(r *readAtSeeker, h *elf64.Header) ([]elf64.SectionHeader, error) {
	b, err := r.BytesAt(h.Shoff, uint64(h.Shnum)*elf64.SectionHeaderSize)
	if err != nil {
		return nil, err
	}
	sections := make([]elf64.SectionHeader, h.Shnum)
	for i := range sections {
		sections[i] = elf64.DecodeSectionHeader(b[i*elf64.SectionHeaderSize:])
	}
	return sections, nil
}

func readProgramHeaders(r *readAtSeeker, h *elf64.Header) ([]elf64.ProgramHeader, error) {
	b, err := r.BytesAt(h.Phoff, uint64(h.Phnum)*elf64.ProgramHeaderSize)
	if err != nil {
		return nil, err
	}
	progs := make([]elf64.ProgramHeader, h.Phnum)
	for i := range progs {
		progs[i] = elf64.DecodeProgramHeader(b[i*elf64.ProgramHeaderSize:])
	}
	return progs, nil
}
