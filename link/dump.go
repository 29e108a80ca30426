package link

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/ianlancetaylor/demangle"

	"github.com/eh-steve/elfloader/decoding"
	"github.com/eh-steve/elfloader/elf64"
)

// dumper formats lines to w and keeps the first write error.
type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format+"\n", args...)
}

func (d *dumper) heading(title string) {
	d.printf("")
	d.printf("== %s ==", title)
}

// Dump writes a textual report of img to w. Codes without a known name are
// shown as Unknown next to their numeric value; only write errors are
// returned.
func Dump(img *Image, w io.Writer) error {
	return img.Dump(w)
}

func (img *Image) Dump(w io.Writer) error {
	d := &dumper{w: w}
	img.dumpHeader(d)
	img.dumpSections(d)
	img.dumpProgramHeaders(d)
	img.dumpSymbolTables(d)
	img.dumpRelocations(d)
	dumpArray(d, "Init Array", img.initArray)
	dumpArray(d, "Fini Array", img.finiArray)
	dumpArray(d, "Preinit Array", img.preinitArray)
	img.dumpNeeded(d)
	img.dumpDynamic(d)
	return d.err
}

func (img *Image) dumpHeader(d *dumper) {
	h := img.header
	d.printf("== Header ==")
	d.printf("Class: %d (%s)", h.Class(), decoding.NameFor(decoding.Class, uint64(h.Class())))
	d.printf("Data: %d (%s)", h.Data(), decoding.NameFor(decoding.Data, uint64(h.Data())))
	d.printf("OS ABI: %d (%s)", h.OSABI(), decoding.NameFor(decoding.OSABI, uint64(h.OSABI())))
	d.printf("Type: %d (%s)", uint16(h.Type), decoding.NameFor(decoding.FileType, uint64(h.Type)))
	d.printf("Machine: %d (%s)", uint16(h.Machine), decoding.NameFor(decoding.Machine, uint64(h.Machine)))
	d.printf("Version: %d", h.Version)
	d.printf("Entry point: 0x%x", h.Entry)
	d.printf("Program Header Offset: 0x%x", h.Phoff)
	d.printf("Section Header Offset: 0x%x", h.Shoff)
	d.printf("Flags: 0x%x", h.Flags)
	d.printf("ELF Header Size: %d", h.Ehsize)
	d.printf("Program Header Size: %d", h.Phentsize)
	d.printf("Number of Program Header Entries: %d", h.Phnum)
	d.printf("Section Header Size: %d", h.Shentsize)
	d.printf("Number of Section Header Entries: %d", h.Shnum)
	d.printf("Strings Section Index: %d", h.Shstrndx)
}

func (img *Image) dumpSections(d *dumper) {
	d.heading("Sections")
	for i := range img.sections {
		s := &img.sections[i]
		d.printf("")
		d.printf("Section %d: %s", i, img.sectionName(i))
		d.printf("  Name Offset: %d", s.Name)
		d.printf("  Type: 0x%x (%s)", uint32(s.Type), decoding.NameFor(decoding.SectionType, uint64(s.Type)))
		d.printf("  Flags: 0x%x (%s)", uint64(s.Flags), decoding.FlagsFor(decoding.SectionFlags, uint64(s.Flags)))
		d.printf("  Address: 0x%x", s.Addr)
		d.printf("  Offset: 0x%x", s.Offset)
		d.printf("  Size: %d", s.Size)
		d.printf("  Link: %d (%s)", s.Link, img.sectionName(int(s.Link)))
		d.printf("  Info: 0x%x", s.Info)
		d.printf("  Alignment: 0x%x", s.Addralign)
		d.printf("  Entry Size: 0x%x", s.Entsize)
	}
}

func (img *Image) dumpProgramHeaders(d *dumper) {
	d.heading("Program Headers")
	for i := range img.progs {
		p := &img.progs[i]
		d.printf("")
		d.printf("Segment %d", i)
		d.printf("  Type: 0x%x (%s)", uint32(p.Type), decoding.NameFor(decoding.SegmentType, uint64(p.Type)))
		d.printf("  Flags: 0x%x (%s)", uint32(p.Flags), decoding.FlagsFor(decoding.SegmentFlags, uint64(p.Flags)))
		d.printf("  Offset: 0x%x", p.Offset)
		d.printf("  Virtual Address: 0x%x", p.Vaddr)
		d.printf("  Physical Address: 0x%x", p.Paddr)
		d.printf("  File Size: %d", p.Filesz)
		d.printf("  Memory Size: %d", p.Memsz)
		d.printf("  Alignment: 0x%x", p.Align)
	}
}

func (img *Image) symbolName(name string) string {
	if img.conf.Demangle {
		return demangle.Filter(name)
	}
	return name
}

func (img *Image) dumpSymbolTables(d *dumper) {
	for _, st := range img.SymbolTables() {
		d.heading(fmt.Sprintf("Symbol Table %d: %s", st.Index, img.sectionName(st.Index)))
		for i := range st.Symbols {
			sym := &st.Symbols[i]
			d.printf("%4d: %-24s bind %d (%s) type %d (%s) vis %d (%s) section %s value 0x%x size %d", i,
				img.symbolName(st.Name(i)),
				sym.Bind(), decoding.NameFor(decoding.SymbolBind, uint64(sym.Bind())),
				sym.Type(), decoding.NameFor(decoding.SymbolType, uint64(sym.Type())),
				sym.Visibility(), decoding.NameFor(decoding.SymbolVisibility, uint64(sym.Visibility())),
				img.symbolSection(sym), sym.Value, sym.Size)
		}
	}
}

// symbolSection renders a symbol's section index with either the section
// name or the name of the reserved index.
func (img *Image) symbolSection(sym *elf64.Symbol) string {
	idx := uint16(sym.Shndx)
	if sym.Defined() {
		return fmt.Sprintf("%d (%s)", idx, img.symbolSectionName(sym))
	}
	return fmt.Sprintf("%d (%s)", idx, decoding.NameFor(decoding.SectionIndex, uint64(idx)))
}

func (img *Image) dumpRelocations(d *dumper) {
	m := img.header.Machine
	for _, section := range img.relocations {
		d.heading(fmt.Sprintf("Relocations %d: %s (symbols from %d)", section.Index, section.Name, section.SymbolTable.Index))
		for _, loc := range section.Relocations {
			d.printf("offset 0x%08x type %d (%s) symbol %d %s value 0x%x addend %d",
				loc.Offset, loc.Type, decoding.RelocationName(m, loc.Type),
				loc.SymbolIndex, img.symbolName(loc.SymbolName), loc.SymbolValue, loc.Addend)
		}
	}
}

func dumpArray(d *dumper, title string, addrs []uint64) {
	d.heading(title)
	for i, addr := range addrs {
		d.printf("%4d: 0x%x", i, addr)
	}
}

func (img *Image) dumpNeeded(d *dumper) {
	d.heading("Needed")
	for _, name := range img.needed {
		d.printf("%s", name)
	}
}

func (img *Image) dumpDynamic(d *dumper) {
	d.heading("Dynamic")
	for _, e := range img.dynamic {
		d.printf("tag 0x%x (%s) value 0x%x", uint64(e.Tag), dynamicTagName(e.Tag), e.Value)
	}
}

func dynamicTagName(tag elf.DynTag) string {
	return decoding.NameFor(decoding.DynamicTag, uint64(tag))
}
