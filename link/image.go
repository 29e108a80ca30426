package link

import (
	"debug/elf"
	"fmt"
	"io"
	"unsafe"

	"github.com/eh-steve/elfloader/elf64"
)

// DynamicEntry is one tag/value pair of the dynamic section.
type DynamicEntry struct {
	Tag   elf.DynTag
	Value uint64
}

// Image is a parsed ELF64 object with its PT_LOAD segments copied into a
// private address space. Relocations are decoded but not applied.
type Image struct {
	conf      Config
	allocator Allocator
	reader    *readAtSeeker

	header   *elf64.Header
	sections []elf64.SectionHeader
	progs    []elf64.ProgramHeader
	shstrtab []byte
	space    []byte

	sectionCache map[int][]byte
	symtabs      map[int]*SymbolTable
	symtabOrder  []int
	relocations  []RelocationSection

	initArray    []uint64
	finiArray    []uint64
	preinitArray []uint64
	dynamic      []DynamicEntry
	needed       []string
}

// Load parses r into an Image. Either a complete image or an error is
// returned; no partially built image escapes.
func Load(r io.ReadSeeker, conf Config) (*Image, error) {
	if conf.Allocator == nil {
		conf.Allocator = HeapAllocator
	}
	return load(r, conf)
}

func load(r io.ReadSeeker, conf Config) (_ *Image, err error) {
	reader := &readAtSeeker{r}
	header, err := readHeader(reader, conf.machine())
	if err != nil {
		return nil, err
	}
	sections, err := readSectionHeaders(reader, header)
	if err != nil {
		return nil, fmt.Errorf("read section headers: %w", err)
	}
	progs, err := readProgramHeaders(reader, header)
	if err != nil {
		return nil, fmt.Errorf("read program headers: %w", err)
	}

	img := &Image{
		conf:         conf,
		allocator:    conf.Allocator,
		reader:       reader,
		header:       header,
		sections:     sections,
		progs:        progs,
		sectionCache: make(map[int][]byte),
		symtabs:      make(map[int]*SymbolTable),
	}
	if err = img.allocate(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = img.Close()
		}
	}()
	for i := range img.progs {
		if img.progs[i].Type == elf.PT_LOAD {
			if err = img.loadSegment(&img.progs[i]); err != nil {
				return nil, fmt.Errorf("load segment %d: %w", i, err)
			}
		}
	}
	if err = img.readSectionNames(); err != nil {
		return nil, err
	}
	if err = img.parseSections(); err != nil {
		return nil, err
	}
	return img, nil
}

// maxAddressSpace bounds the address space and any buffer synthesized for a
// section.
const maxAddressSpace = 1 << 32

// allocate sizes the address space to the highest end address of any
// PT_LOAD segment. Segments are trusted to be sorted and not to overlap.
func (img *Image) allocate() error {
	var size uint64
	for i := range img.progs {
		p := &img.progs[i]
		if p.Type != elf.PT_LOAD {
			continue
		}
		end := p.Vaddr + p.Memsz
		if end < p.Vaddr {
			return fmt.Errorf("segment %d: [0x%x, +0x%x) wraps the address space: %w", i, p.Vaddr, p.Memsz, ErrSectionOutOfRange)
		}
		if end > size {
			size = end
		}
	}
	if size == 0 {
		return nil
	}
	if size > maxAddressSpace || uint64(int(size)) != size {
		return fmt.Errorf("address space of 0x%x bytes exceeds 0x%x: %w", size, uint64(maxAddressSpace), ErrSectionOutOfRange)
	}
	space, err := img.allocator.Alloc(int(size))
	if err != nil {
		return fmt.Errorf("allocate address space of 0x%x bytes: %w", size, err)
	}
	img.space = space
	return nil
}

// loadSegment copies the file bytes of p into the address space and zeroes
// the remainder up to p.Memsz.
func (img *Image) loadSegment(p *elf64.ProgramHeader) error {
	mem := img.space[p.Vaddr : p.Vaddr+p.Memsz]
	filesz := p.Filesz
	if filesz > p.Memsz {
		filesz = p.Memsz
	}
	if err := img.reader.ReadAt(mem[:filesz], p.Offset); err != nil {
		return err
	}
	bss := mem[filesz:]
	for i := range bss {
		bss[i] = 0
	}
	return nil
}

func (img *Image) readSectionNames() error {
	idx := int(img.header.Shstrndx)
	if idx == int(elf.SHN_XINDEX) && len(img.sections) > 0 {
		idx = int(img.sections[0].Link)
	}
	if idx == int(elf.SHN_UNDEF) || idx >= len(img.sections) {
		return nil
	}
	b, err := img.sectionBytes(idx)
	if err != nil {
		return fmt.Errorf("read section names: %w", err)
	}
	img.shstrtab = b
	return nil
}

// parseSections walks the section table once, loading symbol tables,
// relocations, function pointer arrays and dynamic entries.
func (img *Image) parseSections() error {
	for i := range img.sections {
		s := &img.sections[i]
		switch s.Type {
		case elf.SHT_SYMTAB, elf.SHT_DYNSYM:
			if _, err := img.symbolTable(i); err != nil {
				return err
			}
		case elf.SHT_RELA, elf.SHT_REL:
			if err := img.parseRelocations(i); err != nil {
				return err
			}
		case elf.SHT_INIT_ARRAY, elf.SHT_FINI_ARRAY, elf.SHT_PREINIT_ARRAY:
			b, err := img.sectionBytes(i)
			if err != nil {
				return err
			}
			addrs := elf64.DecodeAddresses(b)
			switch s.Type {
			case elf.SHT_INIT_ARRAY:
				img.initArray = append(img.initArray, addrs...)
			case elf.SHT_FINI_ARRAY:
				img.finiArray = append(img.finiArray, addrs...)
			default:
				img.preinitArray = append(img.preinitArray, addrs...)
			}
		case elf.SHT_DYNAMIC:
			if err := img.parseDynamic(i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (img *Image) parseDynamic(i int) error {
	b, err := img.sectionBytes(i)
	if err != nil {
		return err
	}
	var strtab []byte
	if link := int(img.sections[i].Link); link != 0 {
		if strtab, err = img.sectionBytes(link); err != nil {
			return err
		}
	}
	for _, d := range elf64.DecodeDyns(b) {
		img.dynamic = append(img.dynamic, DynamicEntry{Tag: d.Tag, Value: d.Val})
		if d.Tag == elf.DT_NEEDED {
			img.needed = append(img.needed, cstring(strtab, d.Val))
		}
	}
	return nil
}

func (img *Image) Header() elf64.Header                  { return *img.header }
func (img *Image) Sections() []elf64.SectionHeader       { return img.sections }
func (img *Image) ProgramHeaders() []elf64.ProgramHeader { return img.progs }
func (img *Image) InitArray() []uint64                   { return img.initArray }
func (img *Image) FiniArray() []uint64                   { return img.finiArray }
func (img *Image) PreinitArray() []uint64                { return img.preinitArray }
func (img *Image) DynamicEntries() []DynamicEntry        { return img.dynamic }

// Needed lists the DT_NEEDED library names.
func (img *Image) Needed() []string { return img.needed }

// AddressSpace returns the image's address space. Resident section views
// alias it.
func (img *Image) AddressSpace() []byte { return img.space }

// Base is the host address of offset zero of the address space, or zero for
// an image without PT_LOAD segments.
func (img *Image) Base() uintptr {
	if len(img.space) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&img.space[0]))
}

// Close releases the address space. Addresses derived from the image are
// invalid afterwards.
func (img *Image) Close() error {
	if img.space == nil {
		return nil
	}
	space := img.space
	img.space = nil
	return img.allocator.Free(space)
}
