package link

import (
	"debug/elf"
	"fmt"
)

// sectionBytes returns a view of section i. Resident sections alias the
// address space, so writes through the view are visible through the image.
// Non-resident sections are read from the source on first use and memoized.
func (img *Image) sectionBytes(i int) ([]byte, error) {
	if i < 0 || i >= len(img.sections) {
		return nil, layoutError(i, ErrSectionOutOfRange, "image has %d sections", len(img.sections))
	}
	s := &img.sections[i]
	if s.Resident() {
		end := s.Addr + s.Size
		if end < s.Addr || end > uint64(len(img.space)) {
			return nil, layoutError(i, ErrSectionOutOfRange,
				"[0x%x, 0x%x) outside address space of 0x%x bytes", s.Addr, end, len(img.space))
		}
		return img.space[s.Addr:end:end], nil
	}
	if b, ok := img.sectionCache[i]; ok {
		return b, nil
	}
	var b []byte
	if s.Type == elf.SHT_NOBITS {
		if s.Size > maxAddressSpace {
			return nil, layoutError(i, ErrSectionOutOfRange, "0x%x zero bytes exceed 0x%x", s.Size, uint64(maxAddressSpace))
		}
		b = make([]byte, s.Size)
	} else {
		var err error
		if b, err = img.reader.BytesAt(s.Offset, s.Size); err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
	}
	img.sectionCache[i] = b
	return b, nil
}

// Section returns the bytes of section i. See sectionBytes for aliasing.
func (img *Image) Section(i int) ([]byte, error) {
	return img.sectionBytes(i)
}

func (img *Image) sectionName(i int) string {
	if i < 0 || i >= len(img.sections) {
		return ""
	}
	return cstring(img.shstrtab, uint64(img.sections[i].Name))
}

// SectionName returns the name of section i from the section header string
// table.
func (img *Image) SectionName(i int) string {
	return img.sectionName(i)
}

// SectionByName returns the index of the first section called name.
func (img *Image) SectionByName(name string) (int, bool) {
	for i := range img.sections {
		if img.sectionName(i) == name {
			return i, true
		}
	}
	return 0, false
}

// cstring reads the NUL terminated string at offset off of tab. Offsets past
// the table yield the empty string and a missing terminator ends the string
// at the end of the table.
func cstring(tab []byte, off uint64) string {
	if off >= uint64(len(tab)) {
		return ""
	}
	s := tab[off:]
	for i, c := range s {
		if c == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}
