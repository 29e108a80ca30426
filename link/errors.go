package link

import (
	"errors"
	"fmt"
)

// format errors
var (
	ErrInvalidSignature       = errors.New("file does not identify as ELF")
	ErrUnsupportedClass       = errors.New("unsupported ELF class")
	ErrUnsupportedData        = errors.New("unsupported ELF data encoding")
	ErrIncompatibleVersion    = errors.New("incompatible ELF version")
	ErrIncompatibleMachine    = errors.New("incompatible machine type")
	ErrUnsupportedSectionSize = errors.New("section header size is not supported")
	ErrUnsupportedProgramSize = errors.New("program header size is not supported")
)

// layout errors
var (
	ErrUnsupportedSymbolSize     = errors.New("symbol table size is not supported")
	ErrUnsupportedRelocationSize = errors.New("relocation table size is not supported")
	ErrUnexpectedSectionType     = errors.New("encountered unexpected section type")
	ErrSymbolIndexOutOfRange     = errors.New("symbol index out of range")
	ErrSectionOutOfRange         = errors.New("section out of range")
)

// link errors
var (
	ErrUnexpectedRelocationType = errors.New("unexpected relocation type")
	ErrUnresolvedSymbol         = errors.New("unresolved symbol")
	ErrSymbolNotFound           = errors.New("symbol not found")
)

// FormatError reports an ELF header that this loader refuses to read.
type FormatError struct {
	Err    error
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatError(err error, format string, args ...interface{}) error {
	return &FormatError{Err: err, Detail: fmt.Sprintf(format, args...)}
}

// LayoutError reports a section whose size or type does not fit the record
// layout it is used as.
type LayoutError struct {
	Section int
	Err     error
	Detail  string
}

func (e *LayoutError) Error() string {
	s := fmt.Sprintf("section %d: %s", e.Section, e.Err)
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

func (e *LayoutError) Unwrap() error { return e.Err }

func layoutError(section int, err error, format string, args ...interface{}) error {
	return &LayoutError{Section: section, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// LinkError reports a relocation or symbol that cannot be bound.
type LinkError struct {
	Err      error
	Type     uint32
	TypeName string
	Symbol   string
}

func (e *LinkError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnexpectedRelocationType):
		return fmt.Sprintf("%s: %s (%d) for symbol %q", e.Err, e.TypeName, e.Type, e.Symbol)
	default:
		return fmt.Sprintf("%s: %s", e.Err, e.Symbol)
	}
}

func (e *LinkError) Unwrap() error { return e.Err }
