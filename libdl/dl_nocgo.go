//go:build !cgo && !windows
// +build !cgo,!windows

package libdl

import "errors"

var errNoCgo = errors.New("dynamic linking requires cgo")

func Open(string) (uintptr, error) { return 0, errNoCgo }

func LookupSymbol(uintptr, string) (uintptr, error) { return 0, errNoCgo }

func Close(uintptr) error { return errNoCgo }

func Call(uintptr, ...uintptr) (uintptr, error) { return 0, errNoCgo }
