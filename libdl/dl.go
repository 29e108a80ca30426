package libdl

import (
	"errors"
	"fmt"
)

// MaxArgs is the largest argument count Call supports.
const MaxArgs = 6

var ErrTooManyArgs = fmt.Errorf("at most %d arguments are supported", MaxArgs)

// ErrNotFound is wrapped by Resolve for symbols no library exports.
var ErrNotFound = errors.New("symbol not found in any library")

// Resolve looks names up in handles, in order, and returns the first address
// found for each. Names no library exports are reported through a single
// error wrapping ErrNotFound; the map still holds every name that resolved.
func Resolve(handles []uintptr, names []string) (map[string]uintptr, error) {
	shims := make(map[string]uintptr, len(names))
	var missing []string
	for _, name := range names {
		found := false
		for _, h := range handles {
			if addr, err := LookupSymbol(h, name); err == nil {
				shims[name] = addr
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return shims, fmt.Errorf("%w: %q", ErrNotFound, missing)
	}
	return shims, nil
}
