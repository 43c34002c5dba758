package molsim

import (
	"errors"

	"github.com/gomolsim/molsim/simerr"
)

// IsFatal reports whether err carries a fatal simerr.Kind, for the
// top-level driver to decide between continuing past a warning and
// exiting the process (spec.md §7).
func IsFatal(err error) bool {
	var se *simerr.Error
	if !errors.As(err, &se) {
		return true // an unclassified error is conservatively treated as fatal
	}
	return se.Kind.Fatal()
}
