package boxtree

import "github.com/pkg/errors"

var (
	// ErrStructure is wrapped by every error reporting a broken parent/child
	// relationship.
	ErrStructure = errors.New("invalid tree structure")

	// ErrStaleHandle is returned for handles whose node has been freed.
	ErrStaleHandle = errors.New("stale node handle")
)

func structuref(format string, args ...any) error {
	return errors.Wrapf(ErrStructure, format, args...)
}

func stale(h Handle) error {
	return errors.Wrapf(ErrStaleHandle, "%s", h)
}
