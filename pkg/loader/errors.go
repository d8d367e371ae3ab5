package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means the bytes could not be fetched.
	ErrUnreachable = errors.New("model unreachable")
	// ErrMalformed means a codec rejected the bytes.
	ErrMalformed = errors.New("malformed model data")
	// ErrUnsupportedFormat means no codec is registered for the format.
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// LoadError reports a failed load. Err wraps one of the sentinels above.
type LoadError struct {
	URL    string
	Format Format
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s model %q: %v", e.Format, e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
