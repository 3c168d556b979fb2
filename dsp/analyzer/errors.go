package analyzer

import "errors"

var (
	// ErrInvalidConfiguration reports a window length or option that cannot
	// produce an analyzer. It is not recoverable by retrying.
	ErrInvalidConfiguration = errors.New("analyzer: invalid configuration")

	// ErrInvalidInput reports a sample or output block whose length does not
	// match the analyzer. Blocks are never truncated or padded.
	ErrInvalidInput = errors.New("analyzer: invalid input")
)
