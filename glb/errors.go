package glb

import (
	"errors"
	"fmt"
)

var ErrMalformedContainer = errors.New("glb: malformed container")

var (
	ErrTooShort             = fmt.Errorf("%w: too short", ErrMalformedContainer)
	ErrBadMagic             = fmt.Errorf("%w: bad magic", ErrMalformedContainer)
	ErrUnsupportedVersion   = fmt.Errorf("%w: unsupported version", ErrMalformedContainer)
	ErrLengthMismatch       = fmt.Errorf("%w: length mismatch", ErrMalformedContainer)
	ErrTruncatedChunkHeader = fmt.Errorf("%w: truncated chunk header", ErrMalformedContainer)
	ErrFirstChunkNotJSON    = fmt.Errorf("%w: first chunk is not JSON", ErrMalformedContainer)
	ErrMalformedChunkStream = fmt.Errorf("%w: malformed chunk stream", ErrMalformedContainer)
)

// ErrInvalidJSON is returned when the JSON chunk is not a JSON object.
var ErrInvalidJSON = errors.New("glb: invalid JSON chunk")
