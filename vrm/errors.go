package vrm

import "errors"

var (
	ErrNoVRMExtension     = errors.New("vrm: no VRM extension")
	ErrMalformedExtension = errors.New("vrm: malformed extension")
)
