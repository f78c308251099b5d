package optimizer

import "errors"

var (
	// ErrUnknownProfile is returned when a requested profile name is not in
	// the fixed profile table
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrDecode is returned when the source bytes cannot be decoded as an image
	ErrDecode = errors.New("image decode failed")

	// ErrEncode is returned when re-encoding a variant fails
	ErrEncode = errors.New("image encode failed")
)
