package domain

import "errors"

var (
	// ErrMalformedRecord is returned when a scene record is not well-formed JSON
	// or a top-level key has the wrong shape.
	ErrMalformedRecord = errors.New("malformed scene record")

	ErrSessionNotFound = errors.New("session not found")
	ErrSceneNotFound   = errors.New("scene not found")

	// ErrOriginUnset is returned by operations that derive geometry from the origin.
	ErrOriginUnset = errors.New("scene origin is not set")

	// ErrInvalidInput covers unknown fields, pointer kinds and capture modes.
	ErrInvalidInput = errors.New("invalid input")
)
