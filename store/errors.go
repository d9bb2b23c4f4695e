package store

import "errors"

var (
	// ErrChecksum indicates the stored checksum does not match the content.
	ErrChecksum = errors.New("store: checksum mismatch")

	// ErrVersion indicates an unsupported document version.
	ErrVersion = errors.New("store: unsupported version")

	// ErrCompression indicates an unknown compression name.
	ErrCompression = errors.New("store: unknown compression")
)
