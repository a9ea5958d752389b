package source

import "errors"

var (
	// ErrBadArchive indicates a corrupt, encrypted, or unsupported archive.
	ErrBadArchive = errors.New("bad or unsupported archive")

	// ErrUnsafePath indicates an archive entry whose resolved path would
	// escape the extraction root (Zip-Slip).
	ErrUnsafePath = errors.New("archive entry escapes extraction root")
)
