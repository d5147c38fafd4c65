package discimage

import "errors"

// Load failure kinds, surfaced to callers of LoadFromFile/LoadFromBuffer.
var (
	ErrEmpty            = errors.New("discimage: image is empty")
	ErrNotSectorMultiple = errors.New("discimage: size is not a multiple of the sector size")
	ErrUnknownGeometry   = errors.New("discimage: no known geometry matches this image")
	ErrZipOpenFailed     = errors.New("discimage: failed to open zip archive")
	ErrZipStatFailed     = errors.New("discimage: failed to stat zip archive entry")
	ErrZipEntryTooLarge  = errors.New("discimage: zip archive entry is too large")
	ErrZipMultipleImages = errors.New("discimage: zip archive contains multiple disc images")
	ErrZipNoImages       = errors.New("discimage: zip archive contains no disc images")
	ErrZipExtractFailed  = errors.New("discimage: failed to extract disc image from zip archive")
	ErrReadFailed        = errors.New("discimage: failed to read disc image file")

	// ErrOutOfGeometry is returned by Read/Write for a side/track/sector
	// outside the image's geometry; it is not one of the Load error kinds.
	ErrOutOfGeometry = errors.New("discimage: side/track/sector is outside the image's geometry")

	// ErrCannotSave is returned by Save when the image was not loaded
	// with method "file" (e.g. it came from inside a zip archive).
	ErrCannotSave = errors.New("discimage: image cannot be saved back to its original source")
)
