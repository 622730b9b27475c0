package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrStorageUnavailable indicates local storage could not be opened or used
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrWriteConflict indicates a storage transaction failed to commit
	ErrWriteConflict = errors.New("storage transaction failed to commit")

	// ErrInvalidVideo indicates a video snapshot without a video id
	ErrInvalidVideo = errors.New("video id is required")

	// ErrSchemaDowngrade indicates the database was written by a newer schema
	ErrSchemaDowngrade = errors.New("stored schema is newer than requested")

	// ErrNoSourceVideo indicates a video without an external platform id
	ErrNoSourceVideo = errors.New("video has no source video id")
)

// ErrorKind returns a short classification of err for diagnostics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, ErrWriteConflict):
		return "write_conflict"
	case errors.Is(err, ErrInvalidVideo):
		return "invalid_video"
	case errors.Is(err, ErrSchemaDowngrade):
		return "schema_downgrade"
	default:
		return "unknown"
	}
}
