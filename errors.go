package bucketgate

import "errors"

var (
	// ErrNotFound is returned when no object exists at the requested key
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStorageWrite is returned when the backend rejects an upload
	ErrStorageWrite = errors.New("storage write failed")
	// ErrStorageDelete is returned when the backend rejects a delete
	ErrStorageDelete = errors.New("storage delete failed")
	// ErrPresign is returned when a download URL could not be generated
	ErrPresign = errors.New("presign failed")
)
