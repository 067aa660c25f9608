package filestorage

import (
	"errors"
	"mime/multipart"
)

// Upload rejections
var (
	ErrNoFile           = errors.New("no file uploaded")
	ErrFileTooLarge     = errors.New("file exceeds the upload size limit")
	ErrFileTypeRejected = errors.New("file type is not allowed")
	ErrInvalidPath      = errors.New("invalid file path")
)

// FileStorage defines the interface for file storage operations. Paths are
// relative to the storage root and use forward slashes.
type FileStorage interface {
	// SaveFile validates the upload against policy and stores it under subPath
	SaveFile(fileHeader *multipart.FileHeader, subPath string, policy Policy) (string, error)

	// DeleteFile removes a stored file; a missing file is not an error
	DeleteFile(path string) error

	// GetFullPath returns the filesystem path for a stored file
	GetFullPath(path string) (string, error)
}
