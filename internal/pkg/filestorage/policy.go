package filestorage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Policy gates an upload by extension and size
type Policy struct {
	AllowedExtensions []string
	MaxBytes          int64
}

// CoverPolicy accepts book cover images
func CoverPolicy(maxBytes int64) Policy {
	return Policy{AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif"}, MaxBytes: maxBytes}
}

// IdentityProofPolicy accepts scanned identity documents
func IdentityProofPolicy(maxBytes int64) Policy {
	return Policy{AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".pdf"}, MaxBytes: maxBytes}
}

// Validate checks fileHeader without reading its content
func (p Policy) Validate(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil || fileHeader.Filename == "" {
		return ErrNoFile
	}
	if p.MaxBytes > 0 && fileHeader.Size > p.MaxBytes {
		return fmt.Errorf("%w (%d bytes max)", ErrFileTooLarge, p.MaxBytes)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, allowed := range p.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: allowed types are %s", ErrFileTypeRejected, strings.Join(p.AllowedExtensions, ", "))
}
