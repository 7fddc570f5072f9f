package publication

import (
	"strings"
	"time"

	"scholar-backend/domain/identifier"
	pkgerrors "scholar-backend/pkg/errors"
)

// FileVisibility classifies who may see a file attached to a resource
type FileVisibility string

const (
	OpenFile     FileVisibility = "OpenFile"
	HiddenFile   FileVisibility = "HiddenFile"
	PendingFile  FileVisibility = "PendingFile"
	InternalFile FileVisibility = "InternalFile"
)

var fileVisibilities = map[FileVisibility]bool{
	OpenFile:     true,
	HiddenFile:   true,
	PendingFile:  true,
	InternalFile: true,
}

// ParseFileVisibility resolves a wire token; unknown tokens fail.
func ParseFileVisibility(raw string) (FileVisibility, error) {
	trimmed := strings.TrimSpace(raw)
	for v := range fileVisibilities {
		if strings.EqualFold(string(v), trimmed) {
			return v, nil
		}
	}
	return "", pkgerrors.NewValidationError("unknown file visibility " + raw)
}

// FileEntry describes one artifact attached to a resource. Its lifetime is
// bound to the owning resource.
type FileEntry struct {
	Identifier         identifier.SortableIdentifier `json:"identifier"`
	ResourceIdentifier identifier.SortableIdentifier `json:"resourceIdentifier"`
	Filename           string                        `json:"filename"`
	Visibility         FileVisibility                `json:"visibility"`
	UploadedBy         string                        `json:"uploadedBy"`
	SizeBytes          int64                         `json:"sizeBytes,omitempty"`
	CreatedAt          time.Time                     `json:"createdAt"`
	ModifiedAt         time.Time                     `json:"modifiedAt"`
	Version            int                           `json:"version"`
}

// NewFileEntry creates a file entry in the pending state; curation moves it
// to open or hidden later.
func NewFileEntry(resourceID identifier.SortableIdentifier, filename, uploadedBy string) (*FileEntry, error) {
	if resourceID.IsZero() {
		return nil, pkgerrors.NewValidationError("resource identifier cannot be empty")
	}
	if filename == "" {
		return nil, pkgerrors.NewValidationError("filename cannot be empty")
	}

	now := time.Now().UTC()
	return &FileEntry{
		Identifier:         identifier.New(),
		ResourceIdentifier: resourceID,
		Filename:           filename,
		Visibility:         PendingFile,
		UploadedBy:         uploadedBy,
		CreatedAt:          now,
		ModifiedAt:         now,
		Version:            1,
	}, nil
}

// Approve makes the file openly visible
func (f *FileEntry) Approve() {
	f.Visibility = OpenFile
	f.ModifiedAt = time.Now().UTC()
}

// Hide restricts the file to curators and the owner
func (f *FileEntry) Hide() {
	f.Visibility = HiddenFile
	f.ModifiedAt = time.Now().UTC()
}

// IsOpen reports whether the file is publicly downloadable
func (f *FileEntry) IsOpen() bool {
	return f.Visibility == OpenFile
}
