package permissions

import (
	"fmt"

	"scholar-backend/domain/publication"
	pkgerrors "scholar-backend/pkg/errors"
)

// FileAllowStrategy grants one narrow permission on a file entry
type FileAllowStrategy interface {
	Name() string
	HasPermission(actor Actor, file *publication.FileEntry, op FileOperation) bool
}

// FileDenyStrategy vetoes file operations; a firing deny always wins.
type FileDenyStrategy interface {
	Name() string
	DeniesAction(actor Actor, file *publication.FileEntry, op FileOperation) bool
}

// FileAccess evaluates the fixed strategy registry for one file entry.
// The owning resource supplies customer scope for curator checks.
type FileAccess struct {
	file     *publication.FileEntry
	resource *publication.Resource
	allow    []FileAllowStrategy
	deny     []FileDenyStrategy
}

// NewFileAccess builds the evaluator for a file and its owning resource
func NewFileAccess(file *publication.FileEntry, resource *publication.Resource) *FileAccess {
	return &FileAccess{
		file:     file,
		resource: resource,
		allow: []FileAllowStrategy{
			fileUploaderStrategy{},
			fileCuratorStrategy{resource: resource},
			openFileAnyoneStrategy{},
		},
		deny: []FileDenyStrategy{
			hiddenFileDenyStrategy{resource: resource},
			internalFileDenyStrategy{},
		},
	}
}

// IsAllowed computes the pure aggregate decision
func (a *FileAccess) IsAllowed(actor Actor, op FileOperation) bool {
	if actor.IsZero() {
		return false
	}

	allowed := false
	for _, strategy := range a.allow {
		if strategy.HasPermission(actor, a.file, op) {
			allowed = true
			break
		}
	}

	for _, strategy := range a.deny {
		if strategy.DeniesAction(actor, a.file, op) {
			return false
		}
	}
	return allowed
}

// Authorize is the single translation point from decision to error.
func (a *FileAccess) Authorize(actor Actor, op FileOperation) error {
	if actor.IsZero() {
		return pkgerrors.NewUnauthorizedError("actor identity is missing")
	}
	if !a.IsAllowed(actor, op) {
		return pkgerrors.NewForbiddenError(
			fmt.Sprintf("actor %s may not %s file %s", actor.Username, op, a.file.Identifier))
	}
	return nil
}

// AllowedActions returns the operations the actor may perform
func (a *FileAccess) AllowedActions(actor Actor) []FileOperation {
	var actions []FileOperation
	for _, op := range AllFileOperations {
		if a.IsAllowed(actor, op) {
			actions = append(actions, op)
		}
	}
	return actions
}

// fileUploaderStrategy grants the uploader full control of their file
type fileUploaderStrategy struct{}

func (fileUploaderStrategy) Name() string { return "FileUploader" }

func (fileUploaderStrategy) HasPermission(actor Actor, file *publication.FileEntry, op FileOperation) bool {
	return actor.Username != "" && file.UploadedBy == actor.Username
}

// fileCuratorStrategy grants institution curators control over files on
// their customer's resources.
type fileCuratorStrategy struct {
	resource *publication.Resource
}

func (fileCuratorStrategy) Name() string { return "FileCurator" }

func (s fileCuratorStrategy) HasPermission(actor Actor, file *publication.FileEntry, op FileOperation) bool {
	return actor.HasAccessRight(ManageResourcesStandard) && actor.BelongsTo(s.resource.CustomerID)
}

// openFileAnyoneStrategy lets any authenticated actor download open files
type openFileAnyoneStrategy struct{}

func (openFileAnyoneStrategy) Name() string { return "OpenFileAnyone" }

func (openFileAnyoneStrategy) HasPermission(actor Actor, file *publication.FileEntry, op FileOperation) bool {
	return op == FileDownload && file.IsOpen()
}

// hiddenFileDenyStrategy blocks downloads of hidden files for everyone but
// the uploader and the customer's curators.
type hiddenFileDenyStrategy struct {
	resource *publication.Resource
}

func (hiddenFileDenyStrategy) Name() string { return "HiddenFileDeny" }

func (s hiddenFileDenyStrategy) DeniesAction(actor Actor, file *publication.FileEntry, op FileOperation) bool {
	if op != FileDownload || file.Visibility != publication.HiddenFile {
		return false
	}
	if file.UploadedBy == actor.Username {
		return false
	}
	return !(actor.HasAccessRight(ManageResourcesStandard) && actor.BelongsTo(s.resource.CustomerID))
}

// internalFileDenyStrategy keeps internal files away from external clients
type internalFileDenyStrategy struct{}

func (internalFileDenyStrategy) Name() string { return "InternalFileDeny" }

func (internalFileDenyStrategy) DeniesAction(actor Actor, file *publication.FileEntry, op FileOperation) bool {
	return file.Visibility == publication.InternalFile && actor.IsExternalClient
}
