package permissions

// ResourceOperation names a mutating or privileged action on a resource
type ResourceOperation string

const (
	ResourceUpdate    ResourceOperation = "UPDATE"
	ResourceUnpublish ResourceOperation = "UNPUBLISH"
	ResourceRepublish ResourceOperation = "REPUBLISH"
	ResourceDelete    ResourceOperation = "DELETE"
	ResourceTransfer  ResourceOperation = "TRANSFER"
)

// AllResourceOperations is the closed operation set used when computing
// capability lists.
var AllResourceOperations = []ResourceOperation{
	ResourceUpdate, ResourceUnpublish, ResourceRepublish, ResourceDelete, ResourceTransfer,
}

// TicketOperation names an action on a ticket
type TicketOperation string

const (
	TicketRead       TicketOperation = "READ"
	TicketAssign     TicketOperation = "ASSIGN"
	TicketTransition TicketOperation = "TRANSITION"
)

// AllTicketOperations is the closed operation set for tickets.
var AllTicketOperations = []TicketOperation{TicketRead, TicketAssign, TicketTransition}

// IsMutating reports whether the operation changes ticket state
func (op TicketOperation) IsMutating() bool {
	return op != TicketRead
}

// FileOperation names an action on a file entry
type FileOperation string

const (
	FileDownload      FileOperation = "DOWNLOAD"
	FileWriteMetadata FileOperation = "WRITE_METADATA"
	FileDelete        FileOperation = "DELETE"
)

// AllFileOperations is the closed operation set for files.
var AllFileOperations = []FileOperation{FileDownload, FileWriteMetadata, FileDelete}
