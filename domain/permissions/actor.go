package permissions

// AccessRight is a granted capability token carried on the actor descriptor.
// The set is issued upstream; this package only consumes it.
type AccessRight string

const (
	ManageDOI               AccessRight = "MANAGE_DOI"
	ManagePublishingRequest AccessRight = "MANAGE_PUBLISHING_REQUESTS"
	ManageDegree            AccessRight = "MANAGE_DEGREE"
	ManageDegreeEmbargo     AccessRight = "MANAGE_DEGREE_EMBARGO"
	ManageResourcesStandard AccessRight = "MANAGE_RESOURCES_STANDARD"
	ManageResourcesAll      AccessRight = "MANAGE_RESOURCES_ALL"
	Support                 AccessRight = "SUPPORT"
	ManageChannelClaims     AccessRight = "MANAGE_CHANNEL_CLAIMS"
)

// Actor is the opaque authorization input: an authenticated identity with a
// home organization and granted access rights. This package never
// authenticates; a zero Actor simply has no permissions.
type Actor struct {
	Username         string
	OrganizationID   string
	AccessRights     []AccessRight
	IsExternalClient bool
}

// IsZero reports whether the actor identity is missing
func (a Actor) IsZero() bool {
	return a.Username == "" && !a.IsExternalClient
}

// HasAccessRight reports whether the actor holds the given right
func (a Actor) HasAccessRight(right AccessRight) bool {
	for _, granted := range a.AccessRights {
		if granted == right {
			return true
		}
	}
	return false
}

// BelongsTo reports whether the actor's home organization matches
func (a Actor) BelongsTo(organizationID string) bool {
	return organizationID != "" && a.OrganizationID == organizationID
}
