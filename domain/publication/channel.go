package publication

import (
	"strings"
	"time"

	"scholar-backend/domain/identifier"
	pkgerrors "scholar-backend/pkg/errors"
)

// ChannelType names the kind of publication venue
type ChannelType string

const (
	ChannelJournal   ChannelType = "Journal"
	ChannelSeries    ChannelType = "Series"
	ChannelPublisher ChannelType = "Publisher"
)

// ChannelPolicy controls who may use a claimed channel for a given scope
type ChannelPolicy string

const (
	PolicyOwnerOnly ChannelPolicy = "OwnerOnly"
	PolicyEveryone  ChannelPolicy = "Everyone"
)

// ParseChannelPolicy resolves a wire token; unknown tokens fail.
func ParseChannelPolicy(raw string) (ChannelPolicy, error) {
	trimmed := strings.TrimSpace(raw)
	for _, p := range []ChannelPolicy{PolicyOwnerOnly, PolicyEveryone} {
		if strings.EqualFold(string(p), trimmed) {
			return p, nil
		}
	}
	return "", pkgerrors.NewValidationError("unknown channel policy " + raw)
}

// Channel is a named venue (journal, series, publisher) a resource publishes
// into. A customer may claim a channel and restrict who can publish into or
// edit resources associated with it.
type Channel struct {
	Identifier       identifier.SortableIdentifier `json:"identifier"`
	CustomerID       string                        `json:"customerId"`
	Type             ChannelType                   `json:"type"`
	Claimed          bool                          `json:"claimed"`
	PublishingPolicy ChannelPolicy                 `json:"publishingPolicy"`
	EditingPolicy    ChannelPolicy                 `json:"editingPolicy"`
	CreatedAt        time.Time                     `json:"createdAt"`
	ModifiedAt       time.Time                     `json:"modifiedAt"`
	Version          int                           `json:"version"`
}

// NewChannel creates an unclaimed channel record scoped to a customer
func NewChannel(customerID string, channelType ChannelType) (*Channel, error) {
	if customerID == "" {
		return nil, pkgerrors.NewValidationError("customerId cannot be empty")
	}
	switch channelType {
	case ChannelJournal, ChannelSeries, ChannelPublisher:
	default:
		return nil, pkgerrors.NewValidationError("unknown channel type " + string(channelType))
	}

	now := time.Now().UTC()
	return &Channel{
		Identifier:       identifier.New(),
		CustomerID:       customerID,
		Type:             channelType,
		Claimed:          false,
		PublishingPolicy: PolicyEveryone,
		EditingPolicy:    PolicyEveryone,
		CreatedAt:        now,
		ModifiedAt:       now,
		Version:          1,
	}, nil
}

// Claim marks the channel as claimed with the given scope policies
func (c *Channel) Claim(publishing, editing ChannelPolicy) {
	c.Claimed = true
	c.PublishingPolicy = publishing
	c.EditingPolicy = editing
	c.ModifiedAt = time.Now().UTC()
}

// Unclaim releases the claim and resets policies to open
func (c *Channel) Unclaim() {
	c.Claimed = false
	c.PublishingPolicy = PolicyEveryone
	c.EditingPolicy = PolicyEveryone
	c.ModifiedAt = time.Now().UTC()
}

// RestrictsEditingFor reports whether the channel blocks editing for actors
// outside the claiming customer.
func (c *Channel) RestrictsEditingFor(customerID string) bool {
	return c.Claimed && c.EditingPolicy == PolicyOwnerOnly && c.CustomerID != customerID
}

// RestrictsPublishingFor reports whether the channel blocks publishing for
// actors outside the claiming customer.
func (c *Channel) RestrictsPublishingFor(customerID string) bool {
	return c.Claimed && c.PublishingPolicy == PolicyOwnerOnly && c.CustomerID != customerID
}
