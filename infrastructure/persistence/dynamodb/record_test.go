package dynamodb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-backend/domain/identifier"
	"scholar-backend/domain/publication"
	"scholar-backend/domain/tickets"
	pkgerrors "scholar-backend/pkg/errors"
)

func TestResourceRoundTrip(t *testing.T) {
	r, err := publication.NewResource("jdoe", "https://api.example.org/customer/uio")
	require.NoError(t, err)
	require.NoError(t, r.SetDOI("https://doi.org/10.1000/example"))
	r.Contributors = []string{"coauthor"}
	f, err := publication.NewFileEntry(r.Identifier, "thesis.pdf", "jdoe")
	require.NoError(t, err)
	require.NoError(t, r.AttachFile(*f))

	rec, err := ToRecord(r)
	require.NoError(t, err)
	assert.Equal(t, TypeResource, rec.EntityType)
	assert.Equal(t, "Resource#"+r.Identifier.String(), rec.PK)
	assert.Equal(t, "Resource", rec.SK)
	assert.True(t, strings.HasPrefix(rec.ByTypeCustomerStatusPK, "Resource#Customer#"))
	assert.True(t, strings.HasPrefix(rec.ByTypeCustomerStatusSK, "Status#DRAFT#"))

	decoded, err := FromRecord(rec)
	require.NoError(t, err)
	got, ok := decoded.(*publication.Resource)
	require.True(t, ok)
	assert.Equal(t, r, got)
}

func TestResourceRoundTripWithAbsentOptionals(t *testing.T) {
	r, err := publication.NewResource("jdoe", "customer")
	require.NoError(t, err)

	rec, err := ToRecord(r)
	require.NoError(t, err)

	decoded, err := FromRecord(rec)
	require.NoError(t, err)
	got := decoded.(*publication.Resource)
	assert.Equal(t, r, got)
	assert.Empty(t, got.DOI)
	assert.Nil(t, got.AssociatedFiles)
}

func TestTicketRoundTrip(t *testing.T) {
	ticket, err := tickets.NewTicket(tickets.TypePublishingRequest, identifier.New(), "jdoe", "customer")
	require.NoError(t, err)
	require.NoError(t, ticket.Assign("curator"))
	ticket.MarkViewedBy("curator")

	rec, err := ToRecord(ticket)
	require.NoError(t, err)
	assert.Equal(t, "Resource#"+ticket.ResourceIdentifier.String(), rec.ResourceByIdentifierPK)
	assert.Equal(t, "Ticket#"+ticket.Identifier.String(), rec.ResourceByIdentifierSK)

	decoded, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, ticket, decoded.(*tickets.Ticket))
}

func TestFileEntryRoundTrip(t *testing.T) {
	f, err := publication.NewFileEntry(identifier.New(), "data.csv", "jdoe")
	require.NoError(t, err)
	f.Hide()

	rec, err := ToRecord(f)
	require.NoError(t, err)

	decoded, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, f, decoded.(*publication.FileEntry))
}

func TestLogEntryRoundTrip(t *testing.T) {
	entry := publication.NewLogEntry(identifier.New(), "jdoe", "PublicationPublished")

	rec, err := ToRecord(entry)
	require.NoError(t, err)

	decoded, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded.(*publication.LogEntry))
}

func TestChannelRoundTrip(t *testing.T) {
	channel, err := publication.NewChannel("customer", publication.ChannelJournal)
	require.NoError(t, err)
	channel.Claim(publication.PolicyOwnerOnly, publication.PolicyEveryone)

	rec, err := ToRecord(channel)
	require.NoError(t, err)
	assert.Empty(t, rec.ByTypeCustomerStatusPK)

	decoded, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, channel, decoded.(*publication.Channel))
}

func TestFromRecordUnknownType(t *testing.T) {
	r, err := publication.NewResource("jdoe", "customer")
	require.NoError(t, err)
	rec, err := ToRecord(r)
	require.NoError(t, err)
	rec.EntityType = "Mystery"

	_, err = FromRecord(rec)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnknownType))
}

func TestFromRecordCorruptPayload(t *testing.T) {
	r, err := publication.NewResource("jdoe", "customer")
	require.NoError(t, err)
	rec, err := ToRecord(r)
	require.NoError(t, err)

	t.Run("not gzip", func(t *testing.T) {
		broken := rec
		broken.Payload = []byte("definitely not gzip")
		_, err := FromRecord(broken)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeCorruptPayload))
	})

	t.Run("truncated", func(t *testing.T) {
		broken := rec
		broken.Payload = rec.Payload[:len(rec.Payload)/2]
		_, err := FromRecord(broken)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeCorruptPayload))
	})
}

func TestToRecordRejectsUnknownEntry(t *testing.T) {
	_, err := ToRecord(struct{}{})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnknownType))
}

func TestToRecordRejectsMissingIdentifier(t *testing.T) {
	_, err := ToRecord(&publication.Resource{})
	assert.Error(t, err)
}
