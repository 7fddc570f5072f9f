package dynamodb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"scholar-backend/domain/identifier"
	"scholar-backend/domain/publication"
	"scholar-backend/domain/tickets"
	pkgerrors "scholar-backend/pkg/errors"
)

// Entity type tags. These are the closed set of discriminants stored on
// every record; deserialization is a single switch over them.
const (
	TypeResource = "Resource"
	TypeTicket   = "Ticket"
	TypeFile     = "FileEntry"
	TypeLogEntry = "LogEntry"
	TypeChannel  = "PublicationChannel"
)

const keyDelimiter = "#"

// Record is the single-table storage representation shared by every entry
// variant. Index projections are pure functions of the payload's own fields,
// recomputed on every write.
type Record struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Identifier string `dynamodbav:"Identifier"`
	Payload    []byte `dynamodbav:"Payload"`
	Version    int    `dynamodbav:"Version"`
	ModifiedAt string `dynamodbav:"ModifiedAt"`

	// GSI1: list by type + customer + status.
	ByTypeCustomerStatusPK string `dynamodbav:"ByTypeCustomerStatusPK,omitempty"`
	ByTypeCustomerStatusSK string `dynamodbav:"ByTypeCustomerStatusSK,omitempty"`

	// GSI2: tickets (and files) by owning resource.
	ResourceByIdentifierPK string `dynamodbav:"ResourceByIdentifierPK,omitempty"`
	ResourceByIdentifierSK string `dynamodbav:"ResourceByIdentifierSK,omitempty"`
}

func primaryKey(entityType string, id identifier.SortableIdentifier) (string, string) {
	return entityType + keyDelimiter + id.String(), entityType
}

func byTypeCustomerStatusKeys(entityType, customerID, status string, id identifier.SortableIdentifier) (string, string) {
	pk := entityType + keyDelimiter + "Customer" + keyDelimiter + customerID
	sk := "Status" + keyDelimiter + status + keyDelimiter + id.String()
	return pk, sk
}

func resourceProjectionKeys(entityType string, resourceID, id identifier.SortableIdentifier) (string, string) {
	pk := TypeResource + keyDelimiter + resourceID.String()
	sk := entityType + keyDelimiter + id.String()
	return pk, sk
}

// ToRecord maps a typed entry to its storage record. The payload is the
// gzip-compressed JSON of the entity itself.
func ToRecord(entry any) (Record, error) {
	switch e := entry.(type) {
	case *publication.Resource:
		rec, err := newRecord(TypeResource, e.Identifier, e.Version, e.ModifiedAt, e)
		if err != nil {
			return Record{}, err
		}
		rec.ByTypeCustomerStatusPK, rec.ByTypeCustomerStatusSK =
			byTypeCustomerStatusKeys(TypeResource, e.CustomerID, string(e.Status), e.Identifier)
		rec.ResourceByIdentifierPK, rec.ResourceByIdentifierSK =
			resourceProjectionKeys(TypeResource, e.Identifier, e.Identifier)
		return rec, nil

	case *tickets.Ticket:
		rec, err := newRecord(TypeTicket, e.Identifier, e.Version, e.ModifiedAt, e)
		if err != nil {
			return Record{}, err
		}
		rec.ByTypeCustomerStatusPK, rec.ByTypeCustomerStatusSK =
			byTypeCustomerStatusKeys(TypeTicket, e.CustomerID, string(e.Status), e.Identifier)
		rec.ResourceByIdentifierPK, rec.ResourceByIdentifierSK =
			resourceProjectionKeys(TypeTicket, e.ResourceIdentifier, e.Identifier)
		return rec, nil

	case *publication.FileEntry:
		rec, err := newRecord(TypeFile, e.Identifier, e.Version, e.ModifiedAt, e)
		if err != nil {
			return Record{}, err
		}
		rec.ResourceByIdentifierPK, rec.ResourceByIdentifierSK =
			resourceProjectionKeys(TypeFile, e.ResourceIdentifier, e.Identifier)
		return rec, nil

	case *publication.LogEntry:
		rec, err := newRecord(TypeLogEntry, e.Identifier, e.Version, e.Timestamp, e)
		if err != nil {
			return Record{}, err
		}
		rec.ResourceByIdentifierPK, rec.ResourceByIdentifierSK =
			resourceProjectionKeys(TypeLogEntry, e.ResourceIdentifier, e.Identifier)
		return rec, nil

	case *publication.Channel:
		return newRecord(TypeChannel, e.Identifier, e.Version, e.ModifiedAt, e)

	default:
		return Record{}, pkgerrors.NewUnknownTypeError(fmt.Sprintf("%T", entry))
	}
}

// FromRecord maps a storage record back to its typed entry, dispatching on
// the entity type tag.
func FromRecord(rec Record) (any, error) {
	switch rec.EntityType {
	case TypeResource:
		return decodePayload[publication.Resource](rec)
	case TypeTicket:
		return decodePayload[tickets.Ticket](rec)
	case TypeFile:
		return decodePayload[publication.FileEntry](rec)
	case TypeLogEntry:
		return decodePayload[publication.LogEntry](rec)
	case TypeChannel:
		return decodePayload[publication.Channel](rec)
	default:
		return nil, pkgerrors.NewUnknownTypeError(rec.EntityType)
	}
}

func newRecord(entityType string, id identifier.SortableIdentifier, version int, modified time.Time, payload any) (Record, error) {
	if id.IsZero() {
		return Record{}, pkgerrors.NewValidationError(entityType + " entry has no identifier")
	}
	compressed, err := compressPayload(payload)
	if err != nil {
		return Record{}, err
	}
	pk, sk := primaryKey(entityType, id)
	return Record{
		PK:         pk,
		SK:         sk,
		EntityType: entityType,
		Identifier: id.String(),
		Payload:    compressed,
		Version:    version,
		ModifiedAt: modified.UTC().Format(time.RFC3339Nano),
	}, nil
}

func compressPayload(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.NewInternalError("marshal entry payload").WithCause(err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, pkgerrors.NewInternalError("compress entry payload").WithCause(err)
	}
	if err := zw.Close(); err != nil {
		return nil, pkgerrors.NewInternalError("compress entry payload").WithCause(err)
	}
	return buf.Bytes(), nil
}

func decodePayload[T any](rec Record) (*T, error) {
	zr, err := gzip.NewReader(bytes.NewReader(rec.Payload))
	if err != nil {
		return nil, pkgerrors.NewCorruptPayloadError(
			fmt.Sprintf("payload of %s %s is not valid gzip", rec.EntityType, rec.Identifier), err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, pkgerrors.NewCorruptPayloadError(
			fmt.Sprintf("payload of %s %s failed decompression", rec.EntityType, rec.Identifier), err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, pkgerrors.NewCorruptPayloadError(
			fmt.Sprintf("payload of %s %s failed deserialization", rec.EntityType, rec.Identifier), err)
	}
	return &out, nil
}
