package identifier

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	timestampLen = 12
	suffixLen    = 12
	totalLen     = timestampLen + suffixLen
)

// SortableIdentifier is a value object identifying every persisted entity.
// Its string form is 12 hex chars of millisecond timestamp followed by 12 hex
// chars of random suffix, so lexicographic order matches creation order.
// Value objects are immutable and have no identity beyond their value.
type SortableIdentifier struct {
	value string
}

var (
	mu       sync.Mutex
	lastTick int64
	lastID   string
)

// New creates a new SortableIdentifier. Identifiers created on later
// wall-clock ticks compare strictly greater than earlier ones; within the
// same tick a process-local guard regenerates the suffix until the new value
// exceeds the previous one, so New is monotonic within a process too.
func New() SortableIdentifier {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UnixMilli()
	if now < lastTick {
		now = lastTick
	}

	for {
		candidate := fmt.Sprintf("%012x%s", now, randomSuffix())
		if candidate > lastID {
			lastTick = now
			lastID = candidate
			return SortableIdentifier{value: candidate}
		}
	}
}

// Parse creates a SortableIdentifier from an existing string
func Parse(s string) (SortableIdentifier, error) {
	if s == "" {
		return SortableIdentifier{}, errors.New("identifier cannot be empty")
	}
	if len(s) != totalLen {
		return SortableIdentifier{}, fmt.Errorf("identifier must be %d characters, got %d", totalLen, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return SortableIdentifier{}, fmt.Errorf("identifier must be lowercase hex: %w", err)
	}
	return SortableIdentifier{value: s}, nil
}

// MustParse parses s and panics on failure. For tests and constants only.
func MustParse(s string) SortableIdentifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the identifier
func (id SortableIdentifier) String() string {
	return id.value
}

// Equals checks if two identifiers are equal
func (id SortableIdentifier) Equals(other SortableIdentifier) bool {
	return id.value == other.value
}

// IsZero checks if the identifier is the zero value
func (id SortableIdentifier) IsZero() bool {
	return id.value == ""
}

// Compare orders two identifiers; the result matches creation order.
func (id SortableIdentifier) Compare(other SortableIdentifier) int {
	switch {
	case id.value < other.value:
		return -1
	case id.value > other.value:
		return 1
	default:
		return 0
	}
}

// Timestamp returns the creation instant encoded in the identifier.
func (id SortableIdentifier) Timestamp() (time.Time, error) {
	if id.IsZero() {
		return time.Time{}, errors.New("zero identifier has no timestamp")
	}
	raw, err := hex.DecodeString(id.value[:timestampLen])
	if err != nil {
		return time.Time{}, err
	}
	padded := make([]byte, 8)
	copy(padded[8-len(raw):], raw)
	millis := int64(binary.BigEndian.Uint64(padded))
	return time.UnixMilli(millis), nil
}

// MarshalJSON implements json.Marshaler
func (id SortableIdentifier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *SortableIdentifier) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		id.value = ""
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("identifier must be a string")
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// randomSuffix returns 6 random bytes hex encoded (48 bits of entropy).
func randomSuffix() string {
	buf := make([]byte, suffixLen/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process has bigger problems
		panic(fmt.Sprintf("identifier: random source failed: %v", err))
	}
	return hex.EncodeToString(buf)
}
