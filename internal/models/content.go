// Package models defines the wire and domain types of the vault client:
// key material, item revisions, decrypted items, sync event batches and the
// versioned item content format.
package models

import (
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/fxamacker/cbor/v2"
)

// ItemType classifies an item's content kind.
type ItemType string

const (
	ItemTypeLogin    ItemType = "login"
	ItemTypeAlias    ItemType = "alias"
	ItemTypeNote     ItemType = "note"
	ItemTypePassword ItemType = "password"
	ItemTypeIdentity ItemType = "identity"
	ItemTypeCustom   ItemType = "custom"
)

// Content format versions understood by this client. Per the migration
// policy, the current and the immediately previous version are both
// decodable; anything else is rejected.
const (
	ContentFormatV1 = 1
	ContentFormatV2 = 2

	CurrentContentFormat = ContentFormatV2
)

// CustomField is a user-defined field attached to an item (format v2+).
type CustomField struct {
	Label  string `cbor:"label"`
	Value  string `cbor:"value"`
	Hidden bool   `cbor:"hidden"`
}

// Content is the decrypted item content envelope. Details holds the
// type-specific payload as raw CBOR; use Wrap to build it and Unwrap to
// dispatch on Type.
type Content struct {
	Type        ItemType        `cbor:"type"`
	Title       string          `cbor:"title"`
	Note        string          `cbor:"note"`
	Details     cbor.RawMessage `cbor:"details"`
	ExtraFields []CustomField   `cbor:"extra_fields,omitempty"`
}

// contentV1 is the previous envelope layout, kept decodable during the
// migration window. It predates user-defined extra fields.
type contentV1 struct {
	Type    ItemType        `cbor:"type"`
	Title   string          `cbor:"title"`
	Note    string          `cbor:"note"`
	Details cbor.RawMessage `cbor:"details"`
}

// LoginDetails stores credentials.
type LoginDetails struct {
	Username string   `cbor:"username"`
	Password string   `cbor:"password"`
	URLs     []string `cbor:"urls,omitempty"`
	TOTPUri  string   `cbor:"totp_uri,omitempty"`
}

// AliasDetails stores a forwarding alias address.
type AliasDetails struct {
	AliasEmail string `cbor:"alias_email"`
}

// NoteDetails has no fields beyond the envelope's note text.
type NoteDetails struct{}

// PasswordDetails stores a standalone generated password.
type PasswordDetails struct {
	Password string `cbor:"password"`
}

// IdentityDetails stores personal identity data.
type IdentityDetails struct {
	FullName    string `cbor:"full_name"`
	Email       string `cbor:"email"`
	PhoneNumber string `cbor:"phone_number"`
}

// CustomDetails stores only user-defined fields; they live in the
// envelope's ExtraFields.
type CustomDetails struct{}

// Wrap builds a Content envelope around a typed details value.
func Wrap[T any](t ItemType, title, note string, v T) (Content, error) {
	b, err := cbor.Marshal(v)
	if err != nil {
		return Content{}, err
	}
	return Content{Type: t, Title: title, Note: note, Details: b}, nil
}

// Unwrap decodes the type-specific details payload based on Type. Unknown
// types decode into a generic map so future item kinds degrade gracefully.
func (c Content) Unwrap() (any, error) {
	switch c.Type {
	case ItemTypeLogin:
		var v LoginDetails
		return v, cbor.Unmarshal(c.Details, &v)
	case ItemTypeAlias:
		var v AliasDetails
		return v, cbor.Unmarshal(c.Details, &v)
	case ItemTypeNote:
		var v NoteDetails
		return v, cbor.Unmarshal(c.Details, &v)
	case ItemTypePassword:
		var v PasswordDetails
		return v, cbor.Unmarshal(c.Details, &v)
	case ItemTypeIdentity:
		var v IdentityDetails
		return v, cbor.Unmarshal(c.Details, &v)
	case ItemTypeCustom:
		var v CustomDetails
		return v, cbor.Unmarshal(c.Details, &v)
	default:
		var m map[string]any
		if err := cbor.Unmarshal(c.Details, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// EncodeContent serializes a content envelope in the given format version.
func EncodeContent(version int, c Content) ([]byte, error) {
	switch version {
	case ContentFormatV2:
		return cbor.Marshal(c)
	case ContentFormatV1:
		if len(c.ExtraFields) > 0 {
			return nil, fmt.Errorf("%w: extra fields require format v%d", common.ErrUnsupportedFormat, ContentFormatV2)
		}
		return cbor.Marshal(contentV1{Type: c.Type, Title: c.Title, Note: c.Note, Details: c.Details})
	default:
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedFormat, version)
	}
}

// DecodeContent parses a serialized content buffer. A version this client
// does not understand fails with common.ErrUnsupportedFormat rather than
// being parsed best-effort.
func DecodeContent(version int, data []byte) (Content, error) {
	switch version {
	case ContentFormatV2:
		var c Content
		if err := cbor.Unmarshal(data, &c); err != nil {
			return Content{}, fmt.Errorf("failed to decode content: %w", err)
		}
		return c, nil
	case ContentFormatV1:
		var v1 contentV1
		if err := cbor.Unmarshal(data, &v1); err != nil {
			return Content{}, fmt.Errorf("failed to decode content: %w", err)
		}
		return Content{Type: v1.Type, Title: v1.Title, Note: v1.Note, Details: v1.Details}, nil
	default:
		return Content{}, fmt.Errorf("%w: %d", common.ErrUnsupportedFormat, version)
	}
}
