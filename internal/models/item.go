package models

// Item states as stored locally and on the wire.
const (
	ItemStateActive  = 1
	ItemStateTrashed = 2
)

// ItemRevision is the wire representation of one version of an item:
// encrypted content, the key packet carrying the wrapped session key, and
// the two detached signatures over the plaintext content buffer.
//
// Revision is monotonic per item as observed by the client; an incoming
// revision lower than the one already stored is ignored, never applied as a
// rollback.
type ItemRevision struct {
	ItemID               string `json:"item_id"`
	Revision             int64  `json:"revision"`
	ContentFormatVersion int    `json:"content_format_version"`
	RotationID           string `json:"rotation_id"`
	Content              []byte `json:"content"`
	KeyPacket            []byte `json:"key_packet"`
	UserSignature        []byte `json:"user_signature"`
	ItemKeySignature     []byte `json:"item_key_signature"`
	State                int    `json:"state"`
	SignatureEmail       string `json:"signature_email"`
	CreateTime           int64  `json:"create_time"`
	ModifyTime           int64  `json:"modify_time"`
	LastUseTime          int64  `json:"last_use_time"`
	RevisionTime         int64  `json:"revision_time"`
}

// Item is the decrypted domain counterpart of an ItemRevision. Title and
// note are kept as keystore-sealed blobs so plaintext never sits at rest;
// they are opened on demand for display.
type Item struct {
	ID       string
	ShareID  string
	Revision int64
	State    int
	ItemType ItemType

	TitleBlob []byte
	NoteBlob  []byte

	CreateTime   int64
	ModifyTime   int64
	LastUseTime  int64
	RevisionTime int64
}

// UpdateItemRequestBody is the outgoing payload for creating or updating an
// item: ciphertext, both signatures and the last known revision for the
// server's optimistic-concurrency check.
type UpdateItemRequestBody struct {
	RotationID           string `json:"rotation_id"`
	ContentFormatVersion int    `json:"content_format_version"`
	Content              []byte `json:"content"`
	KeyPacket            []byte `json:"key_packet"`
	UserSignature        []byte `json:"user_signature"`
	ItemKeySignature     []byte `json:"item_key_signature"`
	SignatureEmail       string `json:"signature_email"`
	LastRevision         int64  `json:"last_revision"`
}

// ToRevision materializes the revision the server would produce for this
// request. Used for optimistic local application and in tests.
func (b UpdateItemRequestBody) ToRevision(itemID string, revision, now int64) ItemRevision {
	return ItemRevision{
		ItemID:               itemID,
		Revision:             revision,
		ContentFormatVersion: b.ContentFormatVersion,
		RotationID:           b.RotationID,
		Content:              b.Content,
		KeyPacket:            b.KeyPacket,
		UserSignature:        b.UserSignature,
		ItemKeySignature:     b.ItemKeySignature,
		State:                ItemStateActive,
		SignatureEmail:       b.SignatureEmail,
		CreateTime:           now,
		ModifyTime:           now,
		RevisionTime:         now,
	}
}
