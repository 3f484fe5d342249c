package models

import (
	"testing"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_WrapUnwrap(t *testing.T) {
	login := LoginDetails{Username: "alice", Password: "s3cret", URLs: []string{"https://example.com"}}

	c, err := Wrap(ItemTypeLogin, "My Login", "a note", login)
	require.NoError(t, err)
	assert.Equal(t, ItemTypeLogin, c.Type)
	assert.Equal(t, "My Login", c.Title)

	v, err := c.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, login, v)
}

func TestContent_UnwrapDispatch(t *testing.T) {
	tests := []struct {
		itemType ItemType
		details  any
	}{
		{ItemTypeAlias, AliasDetails{AliasEmail: "hide@example.com"}},
		{ItemTypeNote, NoteDetails{}},
		{ItemTypePassword, PasswordDetails{Password: "generated"}},
		{ItemTypeIdentity, IdentityDetails{FullName: "Alice A", Email: "a@example.com"}},
		{ItemTypeCustom, CustomDetails{}},
	}
	for _, tc := range tests {
		t.Run(string(tc.itemType), func(t *testing.T) {
			c, err := Wrap(tc.itemType, "t", "", tc.details)
			require.NoError(t, err)
			v, err := c.Unwrap()
			require.NoError(t, err)
			assert.Equal(t, tc.details, v)
		})
	}
}

func TestEncodeDecodeContent_CurrentVersion(t *testing.T) {
	c, err := Wrap(ItemTypeLogin, "Title", "Note", LoginDetails{Username: "u", Password: "p"})
	require.NoError(t, err)
	c.ExtraFields = []CustomField{{Label: "PIN", Value: "1234", Hidden: true}}

	data, err := EncodeContent(CurrentContentFormat, c)
	require.NoError(t, err)

	got, err := DecodeContent(CurrentContentFormat, data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestEncodeDecodeContent_PreviousVersion(t *testing.T) {
	c, err := Wrap(ItemTypeNote, "Old note", "body", NoteDetails{})
	require.NoError(t, err)

	data, err := EncodeContent(ContentFormatV1, c)
	require.NoError(t, err)

	got, err := DecodeContent(ContentFormatV1, data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestEncodeContent_V1RejectsExtraFields(t *testing.T) {
	c, err := Wrap(ItemTypeCustom, "c", "", CustomDetails{})
	require.NoError(t, err)
	c.ExtraFields = []CustomField{{Label: "x", Value: "y"}}

	_, err = EncodeContent(ContentFormatV1, c)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestDecodeContent_UnknownVersion(t *testing.T) {
	c, err := Wrap(ItemTypeNote, "n", "", NoteDetails{})
	require.NoError(t, err)
	data, err := EncodeContent(CurrentContentFormat, c)
	require.NoError(t, err)

	_, err = DecodeContent(CurrentContentFormat+1, data)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = EncodeContent(0, c)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}
