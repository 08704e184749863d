package jsonb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func TestEncodeList_NilBecomesEmptyArray(t *testing.T) {
	encoded, err := EncodeList[item](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}

func TestDecodeList_EmptyColumn(t *testing.T) {
	var items []item
	require.NoError(t, DecodeList(nil, &items))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNullable(t *testing.T) {
	encoded, err := EncodeNullable[item](nil)
	require.NoError(t, err)
	assert.False(t, encoded.Valid)

	encoded, err = EncodeNullable(&item{Name: "a"})
	require.NoError(t, err)
	assert.True(t, encoded.Valid)
	assert.Equal(t, `{"name":"a"}`, encoded.String)

	decoded, err := DecodeNullable[item]([]byte(encoded.String))
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, "a", decoded.Name)

	decoded, err = DecodeNullable[item](nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}
