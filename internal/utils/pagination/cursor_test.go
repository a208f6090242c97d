package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/utils/pagination"
)

func TestEncodeDecode(t *testing.T) {
	token, err := pagination.Encode(pagination.Cursor{AfterID: 42})
	require.NoError(t, err)

	c, err := pagination.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.AfterID)
}

func TestDecodeEmptyIsFirstPage(t *testing.T) {
	c, err := pagination.Decode("")
	require.NoError(t, err)
	assert.Zero(t, c.AfterID)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := pagination.Decode("%%%")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, err = pagination.Decode("bm90LWpzb24=") // "not-json"
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}
