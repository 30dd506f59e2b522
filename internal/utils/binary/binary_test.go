package binary

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripFields(t *testing.T) {
	buf := make([]byte, 82)
	key := solana.NewWallet().PublicKey()

	WriteUint32LittleEndian(1, buf, 0)
	WritePubKey(key, buf, 4)
	WriteUint64LittleEndian(42_000_000_000, buf, 36)
	WriteUint8(9, buf, 44)
	WriteBool(true, buf, 45)

	tag, err := ReadUint32LittleEndian(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tag)

	got, err := ReadPubKey(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	supply, err := ReadUint64LittleEndian(buf, 36)
	require.NoError(t, err)
	assert.Equal(t, uint64(42_000_000_000), supply)

	dec, err := ReadUint8(buf, 44)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), dec)

	ok, err := ReadBool(buf, 45)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShortBuffer(t *testing.T) {
	buf := make([]byte, 70)

	_, err := ReadUint64LittleEndian(buf, 64)
	assert.True(t, errors.Is(err, ErrShortBuffer))

	_, err = ReadPubKey(buf, 40)
	assert.True(t, errors.Is(err, ErrShortBuffer))

	_, err = ReadUint8(buf, -1)
	assert.True(t, errors.Is(err, ErrShortBuffer))
}
