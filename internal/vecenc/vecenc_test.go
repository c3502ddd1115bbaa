package vecenc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}

	b := Encode(in)
	require.Len(t, b, 16)

	out, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEmpty(t *testing.T) {
	require.Nil(t, Encode(nil))

	out, err := Decode(nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestDecodeInvalidLength(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}
