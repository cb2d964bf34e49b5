package blockutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXOR(t *testing.T) {
	b1, err := DecodeHex("1c0111001f010100061a024b53535009181c")
	require.NoError(t, err)
	b2, err := DecodeHex("686974207468652062756c6c277320657965")
	require.NoError(t, err)
	want, err := DecodeHex("746865206b696420646f6e277420706c6179")
	require.NoError(t, err)

	got, err := XOR(b1, b2)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = XOR(b1, b2[1:])
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestHammingDistance(t *testing.T) {
	got, err := HammingDistance([]byte("this is a test"), []byte("wokka wokka!!!"))
	require.NoError(t, err)
	require.Equal(t, 37, got)

	_, err = HammingDistance([]byte("a"), []byte("ab"))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSubdivide(t *testing.T) {
	cases := []struct {
		buf  []byte
		n    int
		want [][]byte
	}{
		{
			[]byte{1, 2},
			3,
			nil,
		},
		{
			[]byte{1, 2, 3, 4, 5, 6},
			3,
			[][]byte{
				{1, 2, 3},
				{4, 5, 6},
			},
		},
		{
			[]byte{1, 2, 3, 4, 5, 6, 7},
			2,
			[][]byte{
				{1, 2},
				{3, 4},
				{5, 6},
			},
		},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Subdivide(c.buf, c.n))
	}
}

func TestBlock(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6}
	require.Equal(t, []byte{3, 4}, Block(buf, 1, 2))
	require.Nil(t, Block(buf, 3, 2))
	require.Nil(t, Block(buf, -1, 2))
}

func TestHasIdenticalBlocks(t *testing.T) {
	cases := []struct {
		buf       []byte
		blockSize int
		want      bool
	}{
		{
			[]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 1, 2, 3},
			3,
			true,
		},
		{
			[]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 4, 5, 6},
			3,
			true,
		},
		{
			[]byte{1, 2, 3, 1, 3, 2, 3, 1, 3, 2, 3, 1},
			3,
			false,
		},
	}
	for _, c := range cases {
		require.Equal(t, c.want, HasIdenticalBlocks(c.buf, c.blockSize),
			"HasIdenticalBlocks(%v, %v)", c.buf, c.blockSize)
	}
}

func TestDecodeBase64(t *testing.T) {
	got, err := DecodeBase64("WUVMTE9X\nIFNVQk1B\r\nUklORQ==\n")
	require.NoError(t, err)
	require.Equal(t, []byte("YELLOW SUBMARINE"), got)

	_, err = DecodeBase64("not base64!")
	require.Error(t, err)
}

func TestDup(t *testing.T) {
	buf := []byte{1, 2, 3}
	cp := Dup(buf)
	cp[0] = 9
	require.Equal(t, byte(1), buf[0])
}
