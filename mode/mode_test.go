package mode

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"math/rand"
	"testing"

	c2ecb "github.com/andreburgaud/crypt2go/ecb"
	"github.com/pmaddams/blockattack/blockcipher"
	"github.com/pmaddams/blockattack/pkcs7"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const secret = "YELLOW SUBMARINE"

func newTestCipher(t require.TestingT) cipher.Block {
	c, err := aes.NewCipher([]byte(secret))
	require.NoError(t, err)
	return c
}

func TestECBMatchesCrypt2go(t *testing.T) {
	c := newTestCipher(t)
	msg := pkcs7.Pad([]byte("Rollin' in my 5.0 With my rag-top down"), c.BlockSize())

	want := make([]byte, len(msg))
	c2ecb.NewECBEncrypter(c).CryptBlocks(want, msg)

	got := ECBEncrypt(c, []byte("Rollin' in my 5.0 With my rag-top down"))
	require.Equal(t, want, got)

	plain, err := ECBDecrypt(c, got)
	require.NoError(t, err)
	require.Equal(t, []byte("Rollin' in my 5.0 With my rag-top down"), plain)
}

func TestECBIdenticalBlocks(t *testing.T) {
	c := newTestCipher(t)
	buf := ECBEncrypt(c, bytes.Repeat([]byte{'a'}, 32))
	require.Len(t, buf, 48)
	require.Equal(t, buf[:16], buf[16:32])
}

func TestCBCMatchesStdlib(t *testing.T) {
	c := newTestCipher(t)
	r := rand.New(rand.NewSource(1))

	// Sizes on either side of the parallel decryption threshold.
	for _, blocks := range []int{1, 3, parallelBlocks - 1, parallelBlocks, parallelBlocks + 1, 5*parallelBlocks + 7} {
		iv := make([]byte, aes.BlockSize)
		r.Read(iv)
		src := make([]byte, blocks*aes.BlockSize)
		r.Read(src)

		want := make([]byte, len(src))
		cipher.NewCBCEncrypter(c, iv).CryptBlocks(want, src)
		got := make([]byte, len(src))
		NewCBCEncrypter(c, iv).CryptBlocks(got, src)
		require.Equal(t, want, got, "encrypt %d blocks", blocks)

		// Decrypt in place.
		NewCBCDecrypter(c, iv).CryptBlocks(got, got)
		require.Equal(t, src, got, "decrypt %d blocks", blocks)
	}
}

func TestCBCChainsAcrossCalls(t *testing.T) {
	c := newTestCipher(t)
	iv := make([]byte, aes.BlockSize)
	src := bytes.Repeat([]byte("0123456789abcdef"), 4)

	want := make([]byte, len(src))
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(want, src)

	got := make([]byte, len(src))
	enc := NewCBCEncrypter(c, iv)
	enc.CryptBlocks(got[:32], src[:32])
	enc.CryptBlocks(got[32:], src[32:])
	require.Equal(t, want, got)

	plain := make([]byte, len(src))
	dec := NewCBCDecrypter(c, iv)
	dec.CryptBlocks(plain[:16], got[:16])
	dec.CryptBlocks(plain[16:], got[16:])
	require.Equal(t, src, plain)

	// The caller's IV is never modified.
	require.Equal(t, make([]byte, aes.BlockSize), iv)
}

func TestCBCParallelDecryptChains(t *testing.T) {
	c := newTestCipher(t)
	r := rand.New(rand.NewSource(2))
	iv := make([]byte, aes.BlockSize)
	r.Read(iv)

	// Two calls that each take the parallel path.
	src := make([]byte, (3*parallelBlocks+5)*aes.BlockSize)
	r.Read(src)
	want := make([]byte, len(src))
	cipher.NewCBCDecrypter(c, iv).CryptBlocks(want, src)

	split := (2*parallelBlocks + 1) * aes.BlockSize
	got := make([]byte, len(src))
	dec := NewCBCDecrypter(c, iv)
	dec.CryptBlocks(got[:split], src[:split])
	dec.CryptBlocks(got[split:], src[split:])
	require.Equal(t, want, got)
}

func TestCBCIdenticalBlocksDiffer(t *testing.T) {
	c := newTestCipher(t)
	buf, err := CBCEncrypt(c, make([]byte, aes.BlockSize), bytes.Repeat([]byte{'a'}, 48))
	require.NoError(t, err)
	require.NotEqual(t, buf[16:32], buf[32:48])
}

func TestCBCRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.SampledFrom(blockcipher.Names()).Draw(t, "cipher")
		seed := rapid.Int64().Draw(t, "seed")
		msg := rapid.SliceOf(rapid.Byte()).Draw(t, "msg")

		r := rand.New(rand.NewSource(seed))
		c, err := blockcipher.NewRandom(name, r)
		if err != nil {
			t.Fatalf("NewRandom: %v", err)
		}
		iv := make([]byte, c.BlockSize())
		r.Read(iv)

		buf, err := CBCEncrypt(c, iv, msg)
		if err != nil {
			t.Fatalf("CBCEncrypt: %v", err)
		}
		got, err := CBCDecrypt(c, iv, buf)
		if err != nil {
			t.Fatalf("CBCDecrypt: %v", err)
		}
		if !bytes.Equal(got, msg) {
			t.Fatalf("got %v, want %v", got, msg)
		}
	})
}

func TestBlockLengthErrors(t *testing.T) {
	c := newTestCipher(t)
	iv := make([]byte, aes.BlockSize)

	_, err := CBCEncrypt(c, iv[:8], []byte("x"))
	require.ErrorIs(t, err, ErrBlockLength)

	_, err = CBCDecrypt(c, iv, make([]byte, 17))
	require.ErrorIs(t, err, ErrBlockLength)

	_, err = CBCDecrypt(c, iv, nil)
	require.ErrorIs(t, err, ErrBlockLength)

	_, err = ECBDecrypt(c, make([]byte, 15))
	var lerr *BlockLengthError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, "ciphertext", lerr.What)
	require.Equal(t, 15, lerr.Len)
}

func TestBadPaddingSurfaces(t *testing.T) {
	c := newTestCipher(t)
	iv := make([]byte, aes.BlockSize)

	// Raw encryption of a block that ends in a zero byte.
	buf := make([]byte, aes.BlockSize)
	NewCBCEncrypter(c, iv).CryptBlocks(buf, make([]byte, aes.BlockSize))

	_, err := CBCDecrypt(c, iv, buf)
	require.ErrorIs(t, err, pkcs7.ErrInvalidPadding)
}

func TestCryptBlocksPanics(t *testing.T) {
	c := newTestCipher(t)
	require.PanicsWithValue(t, "crypto/cipher: input not full blocks", func() {
		NewECBEncrypter(c).CryptBlocks(make([]byte, 32), make([]byte, 17))
	})
	require.PanicsWithValue(t, "crypto/cipher: output smaller than input", func() {
		NewECBDecrypter(c).CryptBlocks(make([]byte, 16), make([]byte, 32))
	})
	require.Panics(t, func() {
		NewCBCEncrypter(c, make([]byte, 8))
	})
}
