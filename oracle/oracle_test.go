package oracle

import (
	"bytes"
	weak "math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedECB(t *testing.T) {
	r := weak.New(weak.NewSource(1))
	x, err := NewECBSuffix("aes", []byte("secret"), r)
	require.NoError(t, err)

	// Deterministic, and the suffix makes one block.
	buf := x.Encrypt(nil)
	require.Len(t, buf, 16)
	require.Equal(t, buf, x.Encrypt(nil))

	// Ten filler bytes plus the suffix fill the block exactly, so a whole
	// block of padding follows.
	require.Len(t, x.Encrypt(bytes.Repeat([]byte{'a'}, 10)), 32)

	// Identical input blocks encrypt identically.
	buf = x.Encrypt(bytes.Repeat([]byte{'a'}, 32))
	require.Equal(t, buf[:16], buf[16:32])
}

func TestFixedCBC(t *testing.T) {
	r := weak.New(weak.NewSource(2))
	x, err := New(&Config{Mode: FixedCBC, Rand: r, Entropy: r})
	require.NoError(t, err)

	probe := bytes.Repeat([]byte{'a'}, 48)
	b1, b2 := x.Encrypt(probe), x.Encrypt(probe)
	require.Len(t, b1, 64)

	// A fresh IV per call.
	require.NotEqual(t, b1, b2)
	require.NotEqual(t, b1[16:32], b1[32:48])
}

func TestRandomModeObserved(t *testing.T) {
	r := weak.New(weak.NewSource(3))
	var seen []Mode
	x, err := New(&Config{
		Mode:      RandomMode,
		MinPrefix: 5, MaxPrefix: 10,
		MinSuffix: 5, MaxSuffix: 10,
		Rand:    r,
		Entropy: r,
		Observe: func(m Mode) { seen = append(seen, m) },
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(x.prefix), 5)
	require.LessOrEqual(t, len(x.prefix), 10)
	require.GreaterOrEqual(t, len(x.suffix), 5)
	require.LessOrEqual(t, len(x.suffix), 10)

	for i := 0; i < 100; i++ {
		x.Encrypt([]byte("hello"))
	}
	require.Len(t, seen, 100)
	require.Contains(t, seen, ECB)
	require.Contains(t, seen, CBC)
}

func TestSeedIsRepeatable(t *testing.T) {
	newOracle := func() *Capability {
		r := weak.New(weak.NewSource(42))
		x, err := NewRandomMode("aes", r, r)
		require.NoError(t, err)
		return x
	}
	x1, x2 := newOracle(), newOracle()
	for i := 0; i < 10; i++ {
		require.Equal(t, x1.Encrypt([]byte("abc")), x2.Encrypt([]byte("abc")))
	}
}

func TestEncryptDoesNotModifyInput(t *testing.T) {
	x, err := New(&Config{Prefix: []byte("prefix"), Suffix: []byte("suffix")})
	require.NoError(t, err)

	buf := make([]byte, 4, 64)
	copy(buf, "abcd")
	x.Encrypt(buf)
	require.Equal(t, []byte("abcd"), buf)
	require.Equal(t, make([]byte, 60), buf[4:64])
}

func TestConcurrentEncrypt(t *testing.T) {
	r := weak.New(weak.NewSource(4))
	x, err := NewRandomMode("twofish", r, r)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				x.Encrypt([]byte("concurrent"))
			}
		}()
	}
	wg.Wait()
}

func TestNewErrors(t *testing.T) {
	_, err := New(&Config{Cipher: "rot13"})
	require.Error(t, err)

	_, err = New(&Config{MinPrefix: 5, MaxPrefix: 1})
	require.Error(t, err)

	_, err = New(&Config{Mode: Selection(7)})
	require.Error(t, err)
}

func TestFunc(t *testing.T) {
	var o Oracle = Func(func(buf []byte) []byte { return append([]byte{}, buf...) })
	require.Equal(t, []byte("x"), o.Encrypt([]byte("x")))
}

func TestParseSelection(t *testing.T) {
	for _, s := range []Selection{FixedECB, FixedCBC, RandomMode} {
		got, err := ParseSelection(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := ParseSelection("ctr")
	require.Error(t, err)
	require.Equal(t, "ECB", ECB.String())
	require.Equal(t, "CBC", CBC.String())
}
