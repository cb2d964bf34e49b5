package attack

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pmaddams/blockattack/blockutil"
	"github.com/pmaddams/blockattack/oracle"
)

// Guard bytes delimiting the filler run in an alignment probe. They must
// differ from both run bytes.
const (
	guardLeft  = 'X'
	guardRight = 'Y'
)

// alignProbe returns i guard bytes, two blocks of run, and a closing guard.
func alignProbe(i int, run byte, blockSize int) []byte {
	buf := bytes.Repeat([]byte{guardLeft}, i)
	buf = append(buf, bytes.Repeat([]byte{run}, 2*blockSize)...)
	return append(buf, guardRight)
}

// runBlock returns the index j where both ciphertexts hold a repeated pair of
// blocks j, j+1 whose content depends on the run byte. Pairs inside the
// hidden prefix or suffix are the same in both and are skipped.
func runBlock(a, b []byte, blockSize int) fn.Option[int] {
	for j := 0; ; j++ {
		a1, a2 := blockutil.Block(a, j, blockSize), blockutil.Block(a, j+1, blockSize)
		b1, b2 := blockutil.Block(b, j, blockSize), blockutil.Block(b, j+1, blockSize)
		if a2 == nil || b2 == nil {
			return fn.None[int]()
		}
		if bytes.Equal(a1, a2) && bytes.Equal(b1, b2) && !bytes.Equal(a1, b1) {
			return fn.Some(j)
		}
	}
}

// StripPrefix takes an ECB oracle that prepends an unknown fixed prefix and
// returns an oracle whose output starts at the caller's input, as if there
// were no prefix.
//
// It looks for the number of guard bytes i that pushes the start of the
// input onto a block boundary. Each candidate is tried with two different
// run bytes, so a prefix ending in one of them cannot fake an alignment.
func StripPrefix(o oracle.Oracle, blockSize int) (oracle.Oracle, error) {
	if blockSize <= 0 {
		panic("StripPrefix: invalid block size")
	}
	for i := 0; i < blockSize; i++ {
		a := o.Encrypt(alignProbe(i, 'A', blockSize))
		b := o.Encrypt(alignProbe(i, 'B', blockSize))

		j := runBlock(a, b, blockSize)
		if j.IsNone() {
			continue
		}
		offset := j.UnwrapOr(0) * blockSize
		pad := bytes.Repeat([]byte{guardLeft}, i)
		log.Debugf("Input aligned after %d guard bytes, dropping %d bytes", i, offset)

		return oracle.Func(func(buf []byte) []byte {
			res := o.Encrypt(append(blockutil.Dup(pad), buf...))
			return res[offset:]
		}), nil
	}
	return nil, ErrPrefixAlignment
}

// BreakWithPrefix recovers the secret suffix of an ECB oracle that also
// prepends an unknown fixed prefix. The prefix is aligned away first and the
// usual attack runs on the result.
func BreakWithPrefix(ctx context.Context, o oracle.Oracle, cfg *BreakerConfig) ([]byte, error) {
	x := NewBreaker(o, cfg)
	if err := x.DiscoverBlockSize(); err != nil {
		return nil, err
	}
	stripped, err := StripPrefix(o, x.BlockSize())
	if err != nil {
		// CBC never repeats a block, so alignment fails there too.
		return nil, fmt.Errorf("%w: %w", ErrNonECB, err)
	}
	return Break(ctx, stripped, cfg)
}
