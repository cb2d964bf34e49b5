package mode

import (
	"crypto/cipher"
	"runtime"

	"github.com/pmaddams/blockattack/blockutil"
	"golang.org/x/sync/errgroup"
)

// parallelBlocks is the number of blocks below which CBC decryption stays on
// the calling goroutine.
const parallelBlocks = 64

// cbc represents a generic CBC block mode.
type cbc struct {
	cipher.Block
	iv []byte
}

func newCBC(fn string, c cipher.Block, iv []byte) cbc {
	if c.BlockSize() != len(iv) {
		panic(fn + ": initialization vector length must equal block size")
	}
	return cbc{c, blockutil.Dup(iv)}
}

// cbcEncrypter represents a CBC encryption block mode.
type cbcEncrypter struct{ cbc }

// NewCBCEncrypter returns a block mode for CBC encryption.
func NewCBCEncrypter(c cipher.Block, iv []byte) cipher.BlockMode {
	return &cbcEncrypter{newCBC("NewCBCEncrypter", c, iv)}
}

// CryptBlocks encrypts a buffer in CBC mode. Each block is chained to the
// ciphertext of the one before it, so this cannot be parallelized.
func (x *cbcEncrypter) CryptBlocks(dst, src []byte) {
	checkBlocks(x.BlockSize(), dst, src)
	for n := x.BlockSize(); len(src) > 0; {
		blockutil.XORBytes(dst[:n], src[:n], x.iv)
		x.Encrypt(dst[:n], dst[:n])
		copy(x.iv, dst[:n])
		dst, src = dst[n:], src[n:]
	}
}

// cbcDecrypter represents a CBC decryption block mode.
type cbcDecrypter struct{ cbc }

// NewCBCDecrypter returns a block mode for CBC decryption.
func NewCBCDecrypter(c cipher.Block, iv []byte) cipher.BlockMode {
	return &cbcDecrypter{newCBC("NewCBCDecrypter", c, iv)}
}

// CryptBlocks decrypts a buffer in CBC mode.
func (x *cbcDecrypter) CryptBlocks(dst, src []byte) {
	n := x.BlockSize()
	checkBlocks(n, dst, src)
	if len(src) == 0 {
		return
	}
	// Keep the ciphertext, since dst and src may be the same buffer.
	ciphertext := blockutil.Dup(src)
	dst = dst[:len(src)]

	// Every block decrypts independently of the others.
	if count := len(src) / n; count < parallelBlocks {
		x.decryptBlocks(dst, ciphertext, 0, count)
	} else {
		// One chunk of parallelBlocks blocks per goroutine. The closures
		// never fail, so Wait only joins them.
		var eg errgroup.Group
		eg.SetLimit(runtime.NumCPU())
		for lo := 0; lo < count; lo += parallelBlocks {
			hi := min(lo+parallelBlocks, count)
			eg.Go(func() error {
				x.decryptBlocks(dst, ciphertext, lo, hi)
				return nil
			})
		}
		eg.Wait()
	}

	// Chaining only needs ciphertext, so it runs last.
	prev := x.iv
	for i := 0; i < len(ciphertext); i += n {
		blockutil.XORBytes(dst[i:i+n], dst[i:i+n], prev)
		prev = ciphertext[i : i+n]
	}
	copy(x.iv, prev)
}

// decryptBlocks runs the block primitive over blocks [lo, hi).
func (x *cbcDecrypter) decryptBlocks(dst, src []byte, lo, hi int) {
	n := x.BlockSize()
	for i := lo; i < hi; i++ {
		x.Decrypt(dst[i*n:(i+1)*n], src[i*n:(i+1)*n])
	}
}
