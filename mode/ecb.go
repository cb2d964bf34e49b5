package mode

import "crypto/cipher"

// ecb represents a generic ECB block mode.
type ecb struct{ cipher.Block }

// ecbEncrypter represents an ECB encryption block mode.
type ecbEncrypter struct{ ecb }

// NewECBEncrypter returns a block mode for ECB encryption.
func NewECBEncrypter(c cipher.Block) cipher.BlockMode {
	return ecbEncrypter{ecb{c}}
}

// CryptBlocks encrypts a buffer in ECB mode.
func (x ecbEncrypter) CryptBlocks(dst, src []byte) {
	checkBlocks(x.BlockSize(), dst, src)
	for n := x.BlockSize(); len(src) > 0; {
		x.Encrypt(dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
	}
}

// ecbDecrypter represents an ECB decryption block mode.
type ecbDecrypter struct{ ecb }

// NewECBDecrypter returns a block mode for ECB decryption.
func NewECBDecrypter(c cipher.Block) cipher.BlockMode {
	return ecbDecrypter{ecb{c}}
}

// CryptBlocks decrypts a buffer in ECB mode.
func (x ecbDecrypter) CryptBlocks(dst, src []byte) {
	checkBlocks(x.BlockSize(), dst, src)
	for n := x.BlockSize(); len(src) > 0; {
		x.Decrypt(dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
	}
}

// checkBlocks panics with the crypto/cipher messages if src is not a whole
// number of blocks or dst is too short.
func checkBlocks(n int, dst, src []byte) {
	if len(src)%n != 0 {
		panic("crypto/cipher: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("crypto/cipher: output smaller than input")
	}
}
