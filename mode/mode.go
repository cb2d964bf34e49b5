// Package mode implements the ECB and CBC block cipher modes on top of a
// cipher.Block, along with padded one-shot helpers.
package mode

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/pmaddams/blockattack/pkcs7"
)

// ErrBlockLength is matched by every BlockLengthError.
var ErrBlockLength = errors.New("invalid block length")

// BlockLengthError is returned when a ciphertext or IV does not fit the
// cipher's block size.
type BlockLengthError struct {
	What      string
	Len       int
	BlockSize int
}

func (e *BlockLengthError) Error() string {
	return fmt.Sprintf("mode: %s length %d does not fit block size %d",
		e.What, e.Len, e.BlockSize)
}

// Is reports whether target is ErrBlockLength.
func (e *BlockLengthError) Is(target error) bool {
	return target == ErrBlockLength
}

// ECBEncrypt pads msg and encrypts it in ECB mode.
func ECBEncrypt(c cipher.Block, msg []byte) []byte {
	buf := pkcs7.Pad(msg, c.BlockSize())
	NewECBEncrypter(c).CryptBlocks(buf, buf)
	return buf
}

// ECBDecrypt decrypts buf in ECB mode and removes the padding.
func ECBDecrypt(c cipher.Block, buf []byte) ([]byte, error) {
	if err := checkCiphertext(c, buf); err != nil {
		return nil, err
	}
	res := make([]byte, len(buf))
	NewECBDecrypter(c).CryptBlocks(res, buf)
	return pkcs7.Unpad(res, c.BlockSize())
}

// CBCEncrypt pads msg and encrypts it in CBC mode.
func CBCEncrypt(c cipher.Block, iv, msg []byte) ([]byte, error) {
	if err := checkIV(c, iv); err != nil {
		return nil, err
	}
	buf := pkcs7.Pad(msg, c.BlockSize())
	NewCBCEncrypter(c, iv).CryptBlocks(buf, buf)
	return buf, nil
}

// CBCDecrypt decrypts buf in CBC mode and removes the padding.
func CBCDecrypt(c cipher.Block, iv, buf []byte) ([]byte, error) {
	if err := checkIV(c, iv); err != nil {
		return nil, err
	}
	if err := checkCiphertext(c, buf); err != nil {
		return nil, err
	}
	res := make([]byte, len(buf))
	NewCBCDecrypter(c, iv).CryptBlocks(res, buf)
	return pkcs7.Unpad(res, c.BlockSize())
}

func checkIV(c cipher.Block, iv []byte) error {
	if len(iv) != c.BlockSize() {
		return &BlockLengthError{"iv", len(iv), c.BlockSize()}
	}
	return nil
}

func checkCiphertext(c cipher.Block, buf []byte) error {
	if n := c.BlockSize(); len(buf) == 0 || len(buf)%n != 0 {
		return &BlockLengthError{"ciphertext", len(buf), n}
	}
	return nil
}
