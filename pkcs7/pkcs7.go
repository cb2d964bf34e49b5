// Package pkcs7 implements PKCS#7 padding as described in RFC 5652,
// section 6.3.
package pkcs7

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
)

// ErrInvalidPadding is matched by every PaddingError.
var ErrInvalidPadding = errors.New("invalid padding")

// PaddingError describes why a padded buffer was rejected.
type PaddingError struct {
	Len       int
	BlockSize int
	Reason    string
}

func (e *PaddingError) Error() string {
	return fmt.Sprintf("pkcs7: invalid padding (length %d, block size %d): %s",
		e.Len, e.BlockSize, e.Reason)
}

// Is reports whether target is ErrInvalidPadding.
func (e *PaddingError) Is(target error) bool {
	return target == ErrInvalidPadding
}

func checkBlockSize(fn string, blockSize int) {
	if blockSize < 1 || blockSize > 0xff {
		panic(fn + ": invalid block size")
	}
}

// Pad returns a copy of buf with PKCS#7 padding added. If the buffer length
// is already a multiple of the block size, a whole block of padding is
// appended.
func Pad(buf []byte, blockSize int) []byte {
	checkBlockSize("Pad", blockSize)

	// Find the number (and value) of padding bytes.
	n := blockSize - (len(buf) % blockSize)

	res := make([]byte, len(buf), len(buf)+n)
	copy(res, buf)
	return append(res, bytes.Repeat([]byte{byte(n)}, n)...)
}

// Unpad returns a copy of buf with PKCS#7 padding removed.
//
// The padding bytes are checked without branching on their contents: the
// whole final block is always scanned, so the time taken does not depend on
// the position of a bad byte.
func Unpad(buf []byte, blockSize int) ([]byte, error) {
	checkBlockSize("Unpad", blockSize)

	if len(buf) == 0 || len(buf)%blockSize != 0 {
		return nil, &PaddingError{len(buf), blockSize, "length is not a positive multiple of block size"}
	}
	n := int(buf[len(buf)-1])

	// good is 1 while n is in range and every padding byte matches.
	good := 1 - subtle.ConstantTimeByteEq(byte(n), 0)
	good &= subtle.ConstantTimeLessOrEq(n, blockSize)

	tail := buf[len(buf)-blockSize:]
	for i := 0; i < blockSize; i++ {
		// Position from the end, 1-based.
		pos := blockSize - i
		inPad := subtle.ConstantTimeLessOrEq(pos, n)
		match := subtle.ConstantTimeByteEq(tail[i], byte(n))
		good &= subtle.ConstantTimeSelect(inPad, match, 1)
	}
	if good != 1 {
		return nil, &PaddingError{len(buf), blockSize, "padding bytes do not match"}
	}
	return append([]byte{}, buf[:len(buf)-n]...), nil
}
