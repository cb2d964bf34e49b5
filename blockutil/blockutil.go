// Package blockutil contains the byte-buffer helpers shared by the padding,
// mode and attack packages.
package blockutil

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math/bits"
	"strings"
)

// ErrLengthMismatch is returned when two buffers that must have equal length
// do not.
var ErrLengthMismatch = errors.New("buffers must have equal length")

// XOR returns the XOR combination of two equal-length buffers.
func XOR(b1, b2 []byte) ([]byte, error) {
	if len(b1) != len(b2) {
		return nil, ErrLengthMismatch
	}
	res := make([]byte, len(b1))
	XORBytes(res, b1, b2)

	return res, nil
}

// XORBytes sets dst[i] = b1[i] ^ b2[i] over the shorter of the two buffers
// and returns the number of bytes written.
func XORBytes(dst, b1, b2 []byte) int {
	n := min(len(b1), len(b2))
	for i := 0; i < n; i++ {
		dst[i] = b1[i] ^ b2[i]
	}
	return n
}

// HammingDistance returns the number of differing bits between two
// equal-length buffers.
func HammingDistance(b1, b2 []byte) (int, error) {
	if len(b1) != len(b2) {
		return 0, ErrLengthMismatch
	}
	var res int
	for i := range b1 {
		res += bits.OnesCount8(b1[i] ^ b2[i])
	}
	return res, nil
}

// Subdivide divides a buffer into blocks. A trailing partial block is
// dropped.
func Subdivide(buf []byte, blockSize int) [][]byte {
	if blockSize <= 0 {
		panic("Subdivide: invalid block size")
	}
	var blocks [][]byte
	for len(buf) >= blockSize {
		// Return pointers, not copies.
		blocks = append(blocks, buf[:blockSize:blockSize])
		buf = buf[blockSize:]
	}
	return blocks
}

// Block returns the i-th block of buf, or nil if buf is too short.
func Block(buf []byte, i, blockSize int) []byte {
	lo, hi := i*blockSize, (i+1)*blockSize
	if i < 0 || hi > len(buf) {
		return nil
	}
	return buf[lo:hi:hi]
}

// HasIdenticalBlocks returns true if any block in the buffer appears more
// than once.
func HasIdenticalBlocks(buf []byte, blockSize int) bool {
	m := make(map[string]bool)
	for _, block := range Subdivide(buf, blockSize) {
		s := string(block)
		if m[s] {
			return true
		}
		m[s] = true
	}
	return false
}

// Dup returns a copy of a buffer.
func Dup(buf []byte) []byte {
	return append([]byte{}, buf...)
}

// DecodeHex decodes a hex string, ignoring surrounding whitespace.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimSpace(s))
}

// DecodeBase64 decodes standard base64, ignoring line breaks and other
// whitespace inside the input.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), ""))
}
