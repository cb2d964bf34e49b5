// Package attack implements chosen-plaintext attacks against block cipher
// encryption oracles: ECB/CBC mode detection and byte-at-a-time recovery of
// a secret suffix.
package attack

import (
	"bytes"

	"github.com/pmaddams/blockattack/blockutil"
	"github.com/pmaddams/blockattack/oracle"
)

// probeBlock returns the index of the first ciphertext block guaranteed to
// hold only filler when at most maxPrefix unknown bytes precede it.
func probeBlock(blockSize, maxPrefix int) int {
	k := (maxPrefix + blockSize - 1) / blockSize
	if k < 1 {
		k = 1
	}
	return k
}

// Probe returns a buffer of repeated filler that can be used to detect ECB
// mode. After a hidden prefix of at most maxPrefix bytes, blocks k and k+1
// of the plaintext are pure filler, where k = max(1, ceil(maxPrefix/blockSize)).
func Probe(filler byte, blockSize, maxPrefix int) []byte {
	if blockSize <= 0 || maxPrefix < 0 {
		panic("Probe: invalid parameters")
	}
	return bytes.Repeat([]byte{filler}, (probeBlock(blockSize, maxPrefix)+2)*blockSize)
}

// DetectMode classifies the oracle as ECB or CBC from a single encryption.
// ECB encrypts the two filler blocks identically, while CBC chaining makes
// that practically impossible.
func DetectMode(o oracle.Oracle, blockSize, maxPrefix int) oracle.Mode {
	return detectMode(o, DefaultFiller, blockSize, maxPrefix)
}

func detectMode(o oracle.Oracle, filler byte, blockSize, maxPrefix int) oracle.Mode {
	k := probeBlock(blockSize, maxPrefix)
	buf := o.Encrypt(Probe(filler, blockSize, maxPrefix))

	b1 := blockutil.Block(buf, k, blockSize)
	b2 := blockutil.Block(buf, k+1, blockSize)
	if b2 == nil {
		panic("DetectMode: ciphertext shorter than probe")
	}
	if bytes.Equal(b1, b2) {
		return oracle.ECB
	}
	return oracle.CBC
}
