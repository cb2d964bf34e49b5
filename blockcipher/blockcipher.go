// Package blockcipher maps cipher names to block primitives. The mode and
// attack packages only ever see the resulting cipher.Block.
package blockcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"sort"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
	"golang.org/x/crypto/twofish"
	"golang.org/x/crypto/xtea"
)

// Default is the cipher used when no name is given.
const Default = "aes"

type primitive struct {
	keySize   int
	blockSize int
	newFn     func(key []byte) (cipher.Block, error)
}

var primitives = map[string]primitive{
	"aes": {16, aes.BlockSize, func(key []byte) (cipher.Block, error) {
		return aes.NewCipher(key)
	}},
	"twofish": {16, twofish.BlockSize, func(key []byte) (cipher.Block, error) {
		return twofish.NewCipher(key)
	}},
	"blowfish": {16, blowfish.BlockSize, func(key []byte) (cipher.Block, error) {
		return blowfish.NewCipher(key)
	}},
	"cast5": {cast5.KeySize, cast5.BlockSize, func(key []byte) (cipher.Block, error) {
		return cast5.NewCipher(key)
	}},
	"xtea": {16, xtea.BlockSize, func(key []byte) (cipher.Block, error) {
		return xtea.NewCipher(key)
	}},
}

// UnknownCipherError is returned for names not in Names().
type UnknownCipherError string

func (e UnknownCipherError) Error() string {
	return fmt.Sprintf("blockcipher: unknown cipher %q", string(e))
}

// Names returns the supported cipher names in sorted order.
func Names() []string {
	var names []string
	for name := range primitives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeySize returns the key length used for the named cipher.
func KeySize(name string) (int, error) {
	p, ok := primitives[canonical(name)]
	if !ok {
		return 0, UnknownCipherError(name)
	}
	return p.keySize, nil
}

// BlockSize returns the block size of the named cipher.
func BlockSize(name string) (int, error) {
	p, ok := primitives[canonical(name)]
	if !ok {
		return 0, UnknownCipherError(name)
	}
	return p.blockSize, nil
}

// New returns the named block cipher keyed with key.
func New(name string, key []byte) (cipher.Block, error) {
	p, ok := primitives[canonical(name)]
	if !ok {
		return nil, UnknownCipherError(name)
	}
	c, err := p.newFn(key)
	if err != nil {
		return nil, fmt.Errorf("blockcipher: %s: %w", name, err)
	}
	return c, nil
}

// NewRandom returns the named block cipher with a key read from r.
func NewRandom(name string, r io.Reader) (cipher.Block, error) {
	n, err := KeySize(name)
	if err != nil {
		return nil, err
	}
	key := make([]byte, n)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("blockcipher: reading key: %w", err)
	}
	return New(name, key)
}

func canonical(name string) string {
	if name == "" {
		return Default
	}
	return name
}
