// Package oracle provides encryption capabilities: values that encrypt
// attacker-chosen plaintext under hidden state (a key, an optional fixed
// prefix and suffix, and a mode choice) that the caller cannot inspect.
package oracle

import (
	"crypto/cipher"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	weak "math/rand"
	"sync"
	"time"

	"github.com/pmaddams/blockattack/blockcipher"
	"github.com/pmaddams/blockattack/mode"
)

// Oracle encrypts attacker-supplied plaintext. Implementations must not
// modify the argument and must return a fresh slice.
type Oracle interface {
	Encrypt(plaintext []byte) []byte
}

// Func adapts an ordinary function to the Oracle interface.
type Func func([]byte) []byte

// Encrypt calls f(buf).
func (f Func) Encrypt(buf []byte) []byte {
	return f(buf)
}

// Mode is the block mode used for a single encryption.
type Mode int

const (
	ECB Mode = iota
	CBC
)

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Selection determines how a Capability picks the mode for each call.
type Selection int

const (
	// FixedECB always encrypts in ECB mode.
	FixedECB Selection = iota

	// FixedCBC always encrypts in CBC mode with a fresh random IV.
	FixedCBC

	// RandomMode flips a fair coin between ECB and CBC on every call.
	RandomMode
)

func (s Selection) String() string {
	switch s {
	case FixedECB:
		return "ecb"
	case FixedCBC:
		return "cbc"
	case RandomMode:
		return "random"
	default:
		return fmt.Sprintf("Selection(%d)", int(s))
	}
}

// ParseSelection parses the String form of a Selection.
func ParseSelection(s string) (Selection, error) {
	for _, sel := range []Selection{FixedECB, FixedCBC, RandomMode} {
		if sel.String() == s {
			return sel, nil
		}
	}
	return 0, fmt.Errorf("oracle: unknown mode selection %q", s)
}

// Config describes the hidden state of a Capability. The zero value is an
// AES-ECB oracle with no prefix or suffix.
type Config struct {
	// Cipher names the block primitive, see blockcipher.Names.
	Cipher string

	// Mode selects ECB, CBC or a per-call random choice.
	Mode Selection

	// Prefix and Suffix are fixed bytes wrapped around every input. When
	// nil, random bytes are generated once with a length drawn from
	// [MinPrefix, MaxPrefix] and [MinSuffix, MaxSuffix].
	Prefix, Suffix       []byte
	MinPrefix, MaxPrefix int
	MinSuffix, MaxSuffix int

	// Rand drives the mode coin and the random lengths. It defaults to a
	// time-seeded source; fix the seed for repeatable runs.
	Rand *weak.Rand

	// Entropy supplies key, IV and random prefix/suffix bytes. It defaults
	// to crypto/rand.Reader.
	Entropy io.Reader

	// Observe, if set, is told the mode chosen for every call. It is meant
	// for test harnesses checking a classifier.
	Observe func(Mode)
}

// Capability is the standard Oracle implementation. It is safe for
// concurrent use.
type Capability struct {
	block   cipher.Block
	sel     Selection
	prefix  []byte
	suffix  []byte
	observe func(Mode)

	// mu guards rnd and entropy, which are not safe for concurrent use.
	mu      sync.Mutex
	rnd     *weak.Rand
	entropy io.Reader
}

// New returns a capability with the hidden state described by cfg.
func New(cfg *Config) (*Capability, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Mode < FixedECB || cfg.Mode > RandomMode {
		return nil, fmt.Errorf("oracle: invalid mode selection %v", cfg.Mode)
	}
	x := &Capability{
		sel:     cfg.Mode,
		observe: cfg.Observe,
		rnd:     cfg.Rand,
		entropy: cfg.Entropy,
	}
	if x.rnd == nil {
		x.rnd = weak.New(weak.NewSource(time.Now().UnixNano()))
	}
	if x.entropy == nil {
		x.entropy = crand.Reader
	}

	var err error
	if x.block, err = blockcipher.NewRandom(cfg.Cipher, x.entropy); err != nil {
		return nil, err
	}
	if x.prefix, err = x.fixedBytes(cfg.Prefix, cfg.MinPrefix, cfg.MaxPrefix); err != nil {
		return nil, fmt.Errorf("oracle: prefix: %w", err)
	}
	if x.suffix, err = x.fixedBytes(cfg.Suffix, cfg.MinSuffix, cfg.MaxSuffix); err != nil {
		return nil, fmt.Errorf("oracle: suffix: %w", err)
	}
	log.Debugf("New %v capability: cipher=%v, block size=%d",
		x.sel, cipherName(cfg.Cipher), x.block.BlockSize())
	log.Tracef("Hidden prefix %d bytes, suffix %d bytes",
		len(x.prefix), len(x.suffix))

	return x, nil
}

// NewECBSuffix returns a fixed-key ECB capability that appends suffix to
// every input.
func NewECBSuffix(cipherName string, suffix []byte, entropy io.Reader) (*Capability, error) {
	return New(&Config{
		Cipher:  cipherName,
		Mode:    FixedECB,
		Suffix:  append([]byte{}, suffix...),
		Entropy: entropy,
	})
}

// NewRandomMode returns a capability that wraps every input in 5 to 10
// random bytes on each side and picks ECB or CBC at random per call.
func NewRandomMode(cipherName string, rnd *weak.Rand, entropy io.Reader) (*Capability, error) {
	return New(&Config{
		Cipher:    cipherName,
		Mode:      RandomMode,
		MinPrefix: 5,
		MaxPrefix: 10,
		MinSuffix: 5,
		MaxSuffix: 10,
		Rand:      rnd,
		Entropy:   entropy,
	})
}

// Encrypt returns the encryption of prefix || buf || suffix.
func (x *Capability) Encrypt(buf []byte) []byte {
	msg := make([]byte, 0, len(x.prefix)+len(buf)+len(x.suffix))
	msg = append(msg, x.prefix...)
	msg = append(msg, buf...)
	msg = append(msg, x.suffix...)

	m, iv := x.choose()
	if x.observe != nil {
		x.observe(m)
	}
	if m == ECB {
		return mode.ECBEncrypt(x.block, msg)
	}
	res, err := mode.CBCEncrypt(x.block, iv, msg)
	if err != nil {
		// The IV always matches the block size.
		panic(err)
	}
	return res
}

// choose picks the mode for one call and, for CBC, a fresh IV.
func (x *Capability) choose() (Mode, []byte) {
	x.mu.Lock()
	defer x.mu.Unlock()

	m := ECB
	switch x.sel {
	case FixedCBC:
		m = CBC
	case RandomMode:
		if x.rnd.Intn(2) == 1 {
			m = CBC
		}
	}
	if m == ECB {
		return m, nil
	}
	iv := make([]byte, x.block.BlockSize())
	if _, err := io.ReadFull(x.entropy, iv); err != nil {
		panic(fmt.Sprintf("Encrypt: %s", err.Error()))
	}
	return m, iv
}

// fixedBytes returns a copy of buf, or random bytes with a length in
// [lo, hi] if buf is nil.
func (x *Capability) fixedBytes(buf []byte, lo, hi int) ([]byte, error) {
	if buf != nil {
		return append([]byte{}, buf...), nil
	}
	if lo < 0 || lo > hi {
		return nil, errors.New("invalid length range")
	}
	res := make([]byte, lo+x.rnd.Intn(hi-lo+1))
	if _, err := io.ReadFull(x.entropy, res); err != nil {
		return nil, err
	}
	return res, nil
}

func cipherName(s string) string {
	if s == "" {
		return blockcipher.Default
	}
	return s
}
