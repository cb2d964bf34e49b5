package attack

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pmaddams/blockattack/blockutil"
	"github.com/pmaddams/blockattack/oracle"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFiller is the byte used to build probes.
	DefaultFiller = 'A'

	// DefaultMaxBlockSize bounds the filler fed to the oracle while
	// looking for the block size.
	DefaultMaxBlockSize = 256

	// DefaultTrials is the number of detection runs needed to confirm ECB.
	DefaultTrials = 10
)

// Phase is a step of the byte-at-a-time attack.
type Phase int

const (
	DiscoverBlockSize Phase = iota
	ConfirmECB
	Recover
	Done
	Aborted
)

func (p Phase) String() string {
	switch p {
	case DiscoverBlockSize:
		return "DISCOVER_BLOCK_SIZE"
	case ConfirmECB:
		return "CONFIRM_ECB"
	case Recover:
		return "RECOVER"
	case Done:
		return "DONE"
	case Aborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// BreakerConfig tunes a Breaker. Zero fields take their defaults.
type BreakerConfig struct {
	// Filler is the byte used to pad probes.
	Filler byte

	// MaxBlockSize is the largest filler length tried during block size
	// discovery.
	MaxBlockSize int

	// Trials is the number of ECB detection runs.
	Trials int

	// Workers bounds the concurrent oracle calls made while building a
	// dictionary. Defaults to runtime.NumCPU().
	Workers int
}

func (c *BreakerConfig) withDefaults() BreakerConfig {
	var res BreakerConfig
	if c != nil {
		res = *c
	}
	if res.Filler == 0 {
		res.Filler = DefaultFiller
	}
	if res.MaxBlockSize <= 0 {
		res.MaxBlockSize = DefaultMaxBlockSize
	}
	if res.Trials <= 0 {
		res.Trials = DefaultTrials
	}
	if res.Workers <= 0 {
		res.Workers = runtime.NumCPU()
	}
	return res
}

// Breaker holds the state of a byte-at-a-time attack on an ECB oracle that
// appends an unknown secret to its input.
type Breaker struct {
	oracle oracle.Oracle
	cfg    BreakerConfig
	phase  Phase
	calls  atomic.Int64

	blockSize  int
	blockCount int
	secretLen  int
	recovered  []byte
}

// NewBreaker takes an encryption oracle and returns a breaker.
func NewBreaker(o oracle.Oracle, cfg *BreakerConfig) *Breaker {
	return &Breaker{oracle: o, cfg: cfg.withDefaults()}
}

// Phase returns the current step of the attack.
func (x *Breaker) Phase() Phase { return x.phase }

// BlockSize returns the discovered block size, or 0.
func (x *Breaker) BlockSize() int { return x.blockSize }

// BlockCount returns the number of blocks holding the secret.
func (x *Breaker) BlockCount() int { return x.blockCount }

// SecretLen returns the discovered length of the secret.
func (x *Breaker) SecretLen() int { return x.secretLen }

// Calls returns the number of oracle invocations made so far.
func (x *Breaker) Calls() int64 { return x.calls.Load() }

func (x *Breaker) encrypt(buf []byte) []byte {
	x.calls.Add(1)
	return x.oracle.Encrypt(buf)
}

func (x *Breaker) filler(n int) []byte {
	return bytes.Repeat([]byte{x.cfg.Filler}, n)
}

// DiscoverBlockSize feeds the oracle growing runs of filler until the
// ciphertext grows, which happens once the padding spills into a new block.
func (x *Breaker) DiscoverBlockSize() error {
	if x.phase != DiscoverBlockSize {
		return &PhaseError{"DiscoverBlockSize", x.phase}
	}
	initLen := len(x.encrypt(nil))
	for n := 1; n <= x.cfg.MaxBlockSize; n++ {
		nextLen := len(x.encrypt(x.filler(n)))
		if nextLen == initLen {
			continue
		}
		blockSize := nextLen - initLen
		if blockSize < 0 || initLen%blockSize != 0 {
			x.phase = Aborted
			return fmt.Errorf("%w: ciphertext length went from %d to %d",
				ErrBlockSizeNotFound, initLen, nextLen)
		}
		x.blockSize = blockSize
		x.blockCount = initLen / blockSize

		// With n == blockSize the secret fills its last block exactly,
		// so initLen included a whole block of padding.
		if n == blockSize {
			x.blockCount--
		}
		x.secretLen = initLen - n
		x.phase = ConfirmECB

		log.Infof("Block size %d, secret length %d in %d blocks",
			x.blockSize, x.secretLen, x.blockCount)
		return nil
	}
	x.phase = Aborted
	return fmt.Errorf("%w: no change within %d bytes",
		ErrBlockSizeNotFound, x.cfg.MaxBlockSize)
}

// ConfirmECB runs mode detection repeatedly and aborts on any CBC result.
func (x *Breaker) ConfirmECB() error {
	if x.phase != ConfirmECB {
		return &PhaseError{"ConfirmECB", x.phase}
	}
	for i := 0; i < x.cfg.Trials; i++ {
		x.calls.Add(1)
		if m := detectMode(x.oracle, x.cfg.Filler, x.blockSize, 0); m != oracle.ECB {
			log.Warnf("Trial %d detected %v mode, aborting", i+1, m)
			x.phase = Aborted
			return ErrNonECB
		}
	}
	log.Debugf("ECB mode confirmed in %d trials", x.cfg.Trials)
	x.phase = Recover
	return nil
}

// Recover decrypts the secret one byte at a time. For each position the
// probe is shortened so that the next unknown byte is the last byte of a
// block, and that block is looked up in a dictionary of all 256 possible
// final bytes. A miss means the probe has reached the padding, whose value
// shifts as the probe shrinks, and ends the attack.
func (x *Breaker) Recover(ctx context.Context) ([]byte, error) {
	if x.phase != Recover {
		return nil, &PhaseError{"Recover", x.phase}
	}
	n := x.blockSize
	x.recovered = x.recovered[:0]

blocks:
	for k := 0; k < x.blockCount; k++ {
		for j := 0; j < n; j++ {
			if err := ctx.Err(); err != nil {
				x.phase = Aborted
				return nil, err
			}
			target := blockutil.Block(x.encrypt(x.filler(n-1-j)), k, n)

			dict, err := x.dictionary(ctx, x.window())
			if err != nil {
				x.phase = Aborted
				return nil, err
			}
			b := lookup(dict, target)
			if b.IsNone() {
				log.Debugf("Dictionary miss at block %d, offset %d", k, j)
				break blocks
			}
			b.WhenSome(func(c byte) {
				x.recovered = append(x.recovered, c)
			})
		}
		log.Debugf("Recovered block %d of %d", k+1, x.blockCount)
		log.Tracef("Recovered so far: %v", newLogClosure(func() string {
			return strconv.Quote(string(x.recovered))
		}))
	}
	x.phase = Done

	// The byte after the secret is a 0x01 pad, which also matches.
	res := x.recovered
	if len(res) > x.secretLen {
		res = res[:x.secretLen]
	}
	res = blockutil.Dup(res)
	log.Infof("Recovered %d bytes with %d oracle calls", len(res), x.Calls())

	if len(res) < x.secretLen {
		return res, &IncompleteError{len(res), x.secretLen}
	}
	return res, nil
}

// window returns the last blockSize-1 bytes of filler followed by
// everything recovered so far.
func (x *Breaker) window() []byte {
	known := append(x.filler(x.blockSize-1), x.recovered...)
	return known[len(known)-(x.blockSize-1):]
}

// dictionary maps the first ciphertext block of window || b to b for every
// byte value. The 256 oracle calls are independent and run concurrently.
func (x *Breaker) dictionary(ctx context.Context, window []byte) (map[string]byte, error) {
	blocks := make([][]byte, 256)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(x.cfg.Workers)
	for i := range blocks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			probe := append(blockutil.Dup(window), byte(i))
			blocks[i] = blockutil.Block(x.encrypt(probe), 0, x.blockSize)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	dict := make(map[string]byte, len(blocks))
	for i, block := range blocks {
		dict[string(block)] = byte(i)
	}
	return dict, nil
}

// lookup returns the byte that produces the given encrypted block, if any.
func lookup(dict map[string]byte, block []byte) fn.Option[byte] {
	if block == nil {
		return fn.None[byte]()
	}
	if b, ok := dict[string(block)]; ok {
		return fn.Some(b)
	}
	return fn.None[byte]()
}

// Run drives the attack through every phase and returns the secret.
func (x *Breaker) Run(ctx context.Context) ([]byte, error) {
	log.Infof("Starting byte-at-a-time attack")
	if err := x.DiscoverBlockSize(); err != nil {
		return nil, err
	}
	if err := x.ConfirmECB(); err != nil {
		return nil, err
	}
	return x.Recover(ctx)
}

// Break runs a byte-at-a-time attack against o and returns its secret
// suffix.
func Break(ctx context.Context, o oracle.Oracle, cfg *BreakerConfig) ([]byte, error) {
	return NewBreaker(o, cfg).Run(ctx)
}
