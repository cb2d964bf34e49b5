package main

import (
	"fmt"
	"io"
	weak "math/rand"
	"os"
	"time"

	"github.com/pmaddams/blockattack/attack"
	"github.com/pmaddams/blockattack/blockcipher"
	"github.com/pmaddams/blockattack/oracle"
)

// maxRandomPrefix is the longest prefix a random-mode oracle adds.
const maxRandomPrefix = 10

type detectCommand struct {
	global *globalOptions

	Cipher string `long:"cipher" short:"c" default:"aes" description:"Block cipher used by the oracle"`
	Trials int    `long:"trials" short:"n" default:"1" description:"Number of oracles to classify"`
	Seed   int64  `long:"seed" description:"Seed for the oracle's mode and length choices (0 for time)"`
}

func (x *detectCommand) name() string  { return "detect" }
func (x *detectCommand) short() string { return "Detect ECB or CBC mode behind a random oracle" }
func (x *detectCommand) long() string {
	return "Build oracles that wrap their input in random bytes and pick ECB " +
		"or CBC at random, then classify each one from a single ciphertext"
}

func (x *detectCommand) Execute(args []string) error {
	if err := setLogLevels(x.global.DebugLevel); err != nil {
		return err
	}
	seed := x.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	correct, err := detectTrials(os.Stdout, x.Cipher, weak.New(weak.NewSource(seed)), x.Trials)
	if err != nil {
		return err
	}
	if x.Trials > 1 {
		fmt.Printf("%d of %d correct\n", correct, x.Trials)
	}
	return nil
}

// detectTrials classifies n random-mode oracles, writing one line per trial,
// and returns the number classified correctly.
func detectTrials(out io.Writer, cipherName string, rnd *weak.Rand, n int) (int, error) {
	blockSize, err := blockcipher.BlockSize(cipherName)
	if err != nil {
		return 0, err
	}

	var correct int
	for i := 0; i < n; i++ {
		var used oracle.Mode
		o, err := oracle.New(&oracle.Config{
			Cipher:    cipherName,
			Mode:      oracle.RandomMode,
			MinPrefix: 5,
			MaxPrefix: maxRandomPrefix,
			MinSuffix: 5,
			MaxSuffix: 10,
			Rand:      rnd,
			Observe:   func(m oracle.Mode) { used = m },
		})
		if err != nil {
			return correct, err
		}
		got := attack.DetectMode(o, blockSize, maxRandomPrefix)

		verdict := "incorrect"
		if got == used {
			verdict = "correct"
			correct++
		}
		if _, err := fmt.Fprintf(out, "detected %v mode...%s.\n", got, verdict); err != nil {
			return correct, err
		}
	}
	return correct, nil
}
