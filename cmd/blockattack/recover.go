package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/pmaddams/blockattack/attack"
	"github.com/pmaddams/blockattack/blockutil"
	"github.com/pmaddams/blockattack/oracle"
)

// defaultSecret is appended by the oracle when no --secret is given.
const defaultSecret = `Um9sbGluJyBpbiBteSA1LjAKV2l0aCBteSByYWctdG9wIGRvd24gc28gbXkg
aGFpciBjYW4gYmxvdwpUaGUgZ2lybGllcyBvbiBzdGFuZGJ5IHdhdmluZyBq
dXN0IHRvIHNheSBoaQpEaWQgeW91IHN0b3A/IE5vLCBJIGp1c3QgZHJvdmUg
YnkK`

type recoverCommand struct {
	global *globalOptions

	Cipher  string `long:"cipher" short:"c" default:"aes" description:"Block cipher used by the oracle"`
	Secret  string `long:"secret" short:"s" description:"Base64 secret appended by the oracle (default a built-in text)"`
	Prefix  int    `long:"prefix" short:"p" description:"Maximum length of a random prefix added by the oracle"`
	Workers int    `long:"workers" short:"w" description:"Concurrent oracle calls per dictionary (default number of CPUs)"`
	Trials  int    `long:"trials" short:"n" default:"10" description:"ECB detection runs before recovery"`
}

func (x *recoverCommand) name() string  { return "recover" }
func (x *recoverCommand) short() string { return "Recover an ECB oracle's secret suffix" }
func (x *recoverCommand) long() string {
	return "Build an ECB oracle with a hidden key that appends a secret to its " +
		"input, then recover the secret one byte at a time using only the " +
		"oracle's output. With --prefix the oracle also prepends random bytes"
}

func (x *recoverCommand) Execute(args []string) error {
	if err := setLogLevels(x.global.DebugLevel); err != nil {
		return err
	}
	if x.Prefix < 0 {
		return fmt.Errorf("invalid prefix length %d", x.Prefix)
	}
	s := x.Secret
	if s == "" {
		s = defaultSecret
	}
	secret, err := blockutil.DecodeBase64(s)
	if err != nil {
		return fmt.Errorf("invalid secret: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	buf, err := x.run(ctx, secret)
	if err != nil && !errors.Is(err, attack.ErrIncomplete) {
		return err
	}
	fmt.Print(string(buf))
	return err
}

func (x *recoverCommand) run(ctx context.Context, secret []byte) ([]byte, error) {
	o, err := oracle.New(&oracle.Config{
		Cipher:    x.Cipher,
		Mode:      oracle.FixedECB,
		MaxPrefix: x.Prefix,
		Suffix:    secret,
	})
	if err != nil {
		return nil, err
	}
	cfg := &attack.BreakerConfig{
		Trials:  x.Trials,
		Workers: x.Workers,
	}
	if x.Prefix > 0 {
		mainLog.Infof("Attacking %s oracle with a prefix of up to %d bytes",
			x.Cipher, x.Prefix)
		return attack.BreakWithPrefix(ctx, o, cfg)
	}
	mainLog.Infof("Attacking %s oracle", x.Cipher)
	return attack.Break(ctx, o, cfg)
}
