// Command blockattack pads, encrypts and attacks data with the ECB and CBC
// block cipher modes.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// globalOptions are accepted by every command.
type globalOptions struct {
	DebugLevel string `long:"debuglevel" short:"d" default:"info" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off}"`
}

// command is implemented by every subcommand.
type command interface {
	flags.Commander
	name() string
	short() string
	long() string
}

// commands returns every subcommand, bound to the global options.
func commands(opts *globalOptions) []command {
	return []command{
		&padCommand{global: opts},
		&unpadCommand{global: opts},
		newCBCCommand(opts),
		newECBCommand(opts),
		&detectCommand{global: opts},
		&recoverCommand{global: opts},
	}
}

func newParser(opts *globalOptions) (*flags.Parser, error) {
	parser := flags.NewParser(opts, flags.Default)
	for _, cmd := range commands(opts) {
		if _, err := parser.AddCommand(cmd.name(), cmd.short(), cmd.long(), cmd); err != nil {
			return nil, err
		}
	}
	return parser, nil
}

func main() {
	var opts globalOptions
	parser, err := newParser(&opts)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := parser.Parse(); err != nil {
		// go-flags has already printed the error or help text.
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
