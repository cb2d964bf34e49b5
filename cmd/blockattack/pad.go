package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pmaddams/blockattack/pkcs7"
)

type padCommand struct {
	global *globalOptions

	BlockSize int `long:"block-size" short:"b" default:"20" description:"Block size in bytes (1-255)"`
}

func (x *padCommand) name() string  { return "pad" }
func (x *padCommand) short() string { return "Add PKCS#7 padding to lines of text" }
func (x *padCommand) long() string {
	return "Read lines of text from the given files or standard input and " +
		"print each one, quoted, with PKCS#7 padding added"
}

func (x *padCommand) Execute(args []string) error {
	if err := setLogLevels(x.global.DebugLevel); err != nil {
		return err
	}
	if err := checkBlockSize(x.BlockSize); err != nil {
		return err
	}
	return forEachInput(args, func(in io.Reader) error {
		return padLines(in, os.Stdout, x.BlockSize)
	})
}

// padLines reads lines of text and writes them quoted with padding added.
func padLines(in io.Reader, out io.Writer, blockSize int) error {
	input := bufio.NewScanner(in)
	for input.Scan() {
		buf := pkcs7.Pad(input.Bytes(), blockSize)
		if _, err := fmt.Fprintln(out, strconv.Quote(string(buf))); err != nil {
			return err
		}
	}
	return input.Err()
}

type unpadCommand struct {
	global *globalOptions

	BlockSize int `long:"block-size" short:"b" default:"16" description:"Block size in bytes (1-255)"`
}

func (x *unpadCommand) name() string  { return "unpad" }
func (x *unpadCommand) short() string { return "Validate and strip PKCS#7 padding" }
func (x *unpadCommand) long() string {
	return "Read lines of Go-escaped text (as printed by the pad command) and " +
		"print each one with its PKCS#7 padding removed, reporting lines " +
		"whose padding is invalid"
}

func (x *unpadCommand) Execute(args []string) error {
	if err := setLogLevels(x.global.DebugLevel); err != nil {
		return err
	}
	if err := checkBlockSize(x.BlockSize); err != nil {
		return err
	}
	return forEachInput(args, func(in io.Reader) error {
		return unpadLines(in, os.Stdout, x.BlockSize)
	})
}

// unpadLines reads escaped lines and writes them with padding removed. Lines
// that fail to parse or validate are logged; the first such error is
// returned after all lines are processed.
func unpadLines(in io.Reader, out io.Writer, blockSize int) error {
	var firstErr error
	input := bufio.NewScanner(in)
	for line := 1; input.Scan(); line++ {
		s := input.Text()
		if u, err := strconv.Unquote(s); err == nil {
			s = u
		} else if s, err = strconv.Unquote(`"` + s + `"`); err != nil {
			mainLog.Errorf("line %d: %v", line, err)
			firstErr = firstOf(firstErr, err)
			continue
		}
		buf, err := pkcs7.Unpad([]byte(s), blockSize)
		if err != nil {
			mainLog.Errorf("line %d: %v", line, err)
			firstErr = firstOf(firstErr, err)
			continue
		}
		if _, err := fmt.Fprintln(out, string(buf)); err != nil {
			return err
		}
	}
	if err := input.Err(); err != nil {
		return err
	}
	return firstErr
}

func firstOf(first, err error) error {
	if first != nil {
		return first
	}
	return err
}

func checkBlockSize(n int) error {
	if n < 1 || n > 0xff {
		return fmt.Errorf("invalid block size %d", n)
	}
	return nil
}
