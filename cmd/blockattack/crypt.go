package main

import (
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/pmaddams/blockattack/blockcipher"
	"github.com/pmaddams/blockattack/blockutil"
	"github.com/pmaddams/blockattack/mode"
)

// cryptCommand encrypts or decrypts whole inputs in a single block mode.
type cryptCommand struct {
	global *globalOptions
	cbc    bool

	Encrypt bool   `long:"encrypt" short:"e" description:"Encrypt instead of decrypt"`
	Cipher  string `long:"cipher" short:"c" default:"aes" description:"Block cipher to use"`
	Key     string `long:"key" short:"k" default:"YELLOW SUBMARINE" description:"Key as a string"`
	IV      string `long:"iv" description:"Hex initialization vector for CBC (default all zeros)"`
}

func newCBCCommand(opts *globalOptions) *cryptCommand {
	return &cryptCommand{global: opts, cbc: true}
}

func newECBCommand(opts *globalOptions) *cryptCommand {
	return &cryptCommand{global: opts}
}

func (x *cryptCommand) name() string {
	if x.cbc {
		return "cbc"
	}
	return "ecb"
}

func (x *cryptCommand) short() string {
	if x.cbc {
		return "Encrypt or decrypt in CBC mode"
	}
	return "Encrypt or decrypt in ECB mode"
}

func (x *cryptCommand) long() string {
	return "Read base64 ciphertext from the given files or standard input and " +
		"print the plaintext, or with -e read plaintext and print base64 " +
		"ciphertext. Padding is PKCS#7"
}

func (x *cryptCommand) Execute(args []string) error {
	if err := setLogLevels(x.global.DebugLevel); err != nil {
		return err
	}
	c, err := blockcipher.New(x.Cipher, []byte(x.Key))
	if err != nil {
		return err
	}
	var iv []byte
	if x.cbc {
		if iv, err = x.initVector(c); err != nil {
			return err
		}
	}
	mainLog.Debugf("%s %s with block size %d", x.Cipher, x.name(), c.BlockSize())

	return forEachInput(args, func(in io.Reader) error {
		if x.Encrypt {
			return encryptTo(os.Stdout, in, c, iv)
		}
		return decryptTo(os.Stdout, in, c, iv)
	})
}

func (x *cryptCommand) initVector(c cipher.Block) ([]byte, error) {
	if x.IV == "" {
		return make([]byte, c.BlockSize()), nil
	}
	iv, err := blockutil.DecodeHex(x.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv: %w", err)
	}
	return iv, nil
}

// encryptTo reads plaintext and writes base64 ciphertext. A nil iv selects
// ECB mode.
func encryptTo(out io.Writer, in io.Reader, c cipher.Block, iv []byte) error {
	msg, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	var buf []byte
	if iv == nil {
		buf = mode.ECBEncrypt(c, msg)
	} else if buf, err = mode.CBCEncrypt(c, iv, msg); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, base64.StdEncoding.EncodeToString(buf))
	return err
}

// decryptTo reads base64 ciphertext and writes plaintext. A nil iv selects
// ECB mode.
func decryptTo(out io.Writer, in io.Reader, c cipher.Block, iv []byte) error {
	text, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	buf, err := blockutil.DecodeBase64(string(text))
	if err != nil {
		return err
	}
	if iv == nil {
		buf, err = mode.ECBDecrypt(c, buf)
	} else {
		buf, err = mode.CBCDecrypt(c, iv, buf)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(buf)
	return err
}
