package main

import (
	"errors"
	"io"
	"os"
)

// errSomeFailed is returned when at least one input could not be processed.
var errSomeFailed = errors.New("some inputs failed")

// forEachInput calls fn on each named file, or on standard input if no files
// are given. Failing files are logged and skipped.
func forEachInput(files []string, fn func(io.Reader) error) error {
	if len(files) == 0 {
		return fn(os.Stdin)
	}
	var failed bool
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			mainLog.Errorf("%v", err)
			failed = true
			continue
		}
		if err := fn(f); err != nil {
			mainLog.Errorf("%s: %v", name, err)
			failed = true
		}
		f.Close()
	}
	if failed {
		return errSomeFailed
	}
	return nil
}
