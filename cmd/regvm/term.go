package main

import (
	"os"

	"golang.org/x/term"
)

// rawStdin puts stdin in raw mode when it is a terminal, so each key press
// reaches Inp immediately. Enter then arrives as CR, which Inp discards.
// The returned function restores the terminal; it is a no-op when stdin is
// not a terminal.
func rawStdin() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, old) }, nil
}
