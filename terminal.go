package main

import (
	"os"

	"golang.org/x/term"
)

const (
	defaultTerminalWidth  = 120
	defaultTerminalHeight = 24
)

// terminalSize returns the size of the terminal on stdout, or a standard
// size when stdout is not a terminal.
func terminalSize() (width, height int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTerminalWidth, defaultTerminalHeight
	}
	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 || height <= 0 {
		return defaultTerminalWidth, defaultTerminalHeight
	}
	return width, height
}
