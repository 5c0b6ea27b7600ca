// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tillitis/ae-signer/internal/app"
)

// Console asks for approval on the controlling terminal.
type Console struct {
	in  *os.File
	out io.Writer
}

func NewConsole() *Console {
	return &Console{in: os.Stdin, out: os.Stderr}
}

func (c *Console) Review(r app.Review) (bool, error) {
	fd := int(c.in.Fd())
	if !term.IsTerminal(fd) {
		return false, errors.New("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return false, fmt.Errorf("MakeRaw: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	return ask(struct {
		io.Reader
		io.Writer
	}{c.in, c.out}, r)
}

// ask shows r on rw and reads the answer. Only y or yes approves.
func ask(rw io.ReadWriter, r app.Review) (bool, error) {
	t := term.NewTerminal(rw, "")
	if _, err := io.WriteString(t, "\n"+Render(r)); err != nil {
		return false, fmt.Errorf("Write: %w", err)
	}

	t.SetPrompt(fmt.Sprintf("%s? [y/N] ", r.Verb))
	line, err := t.ReadLine()
	if err != nil {
		return false, fmt.Errorf("ReadLine: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
