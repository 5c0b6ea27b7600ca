// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package config holds the signer daemon's settings and the flags that
// fill them in.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tillitis/tkeyclient"

	"github.com/tillitis/ae-signer/internal/log"
	"github.com/tillitis/ae-signer/internal/ui"
)

// WindowsPipePrefix is prepended to the listen path on Windows.
const WindowsPipePrefix = `\\.\pipe\`

// Config holds parsed command-line flags.
type Config struct {
	// Commands
	Help      bool
	Version   bool
	ListPorts bool

	// Listener
	Listen string

	// Keys
	MnemonicFile string
	Passphrase   bool
	TKey         bool
	TKeyPort     string
	TKeySpeed    int

	// Operator
	Approver string
	Pinentry string
	Notify   bool

	// Logging
	LogLevel string
	LogJSON  bool
}

// RegisterFlags binds the fields of c to flags in fs.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Listen, "listen", "l", "",
		fmt.Sprintf("Serve on the UNIX-domain socket at `PATH`. On Windows, a Named Pipe at '%s\\PATH' is used.", WindowsPipePrefix))
	fs.StringVar(&c.MnemonicFile, "mnemonic-file", "",
		"Read the BIP-39 mnemonic that all account keys are derived from out of `FILE`. Use '-' (dash) to read from stdin.")
	fs.BoolVar(&c.Passphrase, "passphrase", false,
		"Ask for the BIP-39 passphrase using pinentry.")
	fs.BoolVar(&c.TKey, "tkey", false,
		"Sign with a TKey running the ed25519 signer app instead of a mnemonic. Only account 0 is available.")
	fs.StringVar(&c.TKeyPort, "tkey-port", "",
		"Set serial port device `PATH` of the TKey. If this is not passed, auto-detection will be attempted.")
	fs.IntVar(&c.TKeySpeed, "tkey-speed", tkeyclient.SerialSpeed,
		"Set serial port speed in `BPS` (bits per second).")
	fs.StringVar(&c.Approver, "approver", ui.NameDefault,
		fmt.Sprintf("Let the operator review requests with `NAME`, one of %s. The default is console, or pinentry on Windows.", strings.Join(ui.Names, ", ")))
	fs.StringVar(&c.Pinentry, "pinentry", "",
		"Pinentry `PROGRAM` for use by --approver pinentry and --passphrase. The default is found by looking in your gpg-agent.conf for pinentry-program, or 'pinentry' if not found there.")
	fs.BoolVar(&c.Notify, "notify", false,
		"Show a desktop notification after each review.")
	fs.StringVar(&c.LogLevel, "log-level", "info",
		fmt.Sprintf("Log at `LEVEL`, one of %s.", strings.Join(log.Levels, ", ")))
	fs.BoolVar(&c.LogJSON, "log-json", false, "Log as JSON lines.")
	fs.BoolVarP(&c.ListPorts, "list-ports", "L", false,
		"List possible serial ports to use with --tkey-port.")
	fs.BoolVar(&c.Version, "version", false, "Output version information.")
	fs.BoolVar(&c.Help, "help", false, "Output this help.")
}

// Validate checks the config of a daemon about to serve for operator
// mistakes.
func Validate(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Listen == "" {
		return errors.New("--listen is required")
	}
	if c.Approver != ui.NameDefault && !slices.Contains(ui.Names, c.Approver) {
		return fmt.Errorf("--approver must be one of %s", strings.Join(ui.Names, ", "))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("--log-level must be one of %s", strings.Join(log.Levels, ", "))
	}

	switch {
	case c.TKey && c.MnemonicFile != "":
		return errors.New("pass only one of --tkey or --mnemonic-file")
	case !c.TKey && c.MnemonicFile == "":
		return errors.New("pass one of --tkey or --mnemonic-file")
	case c.TKey && c.Passphrase:
		return errors.New("--passphrase applies only to --mnemonic-file")
	}
	if c.MnemonicFile == "-" && consoleApprover(c.Approver) {
		return errors.New("--mnemonic-file - leaves no terminal for the console approver, pass a file or another --approver")
	}
	if !c.TKey && (c.TKeyPort != "" || c.TKeySpeed != tkeyclient.SerialSpeed) {
		return errors.New("--tkey-port and --tkey-speed apply only to --tkey")
	}
	if c.TKeySpeed <= 0 {
		return fmt.Errorf("--tkey-speed must be positive, got %d", c.TKeySpeed)
	}

	return nil
}

func consoleApprover(name string) bool {
	return name == ui.NameConsole || (name == ui.NameDefault && runtime.GOOS != "windows")
}
