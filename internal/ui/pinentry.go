// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package ui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/twpayne/go-pinentry"

	"github.com/tillitis/ae-signer/internal/app"
	"github.com/tillitis/ae-signer/internal/log"
)

const title = "ae-signer"

// Pinentry asks for approval in a pinentry confirmation dialog.
type Pinentry struct {
	// Program overrides the pinentry binary.
	Program string
}

// clientOptions builds the dialog options. Without program the binary
// named by gpg-agent.conf is used, falling back to "pinentry", or on
// Windows the one of a Gpg4win install.
func clientOptions(program, desc, prompt string) []pinentry.ClientOption {
	logger := log.UI

	opts := []pinentry.ClientOption{
		pinentry.WithLogger(&logger),
		pinentry.WithBinaryNameFromGnuPGAgentConf(),
		pinentry.WithGPGTTY(),
		pinentry.WithDesc(desc),
		pinentry.WithPrompt(prompt),
		pinentry.WithTitle(title),
	}

	if program != "" {
		opts = append(opts, pinentry.WithBinaryName(program))
	} else if runtime.GOOS == "windows" {
		if found := findWindowsPinentry(); found != "" {
			log.UI.Info().Str("program", found).Msg("using pinentry")
			opts = append(opts, pinentry.WithBinaryName(found))
		}
	}

	return opts
}

func (p *Pinentry) Review(r app.Review) (bool, error) {
	client, err := pinentry.NewClient(clientOptions(p.Program, Render(r), r.Verb)...)
	if err != nil {
		return false, fmt.Errorf("pinentry.NewClient: %w", err)
	}
	defer client.Close()

	approved, err := client.Confirm("")
	if pinentry.IsCancelled(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pinentry Confirm: %w", err)
	}

	return approved, nil
}

// Passphrase asks for the mnemonic passphrase with pinentry.
func Passphrase(program string) (string, error) {
	desc := fmt.Sprintf("%s needs the passphrase of your\n"+
		"recovery phrase. Leave it empty if it has none.", title)

	client, err := pinentry.NewClient(clientOptions(program, desc, "Passphrase")...)
	if err != nil {
		return "", fmt.Errorf("pinentry.NewClient: %w", err)
	}
	defer client.Close()

	pin, _, err := client.GetPIN()
	if err != nil {
		return "", fmt.Errorf("pinentry GetPin: %w", err)
	}
	return pin, nil
}

// findWindowsPinentry looks for the pinentry of a Gpg4win install
// beside the gpgconf.exe found on PATH, then for a pinentry on PATH.
func findWindowsPinentry() string {
	gpgconf, err := exec.LookPath("gpgconf.exe")
	if err != nil {
		log.UI.Debug().Err(err).Msg("gpgconf.exe not found")
		return lookPathAny("pinentry.exe", "pinentry-basic.exe")
	}

	// gpgconf.exe lives in GnuPG\bin, Gpg4win is installed next to GnuPG.
	root := filepath.Dir(gpgconf)
	if filepath.Base(root) == "bin" {
		root = filepath.Dir(root)
	}
	for _, candidate := range []string{
		filepath.Join(root, "..", "Gpg4win", "bin", "pinentry.exe"),
		filepath.Join(root, "..", "Gpg4win", "pinentry.exe"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		log.UI.Debug().Str("candidate", candidate).Msg("pinentry not found")
	}

	return lookPathAny("pinentry.exe", "pinentry-basic.exe")
}

// lookPathAny returns the path of the first of names found on PATH.
func lookPathAny(names ...string) string {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
