// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"errors"
	"fmt"
	golog "log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/tillitis/tkeyclient"
	"github.com/tillitis/tkeyutil"

	"github.com/tillitis/ae-signer/internal/app"
	"github.com/tillitis/ae-signer/internal/config"
	"github.com/tillitis/ae-signer/internal/keys"
	"github.com/tillitis/ae-signer/internal/log"
	"github.com/tillitis/ae-signer/internal/transport"
	"github.com/tillitis/ae-signer/internal/ui"
)

// Use when printing err/diag msgs
var le = golog.New(os.Stderr, "", 0)

const progname = "ae-signer"

// appVersion is reported to clients asking for the signer version.
const appVersion = "1.0.0"

var version string

// keySource is a key provider that must be released on exit.
type keySource interface {
	app.Deriver
	release()
}

type seedSource struct{ *keys.Seed }

func (s seedSource) release() { s.Wipe() }

type tkeySource struct{ *keys.TKey }

func (s tkeySource) release() { _ = s.Close() }

func main() {
	exit := func(code int) {
		os.Exit(code)
	}

	if version == "" {
		version = readBuildInfo()
	}

	var cfg config.Config
	pflag.CommandLine.SetOutput(os.Stderr)
	pflag.CommandLine.SortFlags = false
	cfg.RegisterFlags(pflag.CommandLine)
	pflag.Usage = func() {
		desc := fmt.Sprintf(`Usage: %[1]s -l PATH --mnemonic-file FILE|--tkey [flags...]

%[1]s holds aeternity account keys and signs spend transactions,
messages and raw data for clients connecting to PATH. Every address
confirmation and every signature is first shown to the operator, who
approves or rejects it.

Keys are derived from a BIP-39 mnemonic along m/44'/457'/ACCOUNT'/0'/0',
or taken from a TKey running the ed25519 signer app.`, progname)
		le.Printf("%s\n\n%s", desc,
			pflag.CommandLine.FlagUsagesWrapped(86))
	}
	pflag.Parse()

	if pflag.NArg() > 0 {
		le.Printf("Unexpected argument: %s\n\n", strings.Join(pflag.Args(), " "))
		pflag.Usage()
		exit(2)
	}

	if cfg.Help {
		pflag.Usage()
		exit(0)
	}

	if cfg.Version {
		fmt.Printf("%s %s\n", progname, version)
		fmt.Printf("Signer app version: %s\n", appVersion)
		exit(0)
	}

	if cfg.ListPorts {
		n, err := printPorts()
		if err != nil {
			le.Printf("%v\n", err)
			exit(1)
		} else if n == 0 {
			exit(1)
		}
		// Successful only if we found some port
		exit(0)
	}

	if err := config.Validate(&cfg); err != nil {
		le.Printf("%v\n\n", err)
		pflag.Usage()
		exit(2)
	}

	if err := log.Init(os.Stderr, cfg.LogLevel, cfg.LogJSON); err != nil {
		le.Printf("%v\n", err)
		exit(2)
	}

	listenPath, err := resolvePath(cfg.Listen)
	if err != nil {
		le.Printf("Failed to resolve socket path: %s\n", err)
		exit(1)
	}

	_, err = os.Stat(listenPath)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		msg := fmt.Sprintf("Is a signer already running? Path %s exists.", listenPath)
		if cfg.Notify {
			tkeyutil.Notify(progname, msg)
		}
		le.Printf("%s\n", msg)
		// Don't remove the socket of the signer running.
		exit(1)
	}

	approver, err := ui.New(cfg.Approver, cfg.Pinentry)
	if err != nil {
		le.Printf("%v\n", err)
		exit(2)
	}

	source, err := openKeys(&cfg)
	if err != nil {
		le.Printf("%v\n", err)
		exit(1)
	}

	prevExitFunc := exit
	exit = func(code int) {
		source.release()
		prevExitFunc(code)
	}

	var opts []app.Option
	if cfg.Notify {
		opts = append(opts, app.WithStatusReporter(ui.NewNotifier(progname)))
	}
	dispatcher := app.New(source, approver, appVersion, opts...)

	if _, ok := source.(tkeySource); ok {
		// Connect now so a missing TKey is reported at start.
		addr, err := dispatcher.Address(0)
		if err != nil {
			le.Printf("%v\n", err)
			exit(1)
		}
		log.App.Info().Str("address", addr).Msg("TKey connected")
	}

	listener, err := transport.Listen(listenPath)
	if err != nil {
		le.Printf("%v\n", err)
		exit(1)
	}

	prevExitFunc = exit
	exit = func(code int) {
		_ = os.Remove(listenPath)
		prevExitFunc(code)
	}

	handleSignals(func() {
		log.App.Info().Msg("shutting down")
		_ = listener.Close()
	}, os.Interrupt, syscall.SIGTERM)

	if err := transport.NewServer(dispatcher).Serve(listener); err != nil {
		le.Printf("%s\n", err)
		exit(1)
	}

	exit(0)
}

func resolvePath(path string) (string, error) {
	if runtime.GOOS == "windows" {
		return filepath.Join(config.WindowsPipePrefix, path), nil
	}
	return filepath.Abs(path)
}

func openKeys(cfg *config.Config) (keySource, error) {
	if cfg.TKey {
		return tkeySource{keys.NewTKey(keys.Port{Path: cfg.TKeyPort, Speed: cfg.TKeySpeed})}, nil
	}

	mnemonic, err := tkeyutil.ReadUSS(cfg.MnemonicFile)
	if err != nil {
		return nil, fmt.Errorf("ReadUSS: %w", err)
	}
	defer func() {
		for i := range mnemonic {
			mnemonic[i] = 0
		}
	}()

	var passphrase string
	if cfg.Passphrase {
		if passphrase, err = ui.Passphrase(cfg.Pinentry); err != nil {
			return nil, err
		}
	}

	seed, err := keys.SeedFromMnemonic(string(mnemonic), passphrase)
	if err != nil {
		return nil, err
	}

	return seedSource{seed}, nil
}

func readBuildInfo() string {
	version := "devel without BuildInfo"
	if info, ok := debug.ReadBuildInfo(); ok {
		sb := strings.Builder{}
		sb.WriteString("devel")
		for _, setting := range info.Settings {
			if strings.HasPrefix(setting.Key, "vcs") {
				sb.WriteString(fmt.Sprintf(" %s=%s", setting.Key, setting.Value))
			}
		}
		version = sb.String()
	}
	return version
}

func printPorts() (int, error) {
	ports, err := tkeyclient.GetSerialPorts()
	if err != nil {
		return 0, fmt.Errorf("Failed to list ports: %w", err)
	}
	if len(ports) == 0 {
		le.Printf("No TKey serial ports found.\n")
	} else {
		le.Printf("TKey serial ports (on stdout):\n")
		for _, p := range ports {
			fmt.Fprintf(os.Stdout, "%s serialNumber:%s\n", p.DevPath, p.SerialNumber)
		}
	}
	return len(ports), nil
}

func handleSignals(action func(), sig ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig...)
	go func() {
		for {
			<-ch
			action()
		}
	}()
}
