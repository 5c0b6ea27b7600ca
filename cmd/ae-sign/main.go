// Copyright (C) 2022 - Tillitis AB
// SPDX-License-Identifier: GPL-2.0-only

package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/tillitis/tkeyutil"

	"github.com/tillitis/ae-signer/aeaddr"
	"github.com/tillitis/ae-signer/aeclient"
	"github.com/tillitis/ae-signer/aehash"
	"github.com/tillitis/ae-signer/internal/config"
	"github.com/tillitis/ae-signer/internal/transport"
)

const progname = "ae-sign"

func main() {
	socket := pflag.StringP("socket", "s", "",
		fmt.Sprintf("Connect to the signer at `PATH`. On Windows, the Named Pipe at '%s\\PATH' is used.", config.WindowsPipePrefix))
	account := pflag.Uint32P("account", "a", 0,
		"Use account `INDEX`.")
	showVersion := pflag.Bool("signer-version", false,
		"Output the version of the signer app.")
	showAddress := pflag.Bool("address", false,
		"Output the address of the account.")
	confirm := pflag.Bool("confirm", false,
		"Have the operator confirm the address shown by --address.")
	msgFile := pflag.String("message", "",
		"Sign the contents of `FILE` as a personal message. Use '-' (dash) to read from stdin.")
	dataFile := pflag.String("data", "",
		"Sign the contents of `FILE` as raw data. Use '-' (dash) to read from stdin.")
	txFile := pflag.String("tx", "",
		"Sign the hex encoded RLP transaction in `FILE`. Use '-' (dash) to read from stdin.")
	networkID := pflag.String("network-id", "ae_mainnet",
		"Sign the transaction for network `ID`.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n%s", progname,
			pflag.CommandLine.FlagUsagesWrapped(80))
	}
	pflag.Parse()

	ops := 0
	for _, set := range []bool{*showVersion, *showAddress, *msgFile != "", *dataFile != "", *txFile != ""} {
		if set {
			ops++
		}
	}
	if *socket == "" || ops != 1 {
		fmt.Printf("Please pass --socket and one of --signer-version, --address, --message, --data or --tx\n")
		pflag.Usage()
		os.Exit(2)
	}
	if *confirm && !*showAddress {
		fmt.Printf("--confirm applies only to --address\n")
		os.Exit(2)
	}

	path := *socket
	if runtime.GOOS == "windows" {
		path = filepath.Join(config.WindowsPipePrefix, path)
	}

	conn, err := transport.Dial(path)
	if err != nil {
		fmt.Printf("Could not connect to %s: %v\n", path, err)
		os.Exit(1)
	}

	exit := func(code int) {
		if err = conn.Close(); err != nil {
			fmt.Printf("%v\n", err)
		}
		os.Exit(code)
	}
	handleSignals(func() { exit(1) }, os.Interrupt, syscall.SIGTERM)

	client := aeclient.New(conn)

	if *showVersion {
		v, err := client.GetVersion()
		if err != nil {
			fmt.Printf("GetVersion failed: %v\n", err)
			exit(1)
		}
		fmt.Printf("%s\n", v)
		exit(0)
	}

	if *confirm {
		fmt.Printf("Confirm the address on the signer ...\n")
	}
	addr, err := client.GetAddress(*account, *confirm)
	if err != nil {
		fmt.Printf("GetAddress failed: %v\n", err)
		exit(1)
	}
	if *showAddress {
		fmt.Printf("%s\n", addr)
		exit(0)
	}

	payload, _, err := aeaddr.Decode(addr)
	if err != nil {
		fmt.Printf("Signer returned a bad address: %v\n", err)
		exit(1)
	}
	pubkey := ed25519.PublicKey(payload[:])
	fmt.Printf("Signing with account %d: %s\n", *account, addr)

	var signed, signature []byte
	switch {
	case *msgFile != "":
		message := readFile(*msgFile, exit)
		fmt.Printf("Sending a %v bytes message for signing.\n", len(message))
		signature, err = client.SignMessage(*account, message)
		if err == nil {
			signed, err = aehash.MessageDigest(message)
		}

	case *dataFile != "":
		signed = readFile(*dataFile, exit)
		fmt.Printf("Sending %v bytes of data for signing.\n", len(signed))
		signature, err = client.SignData(*account, signed)

	case *txFile != "":
		tx, decErr := hex.DecodeString(strings.TrimSpace(string(readFile(*txFile, exit))))
		if decErr != nil {
			fmt.Printf("Could not decode %s: %v\n", *txFile, decErr)
			exit(1)
		}
		fmt.Printf("Sending a %v bytes transaction for signing.\n", len(tx))
		signature, err = client.SignTransaction(*account, []byte(*networkID), tx)
		if err == nil {
			var digest []byte
			if digest, err = aehash.TxDigest(tx); err == nil {
				signed = aehash.TxSignable([]byte(*networkID), digest)
			}
		}
	}

	if aeclient.IsDenied(err) {
		fmt.Printf("Rejected by the operator.\n")
		exit(1)
	}
	if err != nil {
		fmt.Printf("Sign failed: %v\n", err)
		exit(1)
	}
	fmt.Printf("Signature: %x\n", signature)

	if !ed25519.Verify(pubkey, signed, signature) {
		fmt.Printf("Signature did NOT verify.\n")
		exit(1)
	} else {
		fmt.Printf("Signature verified.\n")
	}

	exit(0)
}

func readFile(name string, exit func(int)) []byte {
	b, err := tkeyutil.ReadUSS(name)
	if err != nil {
		fmt.Printf("Could not read %s: %v\n", name, err)
		exit(1)
	}
	return b
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
