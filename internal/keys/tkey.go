// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package keys

import (
	"crypto"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tillitis/tkeyclient"
	"github.com/tillitis/tkeysign"

	"github.com/tillitis/ae-signer/internal/log"
)

const (
	// 4 chars each.
	wantAppName0 = "tk1 "
	wantAppName1 = "sign"
)

var ErrWrongApp = errors.New("TKey is not running the signer app")

// Port selects the TKey serial port. An empty Path auto-detects it.
type Port struct {
	Path  string
	Speed int
}

// TKey signs with the Ed25519 key of a Tillitis TKey running the signer
// device app. The TKey holds a single key, which is account 0.
type TKey struct {
	port      Port
	tk        *tkeyclient.TillitisKey
	tkSigner  *tkeysign.Signer
	mu        sync.Mutex
	connected bool
	pub       ed25519.PublicKey
}

func NewTKey(port Port) *TKey {
	tkeyclient.SilenceLogging()

	tk := tkeyclient.New()
	tkSigner := tkeysign.New(tk)

	return &TKey{
		port:     port,
		tk:       tk,
		tkSigner: &tkSigner,
	}
}

func (t *TKey) connect() error {
	if t.connected {
		return nil
	}

	devPath := t.port.Path
	if devPath == "" {
		var err error
		devPath, err = tkeyclient.DetectSerialPort(false)
		if err != nil {
			return fmt.Errorf("DetectSerialPort: %w", err)
		}
		log.Keys.Info().Str("port", devPath).Msg("auto-detected serial port")
	}

	log.Keys.Info().Str("port", devPath).Msg("connecting to TKey")
	if err := t.tk.Connect(devPath, tkeyclient.WithSpeed(t.port.Speed)); err != nil {
		return fmt.Errorf("Connect: %w", err)
	}

	nameVer, err := t.tkSigner.GetAppNameVersion()
	if err != nil {
		t.closeNow()
		if errors.Is(err, io.EOF) {
			return ErrWrongApp
		}
		return fmt.Errorf("GetAppNameVersion: %w", err)
	}
	if !isWantedApp(nameVer.Name0, nameVer.Name1) {
		t.closeNow()
		return fmt.Errorf("%w: found %q%q", ErrWrongApp, nameVer.Name0, nameVer.Name1)
	}

	pub, err := t.tkSigner.GetPubkey()
	if err != nil {
		t.closeNow()
		return fmt.Errorf("GetPubkey: %w", err)
	}

	t.pub = ed25519.PublicKey(pub)
	t.connected = true

	return nil
}

// isWantedApp checks the app name. The version is not checked.
func isWantedApp(name0, name1 string) bool {
	return name0 == wantAppName0 && name1 == wantAppName1
}

func (t *TKey) closeNow() {
	if err := t.tkSigner.Close(); err != nil {
		log.Keys.Warn().Err(err).Msg("close failed")
	}
}

// Close disconnects from the TKey. The next Derive connects again.
func (t *TKey) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil
	}
	t.connected = false
	t.pub = nil

	if err := t.tkSigner.Close(); err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	return nil
}

// Derive connects to the TKey if needed and returns its key. Only
// account 0 exists.
func (t *TKey) Derive(account uint32) (crypto.Signer, error) {
	if account != 0 {
		return nil, fmt.Errorf("TKey holds only account 0, not %d", account)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.connect(); err != nil {
		return nil, err
	}

	return tkeyKey{t: t, pub: t.pub}, nil
}

// tkeyKey implements crypto.Signer with the TKey.
type tkeyKey struct {
	t   *TKey
	pub ed25519.PublicKey
}

func (k tkeyKey) Public() crypto.PublicKey {
	return k.pub
}

func (k tkeyKey) Sign(_ io.Reader, message []byte, opts crypto.SignerOpts) ([]byte, error) {
	// The Ed25519 signature must be made over unhashed message. See:
	// https://cs.opensource.google/go/go/+/refs/tags/go1.18.4:src/crypto/ed25519/ed25519.go;l=80
	if opts.HashFunc() != crypto.Hash(0) {
		return nil, errors.New("message must not be hashed")
	}

	k.t.mu.Lock()
	defer k.t.mu.Unlock()

	if err := k.t.connect(); err != nil {
		return nil, err
	}

	log.Keys.Info().Msg("touch the TKey to confirm signing")
	signature, err := k.t.tkSigner.Sign(message)
	if err != nil {
		// A failed exchange leaves the connection in an unknown state.
		k.t.closeNow()
		k.t.connected = false
		return nil, fmt.Errorf("Sign: %w", err)
	}

	return signature, nil
}
