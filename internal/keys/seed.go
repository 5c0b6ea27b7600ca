// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package keys provides the account keys the signer signs with.
package keys

import (
	"crypto"
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/tillitis/ae-signer/internal/log"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Seed derives account keys from a BIP-39 seed. Keys are derived on
// every call and never kept.
type Seed struct {
	seed []byte
}

// NewSeed uses seed, 16 to 64 bytes, as the derivation root.
func NewSeed(seed []byte) (*Seed, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, fmt.Errorf("seed must be 16 to 64 bytes, got %d", len(seed))
	}
	return &Seed{seed: append([]byte{}, seed...)}, nil
}

// SeedFromMnemonic validates mnemonic (correct word count, valid words,
// valid checksum) and derives its seed with the optional passphrase.
func SeedFromMnemonic(mnemonic, passphrase string) (*Seed, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	log.Keys.Debug().Int("words", len(strings.Fields(mnemonic))).Msg("seed loaded from mnemonic")
	return NewSeed(seed)
}

// Derive returns the key of account at m/44'/457'/account'/0'/0'.
func (s *Seed) Derive(account uint32) (crypto.Signer, error) {
	if s.seed == nil {
		return nil, errors.New("seed has been wiped")
	}
	if account >= 1<<31 {
		return nil, fmt.Errorf("account %d out of range", account)
	}
	key, err := DeriveKey(s.seed, AccountPath(account)...)
	if err != nil {
		return nil, fmt.Errorf("DeriveKey: %w", err)
	}
	return key, nil
}

// Wipe overwrites the seed. The Seed is unusable afterwards.
func (s *Seed) Wipe() {
	for i := range s.seed {
		s.seed[i] = 0
	}
	s.seed = nil
}
